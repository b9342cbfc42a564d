package core

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// assetJob is one asset's claim_asset call, indexed by its position in the
// use's AssetsMetadata slice so results can be reassembled in order.
type assetJob struct {
	index int
	asset InternalAsset
	meta  AssetMetadata
}

// assetResult pairs a completed job's outcome back with its slot.
type assetResult struct {
	index    int
	asset    InternalAsset
	meta     AssetMetadata
	dispatch *Dispatch
	err      error
}

// dispatchUse runs every asset in a use's manifest concurrently (spec.md §5
// "parallel dispatch" / §4.2 Phase 2b), mirroring the single-threaded
// cooperative host by fanning the calls out over goroutines and joining
// them before Phase 2c reconciles. Ground truth for the fan-out/fan-in
// shape is the teacher's node worker pools (core/node_adapter-style files
// use a goroutine-per-job, sync.WaitGroup join); this batch additionally
// carries a uuid identity purely for log correlation across the parallel
// slots.
func dispatchUse(cc ClaimContext, use AssetDataForUses, assetByID map[AssetID]InternalAsset, deps Dependencies) []assetResult {
	batchID := uuid.NewString()
	results := make([]assetResult, len(use.AssetsMetadata))

	var wg sync.WaitGroup
	for i, meta := range use.AssetsMetadata {
		asset, ok := assetByID[meta.AssetID]
		if !ok {
			results[i] = assetResult{index: i, meta: meta, err: ErrAssetMissing}
			continue
		}
		wg.Add(1)
		go func(i int, asset InternalAsset, meta AssetMetadata) {
			defer wg.Done()
			d, err := asset.ClaimAsset(cc, meta, deps)
			if err != nil {
				logger().WithFields(log.Fields{
					"batch_id": batchID,
					"asset_id": meta.AssetID,
					"slot":     i,
				}).WithError(err).Warn("keypom: asset dispatch failed")
			}
			results[i] = assetResult{index: i, asset: asset, meta: meta, dispatch: d, err: err}
		}(i, asset, meta)
	}
	wg.Wait()
	return results
}
