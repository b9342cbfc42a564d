package core

import "fmt"

// NearAsset represents native currency; the amount lives in
// AssetMetadata.TokensPerUse, not on the asset itself (spec.md §3, §4.3
// Near).
type NearAsset struct{}

func NewNearAsset() *NearAsset { return &NearAsset{} }

func (a *NearAsset) AssetID() AssetID { return NearAssetID }

func (a *NearAsset) ClaimAsset(cc ClaimContext, meta AssetMetadata, deps Dependencies) (*Dispatch, error) {
	amount := tokensPerUse(meta)
	if amount.IsZero() || deps.Near == nil {
		return &Dispatch{AssetID: a.AssetID()}, nil
	}
	out, err := deps.Near.Transfer(cc.Ctx, cc.Receiver, amount)
	if err != nil {
		return &Dispatch{AssetID: a.AssetID()}, err
	}
	if !out.Success {
		return &Dispatch{AssetID: a.AssetID()}, fmt.Errorf("%w: near transfer rejected", ErrCallRejected)
	}
	return &Dispatch{AssetID: a.AssetID()}, nil
}

// OnFailedClaim credits the full per-use amount to the funder — native
// transfers have no pool, so there's nothing to restore beyond the refund
// itself (spec.md §4.3 Near).
func (a *NearAsset) OnFailedClaim(meta AssetMetadata, d *Dispatch) Balance {
	return tokensPerUse(meta)
}

func (a *NearAsset) IsEmpty() bool { return true }

func (a *NearAsset) YoctoRefundAmount(meta AssetMetadata) Balance { return tokensPerUse(meta) }

func (a *NearAsset) RequiredAssetGas() Gas { return nearClaimGas }

const nearClaimGas Gas = 5_000_000_000_000
