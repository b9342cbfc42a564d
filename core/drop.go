package core

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// AssetKind tags an AssetInput the same way InternalAsset variants are
// tagged, but as caller-supplied data rather than already-pooled state.
type AssetKind int

const (
	AssetFT AssetKind = iota
	AssetNFT
	AssetFC
	AssetNear
	AssetNone
)

// AssetInput is one entry of a use's requested asset manifest, as supplied
// by the funder to create_drop/add_keys (spec.md §4.1 "Asset-data
// normalization").
type AssetInput struct {
	Kind         AssetKind
	FTContractID AccountID
	NFTContractID AccountID
	FCMethods    []MethodData
	TokensPerUse *Balance // meaningful only for FT and Near
}

// AssetPoolInput supplies the one-time pool deposit backing an FT or NFT
// asset the first time it is referenced in a drop (spec.md §3 InternalAsset
// FT.balance_avail / NFT.token_ids).
type AssetPoolInput struct {
	FTBalance        Balance
	FTRegistrationCost Balance
	NFTTokenIDs      []string
}

// CreateDropInput is the normalized argument set for create_drop (spec.md
// §4.1). Exactly one of AssetsPerUse or AssetsForAllUses should be set, per
// the spec's two accepted input shapes.
type CreateDropInput struct {
	DropID           DropID
	FunderID         AccountID
	MaxKeyUses       uint64
	AssetsPerUse     map[uint16][]AssetInput
	AssetsForAllUses []AssetInput
	Pools            map[AssetKey]AssetPoolInput
	PublicKeys       []PublicKey
	KeyOwners        map[PublicKey]AccountID
	NFTConfig        *NFTConfig
	DropConfig       *DropConfig
	AttachedDeposit  Balance
}

// AssetKey identifies a pool deposit's target asset ahead of dedup, since
// the caller supplying AssetPoolInput doesn't yet know the final AssetID
// for an FC asset (which is content-derived). FT/NFT keys are the contract
// id prefixed with "ft:" or "nft:" (see ftAssetKey/nftAssetKey).
type AssetKey string

func ftAssetKey(contractID AccountID) AssetKey  { return AssetKey("ft:" + contractID) }
func nftAssetKey(contractID AccountID) AssetKey { return AssetKey("nft:" + contractID) }

// CreateDrop implements spec.md §4.1 create_drop: idempotent, fails with
// ErrDropExists if the drop id is taken.
func (s *Store) CreateDrop(in CreateDropInput) (*Drop, Balance, error) {
	if err := in.DropID.Validate(); err != nil {
		return nil, Balance{}, err
	}
	if in.MaxKeyUses < 1 {
		return nil, Balance{}, fmt.Errorf("%w: max_key_uses must be >= 1", ErrInvalidInput)
	}
	if in.NFTConfig != nil {
		if err := validateRoyalties(in.NFTConfig.Royalties); err != nil {
			return nil, Balance{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.DropByID[in.DropID]; exists {
		return nil, Balance{}, ErrDropExists
	}

	drop := &Drop{
		ID:               in.DropID,
		FunderID:         in.FunderID,
		MaxKeyUses:       in.MaxKeyUses,
		AssetByID:        make(map[AssetID]InternalAsset),
		KeyInfoByTokenID: make(map[TokenID]*InternalKeyInfo),
		NFTConfig:        in.NFTConfig,
		DropConfig:       in.DropConfig,
	}

	ranges, err := normalizeAssetData(in, drop.AssetByID, in.MaxKeyUses)
	if err != nil {
		return nil, Balance{}, err
	}
	drop.AssetDataForUses = ranges

	cost, allowance, err := PerKeyTotals(drop, s.Cost)
	if err != nil {
		return nil, Balance{}, err
	}
	perKeyTotal := cost.Add(allowance).Add(s.PerKeyFee)
	required := perKeyTotal.Mul(uint64(len(in.PublicKeys))).Add(s.PerDropFee)

	surplus, err := s.Funders.DebitForKeys(in.FunderID, required, in.AttachedDeposit)
	if err != nil {
		return nil, Balance{}, err
	}

	s.DropByID[in.DropID] = drop
	s.mintKeysLocked(drop, in.PublicKeys, in.KeyOwners, allowance)

	s.Events.Emit("drop_creation", map[string]any{"drop_id": drop.ID, "funder_id": drop.FunderID})
	logger().WithFields(log.Fields{"drop_id": drop.ID, "funder_id": drop.FunderID, "keys": len(in.PublicKeys)}).Info("keypom: drop created")
	return drop, surplus, nil
}

// AddKeys implements spec.md §4.1 add_keys: mints more keys under an
// existing drop, debiting the per-key asset cost and allowance (no
// PerKeyFee or PerDropFee is charged here).
func (s *Store) AddKeys(caller AccountID, dropID DropID, keys []PublicKey, owners map[PublicKey]AccountID, attachedDeposit Balance) (Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop, ok := s.DropByID[dropID]
	if !ok {
		return Balance{}, ErrDropMissing
	}

	sale, err := s.authorizeAddKeys(drop, caller, uint64(len(keys)))
	if err != nil {
		return Balance{}, err
	}
	if sale != nil {
		if err := collectSalePrice(s, sale, drop.FunderID, uint64(len(keys))); err != nil {
			return Balance{}, err
		}
	}

	cost, allowance, err := PerKeyTotals(drop, s.Cost)
	if err != nil {
		return Balance{}, err
	}
	perKeyTotal := cost.Add(allowance)
	required := perKeyTotal.Mul(uint64(len(keys)))

	surplus, err := s.Funders.DebitForKeys(drop.FunderID, required, attachedDeposit)
	if err != nil {
		return Balance{}, err
	}

	s.mintKeysLocked(drop, keys, owners, allowance)
	s.Events.Emit("add_key", map[string]any{"drop_id": dropID, "count": len(keys)})
	return surplus, nil
}

// authorizeAddKeys returns the sale block a non-funder purchase was
// admitted under, or nil when the caller is the funder themself (no sale
// price applies).
func (s *Store) authorizeAddKeys(drop *Drop, caller AccountID, numKeys uint64) (*SaleConfig, error) {
	if caller == drop.FunderID {
		return nil, nil
	}
	sale := saleConfig(drop)
	if sale == nil {
		return nil, ErrUnauthorized
	}
	if err := checkSaleAdmission(sale, caller, s.Now()); err != nil {
		return nil, err
	}
	if sale.MaxNumKeys != nil && sale.KeysIssued+numKeys > *sale.MaxNumKeys {
		return nil, ErrSaleClosed
	}
	return sale, nil
}

// mintKeysLocked assigns TokenIDs, registers indices and access
// credentials, and appends InternalKeyInfo entries (spec.md §4.1 "Key
// addition"). Caller must hold s.mu.
func (s *Store) mintKeysLocked(drop *Drop, keys []PublicKey, owners map[PublicKey]AccountID, allowancePerKey Balance) {
	for _, pk := range keys {
		tokenID := NewTokenID(drop.ID, drop.NextKeyID)
		drop.NextKeyID++

		if _, dup := s.TokenIDByPublicKey[pk]; dup {
			logger().WithField("token_id", tokenID).Warn("keypom: duplicate public key on mint, skipping")
			continue
		}
		s.TokenIDByPublicKey[pk] = tokenID

		owner := s.ContractAccount
		if o, ok := owners[pk]; ok && o != "" {
			owner = o
		}

		drop.KeyInfoByTokenID[tokenID] = &InternalKeyInfo{
			PublicKey:          pk,
			RemainingUses:      drop.MaxKeyUses,
			OwnerID:            owner,
			ApprovedAccountIDs: make(map[AccountID]uint64),
		}
		s.addTokenOwnerIndex(owner, tokenID)

		if s.Registrar != nil {
			if err := s.Registrar.AddAccessKey(noctx(), pk, allowancePerKey, []string{"claim", "create_account_and_claim"}); err != nil {
				logger().WithError(err).Warn("keypom: failed to register access key")
			}
		}
		s.Events.Emit("nft_mint", map[string]any{"token_id": tokenID, "owner_id": owner})
	}
}

// DeleteKeys implements spec.md §4.1 delete_keys: tears down named keys (or
// up to limit), frees access credentials, refunds unspent allowance and
// per-key cost, and deletes the drop if it's now empty and
// delete_empty_drop isn't false (unless keepEmptyDrop overrides).
func (s *Store) DeleteKeys(caller AccountID, dropID DropID, tokenIDs []TokenID, limit *uint32, keepEmptyDrop bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop, ok := s.DropByID[dropID]
	if !ok {
		return 0, ErrDropMissing
	}
	if caller != drop.FunderID {
		return 0, ErrUnauthorized
	}

	targets := tokenIDs
	if len(targets) == 0 {
		targets = make([]TokenID, 0, len(drop.KeyInfoByTokenID))
		for t := range drop.KeyInfoByTokenID {
			targets = append(targets, t)
		}
	}
	max := len(targets)
	if limit != nil && int(*limit) < max {
		max = int(*limit)
	}

	cost, allowance, err := PerKeyTotals(drop, s.Cost)
	if err != nil {
		return 0, err
	}
	perKeyTotal := cost.Add(allowance)

	deleted := 0
	for i := 0; i < max; i++ {
		tokenID := targets[i]
		info, ok := drop.KeyInfoByTokenID[tokenID]
		if !ok {
			continue
		}
		refund := perKeyTotal.MulDivFloor(info.RemainingUses, drop.MaxKeyUses)
		if !refund.IsZero() {
			s.Funders.AddToBalance(drop.FunderID, refund)
		}
		s.deleteKeyLocked(drop, tokenID, info)
		deleted++
	}

	s.Events.Emit("delete_key", map[string]any{"drop_id": dropID, "deleted": deleted})

	if !keepEmptyDrop && len(drop.KeyInfoByTokenID) == 0 && dropAssetsEmpty(drop) && drop.DropConfig.deleteEmptyDrop() {
		delete(s.DropByID, dropID)
		s.Events.Emit("drop_deletion", map[string]any{"drop_id": dropID})
	}

	return deleted, nil
}

func (s *Store) deleteKeyLocked(drop *Drop, tokenID TokenID, info *InternalKeyInfo) {
	delete(s.TokenIDByPublicKey, info.PublicKey)
	s.removeTokenOwnerIndex(info.OwnerID, tokenID)
	delete(drop.KeyInfoByTokenID, tokenID)
	if s.Registrar != nil {
		if err := s.Registrar.DeleteAccessKey(noctx(), info.PublicKey); err != nil {
			logger().WithError(err).Warn("keypom: failed to remove access key")
		}
	}
	s.Events.Emit("nft_burn", map[string]any{"token_id": tokenID})
}

func dropAssetsEmpty(drop *Drop) bool {
	for _, a := range drop.AssetByID {
		if !a.IsEmpty() {
			return false
		}
	}
	return true
}

func validateRoyalties(royalties map[AccountID]uint16) error {
	var sum uint32
	for _, bp := range royalties {
		sum += uint32(bp)
	}
	if sum > 10000 {
		return ErrRoyaltiesExceedCap
	}
	return nil
}

// normalizeAssetData implements spec.md §4.1's normalization of either
// input shape into a sequence of (uses, assets) ranges whose uses sum to
// maxKeyUses, deduplicating referenced assets into assetByID.
func normalizeAssetData(in CreateDropInput, assetByID map[AssetID]InternalAsset, maxKeyUses uint64) ([]AssetDataForUses, error) {
	var raw []struct {
		uses   uint16
		assets []AssetInput
	}
	switch {
	case len(in.AssetsPerUse) > 0 && len(in.AssetsForAllUses) > 0:
		return nil, fmt.Errorf("%w: specify either assets_per_use or assets_for_all_uses, not both", ErrInvalidInput)
	case len(in.AssetsPerUse) > 0:
		var sum uint64
		useNums := sortedUint16Keys(in.AssetsPerUse)
		for _, u := range useNums {
			raw = append(raw, struct {
				uses   uint16
				assets []AssetInput
			}{1, in.AssetsPerUse[u]})
			sum++
		}
		if sum != maxKeyUses {
			return nil, fmt.Errorf("%w: assets_per_use entries (%d) must cover max_key_uses (%d)", ErrInvalidInput, sum, maxKeyUses)
		}
	case len(in.AssetsForAllUses) > 0:
		raw = append(raw, struct {
			uses   uint16
			assets []AssetInput
		}{uint16(maxKeyUses), in.AssetsForAllUses})
	default:
		return nil, fmt.Errorf("%w: no asset data supplied", ErrInvalidInput)
	}

	out := make([]AssetDataForUses, 0, len(raw))
	for _, r := range raw {
		metas := make([]AssetMetadata, 0, len(r.assets))
		for _, a := range r.assets {
			id, asset, err := resolveAsset(a, in.Pools, assetByID)
			if err != nil {
				return nil, err
			}
			if _, exists := assetByID[id]; !exists {
				assetByID[id] = asset
			}
			metas = append(metas, AssetMetadata{AssetID: id, TokensPerUse: a.TokensPerUse})
		}
		out = append(out, AssetDataForUses{Uses: r.uses, AssetsMetadata: metas})
	}
	return out, nil
}

func resolveAsset(a AssetInput, pools map[AssetKey]AssetPoolInput, existing map[AssetID]InternalAsset) (AssetID, InternalAsset, error) {
	switch a.Kind {
	case AssetFT:
		id := AssetID(a.FTContractID)
		if cur, ok := existing[id]; ok {
			return id, cur, nil
		}
		pool := pools[ftAssetKey(a.FTContractID)]
		return id, NewFTAsset(a.FTContractID, pool.FTBalance, pool.FTRegistrationCost), nil
	case AssetNFT:
		id := AssetID(a.NFTContractID)
		if cur, ok := existing[id]; ok {
			return id, cur, nil
		}
		pool := pools[nftAssetKey(a.NFTContractID)]
		return id, NewNFTAsset(a.NFTContractID, pool.NFTTokenIDs), nil
	case AssetFC:
		id := DeriveFCAssetID(a.FCMethods)
		if cur, ok := existing[id]; ok {
			return id, cur, nil
		}
		return id, NewFCAsset(id, a.FCMethods), nil
	case AssetNear:
		if cur, ok := existing[NearAssetID]; ok {
			return NearAssetID, cur, nil
		}
		return NearAssetID, NewNearAsset(), nil
	case AssetNone:
		if cur, ok := existing[NoneAssetID]; ok {
			return NoneAssetID, cur, nil
		}
		return NoneAssetID, NewNoneAsset(), nil
	default:
		return "", nil, fmt.Errorf("%w: unknown asset kind", ErrInvalidInput)
	}
}

func sortedUint16Keys(m map[uint16][]AssetInput) []uint16 {
	out := make([]uint16, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
