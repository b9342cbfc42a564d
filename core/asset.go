package core

import "context"

// AssetMetadata is the per-use reference to a deduplicated InternalAsset
// (spec.md §3). TokensPerUse is meaningful only for FT and Near.
type AssetMetadata struct {
	AssetID      AssetID
	TokensPerUse *Balance // nil when not applicable (NFT/FC/None)
}

// MethodData describes one step of an FC asset's call pipeline (spec.md
// §4.3 FC, §4.6 templating).
type MethodData struct {
	ReceiverID       AccountID
	MethodName       string
	Args             string // base JSON args, falls back to "{}"
	AttachedDeposit  Balance
	AttachedGas      Gas
	ReceiverToClaimer bool // skip this method if the claimer equals ReceiverID; the claimer is not compared with the contract's own account
	UserArgsRule     MergeRule
	KeypomArgsFields map[string]string // field name -> which of {account_id,drop_id,key_id,funder_id}
}

// MergeRule is the FC argument merge strategy from spec.md §4.6 step 2.
type MergeRule int

const (
	AllUser MergeRule = iota
	FunderPreferred
	UserPreferred
)

// AssetDataForUses is one contiguous range of a drop's use schedule
// (spec.md §3 asset_data_for_uses).
type AssetDataForUses struct {
	Uses            uint16
	AssetsMetadata  []AssetMetadata
	Config          *UseConfig
	RequiredGas     Gas
}

// UseConfig is the per-use {time, permissions, account_creation_keypom_args,
// root_account_id} block from spec.md §6 Configuration.
type UseConfig struct {
	TimeStart               *int64
	TimeEnd                 *int64
	ThrottleMillis          *int64
	IntervalMillis          *int64
	PermissionClaim         bool
	PermissionCreateAccount bool
	AccountCreationKeypomArgs map[string]string
	RootAccountID           AccountID
}

// ClaimContext carries the identity and environment data every asset
// dispatch needs, so InternalAsset implementations stay free of drop/key
// bookkeeping (spec.md §4.3's four-method capability set is "total over the
// variant set", per spec.md §9 design notes).
type ClaimContext struct {
	Ctx       context.Context
	DropID    DropID
	KeyID     uint64
	FunderID  AccountID
	Receiver  AccountID
	FCArgs    string // user-supplied per-method args, JSON, only used by FC
}

// InternalAsset is the closed tagged-variant asset hierarchy from spec.md
// §3/§4.3. Every caller (cost, gas, claim, refund, is-empty) must be total
// over the variant set; spec.md §9 calls out the sum-type-over-polymorphism
// design rationale explicitly, and this interface is that sum type's common
// capability surface.
type InternalAsset interface {
	// AssetID returns the deduplication key this asset is stored under.
	AssetID() AssetID

	// ClaimAsset dispatches (at most) one external call for this asset's
	// contribution to the current use. A nil returned Dispatch means no call
	// is made and the slot is vacuously successful (spec.md §4.3 FT and NFT
	// pool-exhaustion; None always returns nil).
	ClaimAsset(cc ClaimContext, meta AssetMetadata, deps Dependencies) (*Dispatch, error)

	// OnFailedClaim computes the funder refund for a failed (or
	// never-dispatched) use of this asset and reverses any pool debit taken
	// in ClaimAsset (spec.md §4.2 Phase 2c, §4.3 on_failed_claim).
	OnFailedClaim(meta AssetMetadata, d *Dispatch) Balance

	// IsEmpty reports whether the asset's pool is exhausted (spec.md §3
	// invariant 4, §4.2 Phase 3 cleanup check). FC is always empty.
	IsEmpty() bool

	// YoctoRefundAmount is the worst-case per-use native-currency cost of
	// this asset, used by the cost calculator (spec.md §4.5) and by the
	// account-creation-failure refund path (spec.md §4.2 Phase 2a).
	YoctoRefundAmount(meta AssetMetadata) Balance

	// RequiredAssetGas is this asset's contribution to a use's gas ceiling
	// (spec.md §4.5).
	RequiredAssetGas() Gas
}

// Dispatch is the record of one external call scheduled on behalf of an
// asset slot, threaded through to Phase 2c reconciliation so NFT can
// identify which concrete token_id to restore on failure (spec.md §4.2
// Phase 2b: "capture the next token id ... into token_ids_transferred[i]").
type Dispatch struct {
	AssetID AssetID
	// NFTTokenID is set only when the dispatching asset is NFT; it is the
	// token popped from the LIFO list before the call was scheduled.
	NFTTokenID string
	// FCOpaque marks a dispatch whose success/failure is intentionally
	// ignored by reconciliation (spec.md §4.2 Phase 2c, FC asset rule).
	FCOpaque bool
}

// Dependencies bundles the external collaborators a claim may need: the
// per-asset clients InternalAsset implementations dispatch through, plus
// the account-creation service create_account_and_claim's Phase 2a uses.
type Dependencies struct {
	FT             FTClient
	NFT            NFTClient
	FC             FunctionCallClient
	Near           NativeTransfer
	AccountCreator AccountCreator
}

// NativeTransfer models the host platform's built-in currency transfer,
// which — unlike FT/NFT — has no contract counterparty to call out to.
type NativeTransfer interface {
	Transfer(ctx context.Context, receiverID AccountID, amount Balance) (CallOutcome, error)
}
