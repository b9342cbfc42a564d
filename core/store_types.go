package core

// Drop is the unit of sponsorship (spec.md §3). Keyed by DropID in the
// Store's primary index.
type Drop struct {
	ID               DropID
	FunderID         AccountID
	MaxKeyUses       uint64
	AssetDataForUses []AssetDataForUses
	AssetByID        map[AssetID]InternalAsset
	KeyInfoByTokenID map[TokenID]*InternalKeyInfo
	NextKeyID        uint64
	NFTConfig        *NFTConfig
	DropConfig       *DropConfig
}

// InternalKeyInfo is the key as a token (spec.md §3). A key whose OwnerID
// equals the Store's own contract account is "unowned" and sender
// authorization is waived on claim (presentation of the key authorizes
// use).
type InternalKeyInfo struct {
	PublicKey          PublicKey
	RemainingUses      uint64
	OwnerID            AccountID
	ApprovedAccountIDs map[AccountID]uint64
	NextApprovalID     uint64
	Metadata           string
}

// NFTConfig is the optional per-drop NFT metadata/royalty block (spec.md
// §3, §6 Configuration nft_keys_config).
type NFTConfig struct {
	TokenMetadataName string
	Royalties         map[AccountID]uint16 // basis points, sum <= 10000 (invariant 6)
}

// DropConfig is the optional per-drop policy block (spec.md §3, §6
// Configuration).
type DropConfig struct {
	Metadata             string
	AddKeyAllowlist      map[AccountID]struct{}
	DeleteEmptyDrop      *bool // nil means default true
	ExtraAllowancePerKey Balance
	Sale                 *SaleConfig
}

// deleteEmptyDrop resolves the DropConfig.DeleteEmptyDrop tri-state default
// (spec.md §3 Lifecycle: "delete_empty_drop is not false").
func (c *DropConfig) deleteEmptyDrop() bool {
	if c == nil || c.DeleteEmptyDrop == nil {
		return true
	}
	return *c.DeleteEmptyDrop
}

// SaleConfig is the public-sale allowlist boundary (spec.md §4.8).
type SaleConfig struct {
	MaxNumKeys   *uint64
	PricePerKey  *Balance
	Allowlist    map[AccountID]struct{}
	Blocklist    map[AccountID]struct{}
	Start        *int64
	End          *int64
	KeysIssued   uint64
}

// FunderInfo is the per-funder ledger entry (spec.md §4.7).
type FunderInfo struct {
	Balance  Balance
	Metadata map[string]any
}
