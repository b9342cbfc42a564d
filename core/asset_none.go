package core

// NoneAsset consumes a use without any side effect (spec.md §3, §4.3 None).
type NoneAsset struct{}

func NewNoneAsset() *NoneAsset { return &NoneAsset{} }

func (a *NoneAsset) AssetID() AssetID { return NoneAssetID }

func (a *NoneAsset) ClaimAsset(cc ClaimContext, meta AssetMetadata, deps Dependencies) (*Dispatch, error) {
	return nil, nil
}

func (a *NoneAsset) OnFailedClaim(meta AssetMetadata, d *Dispatch) Balance { return ZeroBalance() }

func (a *NoneAsset) IsEmpty() bool { return true }

func (a *NoneAsset) YoctoRefundAmount(meta AssetMetadata) Balance { return ZeroBalance() }

func (a *NoneAsset) RequiredAssetGas() Gas { return 0 }
