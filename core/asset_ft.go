package core

import (
	"fmt"
	"sync"
)

// FTAsset is a pooled claim on a fungible-token contract (spec.md §3, §4.3
// FT). balance_avail is debited optimistically in ClaimAsset and credited
// back in OnFailedClaim, the same optimistic-then-compensating pattern the
// teacher's escrow.go uses for its Balance field across Deposit/Release/
// Cancel.
type FTAsset struct {
	mu               sync.Mutex
	ContractID       AccountID
	BalanceAvail     Balance
	RegistrationCost Balance
}

func NewFTAsset(contractID AccountID, balance, registrationCost Balance) *FTAsset {
	return &FTAsset{ContractID: contractID, BalanceAvail: balance, RegistrationCost: registrationCost}
}

func (a *FTAsset) AssetID() AssetID { return AssetID(a.ContractID) }

// ClaimAsset implements spec.md §4.3 FT: if the pool can't cover the
// requested amount, log and return a nil dispatch (vacuous success); else
// debit balance_avail and synthesize storage_deposit -> ft_transfer.
func (a *FTAsset) ClaimAsset(cc ClaimContext, meta AssetMetadata, deps Dependencies) (*Dispatch, error) {
	amount := tokensPerUse(meta)
	a.mu.Lock()
	if a.BalanceAvail.LessThan(amount) {
		a.mu.Unlock()
		logger().WithField("contract", a.ContractID).Warn("keypom: FT pool exhausted, skipping claim_asset call")
		return nil, nil
	}
	a.BalanceAvail = a.BalanceAvail.Sub(amount)
	a.mu.Unlock()

	if deps.FT == nil {
		return nil, nil
	}
	// storage_deposit failing (by error or by Success==false) is treated
	// identically to the downstream ft_transfer failing; reconciliation
	// doesn't distinguish which half of the chained call failed.
	if out, err := deps.FT.StorageDeposit(cc.Ctx, a.ContractID, cc.Receiver, a.RegistrationCost); err != nil {
		return &Dispatch{AssetID: a.AssetID()}, err
	} else if !out.Success {
		return &Dispatch{AssetID: a.AssetID()}, fmt.Errorf("%w: ft storage_deposit rejected", ErrCallRejected)
	}
	memo := "Keypom Linkdrop"
	out, err := deps.FT.FTTransfer(cc.Ctx, a.ContractID, cc.Receiver, amount, memo)
	if err != nil {
		return &Dispatch{AssetID: a.AssetID()}, err
	}
	if !out.Success {
		return &Dispatch{AssetID: a.AssetID()}, fmt.Errorf("%w: ft transfer rejected", ErrCallRejected)
	}
	return &Dispatch{AssetID: a.AssetID()}, nil
}

// OnFailedClaim restores the pool and refunds the registration deposit. The
// transfer itself never left the contract's pocket (per spec.md §4.3's
// documented asymmetry: "the downstream contract retains the registration
// amount"), so only registration_cost is credited to the funder, not the
// transfer amount.
func (a *FTAsset) OnFailedClaim(meta AssetMetadata, d *Dispatch) Balance {
	amount := tokensPerUse(meta)
	a.mu.Lock()
	a.BalanceAvail = a.BalanceAvail.Add(amount)
	a.mu.Unlock()
	return a.RegistrationCost
}

func (a *FTAsset) IsEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.BalanceAvail.IsZero()
}

func (a *FTAsset) YoctoRefundAmount(meta AssetMetadata) Balance { return a.RegistrationCost }

func (a *FTAsset) RequiredAssetGas() Gas { return ftClaimGas }

// tokensPerUse extracts the per-use amount, defaulting to zero when unset.
func tokensPerUse(meta AssetMetadata) Balance {
	if meta.TokensPerUse == nil {
		return ZeroBalance()
	}
	return *meta.TokensPerUse
}

// ftClaimGas is the gas ceiling contribution of one FT claim_asset call
// (storage_deposit chained with ft_transfer). Calibrated as a constant
// rather than measured per spec.md §9's note that the pessimistic-gas
// constant is platform-specific.
const ftClaimGas Gas = 15_000_000_000_000
