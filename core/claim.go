package core

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ClaimInput is the argument set for claim / create_account_and_claim
// (spec.md §4.2).
type ClaimInput struct {
	Ctx context.Context

	TokenID TokenID
	// Receiver is the account assets are delivered to. For a plain claim
	// this is an existing account; for create_account_and_claim it is the
	// freshly-created account.
	Receiver AccountID

	// CreateAccount selects create_account_and_claim's Phase 2a account
	// creation step over a plain claim (spec.md §4.2).
	CreateAccount   bool
	NewPublicKey    PublicKey
	FundingAccount  AccountID

	// FCArgs is the claimer-supplied argument blob merged into any FC
	// asset's method args for this use (spec.md §4.6).
	FCArgs string
}

// ClaimResult reports what happened in a completed claim (spec.md §4.2).
type ClaimResult struct {
	KeyDeleted     bool
	DropDeleted    bool
	RefundedFunder Balance
	AssetOutcomes  map[AssetID]bool // true = dispatched successfully
}

// Claim implements spec.md §4.2's full state machine: Phase 1 synchronous
// decrement, Phase 2a optional account creation, Phase 2b parallel asset
// dispatch, Phase 2c reconciliation, Phase 3 cleanup.
func (s *Store) Claim(in ClaimInput) (*ClaimResult, error) {
	if in.Ctx == nil {
		in.Ctx = context.Background()
	}

	drop, info, use, cfg, err := s.beginClaimLocked(in.TokenID)
	if err != nil {
		return nil, err
	}

	if in.CreateAccount {
		if cfg == nil || !cfg.PermissionCreateAccount {
			s.restoreUse(in.TokenID)
			return nil, fmt.Errorf("%w: this use does not permit create_account_and_claim", ErrUnauthorized)
		}
	} else if cfg != nil && !cfg.PermissionClaim && cfg.PermissionCreateAccount {
		s.restoreUse(in.TokenID)
		return nil, fmt.Errorf("%w: this use requires create_account_and_claim", ErrUnauthorized)
	}

	if in.CreateAccount {
		if in.Receiver.Empty() {
			in.Receiver = ImplicitAccountID(in.NewPublicKey)
		}
		var outcome CallOutcome
		var cerr error
		if s.Deps.AccountCreator != nil {
			outcome, cerr = s.Deps.AccountCreator.CreateAccount(in.Ctx, in.Receiver, in.NewPublicKey, in.FundingAccount)
		} else {
			outcome = CallOutcome{Success: true}
		}
		if cerr != nil || !outcome.Success {
			refund := s.refundAllForUse(drop, use)
			s.finishClaimLocked(drop, in.TokenID, info, refund, nil)
			logger().WithFields(log.Fields{"token_id": in.TokenID, "receiver": in.Receiver}).Warn("keypom: create_account_and_claim account creation failed, refunding use")
			return &ClaimResult{RefundedFunder: refund}, nil
		}
	}

	cc := ClaimContext{
		Ctx:      in.Ctx,
		DropID:   drop.ID,
		FunderID: drop.FunderID,
		Receiver: in.Receiver,
		FCArgs:   in.FCArgs,
	}
	if tokenNonce, nerr := in.TokenID.KeyNonce(); nerr == nil {
		cc.KeyID = tokenNonce
	}

	s.mu.RLock()
	assetByID := drop.AssetByID
	results := dispatchUse(cc, use, assetByID, s.Deps)
	s.mu.RUnlock()

	refund := ZeroBalance()
	outcomes := make(map[AssetID]bool, len(results))
	for _, r := range results {
		switch {
		case r.asset == nil:
			// Asset lookup itself failed (shouldn't happen for a
			// consistent drop); nothing to reconcile, nothing to refund.
			outcomes[r.meta.AssetID] = false
		case r.dispatch != nil && r.dispatch.FCOpaque:
			// FC asset rule (spec.md §4.2 Phase 2c): success/failure is
			// ignored, no refund either way.
			outcomes[r.meta.AssetID] = true
		case r.dispatch == nil:
			// Vacuous success (pool exhausted, asset chose not to dispatch).
			outcomes[r.meta.AssetID] = true
		case r.err != nil:
			refund = refund.Add(r.asset.OnFailedClaim(r.meta, r.dispatch))
			outcomes[r.meta.AssetID] = false
		default:
			outcomes[r.meta.AssetID] = true
		}
	}

	result := &ClaimResult{AssetOutcomes: outcomes}
	s.finishClaimLocked(drop, in.TokenID, info, refund, result)
	return result, nil
}

// beginClaimLocked performs Phase 1 (spec.md §4.2): validates remaining
// uses, decrements them, and resolves which AssetDataForUses range this use
// falls in.
func (s *Store) beginClaimLocked(tokenID TokenID) (*Drop, *InternalKeyInfo, AssetDataForUses, *UseConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return nil, nil, AssetDataForUses{}, nil, err
	}
	if info.RemainingUses == 0 {
		return nil, nil, AssetDataForUses{}, nil, ErrNoUsesRemaining
	}

	useIndex := drop.MaxKeyUses - info.RemainingUses
	use, err := findUseAtIndex(drop.AssetDataForUses, useIndex)
	if err != nil {
		return nil, nil, AssetDataForUses{}, nil, err
	}

	info.RemainingUses--
	return drop, info, use, use.Config, nil
}

// restoreUse reverts the Phase 1 decrement when a permission check after it
// fails, so the claim is a no-op overall.
func (s *Store) restoreUse(tokenID TokenID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, info, err := s.lookupKeyLocked(tokenID); err == nil {
		info.RemainingUses++
	}
}

// refundAllForUse sums the worst-case refund across every asset in a use,
// for the account-creation-failure path (spec.md §4.2 Phase 2a: "refund
// every asset slot for this use, as if every dispatch had failed").
func (s *Store) refundAllForUse(drop *Drop, use AssetDataForUses) Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := ZeroBalance()
	for _, m := range use.AssetsMetadata {
		if a, ok := drop.AssetByID[m.AssetID]; ok {
			total = total.Add(a.YoctoRefundAmount(m))
		}
	}
	return total
}

// finishClaimLocked implements Phase 3 (spec.md §4.2): credits any refund to
// the funder, and deletes the key (and, if it was the drop's last live key
// and every asset pool is exhausted, the drop) once uses are exhausted.
func (s *Store) finishClaimLocked(drop *Drop, tokenID TokenID, info *InternalKeyInfo, refund Balance, result *ClaimResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !refund.IsZero() {
		s.Funders.AddToBalance(drop.FunderID, refund)
	}
	if result != nil {
		result.RefundedFunder = refund
	}

	if info.RemainingUses > 0 {
		return
	}
	s.deleteKeyLocked(drop, tokenID, info)
	if result != nil {
		result.KeyDeleted = true
	}

	if len(drop.KeyInfoByTokenID) == 0 && dropAssetsEmpty(drop) && drop.DropConfig.deleteEmptyDrop() {
		delete(s.DropByID, drop.ID)
		s.Events.Emit("drop_deletion", map[string]any{"drop_id": drop.ID})
		if result != nil {
			result.DropDeleted = true
		}
	}
}

// findUseAtIndex walks a drop's contiguous use ranges to find the one a
// 0-based use index falls in (spec.md §3 asset_data_for_uses).
func findUseAtIndex(ranges []AssetDataForUses, index uint64) (AssetDataForUses, error) {
	var cursor uint64
	for _, r := range ranges {
		if index < cursor+uint64(r.Uses) {
			return r, nil
		}
		cursor += uint64(r.Uses)
	}
	return AssetDataForUses{}, fmt.Errorf("%w: use index %d out of range", ErrInvalidInput, index)
}
