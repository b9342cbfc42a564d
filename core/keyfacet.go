package core

import "fmt"

// NFTTransfer implements spec.md §4.4 nft_transfer: the owner (or an
// approved account) reassigns a key to a new owner, swapping its access
// credential for newPublicKey — a key the new owner actually controls — in
// the same motion so the old holder can no longer claim.
func (s *Store) NFTTransfer(caller AccountID, tokenID TokenID, newPublicKey PublicKey, receiverID AccountID, approvalID *uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return err
	}
	if err := authorizeTransfer(info, caller, approvalID, s.isUnowned(info.OwnerID)); err != nil {
		return err
	}
	if newPublicKey == (PublicKey{}) {
		return fmt.Errorf("%w: nft_transfer requires new_public_key", ErrInvalidInput)
	}
	if _, dup := s.TokenIDByPublicKey[newPublicKey]; dup {
		return ErrDuplicateKey
	}

	oldOwner := info.OwnerID
	oldPublicKey := info.PublicKey
	s.removeTokenOwnerIndex(oldOwner, tokenID)
	info.OwnerID = receiverID
	info.ApprovedAccountIDs = make(map[AccountID]uint64)
	info.NextApprovalID = 0
	s.addTokenOwnerIndex(receiverID, tokenID)

	if s.Registrar != nil {
		if err := s.Registrar.DeleteAccessKey(noctx(), oldPublicKey); err != nil {
			logger().WithError(err).Warn("keypom: failed to remove old access key on transfer")
		}
		allowancePerKey := BalanceFromUint64(0)
		if drop != nil {
			_, allowance, aerr := PerKeyTotals(drop, s.Cost)
			if aerr == nil {
				allowancePerKey = allowance
			}
		}
		if err := s.Registrar.AddAccessKey(noctx(), newPublicKey, allowancePerKey, []string{"claim", "create_account_and_claim"}); err != nil {
			logger().WithError(err).Warn("keypom: failed to register new access key on transfer")
		}
	}
	delete(s.TokenIDByPublicKey, oldPublicKey)
	info.PublicKey = newPublicKey
	s.TokenIDByPublicKey[newPublicKey] = tokenID

	s.Events.Emit("nft_transfer", map[string]any{
		"token_id":  tokenID,
		"old_owner": oldOwner,
		"new_owner": receiverID,
	})
	return nil
}

// NFTApprove implements spec.md §4.4 nft_approve: the owner grants an
// account_id the right to act on their behalf, identified by a
// monotonically-increasing approval_id.
func (s *Store) NFTApprove(caller AccountID, tokenID TokenID, accountID AccountID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return 0, err
	}
	if caller != info.OwnerID {
		return 0, ErrUnauthorized
	}
	approvalID := info.NextApprovalID
	info.NextApprovalID++
	info.ApprovedAccountIDs[accountID] = approvalID
	return approvalID, nil
}

// NFTRevoke implements spec.md §4.4 nft_revoke: the owner withdraws a
// single account's approval.
func (s *Store) NFTRevoke(caller AccountID, tokenID TokenID, accountID AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return err
	}
	if caller != info.OwnerID {
		return ErrUnauthorized
	}
	delete(info.ApprovedAccountIDs, accountID)
	return nil
}

// NFTRevokeAll implements spec.md §4.4 nft_revoke_all.
func (s *Store) NFTRevokeAll(caller AccountID, tokenID TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return err
	}
	if caller != info.OwnerID {
		return ErrUnauthorized
	}
	info.ApprovedAccountIDs = make(map[AccountID]uint64)
	return nil
}

// Payout is the royalty distribution returned by nft_transfer_payout
// (spec.md §4.4): account id to the amount they're owed out of balance.
type Payout struct {
	Payees map[AccountID]Balance
}

// NFTTransferPayout implements spec.md §4.4 nft_transfer_payout: performs
// the same transfer as NFTTransfer, then computes the royalty split of
// balance across the drop's NFTConfig.Royalties plus the current owner,
// capped at MaxLenPayout payees.
func (s *Store) NFTTransferPayout(caller AccountID, tokenID TokenID, newPublicKey PublicKey, receiverID AccountID, approvalID *uint64, balance Balance, maxLenPayout uint32) (*Payout, error) {
	s.mu.RLock()
	drop, info, err := s.lookupKeyLocked(tokenID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	payout, err := computePayout(drop, info.OwnerID, balance, s.MaxLenPayout, maxLenPayout)
	if err != nil {
		return nil, err
	}

	if err := s.NFTTransfer(caller, tokenID, newPublicKey, receiverID, approvalID); err != nil {
		return nil, err
	}
	return payout, nil
}

func computePayout(drop *Drop, currentOwner AccountID, balance Balance, storeMax, requestedMax uint32) (*Payout, error) {
	royalties := map[AccountID]uint16{}
	if drop != nil && drop.NFTConfig != nil {
		royalties = drop.NFTConfig.Royalties
	}
	limit := storeMax
	if requestedMax > 0 && requestedMax < limit {
		limit = requestedMax
	}
	if uint32(len(royalties))+1 > limit {
		return nil, ErrTooManyPayees
	}

	payees := make(map[AccountID]Balance, len(royalties)+1)
	distributed := ZeroBalance()
	for account, bps := range royalties {
		share := balance.MulDivFloor(uint64(bps), 10000)
		payees[account] = share
		distributed = distributed.Add(share)
	}
	remainder, err := balance.SubChecked(distributed)
	if err != nil {
		// Royalty rounding should never exceed the balance; surfacing this
		// as an invariant violation rather than silently clamping.
		return nil, fmt.Errorf("%w: royalty split exceeds balance", ErrInvalidInput)
	}
	payees[currentOwner] = payees[currentOwner].Add(remainder)
	return &Payout{Payees: payees}, nil
}

// NFTPayout is the dry-run counterpart (spec.md §4.4 nft_payout): computes
// the split without transferring anything.
func (s *Store) NFTPayout(tokenID TokenID, balance Balance, maxLenPayout uint32) (*Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	drop, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return nil, err
	}
	return computePayout(drop, info.OwnerID, balance, s.MaxLenPayout, maxLenPayout)
}

func (s *Store) lookupKeyLocked(tokenID TokenID) (*Drop, *InternalKeyInfo, error) {
	dropID, err := tokenID.DropID()
	if err != nil {
		return nil, nil, err
	}
	drop, ok := s.DropByID[dropID]
	if !ok {
		return nil, nil, ErrDropMissing
	}
	info, ok := drop.KeyInfoByTokenID[tokenID]
	if !ok {
		return nil, nil, ErrTokenMissing
	}
	return drop, info, nil
}

// authorizeTransfer implements spec.md §4.4's sender check: the owner may
// always transfer; an approved account may transfer only if its recorded
// approval_id matches (when the caller supplied one); an unowned key (the
// "global key" case, contract-owned) authorizes on mere presentation and
// skips the owner check entirely, since reaching this call at all required
// the matching access credential.
func authorizeTransfer(info *InternalKeyInfo, caller AccountID, approvalID *uint64, unowned bool) error {
	if unowned {
		return nil
	}
	if caller == info.OwnerID {
		return nil
	}
	recorded, ok := info.ApprovedAccountIDs[caller]
	if !ok {
		return ErrUnauthorized
	}
	if approvalID != nil && *approvalID != recorded {
		return ErrApprovalMismatch
	}
	return nil
}
