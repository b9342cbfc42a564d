package core

// DropView is the read-only projection of a Drop returned by
// GetDropInformation (spec.md §4.9).
type DropView struct {
	ID         DropID
	FunderID   AccountID
	MaxKeyUses uint64
	NumKeys    int
}

// GetDropInformation implements spec.md §4.9 get_drop_information.
func (s *Store) GetDropInformation(dropID DropID) (*DropView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	drop, ok := s.DropByID[dropID]
	if !ok {
		return nil, ErrDropMissing
	}
	return &DropView{
		ID:         drop.ID,
		FunderID:   drop.FunderID,
		MaxKeyUses: drop.MaxKeyUses,
		NumKeys:    len(drop.KeyInfoByTokenID),
	}, nil
}

// KeyInfoView is the read-only projection of an InternalKeyInfo returned by
// GetKeyInformation (spec.md §4.9).
type KeyInfoView struct {
	TokenID       TokenID
	PublicKey     PublicKey
	OwnerID       AccountID
	RemainingUses uint64
}

// GetKeyInformation implements spec.md §4.9 get_key_information.
func (s *Store) GetKeyInformation(tokenID TokenID) (*KeyInfoView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return nil, err
	}
	return &KeyInfoView{
		TokenID:       tokenID,
		PublicKey:     info.PublicKey,
		OwnerID:       info.OwnerID,
		RemainingUses: info.RemainingUses,
	}, nil
}

// GetKeyInformationBatch implements spec.md §4.9
// get_key_information_batch, skipping any token id that no longer exists
// rather than failing the whole batch.
func (s *Store) GetKeyInformationBatch(tokenIDs []TokenID) []KeyInfoView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]KeyInfoView, 0, len(tokenIDs))
	for _, t := range tokenIDs {
		_, info, err := s.lookupKeyLocked(t)
		if err != nil {
			continue
		}
		out = append(out, KeyInfoView{
			TokenID:       t,
			PublicKey:     info.PublicKey,
			OwnerID:       info.OwnerID,
			RemainingUses: info.RemainingUses,
		})
	}
	return out
}

// GetKeysForDrop implements spec.md §4.9 get_keys_for_drop, returning token
// ids sorted ascending within a [from_index, from_index+limit) window the
// same way the teacher's paginated view methods (e.g. tokens_for_owner)
// slice a sorted key set.
func (s *Store) GetKeysForDrop(dropID DropID, fromIndex, limit uint64) ([]TokenID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	drop, ok := s.DropByID[dropID]
	if !ok {
		return nil, ErrDropMissing
	}
	all := make([]TokenID, 0, len(drop.KeyInfoByTokenID))
	for t := range drop.KeyInfoByTokenID {
		all = append(all, t)
	}
	sortTokenIDs(all)
	return paginateTokenIDs(all, fromIndex, limit), nil
}

// NFTTotalSupply implements spec.md §4.9 nft_total_supply: the number of
// live keys across the whole store.
func (s *Store) NFTTotalSupply() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.TokenIDByPublicKey))
}

// NFTTokens implements spec.md §4.9 nft_tokens: a paginated window over
// every live key, ordered by token id.
func (s *Store) NFTTokens(fromIndex, limit uint64) []KeyInfoView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]TokenID, 0, len(s.TokenIDByPublicKey))
	for _, t := range s.TokenIDByPublicKey {
		all = append(all, t)
	}
	sortTokenIDs(all)
	window := paginateTokenIDs(all, fromIndex, limit)
	out := make([]KeyInfoView, 0, len(window))
	for _, t := range window {
		if _, info, err := s.lookupKeyLocked(t); err == nil {
			out = append(out, KeyInfoView{TokenID: t, PublicKey: info.PublicKey, OwnerID: info.OwnerID, RemainingUses: info.RemainingUses})
		}
	}
	return out
}

// NFTTokensForOwner implements spec.md §4.9 nft_tokens_for_owner.
func (s *Store) NFTTokensForOwner(owner AccountID, fromIndex, limit uint64) []KeyInfoView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.TokensPerOwner[owner]
	if !ok {
		return nil
	}
	all := make([]TokenID, 0, len(set))
	for t := range set {
		all = append(all, t)
	}
	sortTokenIDs(all)
	window := paginateTokenIDs(all, fromIndex, limit)
	out := make([]KeyInfoView, 0, len(window))
	for _, t := range window {
		if _, info, err := s.lookupKeyLocked(t); err == nil {
			out = append(out, KeyInfoView{TokenID: t, PublicKey: info.PublicKey, OwnerID: info.OwnerID, RemainingUses: info.RemainingUses})
		}
	}
	return out
}

// NFTToken implements spec.md §4.9 nft_token, returning nil (not an error)
// for a missing token, matching the NEP-171 view convention of a nullable
// result rather than a panic/error.
func (s *Store) NFTToken(tokenID TokenID) *KeyInfoView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, info, err := s.lookupKeyLocked(tokenID)
	if err != nil {
		return nil
	}
	return &KeyInfoView{TokenID: tokenID, PublicKey: info.PublicKey, OwnerID: info.OwnerID, RemainingUses: info.RemainingUses}
}

// FunderBalanceView implements spec.md §4.9 get_funder_balance.
func (s *Store) FunderBalanceView(funderID AccountID) Balance {
	return s.Funders.GetBalance(funderID)
}

func sortTokenIDs(ids []TokenID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

func paginateTokenIDs(all []TokenID, fromIndex, limit uint64) []TokenID {
	if fromIndex >= uint64(len(all)) {
		return nil
	}
	end := fromIndex + limit
	if limit == 0 || end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[fromIndex:end]
}
