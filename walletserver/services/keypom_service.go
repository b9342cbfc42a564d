// Package services wraps the in-process drop Store behind one method per
// core operation for the HTTP controllers. Its methods take and return core
// types; translating JSON wire shapes into those types is done by the
// controllers.
package services

import (
	core "keypom/core"
)

// KeypomService is the façade the HTTP controllers call into. It owns the
// single in-memory Store for the running process.
type KeypomService struct {
	store *core.Store
}

// NewService constructs a KeypomService backed by a fresh Store for the
// given contract account.
func NewService(contractAccount string) *KeypomService {
	store := core.NewStore(core.AccountID(contractAccount), nil, core.Dependencies{})
	return &KeypomService{store: store}
}

func (s *KeypomService) CreateDrop(in core.CreateDropInput) (*core.Drop, core.Balance, error) {
	return s.store.CreateDrop(in)
}

func (s *KeypomService) AddKeys(caller core.AccountID, dropID core.DropID, keys []core.PublicKey, owners map[core.PublicKey]core.AccountID, deposit core.Balance) (core.Balance, error) {
	return s.store.AddKeys(caller, dropID, keys, owners, deposit)
}

func (s *KeypomService) DeleteKeys(caller core.AccountID, dropID core.DropID, tokenIDs []core.TokenID, limit *uint32, keepEmptyDrop bool) (int, error) {
	return s.store.DeleteKeys(caller, dropID, tokenIDs, limit, keepEmptyDrop)
}

func (s *KeypomService) Claim(in core.ClaimInput) (*core.ClaimResult, error) {
	return s.store.Claim(in)
}

func (s *KeypomService) DropInformation(dropID core.DropID) (*core.DropView, error) {
	return s.store.GetDropInformation(dropID)
}

func (s *KeypomService) KeyInformation(tokenID core.TokenID) (*core.KeyInfoView, error) {
	return s.store.GetKeyInformation(tokenID)
}

func (s *KeypomService) KeysForDrop(dropID core.DropID, fromIndex, limit uint64) ([]core.TokenID, error) {
	return s.store.GetKeysForDrop(dropID, fromIndex, limit)
}

func (s *KeypomService) FunderBalance(funderID core.AccountID) core.Balance {
	return s.store.FunderBalanceView(funderID)
}

func (s *KeypomService) NFTTransfer(caller core.AccountID, tokenID core.TokenID, newPublicKey core.PublicKey, receiverID core.AccountID, approvalID *uint64) error {
	return s.store.NFTTransfer(caller, tokenID, newPublicKey, receiverID, approvalID)
}
