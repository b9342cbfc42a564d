package core

import (
	"sync"
	"time"
)

// Store is the contract-state root (spec.md §6 "Persisted state layout"):
// the primary drop_by_id map, the token_id_by_public_key and
// tokens_per_owner indices, and the funder ledger. It plays the role the
// teacher's *Ledger plays for a blockchain node — a single mutex-guarded
// aggregate every entry point operates against.
type Store struct {
	mu sync.RWMutex

	// ContractAccount is this service's own account id. A key whose
	// OwnerID equals it is "unowned" (spec.md §3 InternalKeyInfo).
	ContractAccount AccountID

	DropByID           map[DropID]*Drop
	TokenIDByPublicKey map[PublicKey]TokenID
	TokensPerOwner     map[AccountID]map[TokenID]struct{}

	Funders   *FunderLedger
	Registrar AccessKeyRegistrar
	Deps      Dependencies
	Events    EventSink
	Cost      CostConfig

	// MaxLenPayout caps the number of payees spec.md §4.4 Payout will
	// return before failing.
	MaxLenPayout uint32

	// PerDropFee/PerKeyFee mirror spec.md §6 Configuration's
	// fee_structure{per_drop, per_key}, debited from the funder on
	// create_drop alongside asset/allowance costs (PerKeyFee once per
	// initial key). add_keys charges neither fee.
	PerDropFee Balance
	PerKeyFee  Balance

	// Now is the clock checkSaleAdmission reads to enforce a sale's
	// Start/End window (spec.md §4.8). Overridable in tests; defaults to
	// time.Now in NewStore.
	Now func() time.Time
}

// NewStore constructs an empty Store with the in-memory reference funder
// ledger and the default cost configuration.
func NewStore(contractAccount AccountID, registrar AccessKeyRegistrar, deps Dependencies) *Store {
	return &Store{
		ContractAccount:    contractAccount,
		DropByID:           make(map[DropID]*Drop),
		TokenIDByPublicKey: make(map[PublicKey]TokenID),
		TokensPerOwner:     make(map[AccountID]map[TokenID]struct{}),
		Funders:            NewFunderLedger(),
		Registrar:          registrar,
		Deps:               deps,
		Events:             NewLogEventSink(),
		Cost:               DefaultCostConfig(),
		MaxLenPayout:       10,
		Now:                time.Now,
	}
}

func (s *Store) addTokenOwnerIndex(owner AccountID, token TokenID) {
	set, ok := s.TokensPerOwner[owner]
	if !ok {
		set = make(map[TokenID]struct{})
		s.TokensPerOwner[owner] = set
	}
	set[token] = struct{}{}
}

func (s *Store) removeTokenOwnerIndex(owner AccountID, token TokenID) {
	set, ok := s.TokensPerOwner[owner]
	if !ok {
		return
	}
	delete(set, token)
	if len(set) == 0 {
		delete(s.TokensPerOwner, owner)
	}
}

// isUnowned reports whether a key's recorded owner is the contract's own
// account, which waives the owner check in NFTTransfer (spec.md §3).
func (s *Store) isUnowned(owner AccountID) bool {
	return owner == "" || owner == s.ContractAccount
}
