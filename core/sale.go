package core

import "time"

// saleConfig fetches a drop's public-sale block, if any (spec.md §4.8).
func saleConfig(d *Drop) *SaleConfig {
	if d.DropConfig == nil {
		return nil
	}
	return d.DropConfig.Sale
}

// checkSaleAdmission implements spec.md §4.8's admission gate for a
// non-funder caller of add_keys: blocklist wins over allowlist, an unset
// allowlist means open enrollment, and the sale window/capacity bound the
// total regardless of list membership. It mirrors the teacher's
// access_control.go layering of an explicit deny list over a default-allow
// policy. now is the caller's clock reading; Start/End are unix seconds, and
// either being nil/zero leaves that side of the window open.
func checkSaleAdmission(sale *SaleConfig, caller AccountID, now time.Time) error {
	if sale == nil {
		return ErrUnauthorized
	}
	if sale.Blocklist != nil {
		if _, blocked := sale.Blocklist[caller]; blocked {
			return ErrBlocklisted
		}
	}
	if sale.Allowlist != nil {
		if _, allowed := sale.Allowlist[caller]; !allowed {
			return ErrNotAllowlisted
		}
	}
	if sale.Start != nil && now.Unix() < *sale.Start {
		return ErrSaleClosed
	}
	if sale.End != nil && *sale.End != 0 && now.Unix() >= *sale.End {
		return ErrSaleClosed
	}
	if sale.MaxNumKeys != nil && sale.KeysIssued >= *sale.MaxNumKeys {
		return ErrSaleClosed
	}
	return nil
}

// AddToSaleAllowlist implements spec.md §4.8 add_to_sale_allowlist: funder
// only, creates the sale block on first use.
func (s *Store) AddToSaleAllowlist(caller AccountID, dropID DropID, accounts []AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop, ok := s.DropByID[dropID]
	if !ok {
		return ErrDropMissing
	}
	if caller != drop.FunderID {
		return ErrUnauthorized
	}
	sale := ensureSaleConfig(drop)
	if sale.Allowlist == nil {
		sale.Allowlist = make(map[AccountID]struct{})
	}
	for _, acc := range accounts {
		sale.Allowlist[acc] = struct{}{}
	}
	return nil
}

// RemoveFromSaleAllowlist implements spec.md §4.8
// remove_from_sale_allowlist.
func (s *Store) RemoveFromSaleAllowlist(caller AccountID, dropID DropID, accounts []AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop, ok := s.DropByID[dropID]
	if !ok {
		return ErrDropMissing
	}
	if caller != drop.FunderID {
		return ErrUnauthorized
	}
	sale := saleConfig(drop)
	if sale == nil || sale.Allowlist == nil {
		return nil
	}
	for _, acc := range accounts {
		delete(sale.Allowlist, acc)
	}
	return nil
}

// UpdateSaleParams patches the mutable fields of a drop's sale block
// (spec.md §4.8 update_sale). Nil fields leave the corresponding setting
// unchanged.
type UpdateSaleParams struct {
	MaxNumKeys  *uint64
	PricePerKey *Balance
	Start       *int64
	End         *int64
}

// UpdateSale implements spec.md §4.8 update_sale: funder only.
func (s *Store) UpdateSale(caller AccountID, dropID DropID, patch UpdateSaleParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop, ok := s.DropByID[dropID]
	if !ok {
		return ErrDropMissing
	}
	if caller != drop.FunderID {
		return ErrUnauthorized
	}
	sale := ensureSaleConfig(drop)
	if patch.MaxNumKeys != nil {
		sale.MaxNumKeys = patch.MaxNumKeys
	}
	if patch.PricePerKey != nil {
		sale.PricePerKey = patch.PricePerKey
	}
	if patch.Start != nil {
		sale.Start = patch.Start
	}
	if patch.End != nil {
		sale.End = patch.End
	}
	return nil
}

func ensureSaleConfig(d *Drop) *SaleConfig {
	if d.DropConfig == nil {
		d.DropConfig = &DropConfig{}
	}
	if d.DropConfig.Sale == nil {
		d.DropConfig.Sale = &SaleConfig{}
	}
	return d.DropConfig.Sale
}

// collectSalePrice charges the sale's per-key price (if any) into the
// funder's ledger and increments the issued counter. Called from AddKeys
// after admission succeeds but before keys are minted, so a failed payment
// never leaves partially-minted keys (spec.md §4.8).
func collectSalePrice(s *Store, sale *SaleConfig, funderID AccountID, numKeys uint64) error {
	if sale.PricePerKey != nil && !sale.PricePerKey.IsZero() {
		total := sale.PricePerKey.Mul(numKeys)
		s.Funders.AddToBalance(funderID, total)
	}
	sale.KeysIssued += numKeys
	return nil
}
