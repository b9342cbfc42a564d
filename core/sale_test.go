package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSaleDrop(t *testing.T) (*Store, DropID) {
	t.Helper()
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	_, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-sale-admission",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
	})
	require.NoError(t, err)
	return s, "drop-sale-admission"
}

func TestCheckSaleAdmissionNilSaleBlocksEveryone(t *testing.T) {
	require.ErrorIs(t, checkSaleAdmission(nil, "anyone.test", time.Now()), ErrUnauthorized)
}

func TestCheckSaleAdmissionBlocklistWinsOverAllowlist(t *testing.T) {
	sale := &SaleConfig{
		Allowlist: map[AccountID]struct{}{"caller.test": {}},
		Blocklist: map[AccountID]struct{}{"caller.test": {}},
	}
	require.ErrorIs(t, checkSaleAdmission(sale, "caller.test", time.Now()), ErrBlocklisted)
}

func TestCheckSaleAdmissionNilAllowlistIsOpenEnrollment(t *testing.T) {
	sale := &SaleConfig{}
	require.NoError(t, checkSaleAdmission(sale, "anyone.test", time.Now()))
}

func TestCheckSaleAdmissionRejectsUnlisted(t *testing.T) {
	sale := &SaleConfig{Allowlist: map[AccountID]struct{}{"friend.test": {}}}
	require.ErrorIs(t, checkSaleAdmission(sale, "stranger.test", time.Now()), ErrNotAllowlisted)
	require.NoError(t, checkSaleAdmission(sale, "friend.test", time.Now()))
}

func TestCheckSaleAdmissionRespectsMaxNumKeys(t *testing.T) {
	max := uint64(2)
	sale := &SaleConfig{MaxNumKeys: &max, KeysIssued: 2}
	require.ErrorIs(t, checkSaleAdmission(sale, "anyone.test", time.Now()), ErrSaleClosed)
}

func TestCheckSaleAdmissionRespectsStartWindow(t *testing.T) {
	start := time.Now().Add(time.Hour).Unix()
	sale := &SaleConfig{Start: &start}
	require.ErrorIs(t, checkSaleAdmission(sale, "anyone.test", time.Now()), ErrSaleClosed)
	require.NoError(t, checkSaleAdmission(sale, "anyone.test", time.Now().Add(2*time.Hour)))
}

func TestCheckSaleAdmissionRespectsEndWindow(t *testing.T) {
	end := time.Now().Add(-time.Hour).Unix()
	sale := &SaleConfig{End: &end}
	require.ErrorIs(t, checkSaleAdmission(sale, "anyone.test", time.Now()), ErrSaleClosed)
	require.NoError(t, checkSaleAdmission(sale, "anyone.test", time.Now().Add(-2*time.Hour)))
}

func TestUpdateSaleAndAllowlistAreFunderOnly(t *testing.T) {
	s, dropID := newSaleDrop(t)

	err := s.UpdateSale("stranger.test", dropID, UpdateSaleParams{})
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, s.UpdateSale("funder.test", dropID, UpdateSaleParams{}))

	err = s.AddToSaleAllowlist("stranger.test", dropID, []AccountID{"x.test"})
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, s.AddToSaleAllowlist("funder.test", dropID, []AccountID{"x.test"}))
	require.NoError(t, s.RemoveFromSaleAllowlist("funder.test", dropID, []AccountID{"x.test"}))
}

func TestAddKeysRejectsBeforeSaleWindowOpens(t *testing.T) {
	s, dropID := newSaleDrop(t)
	start := time.Now().Add(time.Hour).Unix()
	require.NoError(t, s.UpdateSale("funder.test", dropID, UpdateSaleParams{Start: &start}))
	require.NoError(t, s.AddToSaleAllowlist("funder.test", dropID, []AccountID{"buyer.test"}))

	_, err := s.AddKeys("buyer.test", dropID, []PublicKey{testKey(6)}, nil, ZeroBalance())
	require.ErrorIs(t, err, ErrSaleClosed)
}

func TestAddKeysRejectsAfterSaleWindowCloses(t *testing.T) {
	s, dropID := newSaleDrop(t)
	end := time.Now().Add(-time.Hour).Unix()
	require.NoError(t, s.UpdateSale("funder.test", dropID, UpdateSaleParams{End: &end}))
	require.NoError(t, s.AddToSaleAllowlist("funder.test", dropID, []AccountID{"buyer.test"}))

	_, err := s.AddKeys("buyer.test", dropID, []PublicKey{testKey(7)}, nil, ZeroBalance())
	require.ErrorIs(t, err, ErrSaleClosed)
}

func TestCollectSalePriceCreditsFunderAndIncrementsIssued(t *testing.T) {
	s, dropID := newSaleDrop(t)

	price := BalanceFromUint64(500)
	require.NoError(t, s.UpdateSale("funder.test", dropID, UpdateSaleParams{PricePerKey: &price}))
	require.NoError(t, s.AddToSaleAllowlist("funder.test", dropID, []AccountID{"buyer.test"}))

	balanceBefore := s.Funders.GetBalance("funder.test")
	cost, allowance, err := PerKeyTotals(s.DropByID[dropID], s.Cost)
	require.NoError(t, err)

	_, err = s.AddKeys("buyer.test", dropID, []PublicKey{testKey(5)}, nil, ZeroBalance())
	require.NoError(t, err)

	drop := s.DropByID[dropID]
	require.Equal(t, uint64(1), drop.DropConfig.Sale.KeysIssued, "collectSalePrice must advance the issued counter regardless of the cost debit that follows it")
	require.Equal(t, balanceBefore.Add(price).Sub(cost.Add(allowance)).String(), s.Funders.GetBalance("funder.test").String(), "the funder is credited the sale price and debited the one key's cost")
}
