package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(b byte) PublicKey {
	var pk PublicKey
	pk[0] = b
	return pk
}

func newTestStore() *Store {
	return NewStore(AccountID("keypom.test"), nil, Dependencies{})
}

func TestCreateDropMintsKeysAndChargesFunder(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))

	drop, surplus, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-1",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1), testKey(2)},
		AttachedDeposit:  ZeroBalance(),
	})
	require.NoError(t, err)
	require.Equal(t, DropID("drop-1"), drop.ID)
	require.Len(t, drop.KeyInfoByTokenID, 2)
	require.True(t, surplus.IsZero())

	view, err := s.GetDropInformation("drop-1")
	require.NoError(t, err)
	require.Equal(t, 2, view.NumKeys)
}

func TestCreateDropRejectsDuplicateID(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	in := CreateDropInput{
		DropID:           "dup",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
	}
	_, _, err := s.CreateDrop(in)
	require.NoError(t, err)

	in.PublicKeys = []PublicKey{testKey(2)}
	_, _, err = s.CreateDrop(in)
	require.ErrorIs(t, err, ErrDropExists)
}

func TestCreateDropRejectsRoyaltiesOverCap(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	_, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "over-cap",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
		NFTConfig: &NFTConfig{
			Royalties: map[AccountID]uint16{"a": 6000, "b": 5000},
		},
	})
	require.ErrorIs(t, err, ErrRoyaltiesExceedCap)
}

func TestAddKeysByFunderRequiresNoSale(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	_, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-add",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
	})
	require.NoError(t, err)

	_, err = s.AddKeys("funder.test", "drop-add", []PublicKey{testKey(2)}, nil, ZeroBalance())
	require.NoError(t, err)

	view, err := s.GetDropInformation("drop-add")
	require.NoError(t, err)
	require.Equal(t, 2, view.NumKeys)
}

func TestAddKeysByStrangerRequiresSaleAdmission(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	_, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-sale",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       nil,
	})
	require.NoError(t, err)

	_, err = s.AddKeys("stranger.test", "drop-sale", []PublicKey{testKey(9)}, nil, ZeroBalance())
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, s.UpdateSale("funder.test", "drop-sale", UpdateSaleParams{}))
	require.NoError(t, s.AddToSaleAllowlist("funder.test", "drop-sale", []AccountID{"stranger.test"}))

	_, err = s.AddKeys("stranger.test", "drop-sale", []PublicKey{testKey(9)}, nil, ZeroBalance())
	require.NoError(t, err)
}

func TestDeleteKeysRefundsProportionally(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-del",
		FunderID:         "funder.test",
		MaxKeyUses:       4,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
	})
	require.NoError(t, err)

	balanceBefore := s.Funders.GetBalance("funder.test")

	var tokenID TokenID
	for t := range drop.KeyInfoByTokenID {
		tokenID = t
	}
	n, err := s.DeleteKeys("funder.test", "drop-del", []TokenID{tokenID}, nil, false)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	balanceAfter := s.Funders.GetBalance("funder.test")
	require.True(t, balanceBefore.LessThan(balanceAfter), "deleting a fully-unused key should refund the whole per-key charge")

	_, err = s.GetDropInformation("drop-del")
	require.ErrorIs(t, err, ErrDropMissing, "the drop's last key was deleted, so the drop should be torn down too")
}

func TestDeleteKeysByNonFunderIsUnauthorized(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	_, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-auth",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
	})
	require.NoError(t, err)

	_, err = s.DeleteKeys("stranger.test", "drop-auth", nil, nil, false)
	require.ErrorIs(t, err, ErrUnauthorized)
}
