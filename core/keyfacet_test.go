package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newKeyForTransferTests(t *testing.T) (*Store, *Drop, TokenID) {
	t.Helper()
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	owners := map[PublicKey]AccountID{testKey(1): "owner.test"}
	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-nft",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
		KeyOwners:        owners,
	})
	require.NoError(t, err)
	return s, drop, firstTokenID(t, drop)
}

func TestNFTTransferByOwner(t *testing.T) {
	s, _, tokenID := newKeyForTransferTests(t)

	require.NoError(t, s.NFTTransfer("owner.test", tokenID, testKey(51), "newowner.test", nil))

	info, err := s.GetKeyInformation(tokenID)
	require.NoError(t, err)
	require.Equal(t, AccountID("newowner.test"), info.OwnerID)
	require.Equal(t, testKey(51), info.PublicKey)
}

func TestNFTTransferRequiresNewPublicKey(t *testing.T) {
	s, _, tokenID := newKeyForTransferTests(t)
	err := s.NFTTransfer("owner.test", tokenID, PublicKey{}, "newowner.test", nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestNFTTransferRejectsPublicKeyAlreadyInUse(t *testing.T) {
	s, drop, tokenID := newKeyForTransferTests(t)
	_, err := s.AddKeys("funder.test", drop.ID, []PublicKey{testKey(2)}, nil, ZeroBalance())
	require.NoError(t, err)

	err = s.NFTTransfer("owner.test", tokenID, testKey(2), "newowner.test", nil)
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestNFTTransferByStrangerIsUnauthorized(t *testing.T) {
	s, _, tokenID := newKeyForTransferTests(t)
	err := s.NFTTransfer("stranger.test", tokenID, testKey(51), "newowner.test", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestNFTTransferByApprovedAccountRequiresMatchingApprovalID(t *testing.T) {
	s, _, tokenID := newKeyForTransferTests(t)

	approvalID, err := s.NFTApprove("owner.test", tokenID, "approved.test")
	require.NoError(t, err)

	wrong := approvalID + 1
	err = s.NFTTransfer("approved.test", tokenID, testKey(51), "newowner.test", &wrong)
	require.ErrorIs(t, err, ErrApprovalMismatch)

	require.NoError(t, s.NFTTransfer("approved.test", tokenID, testKey(51), "newowner.test", &approvalID))
}

func TestNFTApproveRevokeRevokeAll(t *testing.T) {
	s, _, tokenID := newKeyForTransferTests(t)

	id1, err := s.NFTApprove("owner.test", tokenID, "a.test")
	require.NoError(t, err)
	_, err = s.NFTApprove("owner.test", tokenID, "b.test")
	require.NoError(t, err)

	require.NoError(t, s.NFTRevoke("owner.test", tokenID, "a.test"))
	err = s.NFTTransfer("a.test", tokenID, testKey(51), "x.test", &id1)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, s.NFTRevokeAll("owner.test", tokenID))
	err = s.NFTTransfer("b.test", tokenID, testKey(52), "x.test", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestComputePayoutSplitsRoyaltiesAndRemainder(t *testing.T) {
	drop := &Drop{
		NFTConfig: &NFTConfig{
			Royalties: map[AccountID]uint16{
				"artist.test": 1000, // 10%
				"dao.test":    500,  // 5%
			},
		},
	}
	balance := BalanceFromUint64(10_000)

	payout, err := computePayout(drop, "owner.test", balance, 10, 0)
	require.NoError(t, err)

	sum := ZeroBalance()
	for _, amount := range payout.Payees {
		sum = sum.Add(amount)
	}
	require.Equal(t, balance.String(), sum.String())
	require.Equal(t, "1000", payout.Payees["artist.test"].String())
	require.Equal(t, "500", payout.Payees["dao.test"].String())
	require.Equal(t, "8500", payout.Payees["owner.test"].String())
}

func TestComputePayoutTooManyPayees(t *testing.T) {
	drop := &Drop{
		NFTConfig: &NFTConfig{
			Royalties: map[AccountID]uint16{
				"a.test": 1000,
				"b.test": 1000,
				"c.test": 1000,
			},
		},
	}
	_, err := computePayout(drop, "owner.test", BalanceFromUint64(1000), 3, 0)
	require.ErrorIs(t, err, ErrTooManyPayees)
}
