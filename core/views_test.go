package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginateTokenIDsWindows(t *testing.T) {
	all := []TokenID{"d:0", "d:1", "d:2", "d:3", "d:4"}

	require.Equal(t, []TokenID{"d:0", "d:1"}, paginateTokenIDs(all, 0, 2))
	require.Equal(t, []TokenID{"d:2", "d:3", "d:4"}, paginateTokenIDs(all, 2, 10))
	require.Equal(t, all, paginateTokenIDs(all, 0, 0), "limit 0 means no cap")
	require.Nil(t, paginateTokenIDs(all, 5, 10), "fromIndex at the end returns nothing")
	require.Nil(t, paginateTokenIDs(all, 50, 10), "fromIndex past the end returns nothing")
}

func TestSortTokenIDsOrdersLexicographically(t *testing.T) {
	ids := []TokenID{"d:10", "d:2", "d:1"}
	sortTokenIDs(ids)
	require.Equal(t, []TokenID{"d:1", "d:10", "d:2"}, ids, "sortTokenIDs is a lexicographic string sort, not numeric")
}

func populatedViewStore(t *testing.T) (*Store, DropID) {
	t.Helper()
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	_, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-views",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1), testKey(2), testKey(3)},
		KeyOwners:        map[PublicKey]AccountID{testKey(1): "owner.test"},
	})
	require.NoError(t, err)
	return s, "drop-views"
}

func TestGetDropInformationReportsKeyCount(t *testing.T) {
	s, dropID := populatedViewStore(t)
	view, err := s.GetDropInformation(dropID)
	require.NoError(t, err)
	require.Equal(t, 3, view.NumKeys)
	require.Equal(t, AccountID("funder.test"), view.FunderID)
}

func TestGetDropInformationMissingDrop(t *testing.T) {
	s := newTestStore()
	_, err := s.GetDropInformation("nope")
	require.ErrorIs(t, err, ErrDropMissing)
}

func TestGetKeysForDropPaginates(t *testing.T) {
	s, dropID := populatedViewStore(t)

	all, err := s.GetKeysForDrop(dropID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	page, err := s.GetKeysForDrop(dropID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, all[1], page[0])
}

func TestGetKeysForDropMissingDrop(t *testing.T) {
	s := newTestStore()
	_, err := s.GetKeysForDrop("nope", 0, 0)
	require.ErrorIs(t, err, ErrDropMissing)
}

func TestNFTTotalSupplyAndTokensForOwner(t *testing.T) {
	s, _ := populatedViewStore(t)
	require.Equal(t, uint64(3), s.NFTTotalSupply())

	owned := s.NFTTokensForOwner("owner.test", 0, 0)
	require.Len(t, owned, 1)

	none := s.NFTTokensForOwner("nobody.test", 0, 0)
	require.Nil(t, none)
}

func TestNFTTokenReturnsNilForMissing(t *testing.T) {
	s, _ := populatedViewStore(t)
	require.Nil(t, s.NFTToken("nope:0"))
}

func TestFunderBalanceViewDefaultsToZero(t *testing.T) {
	s := newTestStore()
	require.True(t, s.FunderBalanceView("unseen.test").IsZero())
}
