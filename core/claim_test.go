package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func firstTokenID(t *testing.T, drop *Drop) TokenID {
	t.Helper()
	for id := range drop.KeyInfoByTokenID {
		return id
	}
	t.Fatal("drop has no keys")
	return ""
}

func TestClaimOnNoneAssetDecrementsAndDeletesKey(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))

	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-claim",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
	})
	require.NoError(t, err)
	tokenID := firstTokenID(t, drop)

	res, err := s.Claim(ClaimInput{TokenID: tokenID, Receiver: "someone.test"})
	require.NoError(t, err)
	require.True(t, res.KeyDeleted)
	require.True(t, res.DropDeleted)
	require.True(t, res.RefundedFunder.IsZero())

	_, err = s.GetKeyInformation(tokenID)
	require.ErrorIs(t, err, ErrTokenMissing)
}

func TestClaimOnExhaustedKeyFails(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-exhaust",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
	})
	require.NoError(t, err)
	tokenID := firstTokenID(t, drop)

	_, err = s.Claim(ClaimInput{TokenID: tokenID, Receiver: "someone.test"})
	require.NoError(t, err)

	_, err = s.Claim(ClaimInput{TokenID: tokenID, Receiver: "someone.test"})
	require.ErrorIs(t, err, ErrTokenMissing)
}

func TestClaimRequiresCreateAccountPermissionWhenOnlyThatIsGranted(t *testing.T) {
	s := newTestStore()
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))
	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:     "drop-cac-only",
		FunderID:   "funder.test",
		MaxKeyUses: 1,
		AssetsForAllUses: []AssetInput{
			{Kind: AssetNone},
		},
		PublicKeys: []PublicKey{testKey(1)},
	})
	require.NoError(t, err)

	drop.AssetDataForUses[0].Config = &UseConfig{PermissionCreateAccount: true}
	tokenID := firstTokenID(t, drop)

	_, err = s.Claim(ClaimInput{TokenID: tokenID, Receiver: "someone.test"})
	require.ErrorIs(t, err, ErrUnauthorized)

	info, infoErr := s.GetKeyInformation(tokenID)
	require.NoError(t, infoErr)
	require.Equal(t, uint64(1), info.RemainingUses, "a rejected permission check must restore the Phase 1 decrement")
}

type fakeAccountCreator struct {
	succeed bool
	calls   []AccountID
}

func (f *fakeAccountCreator) CreateAccount(ctx context.Context, newAccountID AccountID, newPublicKey PublicKey, fundingAccount AccountID) (CallOutcome, error) {
	f.calls = append(f.calls, newAccountID)
	if f.succeed {
		return CallOutcome{Success: true}, nil
	}
	return CallOutcome{Success: false}, nil
}

func TestCreateAccountAndClaimDerivesImplicitReceiver(t *testing.T) {
	creator := &fakeAccountCreator{succeed: true}
	s := NewStore(AccountID("keypom.test"), nil, Dependencies{AccountCreator: creator})
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))

	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:           "drop-cac",
		FunderID:         "funder.test",
		MaxKeyUses:       1,
		AssetsForAllUses: []AssetInput{{Kind: AssetNone}},
		PublicKeys:       []PublicKey{testKey(1)},
	})
	require.NoError(t, err)
	drop.AssetDataForUses[0].Config = &UseConfig{PermissionCreateAccount: true}
	tokenID := firstTokenID(t, drop)

	newKey := testKey(42)
	res, err := s.Claim(ClaimInput{
		TokenID:       tokenID,
		CreateAccount: true,
		NewPublicKey:  newKey,
	})
	require.NoError(t, err)
	require.True(t, res.KeyDeleted)
	require.Len(t, creator.calls, 1)
	require.Equal(t, ImplicitAccountID(newKey), creator.calls[0])
}

func TestCreateAccountAndClaimRefundsOnAccountCreationFailure(t *testing.T) {
	creator := &fakeAccountCreator{succeed: false}
	s := NewStore(AccountID("keypom.test"), nil, Dependencies{AccountCreator: creator})
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))

	ftBalance := BalanceFromUint64(500)
	tokensPerUse := BalanceFromUint64(500)
	registrationCost := BalanceFromUint64(1250)
	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:     "drop-cac-fail",
		FunderID:   "funder.test",
		MaxKeyUses: 1,
		AssetsForAllUses: []AssetInput{
			{Kind: AssetFT, FTContractID: "usdc.test", TokensPerUse: &tokensPerUse},
		},
		Pools: map[AssetKey]AssetPoolInput{
			ftAssetKey("usdc.test"): {FTBalance: ftBalance, FTRegistrationCost: registrationCost},
		},
		PublicKeys: []PublicKey{testKey(1)},
	})
	require.NoError(t, err)
	drop.AssetDataForUses[0].Config = &UseConfig{PermissionCreateAccount: true}
	tokenID := firstTokenID(t, drop)

	balanceBefore := s.Funders.GetBalance("funder.test")
	res, err := s.Claim(ClaimInput{
		TokenID:       tokenID,
		CreateAccount: true,
		NewPublicKey:  testKey(7),
	})
	require.NoError(t, err)
	require.False(t, res.RefundedFunder.IsZero())

	balanceAfter := s.Funders.GetBalance("funder.test")
	require.True(t, balanceBefore.LessThan(balanceAfter), "a failed account creation must refund the whole use")
}

type failingNativeTransfer struct{}

func (failingNativeTransfer) Transfer(ctx context.Context, receiverID AccountID, amount Balance) (CallOutcome, error) {
	return CallOutcome{}, errors.New("transfer rejected")
}

func TestClaimRefundsOnFailedAssetDispatch(t *testing.T) {
	s := NewStore(AccountID("keypom.test"), nil, Dependencies{Near: failingNativeTransfer{}})
	s.Funders.AddToBalance("funder.test", BalanceFromUint64(1_000_000_000_000_000_000))

	amount := BalanceFromUint64(1000)
	drop, _, err := s.CreateDrop(CreateDropInput{
		DropID:     "drop-near-fail",
		FunderID:   "funder.test",
		MaxKeyUses: 1,
		AssetsForAllUses: []AssetInput{
			{Kind: AssetNear, TokensPerUse: &amount},
		},
		PublicKeys: []PublicKey{testKey(1)},
	})
	require.NoError(t, err)
	tokenID := firstTokenID(t, drop)

	balanceBefore := s.Funders.GetBalance("funder.test")
	res, err := s.Claim(ClaimInput{TokenID: tokenID, Receiver: "someone.test"})
	require.NoError(t, err)
	require.False(t, res.RefundedFunder.IsZero())
	require.False(t, res.AssetOutcomes[NearAssetID])

	balanceAfter := s.Funders.GetBalance("funder.test")
	require.True(t, balanceBefore.LessThan(balanceAfter))
}
