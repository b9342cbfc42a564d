package core

import "context"

// This file names the external collaborators spec.md §1 declares out of
// scope: "treat as external collaborators with the interfaces in §6." Each
// is a thin Go interface; production embedders implement them against the
// real host platform (the smart-contract runtime, the account-creation
// service, FT/NFT counterparties). Tests use scripted fakes.

// CallOutcome is the result of one dispatched external call, as observed by
// the claim machine's Phase 2c reconciliation.
type CallOutcome struct {
	Success bool
	// Err carries the failure detail for logging only; reconciliation logic
	// never branches on its content, only on Success (spec.md §4.2 Phase 2c).
	Err error
}

// AccessKeyRegistrar models the host platform's restricted-access-key
// surface: registering a public key as a credential scoped to claim /
// create_account_and_claim with a bounded allowance, and later removing it.
// This is the host operation behind spec.md §4.1 key addition step 4 and
// §4.4 transfer's credential swap.
type AccessKeyRegistrar interface {
	AddAccessKey(ctx context.Context, pk PublicKey, allowance Balance, methods []string) error
	DeleteAccessKey(ctx context.Context, pk PublicKey) error
}

// AccountCreator models the separate native-account-creation service used
// by create_account_and_claim (spec.md §4.2 Phase 2a).
type AccountCreator interface {
	CreateAccount(ctx context.Context, newAccountID AccountID, newPublicKey PublicKey, fundingAccount AccountID) (CallOutcome, error)
}

// FTClient models a fungible-token counterparty contract: storage_deposit
// chained with ft_transfer (spec.md §4.3 FT, §6 downstream call shapes).
type FTClient interface {
	StorageDeposit(ctx context.Context, contractID, accountID AccountID, deposit Balance) (CallOutcome, error)
	FTTransfer(ctx context.Context, contractID, receiverID AccountID, amount Balance, memo string) (CallOutcome, error)
}

// NFTClient models an NFT counterparty contract's nft_transfer.
type NFTClient interface {
	NFTTransfer(ctx context.Context, contractID, receiverID AccountID, tokenID string, memo string) (CallOutcome, error)
}

// FunctionCallClient models an arbitrary downstream contract call used by FC
// assets (spec.md §4.3 FC).
type FunctionCallClient interface {
	Call(ctx context.Context, receiverID AccountID, methodName string, args []byte, attachedDeposit Balance, gas Gas) (CallOutcome, error)
}

// EventSink receives the Keypom-namespaced and NFT-standard event logs
// named in spec.md §6. The default implementation logs one structured line
// per event via the package logger, in whatever format that logger uses; embedders may forward these to a host
// platform's native log facility instead.
type EventSink interface {
	Emit(event string, payload any)
}
