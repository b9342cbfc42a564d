package core

import "errors"

// Sentinel errors, checked with errors.Is at call sites. The teacher's
// tokens.go exports a single ErrInvalidAsset the same way; Keypom's error
// surface in spec.md §7 is wider, so the set below names one sentinel per
// disposition category in that table.
var (
	// Authorization.
	ErrUnauthorized = errors.New("keypom: unauthorized")

	// State precondition.
	ErrDropExists       = errors.New("keypom: drop already exists")
	ErrDropMissing      = errors.New("keypom: drop not found")
	ErrDuplicateKey     = errors.New("keypom: duplicate public key")
	ErrKeyMissing       = errors.New("keypom: key not found")
	ErrTokenMissing     = errors.New("keypom: token not found")
	ErrInvalidInput     = errors.New("keypom: invalid input")
	ErrAssetMissing     = errors.New("keypom: asset not found")
	ErrNoUsesRemaining  = errors.New("keypom: no uses remaining")
	ErrApprovalMismatch = errors.New("keypom: approval id mismatch")

	// Budget.
	ErrInsufficientBalance = errors.New("keypom: insufficient balance")
	ErrInsufficientDeposit = errors.New("keypom: insufficient attached deposit")

	// Invariant drift.
	ErrGasCeilingExceeded = errors.New("keypom: use exceeds per-call gas ceiling")
	ErrRoyaltiesExceedCap = errors.New("keypom: royalty basis points exceed 10000")
	ErrTooManyPayees      = errors.New("keypom: payout exceeds max payee count")

	// Sale / allowlist.
	ErrSaleClosed     = errors.New("keypom: sale is closed")
	ErrNotAllowlisted = errors.New("keypom: account not on sale allowlist")
	ErrBlocklisted    = errors.New("keypom: account is blocklisted from sale")

	// FC templating.
	ErrKeypomArgsPresent = errors.New("keypom: blob already contains keypom_args")

	// External collaborator failure. A downstream call can fail two ways: a
	// transport/Go error, or a CallOutcome with Success==false and a nil
	// error (the convention external.go documents). Asset dispatchers
	// normalize the latter into this sentinel so Phase 2c reconciliation can
	// key off one error channel regardless of which way the call failed.
	ErrCallRejected = errors.New("keypom: downstream call rejected")
)
