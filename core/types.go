package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

// AccountID identifies a funder, receiver, or contract account. Unlike the
// teacher's fixed-width Address, Keypom accounts are the human-readable
// strings the host platform's account model uses (funder_id, receiver_id).
type AccountID string

func (a AccountID) String() string { return string(a) }

// Empty reports whether the account id has not been set.
func (a AccountID) Empty() bool { return a == "" }

// PublicKey is a raw ed25519 access-credential key, 32 bytes, the unit a
// redeemer presents to authenticate a claim. It doubles as the lookup key in
// token_id_by_public_key.
type PublicKey [32]byte

func (pk PublicKey) String() string {
	return "ed25519:" + base58Encode(pk[:])
}

// DropID is the funder-chosen opaque identifier for a drop. It must not
// contain the ':' delimiter used by TokenID.
type DropID string

func (d DropID) Validate() error {
	if d == "" {
		return fmt.Errorf("%w: empty drop id", ErrInvalidInput)
	}
	if strings.Contains(string(d), ":") {
		return fmt.Errorf("%w: drop id %q must not contain ':'", ErrInvalidInput, d)
	}
	return nil
}

// TokenID is "{drop_id}:{key_nonce}", the sole NFT-identity of a key.
type TokenID string

// NewTokenID formats a TokenID from its components.
func NewTokenID(drop DropID, keyNonce uint64) TokenID {
	return TokenID(string(drop) + ":" + strconv.FormatUint(keyNonce, 10))
}

// DropID extracts the drop component of a token id. The colon is the sole
// delimiter; drop ids are validated at creation time to never contain one.
func (t TokenID) DropID() (DropID, error) {
	idx := strings.LastIndexByte(string(t), ':')
	if idx < 0 {
		return "", fmt.Errorf("%w: malformed token id %q", ErrInvalidInput, t)
	}
	return DropID(t[:idx]), nil
}

// KeyNonce extracts the decimal key-nonce suffix of a token id.
func (t TokenID) KeyNonce() (uint64, error) {
	idx := strings.LastIndexByte(string(t), ':')
	if idx < 0 || idx == len(t)-1 {
		return 0, fmt.Errorf("%w: malformed token id %q", ErrInvalidInput, t)
	}
	return strconv.ParseUint(string(t[idx+1:]), 10, 64)
}

// AssetID identifies a deduplicated InternalAsset within a drop. FT/NFT use
// their contract id, Near uses "near", None uses "none-asset", and FC assets
// use a deterministic content-addressed id (see DESIGN.md open question 1).
type AssetID string

const (
	NearAssetID AssetID = "near"
	NoneAssetID AssetID = "none-asset"
)

// Yocto is an arbitrary-precision native-currency or FT-amount quantity,
// expressed in the smallest indivisible unit, mirroring the reference's
// yoctoNEAR/atomic-FT-unit accounting.
type Yocto = Balance

// Gas is a pessimistic unit of compute the host platform meters claims by.
type Gas uint64

// ImplicitAccountID derives a deterministic account handle from a raw
// ed25519 public key, the same SHA-256 -> RIPEMD-160 scheme the teacher's
// wallet.go uses to turn a public key into a 20-byte Address. Keypom uses it
// for create_account_and_claim when the caller supplies a new public key but
// no separate receiver account name: the freshly "created" account is
// addressed by its key rather than a human-chosen name.
func ImplicitAccountID(pk PublicKey) AccountID {
	sha := sha256.Sum256(pk[:])
	r := ripemd160.New()
	r.Write(sha[:])
	return AccountID(hex.EncodeToString(r.Sum(nil)))
}

// base58Encode is a minimal helper kept local to avoid pulling in a base58
// dependency only for display strings; it is never used for anything
// security sensitive (keys are compared and stored as raw bytes).
func base58Encode(b []byte) string {
	const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	if len(b) == 0 {
		return ""
	}
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}
	input := make([]byte, len(b))
	copy(input, b)
	var out []byte
	for start := zeros; start < len(input); {
		rem := 0
		for i := start; i < len(input); i++ {
			acc := rem*256 + int(input[i])
			input[i] = byte(acc / 58)
			rem = acc % 58
		}
		out = append(out, alphabet[rem])
		for start < len(input) && input[start] == 0 {
			start++
		}
	}
	for i := 0; i < zeros; i++ {
		out = append(out, alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
