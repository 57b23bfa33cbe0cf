package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte Solana account address.
type Pubkey [32]byte

// ParsePubkey decodes a base58-encoded address.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode pubkey %q: %w", s, err)
	}
	if len(raw) != 32 {
		return pk, fmt.Errorf("pubkey %q: expected 32 bytes, got %d", s, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPubkey parses a base58 address and panics on failure.
// For package-level program ID constants only.
func MustPubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the base58 encoding of the address.
func (pk Pubkey) String() string {
	return base58.Encode(pk[:])
}

// IsZero reports whether the address is all zero bytes.
func (pk Pubkey) IsZero() bool {
	return pk == Pubkey{}
}

// IsOnCurve reports whether the address is a valid ed25519 point.
// Wallet addresses are on-curve; program-derived addresses are not.
func (pk Pubkey) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}

// Short returns the first 8 characters of the base58 address, for logs.
func (pk Pubkey) Short() string {
	s := pk.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
