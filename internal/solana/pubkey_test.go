package solana

import "testing"

func TestParsePubkeyRoundTrip(t *testing.T) {
	addr := "So11111111111111111111111111111111111111112"
	pk, err := ParsePubkey(addr)
	if err != nil {
		t.Fatalf("ParsePubkey: %v", err)
	}
	if pk.String() != addr {
		t.Errorf("round trip mismatch: %s", pk.String())
	}
}

func TestParsePubkeyInvalid(t *testing.T) {
	if _, err := ParsePubkey("not-base58-0OIl"); err == nil {
		t.Error("expected error for invalid base58")
	}
	// Valid base58 but wrong length.
	if _, err := ParsePubkey("abc"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestIsOnCurve(t *testing.T) {
	// The ed25519 base point encoding: y = 4/5.
	var base Pubkey
	base[0] = 0x58
	for i := 1; i < 32; i++ {
		base[i] = 0x66
	}
	if !base.IsOnCurve() {
		t.Error("base point should be on curve")
	}

	// A real program-derived address; PDAs are off-curve by construction.
	pda := MustPubkey("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1")
	if pda.IsOnCurve() {
		t.Error("PDA should be off curve")
	}
}

func TestShort(t *testing.T) {
	pk := MustPubkey("So11111111111111111111111111111111111111112")
	if got := pk.Short(); got != "So111111" {
		t.Errorf("Short() = %q", got)
	}
}
