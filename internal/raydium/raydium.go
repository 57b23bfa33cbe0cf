// Package raydium decodes raw Raydium program instructions into typed
// variants. Each protocol exposes a sealed instruction interface with one
// struct per recognized variant; anything unrecognized or malformed decodes
// to the protocol's Unknown variant, never to an error.
//
// CPMM and CLMM are Anchor programs: instructions carry an 8-byte
// discriminator, and self-emitted events arrive as CPI calls whose payload
// starts with the Anchor event tag followed by an 8-byte event
// discriminator. AMM V4 predates Anchor and uses single-byte discriminators.
package raydium

import (
	"encoding/binary"
	"math/big"

	"raydium-alerts/internal/solana"
)

// Program IDs for the three tracked Raydium programs.
var (
	AmmV4ProgramID = solana.MustPubkey("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	CpmmProgramID  = solana.MustPubkey("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	ClmmProgramID  = solana.MustPubkey("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
)

// eventCPIPrefix tags Anchor event-CPI payloads (sha256("anchor:event")[:8]
// in little-endian wire order).
var eventCPIPrefix = [8]byte{228, 69, 165, 46, 81, 203, 154, 29}

// Uint128 is a little-endian unsigned 128-bit scalar.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Big returns the value as a big.Int.
func (u Uint128) Big() *big.Int {
	out := new(big.Int).SetUint64(u.Hi)
	out.Lsh(out, 64)
	return out.Or(out, new(big.Int).SetUint64(u.Lo))
}

// Cmp returns -1, 0, or 1 comparing u against v.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi != v.Hi:
		if u.Hi < v.Hi {
			return -1
		}
		return 1
	case u.Lo != v.Lo:
		if u.Lo < v.Lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// String renders the value in decimal.
func (u Uint128) String() string {
	return u.Big().String()
}

// reader consumes little-endian Borsh scalars. Reading past the end sets
// the fail flag instead of panicking; callers check ok() once at the end.
type reader struct {
	buf  []byte
	fail bool
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) ok() bool {
	return !r.fail
}

func (r *reader) take(n int) []byte {
	if r.fail || len(r.buf) < n {
		r.fail = true
		return nil
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) boolByte() bool {
	return r.u8() != 0
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) i32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) u128() Uint128 {
	lo := r.u64()
	hi := r.u64()
	return Uint128{Lo: lo, Hi: hi}
}

func (r *reader) pubkey() solana.Pubkey {
	var pk solana.Pubkey
	b := r.take(32)
	if b != nil {
		copy(pk[:], b)
	}
	return pk
}

// splitAnchorData separates an Anchor payload into its discriminator and
// argument bytes, unwrapping the event-CPI tag when present. The second
// return distinguishes event discriminators from instruction ones.
func splitAnchorData(data []byte) (disc [8]byte, args []byte, isEvent, ok bool) {
	if len(data) < 8 {
		return disc, nil, false, false
	}
	if [8]byte(data[:8]) == eventCPIPrefix {
		if len(data) < 16 {
			return disc, nil, false, false
		}
		return [8]byte(data[8:16]), data[16:], true, true
	}
	return [8]byte(data[:8]), data[8:], false, true
}
