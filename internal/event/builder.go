package event

import (
	"errors"

	"raydium-alerts/internal/solana"
)

// Builder accumulates SwapEvent fields. Protocol, signature, and pool are
// mandatory; Build returns an error instead of emitting a half-populated
// event when any of them is missing.
type Builder struct {
	ev SwapEvent
}

// NewBuilder returns a builder with kind Swap and direction Unknown.
func NewBuilder() *Builder {
	return &Builder{ev: SwapEvent{Kind: KindSwap, Direction: DirectionUnknown}}
}

// Kind sets the event kind.
func (b *Builder) Kind(k Kind) *Builder {
	b.ev.Kind = k
	return b
}

// Protocol sets the emitting protocol.
func (b *Builder) Protocol(p Protocol) *Builder {
	b.ev.Protocol = p
	return b
}

// Signature sets the transaction signature.
func (b *Builder) Signature(sig string) *Builder {
	b.ev.Signature = sig
	return b
}

// Pool sets the pool address.
func (b *Builder) Pool(pool string) *Builder {
	b.ev.Pool = pool
	return b
}

// PoolPubkey sets the pool address from a pubkey.
func (b *Builder) PoolPubkey(pool solana.Pubkey) *Builder {
	b.ev.Pool = pool.String()
	return b
}

// InputToken sets the input side.
func (b *Builder) InputToken(t TokenInfo) *Builder {
	b.ev.InputToken = &t
	return b
}

// OutputToken sets the output side.
func (b *Builder) OutputToken(t TokenInfo) *Builder {
	b.ev.OutputToken = &t
	return b
}

// Direction sets the swap direction.
func (b *Builder) Direction(d Direction) *Builder {
	b.ev.Direction = d
	return b
}

// Fee sets the trading fee in raw units.
func (b *Builder) Fee(fee uint64) *Builder {
	b.ev.Fee = &fee
	return b
}

// Maker sets the initiating wallet address.
func (b *Builder) Maker(maker string) *Builder {
	b.ev.Maker = &maker
	return b
}

// MakerPubkey sets the initiating wallet from a pubkey.
func (b *Builder) MakerPubkey(maker solana.Pubkey) *Builder {
	return b.Maker(maker.String())
}

// MarketCapUSD sets the market cap of the non-base token.
func (b *Builder) MarketCapUSD(mcap float64) *Builder {
	b.ev.MarketCapUSD = &mcap
	return b
}

// Slot sets the block slot.
func (b *Builder) Slot(slot uint64) *Builder {
	b.ev.Slot = slot
	return b
}

// Timestamp sets the block time in unix seconds.
func (b *Builder) Timestamp(ts int64) *Builder {
	b.ev.Timestamp = &ts
	return b
}

// Build returns the event, or an error if a required field was never set.
func (b *Builder) Build() (SwapEvent, error) {
	if b.ev.Protocol == "" {
		return SwapEvent{}, errors.New("build swap event: protocol is required")
	}
	if b.ev.Signature == "" {
		return SwapEvent{}, errors.New("build swap event: signature is required")
	}
	if b.ev.Pool == "" {
		return SwapEvent{}, errors.New("build swap event: pool is required")
	}
	return b.ev, nil
}
