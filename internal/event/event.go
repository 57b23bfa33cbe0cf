// Package event defines the protocol-agnostic swap event model shared by all
// processors: the SwapEvent record, its builder, the allow-list filter, and
// the text/JSON output formats.
package event

import (
	"raydium-alerts/internal/solana"
)

// Well-known base token mints, used to order token pairs for display.
const (
	WSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// Protocol identifies which Raydium program emitted an event.
type Protocol string

const (
	// ProtocolCPMM is the constant product market maker.
	ProtocolCPMM Protocol = "cpmm"
	// ProtocolCLMM is the concentrated liquidity market maker.
	ProtocolCLMM Protocol = "clmm"
	// ProtocolAmmV4 is the legacy AMM with Serum integration.
	ProtocolAmmV4 Protocol = "amm_v4"
)

// Label returns the display name for log and text output.
func (p Protocol) Label() string {
	switch p {
	case ProtocolCPMM:
		return "CPMM"
	case ProtocolCLMM:
		return "CLMM"
	case ProtocolAmmV4:
		return "AMM-V4"
	default:
		return string(p)
	}
}

// Kind distinguishes the on-chain action behind an event.
type Kind string

const (
	KindSwap            Kind = "swap"
	KindAddLiquidity    Kind = "add_liquidity"
	KindRemoveLiquidity Kind = "remove_liquidity"
	KindCreatePool      Kind = "create_pool"
)

// Label returns the display name for text output.
func (k Kind) Label() string {
	switch k {
	case KindSwap:
		return "SWAP"
	case KindAddLiquidity:
		return "ADD_LP"
	case KindRemoveLiquidity:
		return "REMOVE_LP"
	case KindCreatePool:
		return "CREATE_POOL"
	default:
		return string(k)
	}
}

// Direction indicates which side of the swap was fixed by the caller.
type Direction string

const (
	// DirectionExactInput fixes the input amount; output is variable.
	DirectionExactInput Direction = "exact_input"
	// DirectionExactOutput fixes the output amount; input is variable.
	DirectionExactOutput Direction = "exact_output"
	// DirectionUnknown covers events that carry no direction, e.g. event logs.
	DirectionUnknown Direction = "unknown"
)

// TokenInfo describes one side of a swap or liquidity change.
type TokenInfo struct {
	// Mint is the token mint address. Protocols that expose only token
	// accounts put the account address here instead.
	Mint string `json:"mint"`
	// Symbol is the token symbol when known.
	Symbol *string `json:"symbol,omitempty"`
	// Decimals is the token precision when known.
	Decimals *uint8 `json:"decimals,omitempty"`
	// AmountRaw is the amount in smallest units.
	AmountRaw uint64 `json:"amount_raw"`
	// Amount is AmountRaw scaled by Decimals, when Decimals is known.
	Amount *float64 `json:"amount,omitempty"`
	// AmountUSD is the USD value of the amount, when supplied upstream.
	AmountUSD *float64 `json:"amount_usd,omitempty"`
}

// NewTokenInfo returns a TokenInfo with just a mint and a raw amount.
func NewTokenInfo(mint string, amountRaw uint64) TokenInfo {
	return TokenInfo{Mint: mint, AmountRaw: amountRaw}
}

// TokenInfoFromPubkey returns a TokenInfo keyed by the mint's base58 address.
func TokenInfoFromPubkey(mint solana.Pubkey, amountRaw uint64) TokenInfo {
	return NewTokenInfo(mint.String(), amountRaw)
}

// WithSymbol sets the token symbol.
func (t TokenInfo) WithSymbol(symbol string) TokenInfo {
	t.Symbol = &symbol
	return t
}

// WithDecimals sets the precision and derives the human-readable amount.
func (t TokenInfo) WithDecimals(decimals uint8) TokenInfo {
	t.Decimals = &decimals
	amount := float64(t.AmountRaw) / pow10(decimals)
	t.Amount = &amount
	return t
}

// WithUSDValue sets the USD value of the amount.
func (t TokenInfo) WithUSDValue(usd float64) TokenInfo {
	t.AmountUSD = &usd
	return t
}

// IsBaseToken reports whether the mint is one of the well-known base tokens.
func (t TokenInfo) IsBaseToken() bool {
	switch t.Mint {
	case WSOLMint, USDCMint, USDTMint:
		return true
	}
	return false
}

func pow10(n uint8) float64 {
	out := 1.0
	for i := uint8(0); i < n; i++ {
		out *= 10
	}
	return out
}

// SwapEvent is the normalized record emitted for every tracked on-chain
// action, regardless of protocol. Immutable once built; flows by value
// through filtering, formatting, and webhook delivery.
type SwapEvent struct {
	Kind      Kind     `json:"event_type"`
	Protocol  Protocol `json:"protocol"`
	Signature string   `json:"signature"`
	Pool      string   `json:"pool"`

	InputToken  *TokenInfo `json:"input_token,omitempty"`
	OutputToken *TokenInfo `json:"output_token,omitempty"`

	Direction Direction `json:"direction"`

	// Fee is the trading fee in raw token units, when the protocol reports it.
	Fee *uint64 `json:"fee,omitempty"`
	// Maker is the wallet that initiated the action, when identifiable.
	Maker *string `json:"maker,omitempty"`
	// MarketCapUSD is the market cap of the non-base token, when supplied.
	MarketCapUSD *float64 `json:"market_cap_usd,omitempty"`

	Slot uint64 `json:"slot"`
	// Timestamp is unix seconds from the block, when the block carried one.
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Price returns the effective price as output per input. The second return
// is false when either human-readable amount is missing or input is zero.
func (e *SwapEvent) Price() (float64, bool) {
	if e.InputToken == nil || e.InputToken.Amount == nil ||
		e.OutputToken == nil || e.OutputToken.Amount == nil {
		return 0, false
	}
	in, out := *e.InputToken.Amount, *e.OutputToken.Amount
	if in == 0 {
		return 0, false
	}
	return out / in, true
}

// InversePrice returns input per output, with the symmetric zero guard.
func (e *SwapEvent) InversePrice() (float64, bool) {
	if e.InputToken == nil || e.InputToken.Amount == nil ||
		e.OutputToken == nil || e.OutputToken.Amount == nil {
		return 0, false
	}
	in, out := *e.InputToken.Amount, *e.OutputToken.Amount
	if out == 0 {
		return 0, false
	}
	return in / out, true
}

// USDValue returns the swap's USD value, preferring the input side.
func (e *SwapEvent) USDValue() (float64, bool) {
	if e.InputToken != nil && e.InputToken.AmountUSD != nil {
		return *e.InputToken.AmountUSD, true
	}
	if e.OutputToken != nil && e.OutputToken.AmountUSD != nil {
		return *e.OutputToken.AmountUSD, true
	}
	return 0, false
}

// baseQuoteTokens orders the pair so a recognized base token displays first,
// even when it was the output side.
func (e *SwapEvent) baseQuoteTokens() (*TokenInfo, *TokenInfo) {
	in, out := e.InputToken, e.OutputToken
	switch {
	case in != nil && out != nil:
		if out.IsBaseToken() && !in.IsBaseToken() {
			return out, in
		}
		return in, out
	case in != nil:
		return in, nil
	case out != nil:
		return out, nil
	default:
		return nil, nil
	}
}
