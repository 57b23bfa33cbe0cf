package event

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenInfoWithDecimals(t *testing.T) {
	token := NewTokenInfo(WSOLMint, 11_988_000_000).WithDecimals(9)

	require.NotNil(t, token.Amount)
	assert.InDelta(t, 11.988, *token.Amount, 1e-9)
	require.NotNil(t, token.Decimals)
	assert.Equal(t, uint8(9), *token.Decimals)
}

func TestTokenInfoDisplay(t *testing.T) {
	token := NewTokenInfo(WSOLMint, 11_988_000_000).
		WithSymbol("SOL").
		WithDecimals(9).
		WithUSDValue(1491.19)

	display := token.formatDisplay(true)
	assert.Contains(t, display, "🔷")
	assert.Contains(t, display, "SOL")
	assert.Contains(t, display, "11.9880")
	assert.Contains(t, display, "$1491.19")

	plain := NewTokenInfo("TokenMint123456", 42).formatDisplay(false)
	assert.Contains(t, plain, "🪙")
	assert.Contains(t, plain, "TokenMin") // mint prefix stands in for the symbol
	assert.Contains(t, plain, "42")
	assert.NotContains(t, plain, "$")
}

func TestIsBaseToken(t *testing.T) {
	assert.True(t, NewTokenInfo(WSOLMint, 0).IsBaseToken())
	assert.True(t, NewTokenInfo(USDCMint, 0).IsBaseToken())
	assert.True(t, NewTokenInfo(USDTMint, 0).IsBaseToken())
	assert.False(t, NewTokenInfo("RandomMint123", 0).IsBaseToken())
}

func TestBuilderRequiredFields(t *testing.T) {
	_, err := NewBuilder().Signature("sig").Pool("pool").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol")

	_, err = NewBuilder().Protocol(ProtocolCPMM).Pool("pool").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")

	_, err = NewBuilder().Protocol(ProtocolCPMM).Signature("sig").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool")

	ev, err := NewBuilder().Protocol(ProtocolCPMM).Signature("sig").Pool("pool").Build()
	require.NoError(t, err)
	assert.Equal(t, KindSwap, ev.Kind)
	assert.Equal(t, DirectionUnknown, ev.Direction)
}

func TestFormatText(t *testing.T) {
	input := NewTokenInfo(WSOLMint, 11_988_000_000).
		WithSymbol("SOL").
		WithDecimals(9).
		WithUSDValue(1491.19)
	output := NewTokenInfo("MacaronMint123", 11_500_700_000).
		WithSymbol("MACARON").
		WithDecimals(6)

	ev, err := NewBuilder().
		Protocol(ProtocolCPMM).
		Signature("5abc123def456xyz").
		Pool("pool123").
		InputToken(input).
		OutputToken(output).
		Maker("7xKXtQRzdP9WmUHQzNJJfJnRhPs8").
		MarketCapUSD(615340).
		Slot(12345).
		Build()
	require.NoError(t, err)

	text := ev.Format(FormatText)
	assert.Contains(t, text, "🔄 SWAP [CPMM]")
	assert.Contains(t, text, "SOL")
	assert.Contains(t, text, "MACARON")
	assert.Contains(t, text, "Maker: 7xKXtQ...hPs8")
	assert.Contains(t, text, "MCap: $615.34K")
	assert.Contains(t, text, "https://solscan.io/tx/5abc123def45...")
}

func TestFormatTextBaseTokenFirst(t *testing.T) {
	// Selling MACARON for SOL: SOL is the output but must display first.
	input := NewTokenInfo("MacaronMint123", 100).WithSymbol("MACARON")
	output := NewTokenInfo(WSOLMint, 200).WithSymbol("SOL")

	ev, err := NewBuilder().
		Protocol(ProtocolCLMM).
		Signature("sig").
		Pool("pool").
		InputToken(input).
		OutputToken(output).
		Build()
	require.NoError(t, err)

	text := ev.Format(FormatText)
	solLine := strings.Index(text, "SOL")
	macaronLine := strings.Index(text, "MACARON")
	require.GreaterOrEqual(t, solLine, 0)
	require.GreaterOrEqual(t, macaronLine, 0)
	assert.Less(t, solLine, macaronLine)
	assert.Contains(t, text, "🔷 SOL")
}

func TestFormatJSONOmitsAbsentFields(t *testing.T) {
	ev, err := NewBuilder().
		Protocol(ProtocolCLMM).
		Signature("sig123").
		Pool("pool456").
		InputToken(NewTokenInfo("mint_in", 100)).
		Slot(999).
		Build()
	require.NoError(t, err)

	out := ev.Format(FormatJSON)
	assert.Contains(t, out, `"protocol":"clmm"`)
	assert.Contains(t, out, `"signature":"sig123"`)
	assert.NotContains(t, out, "output_token")
	assert.NotContains(t, out, "fee")
	assert.NotContains(t, out, "maker")
	assert.NotContains(t, out, "timestamp")
	assert.NotContains(t, out, "null")
}

func TestJSONRoundTrip(t *testing.T) {
	ev, err := NewBuilder().
		Kind(KindAddLiquidity).
		Protocol(ProtocolAmmV4).
		Signature("sig").
		Pool("pool").
		InputToken(NewTokenInfo(USDCMint, 100).WithDecimals(6)).
		OutputToken(NewTokenInfo("other", 200)).
		Direction(DirectionExactInput).
		Fee(7).
		Maker("maker").
		Slot(42).
		Timestamp(1700000000).
		Build()
	require.NoError(t, err)

	data, err := json.Marshal(&ev)
	require.NoError(t, err)

	var decoded SwapEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestPriceAccessors(t *testing.T) {
	ev, err := NewBuilder().
		Protocol(ProtocolCPMM).
		Signature("sig").
		Pool("pool").
		InputToken(NewTokenInfo(WSOLMint, 2_000_000_000).WithDecimals(9)).
		OutputToken(NewTokenInfo("other", 8_000_000).WithDecimals(6).WithUSDValue(300)).
		Build()
	require.NoError(t, err)

	price, ok := ev.Price()
	require.True(t, ok)
	assert.InDelta(t, 4.0, price, 1e-9)

	inverse, ok := ev.InversePrice()
	require.True(t, ok)
	assert.InDelta(t, 0.25, inverse, 1e-9)

	usd, ok := ev.USDValue()
	require.True(t, ok)
	assert.Equal(t, 300.0, usd) // input has no USD value, output wins

	// Missing amounts make the price undefined.
	noAmounts, err := NewBuilder().
		Protocol(ProtocolCPMM).
		Signature("sig").
		Pool("pool").
		InputToken(NewTokenInfo("a", 10)).
		OutputToken(NewTokenInfo("b", 20)).
		Build()
	require.NoError(t, err)
	_, ok = noAmounts.Price()
	assert.False(t, ok)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "500.00", formatNumber(500))
	assert.Equal(t, "1.50K", formatNumber(1500))
	assert.Equal(t, "615.34K", formatNumber(615340))
	assert.Equal(t, "1.50M", formatNumber(1_500_000))
	assert.Equal(t, "2.50B", formatNumber(2_500_000_000))
}

func TestParseOutputFormat(t *testing.T) {
	for input, want := range map[string]OutputFormat{
		"text":        FormatText,
		"txt":         FormatText,
		"JSON":        FormatJSON,
		"json_pretty": FormatJSONPretty,
		"json-pretty": FormatJSONPretty,
		"jsonpretty":  FormatJSONPretty,
		" text ":      FormatText,
	} {
		got, err := ParseOutputFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseOutputFormat("yaml")
	assert.Error(t, err)
}
