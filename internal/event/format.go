package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat selects how events are rendered on the local sink.
type OutputFormat string

const (
	// FormatText is human-readable multi-line text with emojis.
	FormatText OutputFormat = "text"
	// FormatJSON is compact JSON, one line per event.
	FormatJSON OutputFormat = "json"
	// FormatJSONPretty is indented JSON.
	FormatJSONPretty OutputFormat = "json_pretty"
)

// ParseOutputFormat accepts the format names and their common spellings.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "json_pretty", "json-pretty", "jsonpretty":
		return FormatJSONPretty, nil
	default:
		return "", fmt.Errorf("unknown output format %q, valid options: text, json, json_pretty", s)
	}
}

// Format renders the event in the given output format.
func (e *SwapEvent) Format(format OutputFormat) string {
	switch format {
	case FormatJSON:
		return e.formatJSON(false)
	case FormatJSONPretty:
		return e.formatJSON(true)
	default:
		return e.formatText()
	}
}

// formatText renders the event as emoji-rich text, e.g.
//
//	🔄 SWAP [CPMM]
//	🔷 SOL 11.9880 ($1491.19)
//	🪙 MACARON 11500.7000
//	🔎 Maker: 7xKXtQ...hPs8
//	📈 MCap: $615.34K
//	🔗 https://solscan.io/tx/5abc123def45...
func (e *SwapEvent) formatText() string {
	var lines []string

	emoji := "🔄"
	switch e.Kind {
	case KindAddLiquidity:
		emoji = "💧"
	case KindRemoveLiquidity:
		emoji = "🔥"
	case KindCreatePool:
		emoji = "🆕"
	}
	lines = append(lines, fmt.Sprintf("%s %s [%s]", emoji, e.Kind.Label(), e.Protocol.Label()))

	base, quote := e.baseQuoteTokens()
	if base != nil {
		lines = append(lines, base.formatDisplay(true))
	}
	if quote != nil {
		lines = append(lines, quote.formatDisplay(false))
	}

	if e.Maker != nil {
		maker := *e.Maker
		if len(maker) > 12 {
			maker = maker[:6] + "..." + maker[len(maker)-4:]
		}
		lines = append(lines, "🔎 Maker: "+maker)
	}

	if e.MarketCapUSD != nil {
		lines = append(lines, "📈 MCap: $"+formatNumber(*e.MarketCapUSD))
	}

	if e.Fee != nil {
		lines = append(lines, fmt.Sprintf("💰 Fee: %d", *e.Fee))
	}

	sig := e.Signature
	if len(sig) > 12 {
		sig = sig[:12] + "..."
	}
	lines = append(lines, "🔗 https://solscan.io/tx/"+sig)

	return strings.Join(lines, "\n")
}

func (e *SwapEvent) formatJSON(pretty bool) string {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(e, "", "  ")
	} else {
		data, err = json.Marshal(e)
	}
	if err != nil {
		return fmt.Sprintf("{\"error\": \"serialization failed: %s\"}", err)
	}
	return string(data)
}

// formatDisplay renders one token line, base tokens getting the 🔷 marker.
func (t TokenInfo) formatDisplay(isBase bool) string {
	emoji := "🪙"
	if isBase {
		emoji = "🔷"
	}

	symbol := t.Mint
	if len(symbol) > 8 {
		symbol = symbol[:8]
	}
	if t.Symbol != nil {
		symbol = *t.Symbol
	}

	amount := fmt.Sprintf("%d", t.AmountRaw)
	if t.Amount != nil {
		amount = fmt.Sprintf("%.4f", *t.Amount)
	}

	if t.AmountUSD != nil {
		return fmt.Sprintf("%s %s %s ($%.2f)", emoji, symbol, amount, *t.AmountUSD)
	}
	return fmt.Sprintf("%s %s %s", emoji, symbol, amount)
}

// formatNumber abbreviates large values with K/M/B suffixes.
func formatNumber(n float64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.2fK", n/1_000)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}
