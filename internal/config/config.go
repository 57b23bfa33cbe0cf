// Package config loads runtime settings from the environment.
//
// List-valued variables are comma-separated; entries are trimmed and invalid
// ones are dropped with a warning. The market filter falls back to all
// markets when every entry is invalid; address filters fall back to empty
// (unrestricted).
package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"raydium-alerts/internal/event"
	"raydium-alerts/internal/solana"
)

// DefaultRPCWSURL is the public mainnet WebSocket endpoint.
const DefaultRPCWSURL = "wss://api.mainnet-beta.solana.com/"

// DefaultMetricsAddr is the Prometheus listen address.
const DefaultMetricsAddr = ":9090"

// Settings is the full environment-sourced configuration, immutable after
// Load. Webhook settings live in the webhook package since their presence
// decides whether the notifier exists at all.
type Settings struct {
	// RPCWSURL is the blockSubscribe endpoint.
	RPCWSURL string
	// Markets is the set of enabled protocols.
	Markets map[event.Protocol]struct{}
	// FilterTokens restricts events to these mints; empty is unrestricted.
	FilterTokens []solana.Pubkey
	// FilterPools restricts events to these pools; empty is unrestricted.
	FilterPools []solana.Pubkey
	// OutputFormat selects the local sink rendering.
	OutputFormat event.OutputFormat
	// MetricsAddr is the Prometheus listen address; empty disables the server.
	MetricsAddr string
}

// Load reads all settings from the environment. Invalid values never fail
// the load; they are logged and replaced with defaults.
func Load(logger *zap.Logger) Settings {
	if logger == nil {
		logger = zap.NewNop()
	}

	rpcURL := strings.TrimSpace(os.Getenv("RPC_WS_URL"))
	if rpcURL == "" {
		rpcURL = DefaultRPCWSURL
	}

	metricsAddr := DefaultMetricsAddr
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		metricsAddr = strings.TrimSpace(v)
	}

	return Settings{
		RPCWSURL:     rpcURL,
		Markets:      ParseMarketFilter("FILTER_MARKETS", logger),
		FilterTokens: ParsePubkeyFilter("FILTER_TOKENS", logger),
		FilterPools:  ParsePubkeyFilter("FILTER_AMMS", logger),
		OutputFormat: ParseOutputFormat("OUTPUT_FORMAT", logger),
		MetricsAddr:  metricsAddr,
	}
}

// MarketEnabled reports whether the protocol passed the market filter.
func (s *Settings) MarketEnabled(p event.Protocol) bool {
	_, ok := s.Markets[p]
	return ok
}

// ParseMarketType accepts protocol names case-insensitively, with the
// common spellings for AMM V4.
func ParseMarketType(s string) (event.Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpmm":
		return event.ProtocolCPMM, nil
	case "clmm":
		return event.ProtocolCLMM, nil
	case "amm_v4", "ammv4", "amm-v4", "v4":
		return event.ProtocolAmmV4, nil
	default:
		return "", fmt.Errorf("unknown market type %q, valid options: cpmm, clmm, amm_v4", s)
	}
}

func allMarkets() map[event.Protocol]struct{} {
	return map[event.Protocol]struct{}{
		event.ProtocolCPMM:  {},
		event.ProtocolCLMM:  {},
		event.ProtocolAmmV4: {},
	}
}

// ParseMarketFilter reads a comma-separated market list from the named
// environment variable. Unset, empty, or entirely invalid values enable
// all markets.
func ParseMarketFilter(envVar string, logger *zap.Logger) map[event.Protocol]struct{} {
	val := strings.TrimSpace(os.Getenv(envVar))
	if val == "" {
		return allMarkets()
	}

	markets := make(map[event.Protocol]struct{})
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := ParseMarketType(part)
		if err != nil {
			logger.Warn("ignoring invalid market filter entry",
				zap.String("env", envVar),
				zap.String("entry", part),
				zap.Error(err))
			continue
		}
		markets[m] = struct{}{}
	}

	// All entries invalid means the default, not an empty filter.
	if len(markets) == 0 {
		return allMarkets()
	}
	return markets
}

// ParsePubkeyFilter reads a comma-separated address list from the named
// environment variable. Unset or empty means no filtering.
func ParsePubkeyFilter(envVar string, logger *zap.Logger) []solana.Pubkey {
	val := os.Getenv(envVar)
	if strings.TrimSpace(val) == "" {
		return nil
	}

	var keys []solana.Pubkey
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pk, err := solana.ParsePubkey(part)
		if err != nil {
			logger.Warn("ignoring invalid pubkey in filter",
				zap.String("env", envVar),
				zap.String("entry", part),
				zap.Error(err))
			continue
		}
		keys = append(keys, pk)
	}
	return keys
}

// ParseOutputFormat reads the output format from the named environment
// variable, defaulting to text when unset or invalid.
func ParseOutputFormat(envVar string, logger *zap.Logger) event.OutputFormat {
	val := strings.TrimSpace(os.Getenv(envVar))
	if val == "" {
		return event.FormatText
	}
	format, err := event.ParseOutputFormat(val)
	if err != nil {
		logger.Warn("falling back to text output", zap.String("env", envVar), zap.Error(err))
		return event.FormatText
	}
	return format
}
