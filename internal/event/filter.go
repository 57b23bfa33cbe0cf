package event

import "raydium-alerts/internal/solana"

// Filter holds the configured allow-lists. Both sets are read-only after
// construction and safe for concurrent use without locking. An empty set
// means that criterion is unrestricted.
type Filter struct {
	tokens map[solana.Pubkey]struct{}
	pools  map[solana.Pubkey]struct{}
}

// NewFilter builds a filter from token mint and pool allow-lists.
func NewFilter(tokens, pools []solana.Pubkey) *Filter {
	f := &Filter{
		tokens: make(map[solana.Pubkey]struct{}, len(tokens)),
		pools:  make(map[solana.Pubkey]struct{}, len(pools)),
	}
	for _, t := range tokens {
		f.tokens[t] = struct{}{}
	}
	for _, p := range pools {
		f.pools[p] = struct{}{}
	}
	return f
}

// Matches applies OR logic across criteria: pass when no filters are
// configured, when the pool is allow-listed, or when either supplied mint
// is. A nil mint cannot contribute a match.
func (f *Filter) Matches(pool solana.Pubkey, inputMint, outputMint *solana.Pubkey) bool {
	if len(f.pools) == 0 && len(f.tokens) == 0 {
		return true
	}
	if _, ok := f.pools[pool]; ok {
		return true
	}
	if inputMint != nil {
		if _, ok := f.tokens[*inputMint]; ok {
			return true
		}
	}
	if outputMint != nil {
		if _, ok := f.tokens[*outputMint]; ok {
			return true
		}
	}
	return false
}

// MatchesPool decides on the pool alone, for instructions that carry no
// mint information. A configured token filter cannot disqualify an event
// whose mints are unknown, so only a non-empty pool set restricts here.
func (f *Filter) MatchesPool(pool solana.Pubkey) bool {
	if len(f.pools) == 0 {
		return true
	}
	_, ok := f.pools[pool]
	return ok
}
