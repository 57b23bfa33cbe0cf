package processor

import (
	"go.uber.org/zap"

	"raydium-alerts/internal/event"
	"raydium-alerts/internal/observability"
	"raydium-alerts/internal/raydium"
	"raydium-alerts/internal/solana"
	"raydium-alerts/internal/transfer"
)

// AmmV4 processes Raydium AMM V4 instructions. The instruction layout
// exposes token accounts rather than mints, so filtering is pool-only and
// settled amounts are recovered from nested SPL token transfers; the
// instruction parameters serve as fallbacks.
type AmmV4 struct {
	filter  *event.Filter
	emitter *Emitter
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAmmV4 creates the AMM V4 processor.
func NewAmmV4(filter *event.Filter, emitter *Emitter, logger *zap.Logger, metrics *observability.Metrics) *AmmV4 {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmmV4{filter: filter, emitter: emitter, logger: logger, metrics: metrics}
}

// ProgramID implements Processor.
func (p *AmmV4) ProgramID() solana.Pubkey {
	return raydium.AmmV4ProgramID
}

// Process implements Processor.
func (p *AmmV4) Process(meta solana.TxMeta, ix solana.Instruction, inner []solana.NestedInstruction) {
	switch v := raydium.DecodeAmmV4(ix.Data).(type) {
	case raydium.AmmV4SwapBaseIn:
		p.processSwap(meta, ix, inner, event.DirectionExactInput, v.AmountIn, v.MinimumAmountOut)

	case raydium.AmmV4SwapBaseOut:
		p.processSwap(meta, ix, inner, event.DirectionExactOutput, v.MaxAmountIn, v.AmountOut)

	case raydium.AmmV4Initialize:
		p.logger.Info("amm-v4 pool initialized",
			zap.String("signature", meta.Signature),
			zap.Uint8("nonce", v.Nonce))

	case raydium.AmmV4Initialize2:
		p.logger.Info("amm-v4 pool initialized",
			zap.String("signature", meta.Signature),
			zap.Uint8("nonce", v.Nonce),
			zap.Uint64("open_time", v.OpenTime))

	case raydium.AmmV4Deposit:
		p.logger.Info("amm-v4 deposit",
			zap.String("signature", meta.Signature),
			zap.Uint64("max_coin", v.MaxCoinAmount),
			zap.Uint64("max_pc", v.MaxPcAmount),
			zap.Uint64("base_side", v.BaseSide))

	case raydium.AmmV4Withdraw:
		p.logger.Info("amm-v4 withdraw",
			zap.String("signature", meta.Signature),
			zap.Uint64("amount", v.Amount))

	case raydium.AmmV4Unknown:
		p.metrics.RecordInstructionSkipped("amm_v4", "unknown")
	}
}

func (p *AmmV4) processSwap(meta solana.TxMeta, ix solana.Instruction, inner []solana.NestedInstruction, direction event.Direction, fallbackInput, fallbackOutput uint64) {
	accounts := raydium.ArrangeAmmV4SwapAccounts(ix.Accounts)
	if accounts == nil {
		p.metrics.RecordInstructionSkipped("amm_v4", "accounts")
		return
	}
	if !p.filter.MatchesPool(accounts.Amm) {
		p.metrics.RecordEventFiltered("amm_v4")
		return
	}

	// The instruction parameters are slippage bounds; the settled amounts
	// live in the nested token transfers.
	actualInput, actualOutput := transfer.ExtractSwapAmounts(
		inner,
		accounts.UserSourceTokenAccount,
		accounts.UserDestinationTokenAccount,
		fallbackInput,
		fallbackOutput,
	)

	p.logger.Debug("amm-v4 swap",
		zap.String("signature", meta.Signature),
		zap.String("amm", accounts.Amm.String()),
		zap.Uint64("input", actualInput),
		zap.Uint64("output", actualOutput))

	b := newEventBuilder(event.ProtocolAmmV4, meta).
		PoolPubkey(accounts.Amm).
		InputToken(event.NewTokenInfo(accounts.UserSourceTokenAccount.String(), actualInput)).
		OutputToken(event.NewTokenInfo(accounts.UserDestinationTokenAccount.String(), actualOutput)).
		Direction(direction)

	// The owner slot can hold a program-derived address when a router
	// performed the swap; only a wallet address is a meaningful maker.
	if accounts.UserSourceOwner.IsOnCurve() {
		b.MakerPubkey(accounts.UserSourceOwner)
	}

	ev, err := b.Build()
	if err != nil {
		p.logger.Error("failed to build swap event", zap.Error(err))
		return
	}
	p.emitter.Emit(ev)
}
