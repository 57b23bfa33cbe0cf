package processor

import (
	"go.uber.org/zap"

	"raydium-alerts/internal/event"
	"raydium-alerts/internal/observability"
	"raydium-alerts/internal/raydium"
	"raydium-alerts/internal/solana"
)

// CPMM processes Raydium CPMM instructions. Swap variants pass through the
// allow-list filter; liquidity variants are emitted unfiltered; pool
// initialization is log-only.
type CPMM struct {
	filter  *event.Filter
	emitter *Emitter
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewCPMM creates the CPMM processor.
func NewCPMM(filter *event.Filter, emitter *Emitter, logger *zap.Logger, metrics *observability.Metrics) *CPMM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CPMM{filter: filter, emitter: emitter, logger: logger, metrics: metrics}
}

// ProgramID implements Processor.
func (p *CPMM) ProgramID() solana.Pubkey {
	return raydium.CpmmProgramID
}

// Process implements Processor.
func (p *CPMM) Process(meta solana.TxMeta, ix solana.Instruction, _ []solana.NestedInstruction) {
	switch v := raydium.DecodeCpmm(ix.Data).(type) {
	case raydium.CpmmSwapBaseInput:
		accounts := raydium.ArrangeCpmmSwapAccounts(ix.Accounts)
		if accounts == nil {
			p.metrics.RecordInstructionSkipped("cpmm", "accounts")
			return
		}
		if !p.filter.Matches(accounts.PoolState, &accounts.InputTokenMint, &accounts.OutputTokenMint) {
			p.metrics.RecordEventFiltered("cpmm")
			return
		}
		ev, err := newEventBuilder(event.ProtocolCPMM, meta).
			PoolPubkey(accounts.PoolState).
			InputToken(event.TokenInfoFromPubkey(accounts.InputTokenMint, v.AmountIn)).
			OutputToken(event.TokenInfoFromPubkey(accounts.OutputTokenMint, v.MinimumAmountOut)).
			Direction(event.DirectionExactInput).
			MakerPubkey(accounts.Payer).
			Build()
		if err != nil {
			p.logger.Error("failed to build swap event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.CpmmSwapBaseOutput:
		accounts := raydium.ArrangeCpmmSwapAccounts(ix.Accounts)
		if accounts == nil {
			p.metrics.RecordInstructionSkipped("cpmm", "accounts")
			return
		}
		if !p.filter.Matches(accounts.PoolState, &accounts.InputTokenMint, &accounts.OutputTokenMint) {
			p.metrics.RecordEventFiltered("cpmm")
			return
		}
		ev, err := newEventBuilder(event.ProtocolCPMM, meta).
			PoolPubkey(accounts.PoolState).
			InputToken(event.TokenInfoFromPubkey(accounts.InputTokenMint, v.MaxAmountIn)).
			OutputToken(event.TokenInfoFromPubkey(accounts.OutputTokenMint, v.AmountOut)).
			Direction(event.DirectionExactOutput).
			MakerPubkey(accounts.Payer).
			Build()
		if err != nil {
			p.logger.Error("failed to build swap event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.CpmmSwapEvent:
		// Self-emitted log with settled amounts rather than slippage bounds.
		if !p.filter.Matches(v.PoolID, &v.InputMint, &v.OutputMint) {
			p.metrics.RecordEventFiltered("cpmm")
			return
		}
		ev, err := newEventBuilder(event.ProtocolCPMM, meta).
			PoolPubkey(v.PoolID).
			InputToken(event.TokenInfoFromPubkey(v.InputMint, v.InputAmount)).
			OutputToken(event.TokenInfoFromPubkey(v.OutputMint, v.OutputAmount)).
			Direction(event.DirectionUnknown).
			Fee(v.TradeFee).
			Build()
		if err != nil {
			p.logger.Error("failed to build swap event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.CpmmDeposit:
		accounts := raydium.ArrangeCpmmLiquidityAccounts(ix.Accounts)
		if accounts == nil {
			p.metrics.RecordInstructionSkipped("cpmm", "accounts")
			return
		}
		ev, err := newEventBuilder(event.ProtocolCPMM, meta).
			Kind(event.KindAddLiquidity).
			PoolPubkey(accounts.PoolState).
			InputToken(event.TokenInfoFromPubkey(accounts.Vault0Mint, v.MaximumToken0Amount)).
			OutputToken(event.TokenInfoFromPubkey(accounts.Vault1Mint, v.MaximumToken1Amount)).
			MakerPubkey(accounts.Owner).
			Build()
		if err != nil {
			p.logger.Error("failed to build liquidity event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.CpmmWithdraw:
		accounts := raydium.ArrangeCpmmLiquidityAccounts(ix.Accounts)
		if accounts == nil {
			p.metrics.RecordInstructionSkipped("cpmm", "accounts")
			return
		}
		ev, err := newEventBuilder(event.ProtocolCPMM, meta).
			Kind(event.KindRemoveLiquidity).
			PoolPubkey(accounts.PoolState).
			InputToken(event.TokenInfoFromPubkey(accounts.Vault0Mint, v.MinimumToken0Amount)).
			OutputToken(event.TokenInfoFromPubkey(accounts.Vault1Mint, v.MinimumToken1Amount)).
			MakerPubkey(accounts.Owner).
			Build()
		if err != nil {
			p.logger.Error("failed to build liquidity event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.CpmmLpChangeEvent:
		kind := event.KindAddLiquidity
		if v.ChangeType != 0 {
			kind = event.KindRemoveLiquidity
		}
		// The event carries no mints, so the pool stands in on both sides.
		ev, err := newEventBuilder(event.ProtocolCPMM, meta).
			Kind(kind).
			PoolPubkey(v.PoolID).
			InputToken(event.TokenInfoFromPubkey(v.PoolID, v.Token0Amount)).
			OutputToken(event.TokenInfoFromPubkey(v.PoolID, v.Token1Amount)).
			Build()
		if err != nil {
			p.logger.Error("failed to build liquidity event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.CpmmInitialize:
		p.logger.Info("cpmm pool initialized",
			zap.String("signature", meta.Signature),
			zap.Uint64("init_amount_0", v.InitAmount0),
			zap.Uint64("init_amount_1", v.InitAmount1))

	case raydium.CpmmUnknown:
		p.metrics.RecordInstructionSkipped("cpmm", "unknown")
	}
}
