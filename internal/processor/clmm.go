package processor

import (
	"math/big"

	"go.uber.org/zap"

	"raydium-alerts/internal/event"
	"raydium-alerts/internal/observability"
	"raydium-alerts/internal/raydium"
	"raydium-alerts/internal/solana"
)

// CLMM processes Raydium CLMM instructions. Only SwapV2 exposes mints; the
// legacy Swap and the self-emitted SwapEvent are matched on the pool alone.
// Position and liquidity variants are log-only.
type CLMM struct {
	filter  *event.Filter
	emitter *Emitter
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewCLMM creates the CLMM processor.
func NewCLMM(filter *event.Filter, emitter *Emitter, logger *zap.Logger, metrics *observability.Metrics) *CLMM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLMM{filter: filter, emitter: emitter, logger: logger, metrics: metrics}
}

// ProgramID implements Processor.
func (p *CLMM) ProgramID() solana.Pubkey {
	return raydium.ClmmProgramID
}

// Process implements Processor.
func (p *CLMM) Process(meta solana.TxMeta, ix solana.Instruction, _ []solana.NestedInstruction) {
	switch v := raydium.DecodeClmm(ix.Data).(type) {
	case raydium.ClmmSwap:
		accounts := raydium.ArrangeClmmSwapAccounts(ix.Accounts)
		if accounts == nil {
			p.metrics.RecordInstructionSkipped("clmm", "accounts")
			return
		}
		if !p.filter.MatchesPool(accounts.PoolState) {
			p.metrics.RecordEventFiltered("clmm")
			return
		}

		direction := event.DirectionExactOutput
		inputAmount, outputAmount := v.OtherAmountThreshold, v.Amount
		if v.IsBaseInput {
			direction = event.DirectionExactInput
			inputAmount, outputAmount = v.Amount, v.OtherAmountThreshold
		}

		// No mints in this layout; the pool stands in on both sides.
		ev, err := newEventBuilder(event.ProtocolCLMM, meta).
			PoolPubkey(accounts.PoolState).
			InputToken(event.TokenInfoFromPubkey(accounts.PoolState, inputAmount)).
			OutputToken(event.TokenInfoFromPubkey(accounts.PoolState, outputAmount)).
			Direction(direction).
			MakerPubkey(accounts.Payer).
			Build()
		if err != nil {
			p.logger.Error("failed to build swap event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.ClmmSwapV2:
		accounts := raydium.ArrangeClmmSwapV2Accounts(ix.Accounts)
		if accounts == nil {
			p.metrics.RecordInstructionSkipped("clmm", "accounts")
			return
		}
		if !p.filter.Matches(accounts.PoolState, &accounts.InputVaultMint, &accounts.OutputVaultMint) {
			p.metrics.RecordEventFiltered("clmm")
			return
		}

		direction := event.DirectionExactOutput
		inputAmount, outputAmount := v.OtherAmountThreshold, v.Amount
		if v.IsBaseInput {
			direction = event.DirectionExactInput
			inputAmount, outputAmount = v.Amount, v.OtherAmountThreshold
		}

		ev, err := newEventBuilder(event.ProtocolCLMM, meta).
			PoolPubkey(accounts.PoolState).
			InputToken(event.TokenInfoFromPubkey(accounts.InputVaultMint, inputAmount)).
			OutputToken(event.TokenInfoFromPubkey(accounts.OutputVaultMint, outputAmount)).
			Direction(direction).
			MakerPubkey(accounts.Payer).
			Build()
		if err != nil {
			p.logger.Error("failed to build swap event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.ClmmSwapEvent:
		if !p.filter.MatchesPool(v.PoolState) {
			p.metrics.RecordEventFiltered("clmm")
			return
		}

		inputAccount, outputAccount := v.TokenAccount1, v.TokenAccount0
		inputAmount, outputAmount := v.Amount1, v.Amount0
		if v.ZeroForOne {
			inputAccount, outputAccount = v.TokenAccount0, v.TokenAccount1
			inputAmount, outputAmount = v.Amount0, v.Amount1
		}

		ev, err := newEventBuilder(event.ProtocolCLMM, meta).
			PoolPubkey(v.PoolState).
			InputToken(event.TokenInfoFromPubkey(inputAccount, inputAmount)).
			OutputToken(event.TokenInfoFromPubkey(outputAccount, outputAmount)).
			Direction(event.DirectionUnknown).
			MakerPubkey(v.Sender).
			Build()
		if err != nil {
			p.logger.Error("failed to build swap event", zap.Error(err))
			return
		}
		p.emitter.Emit(ev)

	case raydium.ClmmCreatePool:
		accounts := raydium.ArrangeClmmCreatePoolAccounts(ix.Accounts)
		if accounts == nil {
			p.metrics.RecordInstructionSkipped("clmm", "accounts")
			return
		}
		ev, err := newEventBuilder(event.ProtocolCLMM, meta).
			Kind(event.KindCreatePool).
			PoolPubkey(accounts.PoolState).
			InputToken(event.TokenInfoFromPubkey(accounts.TokenMint0, 0)).
			OutputToken(event.TokenInfoFromPubkey(accounts.TokenMint1, 0)).
			MakerPubkey(accounts.PoolCreator).
			Build()
		if err != nil {
			p.logger.Error("failed to build pool event", zap.Error(err))
			return
		}
		p.logger.Info("clmm pool created",
			zap.String("signature", meta.Signature),
			zap.String("sqrt_price", v.SqrtPriceX64.String()),
			zap.Uint64("open_time", v.OpenTime))
		p.emitter.Emit(ev)

	case raydium.ClmmPoolCreatedEvent:
		p.logger.Info("clmm pool created event",
			zap.String("signature", meta.Signature),
			zap.String("pool", v.PoolState.String()),
			zap.Uint16("tick_spacing", v.TickSpacing),
			zap.String("sqrt_price", v.SqrtPriceX64.String()))

	case raydium.ClmmIncreaseLiquidity:
		p.logIncreaseLiquidity(meta, v.Liquidity, v.Amount0Max, v.Amount1Max)

	case raydium.ClmmIncreaseLiquidityV2:
		p.logIncreaseLiquidity(meta, v.Liquidity, v.Amount0Max, v.Amount1Max)

	case raydium.ClmmDecreaseLiquidity:
		p.logDecreaseLiquidity(meta, v.Liquidity, v.Amount0Min, v.Amount1Min)

	case raydium.ClmmDecreaseLiquidityV2:
		p.logDecreaseLiquidity(meta, v.Liquidity, v.Amount0Min, v.Amount1Min)

	case raydium.ClmmLiquidityChangeEvent:
		delta := new(big.Int).Abs(new(big.Int).Sub(v.LiquidityAfter.Big(), v.LiquidityBefore.Big()))
		action := "remove"
		if v.LiquidityAfter.Cmp(v.LiquidityBefore) > 0 {
			action = "add"
		}
		p.logger.Info("clmm liquidity change event",
			zap.String("signature", meta.Signature),
			zap.String("pool", v.PoolState.String()),
			zap.String("action", action),
			zap.String("liquidity_delta", delta.String()),
			zap.Int32("tick", v.Tick))

	case raydium.ClmmOpenPosition:
		p.logOpenPosition(meta, v.TickLowerIndex, v.TickUpperIndex)

	case raydium.ClmmOpenPositionV2:
		p.logOpenPosition(meta, v.TickLowerIndex, v.TickUpperIndex)

	case raydium.ClmmClosePosition:
		p.logger.Info("clmm position closed", zap.String("signature", meta.Signature))

	case raydium.ClmmUnknown:
		p.metrics.RecordInstructionSkipped("clmm", "unknown")
	}
}

func (p *CLMM) logIncreaseLiquidity(meta solana.TxMeta, liquidity raydium.Uint128, amount0Max, amount1Max uint64) {
	p.logger.Info("clmm increase liquidity",
		zap.String("signature", meta.Signature),
		zap.String("liquidity", liquidity.String()),
		zap.Uint64("amount0_max", amount0Max),
		zap.Uint64("amount1_max", amount1Max))
}

func (p *CLMM) logDecreaseLiquidity(meta solana.TxMeta, liquidity raydium.Uint128, amount0Min, amount1Min uint64) {
	p.logger.Info("clmm decrease liquidity",
		zap.String("signature", meta.Signature),
		zap.String("liquidity", liquidity.String()),
		zap.Uint64("amount0_min", amount0Min),
		zap.Uint64("amount1_min", amount1Min))
}

func (p *CLMM) logOpenPosition(meta solana.TxMeta, tickLower, tickUpper int32) {
	p.logger.Info("clmm position opened",
		zap.String("signature", meta.Signature),
		zap.Int32("tick_lower", tickLower),
		zap.Int32("tick_upper", tickUpper))
}
