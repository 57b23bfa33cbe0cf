package raydium

import "raydium-alerts/internal/solana"

// ClmmInstruction is the closed set of recognized CLMM variants.
type ClmmInstruction interface {
	isClmm()
}

// ClmmSwap is the legacy swap; its account layout carries no mints.
type ClmmSwap struct {
	Amount               uint64
	OtherAmountThreshold uint64
	SqrtPriceLimitX64    Uint128
	IsBaseInput          bool
}

// ClmmSwapV2 is the swap with token-2022 support; mints are in the
// account layout.
type ClmmSwapV2 struct {
	Amount               uint64
	OtherAmountThreshold uint64
	SqrtPriceLimitX64    Uint128
	IsBaseInput          bool
}

// ClmmCreatePool creates a pool.
type ClmmCreatePool struct {
	SqrtPriceX64 Uint128
	OpenTime     uint64
}

// ClmmIncreaseLiquidity adds liquidity to a position.
type ClmmIncreaseLiquidity struct {
	Liquidity  Uint128
	Amount0Max uint64
	Amount1Max uint64
}

// ClmmIncreaseLiquidityV2 adds liquidity with token-2022 support.
type ClmmIncreaseLiquidityV2 struct {
	Liquidity  Uint128
	Amount0Max uint64
	Amount1Max uint64
}

// ClmmDecreaseLiquidity removes liquidity from a position.
type ClmmDecreaseLiquidity struct {
	Liquidity  Uint128
	Amount0Min uint64
	Amount1Min uint64
}

// ClmmDecreaseLiquidityV2 removes liquidity with token-2022 support.
type ClmmDecreaseLiquidityV2 struct {
	Liquidity  Uint128
	Amount0Min uint64
	Amount1Min uint64
}

// ClmmOpenPosition opens a position. Only the tick bounds are decoded.
type ClmmOpenPosition struct {
	TickLowerIndex int32
	TickUpperIndex int32
}

// ClmmOpenPositionV2 opens a position with token-2022 support.
type ClmmOpenPositionV2 struct {
	TickLowerIndex int32
	TickUpperIndex int32
}

// ClmmClosePosition closes a position; no arguments.
type ClmmClosePosition struct{}

// ClmmSwapEvent is the program's self-emitted swap log with settled
// amounts. ZeroForOne gives the trade direction between the two vaults.
type ClmmSwapEvent struct {
	PoolState     solana.Pubkey
	Sender        solana.Pubkey
	TokenAccount0 solana.Pubkey
	TokenAccount1 solana.Pubkey
	Amount0       uint64
	TransferFee0  uint64
	Amount1       uint64
	TransferFee1  uint64
	ZeroForOne    bool
	SqrtPriceX64  Uint128
	Liquidity     Uint128
	Tick          int32
}

// ClmmPoolCreatedEvent is the program's self-emitted pool creation log.
type ClmmPoolCreatedEvent struct {
	TokenMint0   solana.Pubkey
	TokenMint1   solana.Pubkey
	TickSpacing  uint16
	PoolState    solana.Pubkey
	SqrtPriceX64 Uint128
	Tick         int32
	TokenVault0  solana.Pubkey
	TokenVault1  solana.Pubkey
}

// ClmmLiquidityChangeEvent is the program's self-emitted liquidity log.
type ClmmLiquidityChangeEvent struct {
	PoolState       solana.Pubkey
	Tick            int32
	TickLower       int32
	TickUpper       int32
	LiquidityBefore Uint128
	LiquidityAfter  Uint128
}

// ClmmUnknown carries the raw discriminator of an unrecognized variant.
type ClmmUnknown struct {
	Discriminator []byte
}

func (ClmmSwap) isClmm()                 {}
func (ClmmSwapV2) isClmm()               {}
func (ClmmCreatePool) isClmm()           {}
func (ClmmIncreaseLiquidity) isClmm()    {}
func (ClmmIncreaseLiquidityV2) isClmm()  {}
func (ClmmDecreaseLiquidity) isClmm()    {}
func (ClmmDecreaseLiquidityV2) isClmm()  {}
func (ClmmOpenPosition) isClmm()         {}
func (ClmmOpenPositionV2) isClmm()       {}
func (ClmmClosePosition) isClmm()        {}
func (ClmmSwapEvent) isClmm()            {}
func (ClmmPoolCreatedEvent) isClmm()     {}
func (ClmmLiquidityChangeEvent) isClmm() {}
func (ClmmUnknown) isClmm()              {}

var (
	clmmCreatePoolDisc          = [8]byte{233, 146, 209, 142, 207, 104, 64, 188}
	clmmSwapDisc                = [8]byte{248, 198, 158, 145, 225, 117, 135, 200}
	clmmSwapV2Disc              = [8]byte{43, 4, 237, 11, 26, 201, 30, 98}
	clmmOpenPositionDisc        = [8]byte{135, 128, 47, 77, 15, 152, 240, 49}
	clmmOpenPositionV2Disc      = [8]byte{77, 184, 74, 214, 112, 86, 241, 199}
	clmmClosePositionDisc       = [8]byte{123, 134, 81, 0, 49, 68, 98, 98}
	clmmIncreaseLiquidityDisc   = [8]byte{46, 156, 243, 118, 13, 205, 251, 178}
	clmmIncreaseLiquidityV2Disc = [8]byte{133, 29, 89, 223, 69, 238, 176, 10}
	clmmDecreaseLiquidityDisc   = [8]byte{160, 38, 208, 111, 104, 91, 44, 1}
	clmmDecreaseLiquidityV2Disc = [8]byte{58, 127, 188, 62, 79, 82, 196, 96}

	clmmSwapEventDisc            = [8]byte{64, 198, 205, 232, 38, 8, 113, 226}
	clmmPoolCreatedEventDisc     = [8]byte{25, 94, 75, 47, 112, 99, 53, 63}
	clmmLiquidityChangeEventDisc = [8]byte{126, 240, 175, 206, 158, 88, 153, 107}
)

// DecodeClmm decodes one CLMM instruction payload.
func DecodeClmm(data []byte) ClmmInstruction {
	disc, args, isEvent, ok := splitAnchorData(data)
	if !ok {
		return ClmmUnknown{Discriminator: data}
	}

	r := newReader(args)
	if isEvent {
		switch disc {
		case clmmSwapEventDisc:
			ev := ClmmSwapEvent{
				PoolState:     r.pubkey(),
				Sender:        r.pubkey(),
				TokenAccount0: r.pubkey(),
				TokenAccount1: r.pubkey(),
				Amount0:       r.u64(),
				TransferFee0:  r.u64(),
				Amount1:       r.u64(),
				TransferFee1:  r.u64(),
				ZeroForOne:    r.boolByte(),
				SqrtPriceX64:  r.u128(),
				Liquidity:     r.u128(),
				Tick:          r.i32(),
			}
			if r.ok() {
				return ev
			}
		case clmmPoolCreatedEventDisc:
			ev := ClmmPoolCreatedEvent{
				TokenMint0:   r.pubkey(),
				TokenMint1:   r.pubkey(),
				TickSpacing:  r.u16(),
				PoolState:    r.pubkey(),
				SqrtPriceX64: r.u128(),
				Tick:         r.i32(),
				TokenVault0:  r.pubkey(),
				TokenVault1:  r.pubkey(),
			}
			if r.ok() {
				return ev
			}
		case clmmLiquidityChangeEventDisc:
			ev := ClmmLiquidityChangeEvent{
				PoolState:       r.pubkey(),
				Tick:            r.i32(),
				TickLower:       r.i32(),
				TickUpper:       r.i32(),
				LiquidityBefore: r.u128(),
				LiquidityAfter:  r.u128(),
			}
			if r.ok() {
				return ev
			}
		}
		return ClmmUnknown{Discriminator: disc[:]}
	}

	switch disc {
	case clmmSwapDisc:
		ix := ClmmSwap{
			Amount:               r.u64(),
			OtherAmountThreshold: r.u64(),
			SqrtPriceLimitX64:    r.u128(),
			IsBaseInput:          r.boolByte(),
		}
		if r.ok() {
			return ix
		}
	case clmmSwapV2Disc:
		ix := ClmmSwapV2{
			Amount:               r.u64(),
			OtherAmountThreshold: r.u64(),
			SqrtPriceLimitX64:    r.u128(),
			IsBaseInput:          r.boolByte(),
		}
		if r.ok() {
			return ix
		}
	case clmmCreatePoolDisc:
		ix := ClmmCreatePool{SqrtPriceX64: r.u128(), OpenTime: r.u64()}
		if r.ok() {
			return ix
		}
	case clmmIncreaseLiquidityDisc:
		ix := ClmmIncreaseLiquidity{Liquidity: r.u128(), Amount0Max: r.u64(), Amount1Max: r.u64()}
		if r.ok() {
			return ix
		}
	case clmmIncreaseLiquidityV2Disc:
		ix := ClmmIncreaseLiquidityV2{Liquidity: r.u128(), Amount0Max: r.u64(), Amount1Max: r.u64()}
		if r.ok() {
			return ix
		}
	case clmmDecreaseLiquidityDisc:
		ix := ClmmDecreaseLiquidity{Liquidity: r.u128(), Amount0Min: r.u64(), Amount1Min: r.u64()}
		if r.ok() {
			return ix
		}
	case clmmDecreaseLiquidityV2Disc:
		ix := ClmmDecreaseLiquidityV2{Liquidity: r.u128(), Amount0Min: r.u64(), Amount1Min: r.u64()}
		if r.ok() {
			return ix
		}
	case clmmOpenPositionDisc:
		ix := ClmmOpenPosition{TickLowerIndex: r.i32(), TickUpperIndex: r.i32()}
		if r.ok() {
			return ix
		}
	case clmmOpenPositionV2Disc:
		ix := ClmmOpenPositionV2{TickLowerIndex: r.i32(), TickUpperIndex: r.i32()}
		if r.ok() {
			return ix
		}
	case clmmClosePositionDisc:
		return ClmmClosePosition{}
	}
	return ClmmUnknown{Discriminator: disc[:]}
}

// ClmmSwapAccounts are the accounts the legacy Swap layout provides; it
// carries no mint addresses.
type ClmmSwapAccounts struct {
	Payer     solana.Pubkey
	PoolState solana.Pubkey
}

// ArrangeClmmSwapAccounts maps the raw account list to named roles.
func ArrangeClmmSwapAccounts(accounts []solana.Pubkey) *ClmmSwapAccounts {
	if len(accounts) < 10 {
		return nil
	}
	return &ClmmSwapAccounts{
		Payer:     accounts[0],
		PoolState: accounts[2],
	}
}

// ClmmSwapV2Accounts are the accounts the SwapV2 layout provides,
// including both vault mints.
type ClmmSwapV2Accounts struct {
	Payer           solana.Pubkey
	PoolState       solana.Pubkey
	InputVaultMint  solana.Pubkey
	OutputVaultMint solana.Pubkey
}

// ArrangeClmmSwapV2Accounts maps the raw account list to named roles.
func ArrangeClmmSwapV2Accounts(accounts []solana.Pubkey) *ClmmSwapV2Accounts {
	if len(accounts) < 13 {
		return nil
	}
	return &ClmmSwapV2Accounts{
		Payer:           accounts[0],
		PoolState:       accounts[2],
		InputVaultMint:  accounts[11],
		OutputVaultMint: accounts[12],
	}
}

// ClmmCreatePoolAccounts are the accounts of the CreatePool layout.
type ClmmCreatePoolAccounts struct {
	PoolCreator solana.Pubkey
	PoolState   solana.Pubkey
	TokenMint0  solana.Pubkey
	TokenMint1  solana.Pubkey
}

// ArrangeClmmCreatePoolAccounts maps the raw account list to named roles.
func ArrangeClmmCreatePoolAccounts(accounts []solana.Pubkey) *ClmmCreatePoolAccounts {
	if len(accounts) < 5 {
		return nil
	}
	return &ClmmCreatePoolAccounts{
		PoolCreator: accounts[0],
		PoolState:   accounts[2],
		TokenMint0:  accounts[3],
		TokenMint1:  accounts[4],
	}
}
