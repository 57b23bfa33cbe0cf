package raydium

import "raydium-alerts/internal/solana"

// CpmmInstruction is the closed set of recognized CPMM variants.
type CpmmInstruction interface {
	isCpmm()
}

// CpmmSwapBaseInput is an exact-input swap; minimum_amount_out is only a
// slippage bound.
type CpmmSwapBaseInput struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

// CpmmSwapBaseOutput is an exact-output swap; max_amount_in is only a
// slippage bound.
type CpmmSwapBaseOutput struct {
	MaxAmountIn uint64
	AmountOut   uint64
}

// CpmmDeposit adds liquidity.
type CpmmDeposit struct {
	LpTokenAmount       uint64
	MaximumToken0Amount uint64
	MaximumToken1Amount uint64
}

// CpmmWithdraw removes liquidity.
type CpmmWithdraw struct {
	LpTokenAmount       uint64
	MinimumToken0Amount uint64
	MinimumToken1Amount uint64
}

// CpmmInitialize creates a pool.
type CpmmInitialize struct {
	InitAmount0 uint64
	InitAmount1 uint64
	OpenTime    uint64
}

// CpmmSwapEvent is the program's self-emitted swap log with settled
// amounts rather than slippage bounds.
type CpmmSwapEvent struct {
	PoolID            solana.Pubkey
	InputVaultBefore  uint64
	OutputVaultBefore uint64
	InputAmount       uint64
	OutputAmount      uint64
	InputTransferFee  uint64
	OutputTransferFee uint64
	BaseInput         bool
	InputMint         solana.Pubkey
	OutputMint        solana.Pubkey
	TradeFee          uint64
}

// CpmmLpChangeEvent is the program's self-emitted liquidity change log.
// ChangeType 0 is an add, 1 a remove.
type CpmmLpChangeEvent struct {
	PoolID            solana.Pubkey
	LpAmountBefore    uint64
	Token0VaultBefore uint64
	Token1VaultBefore uint64
	Token0Amount      uint64
	Token1Amount      uint64
	Token0TransferFee uint64
	Token1TransferFee uint64
	ChangeType        uint8
}

// CpmmUnknown carries the raw discriminator of an unrecognized variant.
type CpmmUnknown struct {
	Discriminator []byte
}

func (CpmmSwapBaseInput) isCpmm()  {}
func (CpmmSwapBaseOutput) isCpmm() {}
func (CpmmDeposit) isCpmm()        {}
func (CpmmWithdraw) isCpmm()       {}
func (CpmmInitialize) isCpmm()     {}
func (CpmmSwapEvent) isCpmm()      {}
func (CpmmLpChangeEvent) isCpmm()  {}
func (CpmmUnknown) isCpmm()        {}

var (
	cpmmInitializeDisc     = [8]byte{175, 175, 109, 31, 13, 152, 155, 237}
	cpmmDepositDisc        = [8]byte{242, 35, 198, 137, 82, 225, 242, 182}
	cpmmWithdrawDisc       = [8]byte{183, 18, 70, 156, 148, 109, 161, 34}
	cpmmSwapBaseInputDisc  = [8]byte{143, 190, 90, 218, 196, 30, 51, 222}
	cpmmSwapBaseOutputDisc = [8]byte{55, 217, 98, 86, 163, 74, 180, 173}

	cpmmSwapEventDisc     = [8]byte{64, 198, 205, 232, 38, 8, 113, 226}
	cpmmLpChangeEventDisc = [8]byte{121, 163, 205, 201, 57, 218, 117, 60}
)

// DecodeCpmm decodes one CPMM instruction payload.
func DecodeCpmm(data []byte) CpmmInstruction {
	disc, args, isEvent, ok := splitAnchorData(data)
	if !ok {
		return CpmmUnknown{Discriminator: data}
	}

	r := newReader(args)
	if isEvent {
		switch disc {
		case cpmmSwapEventDisc:
			ev := CpmmSwapEvent{
				PoolID:            r.pubkey(),
				InputVaultBefore:  r.u64(),
				OutputVaultBefore: r.u64(),
				InputAmount:       r.u64(),
				OutputAmount:      r.u64(),
				InputTransferFee:  r.u64(),
				OutputTransferFee: r.u64(),
				BaseInput:         r.boolByte(),
				InputMint:         r.pubkey(),
				OutputMint:        r.pubkey(),
				TradeFee:          r.u64(),
			}
			if r.ok() {
				return ev
			}
		case cpmmLpChangeEventDisc:
			ev := CpmmLpChangeEvent{
				PoolID:            r.pubkey(),
				LpAmountBefore:    r.u64(),
				Token0VaultBefore: r.u64(),
				Token1VaultBefore: r.u64(),
				Token0Amount:      r.u64(),
				Token1Amount:      r.u64(),
				Token0TransferFee: r.u64(),
				Token1TransferFee: r.u64(),
				ChangeType:        r.u8(),
			}
			if r.ok() {
				return ev
			}
		}
		return CpmmUnknown{Discriminator: disc[:]}
	}

	switch disc {
	case cpmmSwapBaseInputDisc:
		ix := CpmmSwapBaseInput{AmountIn: r.u64(), MinimumAmountOut: r.u64()}
		if r.ok() {
			return ix
		}
	case cpmmSwapBaseOutputDisc:
		ix := CpmmSwapBaseOutput{MaxAmountIn: r.u64(), AmountOut: r.u64()}
		if r.ok() {
			return ix
		}
	case cpmmDepositDisc:
		ix := CpmmDeposit{
			LpTokenAmount:       r.u64(),
			MaximumToken0Amount: r.u64(),
			MaximumToken1Amount: r.u64(),
		}
		if r.ok() {
			return ix
		}
	case cpmmWithdrawDisc:
		ix := CpmmWithdraw{
			LpTokenAmount:       r.u64(),
			MinimumToken0Amount: r.u64(),
			MinimumToken1Amount: r.u64(),
		}
		if r.ok() {
			return ix
		}
	case cpmmInitializeDisc:
		ix := CpmmInitialize{
			InitAmount0: r.u64(),
			InitAmount1: r.u64(),
			OpenTime:    r.u64(),
		}
		if r.ok() {
			return ix
		}
	}
	return CpmmUnknown{Discriminator: disc[:]}
}

// CpmmSwapAccounts are the accounts a swap processor needs, pulled from the
// SwapBaseInput/SwapBaseOutput account layout.
type CpmmSwapAccounts struct {
	Payer           solana.Pubkey
	PoolState       solana.Pubkey
	InputTokenMint  solana.Pubkey
	OutputTokenMint solana.Pubkey
}

// ArrangeCpmmSwapAccounts maps the raw account list to named roles.
// Returns nil when the list is too short to hold the expected layout.
func ArrangeCpmmSwapAccounts(accounts []solana.Pubkey) *CpmmSwapAccounts {
	if len(accounts) < 12 {
		return nil
	}
	return &CpmmSwapAccounts{
		Payer:           accounts[0],
		PoolState:       accounts[3],
		InputTokenMint:  accounts[10],
		OutputTokenMint: accounts[11],
	}
}

// CpmmLiquidityAccounts are the accounts shared by the Deposit and
// Withdraw layouts.
type CpmmLiquidityAccounts struct {
	Owner      solana.Pubkey
	PoolState  solana.Pubkey
	Vault0Mint solana.Pubkey
	Vault1Mint solana.Pubkey
}

// ArrangeCpmmLiquidityAccounts maps the raw account list to named roles.
func ArrangeCpmmLiquidityAccounts(accounts []solana.Pubkey) *CpmmLiquidityAccounts {
	if len(accounts) < 12 {
		return nil
	}
	return &CpmmLiquidityAccounts{
		Owner:      accounts[0],
		PoolState:  accounts[2],
		Vault0Mint: accounts[10],
		Vault1Mint: accounts[11],
	}
}
