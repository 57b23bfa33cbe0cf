package raydium

import "raydium-alerts/internal/solana"

// AmmV4Instruction is the closed set of recognized AMM V4 variants. The
// program predates Anchor, so discriminators are single bytes.
type AmmV4Instruction interface {
	isAmmV4()
}

// AmmV4Initialize creates a pool.
type AmmV4Initialize struct {
	Nonce    uint8
	OpenTime uint64
}

// AmmV4Initialize2 creates a pool with initial deposits.
type AmmV4Initialize2 struct {
	Nonce          uint8
	OpenTime       uint64
	InitPcAmount   uint64
	InitCoinAmount uint64
}

// AmmV4Deposit adds liquidity.
type AmmV4Deposit struct {
	MaxCoinAmount uint64
	MaxPcAmount   uint64
	BaseSide      uint64
}

// AmmV4Withdraw removes liquidity.
type AmmV4Withdraw struct {
	Amount uint64
}

// AmmV4SwapBaseIn is an exact-input swap; minimum_amount_out is only a
// slippage bound. Settled amounts must come from nested token transfers.
type AmmV4SwapBaseIn struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

// AmmV4SwapBaseOut is an exact-output swap; max_amount_in is only a
// slippage bound.
type AmmV4SwapBaseOut struct {
	MaxAmountIn uint64
	AmountOut   uint64
}

// AmmV4Unknown carries the raw discriminator of an unrecognized variant.
type AmmV4Unknown struct {
	Discriminator uint8
}

func (AmmV4Initialize) isAmmV4()  {}
func (AmmV4Initialize2) isAmmV4() {}
func (AmmV4Deposit) isAmmV4()     {}
func (AmmV4Withdraw) isAmmV4()    {}
func (AmmV4SwapBaseIn) isAmmV4()  {}
func (AmmV4SwapBaseOut) isAmmV4() {}
func (AmmV4Unknown) isAmmV4()     {}

// Single-byte discriminators.
const (
	ammV4InitializeDisc  = 0
	ammV4Initialize2Disc = 1
	ammV4DepositDisc     = 3
	ammV4WithdrawDisc    = 4
	ammV4SwapBaseInDisc  = 9
	ammV4SwapBaseOutDisc = 11
)

// DecodeAmmV4 decodes one AMM V4 instruction payload.
func DecodeAmmV4(data []byte) AmmV4Instruction {
	if len(data) == 0 {
		return AmmV4Unknown{}
	}

	r := newReader(data[1:])
	switch data[0] {
	case ammV4SwapBaseInDisc:
		ix := AmmV4SwapBaseIn{AmountIn: r.u64(), MinimumAmountOut: r.u64()}
		if r.ok() {
			return ix
		}
	case ammV4SwapBaseOutDisc:
		ix := AmmV4SwapBaseOut{MaxAmountIn: r.u64(), AmountOut: r.u64()}
		if r.ok() {
			return ix
		}
	case ammV4DepositDisc:
		ix := AmmV4Deposit{MaxCoinAmount: r.u64(), MaxPcAmount: r.u64(), BaseSide: r.u64()}
		if r.ok() {
			return ix
		}
	case ammV4WithdrawDisc:
		ix := AmmV4Withdraw{Amount: r.u64()}
		if r.ok() {
			return ix
		}
	case ammV4InitializeDisc:
		ix := AmmV4Initialize{Nonce: r.u8(), OpenTime: r.u64()}
		if r.ok() {
			return ix
		}
	case ammV4Initialize2Disc:
		ix := AmmV4Initialize2{
			Nonce:          r.u8(),
			OpenTime:       r.u64(),
			InitPcAmount:   r.u64(),
			InitCoinAmount: r.u64(),
		}
		if r.ok() {
			return ix
		}
	}
	return AmmV4Unknown{Discriminator: data[0]}
}

// AmmV4SwapAccounts are the swap accounts a processor needs. AMM V4 swaps
// expose the user's token accounts, not mints.
type AmmV4SwapAccounts struct {
	Amm                         solana.Pubkey
	UserSourceTokenAccount      solana.Pubkey
	UserDestinationTokenAccount solana.Pubkey
	UserSourceOwner             solana.Pubkey
}

// ArrangeAmmV4SwapAccounts maps the raw account list to named roles. The
// swap layout comes in two lengths: 18 accounts with the target orders
// account, 17 without it.
func ArrangeAmmV4SwapAccounts(accounts []solana.Pubkey) *AmmV4SwapAccounts {
	switch {
	case len(accounts) >= 18:
		return &AmmV4SwapAccounts{
			Amm:                         accounts[1],
			UserSourceTokenAccount:      accounts[15],
			UserDestinationTokenAccount: accounts[16],
			UserSourceOwner:             accounts[17],
		}
	case len(accounts) == 17:
		return &AmmV4SwapAccounts{
			Amm:                         accounts[1],
			UserSourceTokenAccount:      accounts[14],
			UserDestinationTokenAccount: accounts[15],
			UserSourceOwner:             accounts[16],
		}
	default:
		return nil
	}
}
