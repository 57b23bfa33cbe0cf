package raydium

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raydium-alerts/internal/solana"
)

func tpk(b byte) solana.Pubkey {
	var p solana.Pubkey
	p[0] = b
	return p
}

type payload struct {
	buf []byte
}

func newPayload(disc [8]byte) *payload {
	return &payload{buf: append([]byte{}, disc[:]...)}
}

func newEventPayload(disc [8]byte) *payload {
	p := &payload{buf: append([]byte{}, eventCPIPrefix[:]...)}
	p.buf = append(p.buf, disc[:]...)
	return p
}

func (p *payload) u8(v uint8) *payload {
	p.buf = append(p.buf, v)
	return p
}

func (p *payload) u16(v uint16) *payload {
	p.buf = binary.LittleEndian.AppendUint16(p.buf, v)
	return p
}

func (p *payload) i32(v int32) *payload {
	p.buf = binary.LittleEndian.AppendUint32(p.buf, uint32(v))
	return p
}

func (p *payload) u64(v uint64) *payload {
	p.buf = binary.LittleEndian.AppendUint64(p.buf, v)
	return p
}

func (p *payload) u128(v Uint128) *payload {
	return p.u64(v.Lo).u64(v.Hi)
}

func (p *payload) pubkey(pk solana.Pubkey) *payload {
	p.buf = append(p.buf, pk[:]...)
	return p
}

func TestDecodeCpmmSwapBaseInput(t *testing.T) {
	data := newPayload(cpmmSwapBaseInputDisc).u64(1000).u64(900).buf

	ix, ok := DecodeCpmm(data).(CpmmSwapBaseInput)
	require.True(t, ok)
	assert.Equal(t, uint64(1000), ix.AmountIn)
	assert.Equal(t, uint64(900), ix.MinimumAmountOut)
}

func TestDecodeCpmmSwapBaseOutput(t *testing.T) {
	data := newPayload(cpmmSwapBaseOutputDisc).u64(1100).u64(1000).buf

	ix, ok := DecodeCpmm(data).(CpmmSwapBaseOutput)
	require.True(t, ok)
	assert.Equal(t, uint64(1100), ix.MaxAmountIn)
	assert.Equal(t, uint64(1000), ix.AmountOut)
}

func TestDecodeCpmmSwapEvent(t *testing.T) {
	pool, inMint, outMint := tpk(1), tpk(2), tpk(3)
	data := newEventPayload(cpmmSwapEventDisc).
		pubkey(pool).
		u64(10).u64(20). // vault balances before
		u64(1000).u64(950).
		u64(0).u64(0). // transfer fees
		u8(1).         // base_input
		pubkey(inMint).
		pubkey(outMint).
		u64(25).buf

	ev, ok := DecodeCpmm(data).(CpmmSwapEvent)
	require.True(t, ok)
	assert.Equal(t, pool, ev.PoolID)
	assert.Equal(t, inMint, ev.InputMint)
	assert.Equal(t, outMint, ev.OutputMint)
	assert.Equal(t, uint64(1000), ev.InputAmount)
	assert.Equal(t, uint64(950), ev.OutputAmount)
	assert.Equal(t, uint64(25), ev.TradeFee)
	assert.True(t, ev.BaseInput)
}

func TestDecodeCpmmLpChangeEvent(t *testing.T) {
	pool := tpk(1)
	data := newEventPayload(cpmmLpChangeEventDisc).
		pubkey(pool).
		u64(0).u64(0).u64(0).
		u64(500).u64(600).
		u64(0).u64(0).
		u8(1).buf

	ev, ok := DecodeCpmm(data).(CpmmLpChangeEvent)
	require.True(t, ok)
	assert.Equal(t, pool, ev.PoolID)
	assert.Equal(t, uint64(500), ev.Token0Amount)
	assert.Equal(t, uint64(600), ev.Token1Amount)
	assert.Equal(t, uint8(1), ev.ChangeType)
}

func TestDecodeCpmmUnknownAndMalformed(t *testing.T) {
	// Unrecognized discriminator.
	_, ok := DecodeCpmm(newPayload([8]byte{1, 2, 3, 4, 5, 6, 7, 8}).buf).(CpmmUnknown)
	assert.True(t, ok)

	// Known discriminator, truncated arguments.
	_, ok = DecodeCpmm(newPayload(cpmmSwapBaseInputDisc).u64(1000).buf).(CpmmUnknown)
	assert.True(t, ok)

	// Too short for any discriminator.
	_, ok = DecodeCpmm([]byte{1, 2, 3}).(CpmmUnknown)
	assert.True(t, ok)
}

func TestDecodeClmmSwap(t *testing.T) {
	data := newPayload(clmmSwapDisc).
		u64(5000).
		u64(4900).
		u128(Uint128{Lo: 7, Hi: 1}).
		u8(1).buf

	ix, ok := DecodeClmm(data).(ClmmSwap)
	require.True(t, ok)
	assert.Equal(t, uint64(5000), ix.Amount)
	assert.Equal(t, uint64(4900), ix.OtherAmountThreshold)
	assert.Equal(t, Uint128{Lo: 7, Hi: 1}, ix.SqrtPriceLimitX64)
	assert.True(t, ix.IsBaseInput)
}

func TestDecodeClmmSwapEvent(t *testing.T) {
	pool, sender, acc0, acc1 := tpk(1), tpk(2), tpk(3), tpk(4)
	data := newEventPayload(clmmSwapEventDisc).
		pubkey(pool).
		pubkey(sender).
		pubkey(acc0).
		pubkey(acc1).
		u64(100).u64(0).
		u64(200).u64(0).
		u8(0). // zero_for_one = false
		u128(Uint128{}).
		u128(Uint128{}).
		i32(-5).buf

	ev, ok := DecodeClmm(data).(ClmmSwapEvent)
	require.True(t, ok)
	assert.Equal(t, pool, ev.PoolState)
	assert.Equal(t, sender, ev.Sender)
	assert.Equal(t, uint64(100), ev.Amount0)
	assert.Equal(t, uint64(200), ev.Amount1)
	assert.False(t, ev.ZeroForOne)
	assert.Equal(t, int32(-5), ev.Tick)
}

func TestDecodeClmmPoolCreatedEvent(t *testing.T) {
	mint0, mint1, pool := tpk(1), tpk(2), tpk(3)
	data := newEventPayload(clmmPoolCreatedEventDisc).
		pubkey(mint0).
		pubkey(mint1).
		u16(64). // tick spacing
		pubkey(pool).
		u128(Uint128{Lo: 42}).
		i32(-100).
		pubkey(tpk(4)).
		pubkey(tpk(5)).buf

	ev, ok := DecodeClmm(data).(ClmmPoolCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, mint0, ev.TokenMint0)
	assert.Equal(t, mint1, ev.TokenMint1)
	assert.Equal(t, uint16(64), ev.TickSpacing)
	assert.Equal(t, pool, ev.PoolState)
	assert.Equal(t, int32(-100), ev.Tick)
}

func TestDecodeClmmCreatePool(t *testing.T) {
	data := newPayload(clmmCreatePoolDisc).
		u128(Uint128{Lo: 42}).
		u64(1700000000).buf

	ix, ok := DecodeClmm(data).(ClmmCreatePool)
	require.True(t, ok)
	assert.Equal(t, Uint128{Lo: 42}, ix.SqrtPriceX64)
	assert.Equal(t, uint64(1700000000), ix.OpenTime)
}

func TestDecodeClmmLiquidityVariants(t *testing.T) {
	inc := newPayload(clmmIncreaseLiquidityDisc).u128(Uint128{Lo: 9}).u64(1).u64(2).buf
	ix, ok := DecodeClmm(inc).(ClmmIncreaseLiquidity)
	require.True(t, ok)
	assert.Equal(t, uint64(1), ix.Amount0Max)

	dec := newPayload(clmmDecreaseLiquidityV2Disc).u128(Uint128{Lo: 9}).u64(3).u64(4).buf
	dx, ok := DecodeClmm(dec).(ClmmDecreaseLiquidityV2)
	require.True(t, ok)
	assert.Equal(t, uint64(4), dx.Amount1Min)

	_, ok = DecodeClmm(newPayload(clmmClosePositionDisc).buf).(ClmmClosePosition)
	assert.True(t, ok)
}

func TestDecodeAmmV4Swaps(t *testing.T) {
	in := append([]byte{ammV4SwapBaseInDisc},
		binary.LittleEndian.AppendUint64(binary.LittleEndian.AppendUint64(nil, 1000), 900)...)
	ix, ok := DecodeAmmV4(in).(AmmV4SwapBaseIn)
	require.True(t, ok)
	assert.Equal(t, uint64(1000), ix.AmountIn)
	assert.Equal(t, uint64(900), ix.MinimumAmountOut)

	out := append([]byte{ammV4SwapBaseOutDisc},
		binary.LittleEndian.AppendUint64(binary.LittleEndian.AppendUint64(nil, 1100), 1000)...)
	ox, ok := DecodeAmmV4(out).(AmmV4SwapBaseOut)
	require.True(t, ok)
	assert.Equal(t, uint64(1100), ox.MaxAmountIn)
	assert.Equal(t, uint64(1000), ox.AmountOut)
}

func TestDecodeAmmV4Unknown(t *testing.T) {
	_, ok := DecodeAmmV4([]byte{250}).(AmmV4Unknown)
	assert.True(t, ok)

	_, ok = DecodeAmmV4(nil).(AmmV4Unknown)
	assert.True(t, ok)

	// Known discriminator with truncated arguments.
	_, ok = DecodeAmmV4([]byte{ammV4SwapBaseInDisc, 1, 2}).(AmmV4Unknown)
	assert.True(t, ok)
}

func TestArrangeAmmV4SwapAccounts(t *testing.T) {
	accounts := make([]solana.Pubkey, 18)
	for i := range accounts {
		accounts[i] = tpk(byte(i + 1))
	}

	arranged := ArrangeAmmV4SwapAccounts(accounts)
	require.NotNil(t, arranged)
	assert.Equal(t, accounts[1], arranged.Amm)
	assert.Equal(t, accounts[15], arranged.UserSourceTokenAccount)
	assert.Equal(t, accounts[16], arranged.UserDestinationTokenAccount)
	assert.Equal(t, accounts[17], arranged.UserSourceOwner)

	// The 17-account layout omits the target orders account.
	short := ArrangeAmmV4SwapAccounts(accounts[:17])
	require.NotNil(t, short)
	assert.Equal(t, accounts[14], short.UserSourceTokenAccount)
	assert.Equal(t, accounts[16], short.UserSourceOwner)

	assert.Nil(t, ArrangeAmmV4SwapAccounts(accounts[:10]))
}

func TestArrangeCpmmSwapAccounts(t *testing.T) {
	accounts := make([]solana.Pubkey, 13)
	for i := range accounts {
		accounts[i] = tpk(byte(i + 1))
	}

	arranged := ArrangeCpmmSwapAccounts(accounts)
	require.NotNil(t, arranged)
	assert.Equal(t, accounts[0], arranged.Payer)
	assert.Equal(t, accounts[3], arranged.PoolState)
	assert.Equal(t, accounts[10], arranged.InputTokenMint)
	assert.Equal(t, accounts[11], arranged.OutputTokenMint)

	assert.Nil(t, ArrangeCpmmSwapAccounts(accounts[:5]))
}

func TestArrangeClmmAccounts(t *testing.T) {
	accounts := make([]solana.Pubkey, 13)
	for i := range accounts {
		accounts[i] = tpk(byte(i + 1))
	}

	v2 := ArrangeClmmSwapV2Accounts(accounts)
	require.NotNil(t, v2)
	assert.Equal(t, accounts[0], v2.Payer)
	assert.Equal(t, accounts[2], v2.PoolState)
	assert.Equal(t, accounts[11], v2.InputVaultMint)
	assert.Equal(t, accounts[12], v2.OutputVaultMint)

	legacy := ArrangeClmmSwapAccounts(accounts[:10])
	require.NotNil(t, legacy)
	assert.Equal(t, accounts[2], legacy.PoolState)
	assert.Nil(t, ArrangeClmmSwapAccounts(accounts[:4]))

	create := ArrangeClmmCreatePoolAccounts(accounts[:5])
	require.NotNil(t, create)
	assert.Equal(t, accounts[3], create.TokenMint0)
	assert.Equal(t, accounts[4], create.TokenMint1)
}

func TestUint128(t *testing.T) {
	assert.Equal(t, "0", Uint128{}.String())
	assert.Equal(t, "18446744073709551616", Uint128{Hi: 1}.String()) // 2^64
	assert.Equal(t, 1, Uint128{Hi: 1}.Cmp(Uint128{Lo: 5}))
	assert.Equal(t, -1, Uint128{Lo: 1}.Cmp(Uint128{Lo: 5}))
	assert.Equal(t, 0, Uint128{Lo: 5}.Cmp(Uint128{Lo: 5}))
}
