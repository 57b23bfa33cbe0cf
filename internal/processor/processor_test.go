package processor

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raydium-alerts/internal/event"
	"raydium-alerts/internal/solana"
	"raydium-alerts/internal/transfer"
)

var (
	cpmmSwapBaseInputDisc = []byte{143, 190, 90, 218, 196, 30, 51, 222}
	eventCPIPrefix        = []byte{228, 69, 165, 46, 81, 203, 154, 29}
	cpmmLpChangeEventDisc = []byte{121, 163, 205, 201, 57, 218, 117, 60}
	clmmSwapEventDisc     = []byte{64, 198, 205, 232, 38, 8, 113, 226}
)

func ppk(b byte) solana.Pubkey {
	var p solana.Pubkey
	p[0] = b
	return p
}

func accountList(n int) []solana.Pubkey {
	accounts := make([]solana.Pubkey, n)
	for i := range accounts {
		accounts[i] = ppk(byte(i + 1))
	}
	return accounts
}

func le64(vs ...uint64) []byte {
	var out []byte
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint64(out, v)
	}
	return out
}

func testMeta() solana.TxMeta {
	blockTime := int64(1700000000)
	return solana.TxMeta{Signature: "sig", Slot: 42, BlockTime: &blockTime}
}

// jsonEmitter captures emitted events as JSON lines for inspection.
func jsonEmitter() (*Emitter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewEmitter(event.FormatJSON, nil, &buf, nil, nil), &buf
}

func emittedEvents(t *testing.T, buf *bytes.Buffer) []event.SwapEvent {
	t.Helper()
	var events []event.SwapEvent
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev event.SwapEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		events = append(events, ev)
	}
	return events
}

func TestCpmmSwapBaseInputEmits(t *testing.T) {
	emitter, buf := jsonEmitter()
	p := NewCPMM(event.NewFilter(nil, nil), emitter, nil, nil)

	accounts := accountList(12)
	ix := solana.Instruction{
		ProgramID: p.ProgramID(),
		Accounts:  accounts,
		Data:      append(append([]byte{}, cpmmSwapBaseInputDisc...), le64(1000, 900)...),
	}
	p.Process(testMeta(), ix, nil)

	events := emittedEvents(t, buf)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, event.KindSwap, ev.Kind)
	assert.Equal(t, event.ProtocolCPMM, ev.Protocol)
	assert.Equal(t, event.DirectionExactInput, ev.Direction)
	assert.Equal(t, accounts[3].String(), ev.Pool)
	require.NotNil(t, ev.Maker)
	assert.Equal(t, accounts[0].String(), *ev.Maker)
	require.NotNil(t, ev.InputToken)
	assert.Equal(t, accounts[10].String(), ev.InputToken.Mint)
	assert.Equal(t, uint64(1000), ev.InputToken.AmountRaw)
	require.NotNil(t, ev.OutputToken)
	assert.Equal(t, uint64(900), ev.OutputToken.AmountRaw)
	assert.Equal(t, uint64(42), ev.Slot)
	require.NotNil(t, ev.Timestamp)
	assert.Equal(t, int64(1700000000), *ev.Timestamp)
}

func TestCpmmSwapFilteredOut(t *testing.T) {
	emitter, buf := jsonEmitter()
	otherPool := ppk(200)
	p := NewCPMM(event.NewFilter(nil, []solana.Pubkey{otherPool}), emitter, nil, nil)

	ix := solana.Instruction{
		ProgramID: p.ProgramID(),
		Accounts:  accountList(12),
		Data:      append(append([]byte{}, cpmmSwapBaseInputDisc...), le64(1000, 900)...),
	}
	p.Process(testMeta(), ix, nil)

	assert.Empty(t, buf.String())
}

func TestCpmmLpChangeEventKinds(t *testing.T) {
	pool := ppk(7)
	build := func(changeType byte) []byte {
		data := append(append([]byte{}, eventCPIPrefix...), cpmmLpChangeEventDisc...)
		data = append(data, pool[:]...)
		data = append(data, le64(0, 0, 0, 500, 600, 0, 0)...)
		return append(data, changeType)
	}

	emitter, buf := jsonEmitter()
	p := NewCPMM(event.NewFilter(nil, nil), emitter, nil, nil)

	p.Process(testMeta(), solana.Instruction{ProgramID: p.ProgramID(), Data: build(0)}, nil)
	p.Process(testMeta(), solana.Instruction{ProgramID: p.ProgramID(), Data: build(1)}, nil)

	events := emittedEvents(t, buf)
	require.Len(t, events, 2)
	assert.Equal(t, event.KindAddLiquidity, events[0].Kind)
	assert.Equal(t, event.KindRemoveLiquidity, events[1].Kind)
	// No mints in the event, the pool stands in on both sides.
	assert.Equal(t, pool.String(), events[0].InputToken.Mint)
	assert.Equal(t, uint64(500), events[0].InputToken.AmountRaw)
	assert.Equal(t, uint64(600), events[0].OutputToken.AmountRaw)
}

func TestCpmmUnknownEmitsNothing(t *testing.T) {
	emitter, buf := jsonEmitter()
	p := NewCPMM(event.NewFilter(nil, nil), emitter, nil, nil)

	p.Process(testMeta(), solana.Instruction{ProgramID: p.ProgramID(), Data: []byte{1, 2, 3}}, nil)

	assert.Empty(t, buf.String())
}

func TestClmmSwapEventDirectionality(t *testing.T) {
	pool, sender, acc0, acc1 := ppk(1), ppk(2), ppk(3), ppk(4)
	build := func(zeroForOne byte) []byte {
		data := append(append([]byte{}, eventCPIPrefix...), clmmSwapEventDisc...)
		data = append(data, pool[:]...)
		data = append(data, sender[:]...)
		data = append(data, acc0[:]...)
		data = append(data, acc1[:]...)
		data = append(data, le64(100, 0, 200, 0)...) // amount0, fee0, amount1, fee1
		data = append(data, zeroForOne)
		data = append(data, le64(0, 0, 0, 0)...) // sqrt price, liquidity
		return append(data, 0, 0, 0, 0)          // tick
	}

	emitter, buf := jsonEmitter()
	p := NewCLMM(event.NewFilter(nil, nil), emitter, nil, nil)

	p.Process(testMeta(), solana.Instruction{ProgramID: p.ProgramID(), Data: build(1)}, nil)
	p.Process(testMeta(), solana.Instruction{ProgramID: p.ProgramID(), Data: build(0)}, nil)

	events := emittedEvents(t, buf)
	require.Len(t, events, 2)

	// zero_for_one: token account 0 is the input side.
	assert.Equal(t, acc0.String(), events[0].InputToken.Mint)
	assert.Equal(t, uint64(100), events[0].InputToken.AmountRaw)
	assert.Equal(t, uint64(200), events[0].OutputToken.AmountRaw)

	// one_for_zero: sides flip.
	assert.Equal(t, acc1.String(), events[1].InputToken.Mint)
	assert.Equal(t, uint64(200), events[1].InputToken.AmountRaw)

	require.NotNil(t, events[0].Maker)
	assert.Equal(t, sender.String(), *events[0].Maker)
	assert.Equal(t, event.DirectionUnknown, events[0].Direction)
}

func TestAmmV4SwapUsesTransferAmounts(t *testing.T) {
	emitter, buf := jsonEmitter()
	p := NewAmmV4(event.NewFilter(nil, nil), emitter, nil, nil)

	accounts := accountList(18)
	accounts[17] = ppk(17) // not a valid curve point, so no maker
	userSource, userDest := accounts[15], accounts[16]

	transferIx := func(src, dst solana.Pubkey, amount uint64) solana.NestedInstruction {
		return solana.NestedInstruction{Instruction: solana.Instruction{
			ProgramID: transfer.TokenProgramID,
			Accounts:  []solana.Pubkey{src, dst, ppk(99)},
			Data:      append([]byte{3}, le64(amount)...),
		}}
	}
	inner := []solana.NestedInstruction{
		transferIx(userSource, ppk(50), 600),
		transferIx(ppk(51), userDest, 550),
	}

	ix := solana.Instruction{
		ProgramID: p.ProgramID(),
		Accounts:  accounts,
		Data:      append([]byte{9}, le64(1000, 500)...), // swap_base_in bounds
	}
	p.Process(testMeta(), ix, inner)

	events := emittedEvents(t, buf)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, event.ProtocolAmmV4, ev.Protocol)
	assert.Equal(t, accounts[1].String(), ev.Pool)
	assert.Equal(t, event.DirectionExactInput, ev.Direction)
	// Settled amounts from the transfers, not the instruction bounds.
	assert.Equal(t, uint64(600), ev.InputToken.AmountRaw)
	assert.Equal(t, uint64(550), ev.OutputToken.AmountRaw)
	assert.Nil(t, ev.Maker)
}

func TestAmmV4SwapFallsBackToInstructionBounds(t *testing.T) {
	emitter, buf := jsonEmitter()
	p := NewAmmV4(event.NewFilter(nil, nil), emitter, nil, nil)

	ix := solana.Instruction{
		ProgramID: p.ProgramID(),
		Accounts:  accountList(18),
		Data:      append([]byte{11}, le64(1100, 1000)...), // swap_base_out bounds
	}
	p.Process(testMeta(), ix, nil)

	events := emittedEvents(t, buf)
	require.Len(t, events, 1)
	assert.Equal(t, event.DirectionExactOutput, events[0].Direction)
	assert.Equal(t, uint64(1100), events[0].InputToken.AmountRaw)
	assert.Equal(t, uint64(1000), events[0].OutputToken.AmountRaw)
}

func TestAmmV4PoolFilter(t *testing.T) {
	emitter, buf := jsonEmitter()
	accounts := accountList(18)
	p := NewAmmV4(event.NewFilter(nil, []solana.Pubkey{accounts[1]}), emitter, nil, nil)

	ix := solana.Instruction{
		ProgramID: p.ProgramID(),
		Accounts:  accounts,
		Data:      append([]byte{9}, le64(1000, 500)...),
	}
	p.Process(testMeta(), ix, nil)
	require.Len(t, emittedEvents(t, buf), 1)

	// A pool outside the allow-list is dropped.
	other := accountList(18)
	other[1] = ppk(250)
	p.Process(testMeta(), solana.Instruction{ProgramID: p.ProgramID(), Accounts: other, Data: ix.Data}, nil)
	assert.Len(t, emittedEvents(t, buf), 1)
}
