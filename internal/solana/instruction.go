package solana

// Instruction is one executed on-chain instruction: the invoked program,
// its ordered account list, and the raw instruction payload.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []Pubkey
	Data      []byte
}

// NestedInstruction is an instruction together with the instructions it
// invoked via CPI, in execution order.
type NestedInstruction struct {
	Instruction Instruction
	Inner       []NestedInstruction
}

// TopLevelInstruction is a transaction-level instruction with its CPI tree.
type TopLevelInstruction struct {
	Instruction Instruction
	Inner       []NestedInstruction
}

// TxMeta carries transaction-level context for instruction processing.
type TxMeta struct {
	Signature string
	Slot      uint64
	BlockTime *int64 // unix seconds, nil when the block carries no time
}
