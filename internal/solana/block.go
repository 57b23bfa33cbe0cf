package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// BlockNotification is one blockSubscribe notification, decoded from the
// "json" transaction encoding.
type BlockNotification struct {
	Slot         uint64
	BlockTime    *int64
	Transactions []TransactionWithMeta
}

// TransactionWithMeta pairs a transaction with its execution metadata.
type TransactionWithMeta struct {
	Transaction uiTransaction   `json:"transaction"`
	Meta        *transactionMeta `json:"meta"`
}

type uiTransaction struct {
	Signatures []string  `json:"signatures"`
	Message    uiMessage `json:"message"`
}

type uiMessage struct {
	AccountKeys  []string        `json:"accountKeys"`
	Instructions []uiInstruction `json:"instructions"`
}

type uiInstruction struct {
	ProgramIDIndex int    `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"` // base58
	StackHeight    *int   `json:"stackHeight,omitempty"`
}

type transactionMeta struct {
	Err               interface{}          `json:"err"`
	InnerInstructions []innerInstructionSet `json:"innerInstructions"`
	LoadedAddresses   *loadedAddresses      `json:"loadedAddresses"`
}

type innerInstructionSet struct {
	Index        int             `json:"index"`
	Instructions []uiInstruction `json:"instructions"`
}

type loadedAddresses struct {
	Writable []string `json:"writable"`
	Readonly []string `json:"readonly"`
}

// Failed reports whether the transaction errored on-chain.
func (tx *TransactionWithMeta) Failed() bool {
	return tx.Meta != nil && tx.Meta.Err != nil
}

// Signature returns the transaction's primary signature.
func (tx *TransactionWithMeta) Signature() string {
	if len(tx.Transaction.Signatures) == 0 {
		return ""
	}
	return tx.Transaction.Signatures[0]
}

// BuildInstructions resolves a transaction into top-level instructions with
// their CPI trees attached. Account indexes cover the static account keys
// followed by any addresses loaded from lookup tables (writable, then
// readonly), matching the RPC account ordering.
func (tx *TransactionWithMeta) BuildInstructions() ([]TopLevelInstruction, error) {
	keyStrings := tx.Transaction.Message.AccountKeys
	if tx.Meta != nil && tx.Meta.LoadedAddresses != nil {
		keyStrings = append(append(append([]string{}, keyStrings...),
			tx.Meta.LoadedAddresses.Writable...),
			tx.Meta.LoadedAddresses.Readonly...)
	}

	keys := make([]Pubkey, len(keyStrings))
	for i, s := range keyStrings {
		pk, err := ParsePubkey(s)
		if err != nil {
			return nil, fmt.Errorf("account key %d: %w", i, err)
		}
		keys[i] = pk
	}

	// Group inner instructions by top-level index.
	innerByIndex := make(map[int][]uiInstruction)
	if tx.Meta != nil {
		for _, set := range tx.Meta.InnerInstructions {
			innerByIndex[set.Index] = set.Instructions
		}
	}

	out := make([]TopLevelInstruction, 0, len(tx.Transaction.Message.Instructions))
	for i, ui := range tx.Transaction.Message.Instructions {
		ix, err := resolveInstruction(ui, keys)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}

		inner, err := buildInnerTree(innerByIndex[i], keys)
		if err != nil {
			return nil, fmt.Errorf("inner instructions of %d: %w", i, err)
		}

		out = append(out, TopLevelInstruction{Instruction: ix, Inner: inner})
	}
	return out, nil
}

// resolveInstruction maps account indexes to pubkeys and decodes the payload.
func resolveInstruction(ui uiInstruction, keys []Pubkey) (Instruction, error) {
	if ui.ProgramIDIndex < 0 || ui.ProgramIDIndex >= len(keys) {
		return Instruction{}, fmt.Errorf("program index %d out of range", ui.ProgramIDIndex)
	}

	accounts := make([]Pubkey, 0, len(ui.Accounts))
	for _, idx := range ui.Accounts {
		if idx < 0 || idx >= len(keys) {
			return Instruction{}, fmt.Errorf("account index %d out of range", idx)
		}
		accounts = append(accounts, keys[idx])
	}

	data, err := base58.Decode(ui.Data)
	if err != nil {
		return Instruction{}, fmt.Errorf("decode data: %w", err)
	}

	return Instruction{
		ProgramID: keys[ui.ProgramIDIndex],
		Accounts:  accounts,
		Data:      data,
	}, nil
}

// buildInnerTree reconstructs the CPI tree from the flat inner-instruction
// list using stack heights. Direct children of the top-level instruction have
// stack height 2; pre-RPC-1.15 payloads omit the field, which means a flat
// list of direct children.
func buildInnerTree(inner []uiInstruction, keys []Pubkey) ([]NestedInstruction, error) {
	nodes, rest, err := buildSubtree(inner, 2, keys)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("inner instruction with stack height below its parent")
	}
	return nodes, nil
}

// buildSubtree consumes the longest prefix of ixs that belongs at the given
// height (pre-order), returning the built siblings and the unconsumed tail.
func buildSubtree(ixs []uiInstruction, height int, keys []Pubkey) ([]NestedInstruction, []uiInstruction, error) {
	var siblings []NestedInstruction
	for len(ixs) > 0 {
		h := 2
		if ixs[0].StackHeight != nil {
			h = *ixs[0].StackHeight
		}
		if h < height {
			break // belongs to an ancestor
		}
		if h > height {
			return nil, nil, fmt.Errorf("stack height jumped from %d to %d", height, h)
		}

		ix, err := resolveInstruction(ixs[0], keys)
		if err != nil {
			return nil, nil, err
		}
		ixs = ixs[1:]

		var children []NestedInstruction
		children, ixs, err = buildSubtree(ixs, height+1, keys)
		if err != nil {
			return nil, nil, err
		}

		siblings = append(siblings, NestedInstruction{Instruction: ix, Inner: children})
	}
	return siblings, ixs, nil
}
