// Package transfer extracts actual swap amounts from SPL token transfer
// instructions nested under a swap instruction.
//
// Raydium swap instructions carry parameters like minimum_amount_out or
// max_amount_in, which are slippage protection values rather than settled
// amounts. The settled amounts live in the SPL Token Transfer instructions
// the swap program invokes via CPI.
//
// SPL Token instruction formats:
//
//   - Transfer (discriminator 3): [3, amount(8 bytes LE)]
//     Accounts: [source, destination, authority, ...]
//
//   - TransferChecked (discriminator 12): [12, amount(8 bytes LE), decimals(1 byte)]
//     Accounts: [source, mint, destination, authority, ...]
package transfer

import (
	"encoding/binary"

	"raydium-alerts/internal/solana"
)

// TokenProgramID is the standard SPL Token program.
var TokenProgramID = solana.MustPubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// Token2022ProgramID is the SPL Token-2022 program.
var Token2022ProgramID = solana.MustPubkey("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// TokenTransfer is one parsed SPL token transfer.
type TokenTransfer struct {
	// Source is the sender's token account.
	Source solana.Pubkey
	// Destination is the receiver's token account.
	Destination solana.Pubkey
	// Amount in raw units (smallest denomination).
	Amount uint64
	// Mint is the token mint; only known for TransferChecked.
	Mint *solana.Pubkey
	// Decimals is the token precision; only known for TransferChecked.
	Decimals *uint8
}

// Parse walks the CPI tree depth-first in pre-order and returns every SPL
// token transfer found, in traversal order. Unrecognized or malformed
// instructions are skipped silently.
func Parse(nested []solana.NestedInstruction) []TokenTransfer {
	var transfers []TokenTransfer
	collect(nested, &transfers)
	return transfers
}

func collect(nested []solana.NestedInstruction, out *[]TokenTransfer) {
	for i := range nested {
		ix := &nested[i].Instruction

		if ix.ProgramID == TokenProgramID || ix.ProgramID == Token2022ProgramID {
			if t, ok := parseSingle(ix); ok {
				*out = append(*out, t)
			}
		}

		if len(nested[i].Inner) > 0 {
			collect(nested[i].Inner, out)
		}
	}
}

// parseSingle parses one instruction as Transfer or TransferChecked.
func parseSingle(ix *solana.Instruction) (TokenTransfer, bool) {
	if len(ix.Data) == 0 {
		return TokenTransfer{}, false
	}

	switch ix.Data[0] {
	case 3: // Transfer: [3, amount(8)], accounts [source, destination, authority, ...]
		if len(ix.Data) < 9 || len(ix.Accounts) < 2 {
			return TokenTransfer{}, false
		}
		return TokenTransfer{
			Source:      ix.Accounts[0],
			Destination: ix.Accounts[1],
			Amount:      binary.LittleEndian.Uint64(ix.Data[1:9]),
		}, true

	case 12: // TransferChecked: [12, amount(8), decimals(1)], accounts [source, mint, destination, authority, ...]
		if len(ix.Data) < 10 || len(ix.Accounts) < 3 {
			return TokenTransfer{}, false
		}
		mint := ix.Accounts[1]
		decimals := ix.Data[9]
		return TokenTransfer{
			Source:      ix.Accounts[0],
			Destination: ix.Accounts[2],
			Amount:      binary.LittleEndian.Uint64(ix.Data[1:9]),
			Mint:        &mint,
			Decimals:    &decimals,
		}, true

	default:
		return TokenTransfer{}, false
	}
}

// FindSwapAmounts matches transfers against the user's token accounts.
// The input amount comes from transfers whose source is userSource; the
// output amount from transfers whose destination is userDestination. When
// several transfers match the same side, the last one in trace order wins:
// trace order reflects execution order, so the final matching transfer is
// the settled leg.
func FindSwapAmounts(transfers []TokenTransfer, userSource, userDestination solana.Pubkey) (input, output *uint64) {
	for i := range transfers {
		t := &transfers[i]
		if t.Source == userSource {
			amount := t.Amount
			input = &amount
		}
		if t.Destination == userDestination {
			amount := t.Amount
			output = &amount
		}
	}
	return input, output
}

// ExtractSwapAmounts parses the CPI tree and returns the settled input and
// output amounts for the user's accounts, falling back to the caller-supplied
// values (typically the instruction's slippage-bound parameters) when no
// matching transfer exists. A missing match is policy, not an error.
func ExtractSwapAmounts(nested []solana.NestedInstruction, userSource, userDestination solana.Pubkey, fallbackInput, fallbackOutput uint64) (uint64, uint64) {
	transfers := Parse(nested)

	input, output := FindSwapAmounts(transfers, userSource, userDestination)

	in, out := fallbackInput, fallbackOutput
	if input != nil {
		in = *input
	}
	if output != nil {
		out = *output
	}
	return in, out
}
