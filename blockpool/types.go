// Package blockpool implements C7, the child-chain analog of chainindex's
// ForkScratchPad: a fork-aware pool over blocks that carry transactions
// rather than bare headers, plus microblock trail handling (spec §4.7).
package blockpool

import (
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
)

// Transaction is the minimal child-chain transaction unit a Block or
// Microblock carries. Receipt decoding into typed events (contract calls,
// print events, asset movements) is a downstream concern of the component
// that bridges pool output to dispatch.TransactionView, not of the pool
// itself — the pool only needs to move transaction payloads intact through
// fork elections and trail folding.
type Transaction struct {
	Txid string
	Raw  []byte
}

// Block is the unit BlockPool ingests: an anchor block header plus its
// transaction list (spec §4.7, §6).
type Block struct {
	BlockIdentifier       hexid.BlockIdentifier
	ParentBlockIdentifier hexid.BlockIdentifier
	Timestamp             int64
	Transactions          []Transaction
}

// Microblock is one mini-block of a trail appended after an anchor block
// but before the next one confirms it. Sequence numbers a trail from 0.
type Microblock struct {
	Sequence     uint16
	Transactions []Transaction
}

// ChainEventKind mirrors chainindex.ChainEventKind.
type ChainEventKind int

const (
	EventExtended ChainEventKind = iota
	EventReorganized
)

// ChainEvent is blockpool's counterpart to chainindex.ChainEvent: the same
// tagged shape, but carrying full blocks (with any confirmed microblock
// trail already folded into the confirming anchor's transaction list)
// instead of bare headers.
type ChainEvent struct {
	Kind ChainEventKind

	NewBlocks        []Block
	BlocksToRollback []Block
	BlocksToApply    []Block
	ConfirmedBlocks  []Block
}
