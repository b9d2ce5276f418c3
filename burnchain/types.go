// Package burnchain implements C3, the parent-chain transaction parser
// (spec §4.3): it decodes the leading OP_RETURN output of a parent-chain
// transaction into a tagged StacksBaseChainOperation.
package burnchain

import "github.com/chainwatch-dev/chainwatch/internal/hexid"

// OutPoint names a prior transaction output being spent.
type OutPoint struct {
	Txid hexid.Hash32 `json:"txid"`
	Vout uint32       `json:"vout"`
}

// Output is a parent-chain transaction output: a value in satoshis and an
// opaque script payload (spec §3).
type Output struct {
	Value        uint64 `json:"value"`
	ScriptPubkey []byte `json:"script_pubkey"`
}

// Transaction is a parent-chain transaction (spec §3). ParsedOperations is
// populated by ParseTransaction from the leading OP_RETURN output, if any.
type Transaction struct {
	Txid             hexid.Hash32 `json:"txid"`
	Inputs           []OutPoint   `json:"inputs"`
	Outputs          []Output     `json:"outputs"`
	ParsedOperations []Operation  `json:"parsed_operations"`
}

// OpCode is the single byte following the 2-byte magic in the OP_RETURN
// output's pushed data, selecting the operation variant (spec §4.3's
// opcode table).
type OpCode byte

const (
	OpKeyRegister OpCode = 'k'
	OpPreStx      OpCode = 'p'
	OpTransferStx OpCode = 't'
	OpStackStx    OpCode = 'x'
	OpBlockCommit OpCode = 'b'
)

// Kind discriminates the StacksBaseChainOperation tagged union (spec §3).
type Kind int

const (
	KindKeyRegistration Kind = iota
	KindPreStx
	KindTransferStx
	KindLockStx
	KindPobBlockCommitment
	KindPoxBlockCommitment
)

func (k Kind) String() string {
	switch k {
	case KindKeyRegistration:
		return "KeyRegistration"
	case KindPreStx:
		return "PreStx"
	case KindTransferStx:
		return "TransferStx"
	case KindLockStx:
		return "LockStx"
	case KindPobBlockCommitment:
		return "PobBlockCommitment"
	case KindPoxBlockCommitment:
		return "PoxBlockCommitment"
	default:
		return "Unknown"
	}
}

// Reward is one (recipient_script, amount) pair inside a PoxBlockCommitment
// (spec §3).
type Reward struct {
	RecipientScript []byte `json:"recipient_script"`
	Amount          uint64 `json:"amount"`
}

// Operation is the tagged StacksBaseChainOperation union (spec §3). Only the
// fields relevant to Kind are populated; this mirrors the teacher's
// tagged-struct style (consensus.TxError/ErrorCode) generalized to a sum
// type with a discriminant plus per-variant payload fields, rather than a
// Go interface — spec §9 calls for "tagged unions vs subtyping: all
// operation and predicate varieties are sum types with exhaustive
// matching", which a single struct with a Kind tag satisfies without
// requiring a type-switch over unexported implementations.
type Operation struct {
	Kind Kind `json:"kind"`

	// TransferStx / LockStx. Per spec's Open Questions these parsers are
	// stubbed in the source this was distilled from; Unparsed is set and
	// the string fields are left empty rather than inventing semantics.
	Unparsed      bool   `json:"unparsed,omitempty"`
	SenderStub    string `json:"sender_stub,omitempty"`
	RecipientStub string `json:"recipient_stub,omitempty"`
	AmountStub    string `json:"amount_stub,omitempty"`
	DurationStub  string `json:"duration_stub,omitempty"`

	// PobBlockCommitment / PoxBlockCommitment.
	StacksBlockHash hexid.Hash32 `json:"stacks_block_hash,omitempty"`
	Amount          uint64       `json:"amount,omitempty"`
	Signers         []string     `json:"signers,omitempty"`
	Rewards         []Reward     `json:"rewards,omitempty"`
}

// NetworkParams configures the parser for a given deployment (spec §4.3).
type NetworkParams struct {
	MagicBytes [2]byte
	PoxConfig  PoxConfig
}

// PoxConfig answers whether a given parent-chain height is within a PoX
// reward cycle, and how many reward slots a rewarding block commitment
// must fill.
type PoxConfig interface {
	IsRewardingAt(blockHeight uint64) bool
	RewardedAddressesPerBlock() int
}

// StaticPoxConfig is a PoxConfig with a fixed reward-slot count and a
// fixed reward-cycle schedule (RewardCycleStart, RewardCycleLen and the
// trailing PrepachasePhase window); sufficient for tests and for
// devnets where the PoX schedule is a simple height range.
type StaticPoxConfig struct {
	RewardedPerBlock int
	RewardCycleStart uint64
	RewardCycleLen   uint64
	PrepachasePhase  uint64 // trailing non-rewarding window at the end of each cycle
}

func (c StaticPoxConfig) IsRewardingAt(height uint64) bool {
	if height < c.RewardCycleStart || c.RewardCycleLen == 0 {
		return false
	}
	offset := (height - c.RewardCycleStart) % c.RewardCycleLen
	return offset < c.RewardCycleLen-c.PrepachasePhase
}

func (c StaticPoxConfig) RewardedAddressesPerBlock() int {
	if c.RewardedPerBlock <= 0 {
		return 1
	}
	return c.RewardedPerBlock
}
