// Package dispatch implements C6, the event dispatcher: it matches
// registered predicates against the transactions carried by a chain event
// and delivers one action per match (spec §4.6).
package dispatch

import (
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/predicate"
)

// ContractCallEvent is one contract-call invocation observed in a block.
type ContractCallEvent struct {
	ContractIdentifier string
	Method             string
}

// ContractDeploymentEvent is one contract-deployment observed in a block.
type ContractDeploymentEvent struct {
	Deployer string
}

// PrintEventOccurrence is one `print` event emitted by a Clarity contract.
type PrintEventOccurrence struct {
	ContractIdentifier string
	Body               string
}

// AssetEventOccurrence is one fungible- or non-fungible-token event.
type AssetEventOccurrence struct {
	AssetIdentifier string
	Action          string // "mint" | "burn" | "transfer"
}

// StxEventOccurrence is one STX-movement event (lock/mint/transfer).
type StxEventOccurrence struct {
	Action string
}

// TransactionView bundles whatever transaction-level facts are available
// for a single transaction so a Predicate can be matched against it without
// the matcher needing to know which chain it came from. A transaction from
// the parent chain only populates OutputScripts and OpReturnData; a
// transaction from the child
// chain only populates the receipt-derived event slices.
type TransactionView struct {
	Txid        string
	BlockHeight uint64

	// Parent chain (bitcoin-like).
	OutputScripts [][]byte // raw scriptPubKey bytes, one per output
	OpReturnData  []byte   // payload of the first OP_RETURN output, if any

	// Child chain (stacks-like).
	ContractCalls       []ContractCallEvent
	ContractDeployments []ContractDeploymentEvent
	PrintEvents         []PrintEventOccurrence
	FtEvents            []AssetEventOccurrence
	NftEvents           []AssetEventOccurrence
	StxEvents           []StxEventOccurrence
}

// BlockEnvelope pairs a block identifier with the transactions it carries,
// already enriched by the parent-chain OperationParser or the child-chain
// receipt decoder. It is the unit EventDispatcher iterates.
type BlockEnvelope struct {
	BlockIdentifier hexid.BlockIdentifier
	Transactions    []TransactionView
}

// Kind mirrors chainindex.ChainEventKind so this package does not need to
// import chainindex directly; the runtime glue that bridges ForkScratchPad
// output to fetched transactions performs the conversion.
type Kind int

const (
	Extended Kind = iota
	Reorganized
)

// Event is the dispatcher's input: one processed chain event, enriched
// with the transactions each affected block carries, in the same
// rollback-then-apply-then-confirm ordering ChainEvent uses.
type Event struct {
	Kind             Kind
	HeadersToRollback []BlockEnvelope
	HeadersToApply    []BlockEnvelope
	ConfirmedHeaders  []BlockEnvelope
}

// Match is one predicate hit, ready for delivery.
type Match struct {
	PredicateID     string
	PredicateName   string
	Action          predicate.Action
	BlockIdentifier hexid.BlockIdentifier
	Txid            string
	Detail          interface{}
	// Confirmed is true when this match came from the event's
	// ConfirmedHeaders rather than its HeadersToApply, so a sink can route
	// it into the outbound body's "confirmed" array instead of "apply"
	// (spec §6). Rollback blocks are never matched (see Dispatch), so
	// there is no corresponding Rollback flag.
	Confirmed bool
}
