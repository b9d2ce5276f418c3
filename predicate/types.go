// Package predicate implements C5, the declarative predicate specification
// and validation model: a typed filter AST registered by consumers to
// receive push notifications when emitted chain events contain matching
// activity (spec §4.5).
package predicate

import "github.com/google/uuid"

// Chain selects which variant set a Predicate's body is drawn from.
type Chain string

const (
	ChainBitcoin Chain = "bitcoin"
	ChainStacks  Chain = "stacks"
)

// Document is the predicate file format described in spec §6: a
// human-readable document naming one predicate body per network it is
// active on. The types in this package carry no struct tags, so
// encoding/json matches keys against the Go field names (case-insensitive);
// kebab-case keys for multi-word fields, such as "start-block", are not
// recognised.
type Document struct {
	ID      string
	Name    string
	Version string
	Chain   Chain
	Owner   string
	Networks map[string]NetworkSpec
}

// EnsureID assigns a fresh uuid if the document was registered without
// one, matching the scope's "stable uuid" requirement (spec §3).
func (d *Document) EnsureID() {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
}

// NetworkSpec is one network's entry in a Document: bookkeeping bounds
// plus the if_this/then_that pair (spec §4.5, §4.6).
type NetworkSpec struct {
	StartBlock            *uint64
	EndBlock              *uint64
	ExpireAfterOccurrence *uint64

	Occurrences uint64 // delivered-match counter, incremented and compared against ExpireAfterOccurrence
	Active      bool

	IfThis   Predicate
	ThenThat Action
}

// Kind discriminates the Predicate tagged union (spec §4.5). Parent-chain
// (bitcoin) and child-chain (stacks) variants share one sum type, in the
// style of burnchain.Operation, rather than two separate interfaces: new
// variants force updates to the validator and dispatcher at compile time
// (spec §9).
type Kind int

const (
	KindTxid Kind = iota
	KindOpReturn
	KindP2pkh
	KindP2sh
	KindP2wpkh
	KindP2wsh
	KindOrdinalInscriptionRevealed

	KindBlockHeight
	KindContractCall
	KindContractDeployment
	KindPrintEvent
	KindFtEvent
	KindNftEvent
	KindStxEvent
)

func (k Kind) String() string {
	switch k {
	case KindTxid:
		return "txid"
	case KindOpReturn:
		return "op_return"
	case KindP2pkh:
		return "p2pkh"
	case KindP2sh:
		return "p2sh"
	case KindP2wpkh:
		return "p2wpkh"
	case KindP2wsh:
		return "p2wsh"
	case KindOrdinalInscriptionRevealed:
		return "ordinal_inscription_revealed"
	case KindBlockHeight:
		return "block_height"
	case KindContractCall:
		return "contract_call"
	case KindContractDeployment:
		return "contract_deployment"
	case KindPrintEvent:
		return "print_event"
	case KindFtEvent:
		return "ft_event"
	case KindNftEvent:
		return "nft_event"
	case KindStxEvent:
		return "stx_event"
	default:
		return "unknown"
	}
}

// MatchingRuleKind discriminates OpReturn's rule (spec §4.5).
type MatchingRuleKind int

const (
	RuleStartsWith MatchingRuleKind = iota
	RuleEndsWith
	RuleEquals
)

type MatchingRule struct {
	Kind  MatchingRuleKind
	Value string
}

// HeightRuleKind discriminates BlockHeight's rule (spec §4.5).
type HeightRuleKind int

const (
	HeightLowerThan HeightRuleKind = iota
	HeightHigherThan
	HeightEquals
	HeightBetween
)

type HeightRule struct {
	Kind   HeightRuleKind
	N      uint64 // LowerThan, HigherThan, Equals
	Lo, Hi uint64 // Between
}

// PrintEventBodyKind discriminates PrintEvent's body (spec §4.5).
type PrintEventBodyKind int

const (
	BodyContains PrintEventBodyKind = iota
	BodyMatchesRegex
)

type PrintEventBody struct {
	Kind  PrintEventBodyKind
	Value string
}

// Predicate is the tagged StacksBaseChainOperation-style sum type (spec
// §4.5). Only the fields relevant to Kind are populated.
type Predicate struct {
	Kind Kind

	// Txid
	TxidEquals string

	// OpReturn
	OpReturnRule MatchingRule

	// P2pkh / P2sh / P2wpkh / P2wsh
	ExactEquals string

	// BlockHeight
	HeightRule HeightRule

	// ContractCall
	ContractIdentifier string
	Method             string

	// ContractDeployment
	Deployer string

	// PrintEvent
	PrintEventContractIdentifier string
	PrintEventBody               PrintEventBody

	// FtEvent / NftEvent
	AssetIdentifier string
	AssetActions    []string

	// StxEvent
	StxActions []string
}

// ActionKind discriminates the Action tagged union (spec §4.5).
type ActionKind int

const (
	ActionHttpPost ActionKind = iota
	ActionFileAppend
)

// Action is where a predicate match is delivered (spec §4.5, §6).
type Action struct {
	Kind ActionKind

	URL                 string
	AuthorizationHeader string

	Path string
}
