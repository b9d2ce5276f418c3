// Package transport defines the external-collaborator boundary: the RPC
// client port the core consumes to fetch block bodies (spec §6) and a
// health monitor over that port's reachability. No concrete RPC transport
// is implemented here — per spec §1, RPC transport is explicitly an
// external collaborator, not core scope.
package transport

import (
	"context"
	"fmt"

	"github.com/chainwatch-dev/chainwatch/internal/hexid"
)

// Output is one transaction output on the parent chain (spec §6).
type Output struct {
	Value        uint64
	ScriptPubkey []byte
}

// Transaction is a parent-chain transaction as the RPC layer returns it:
// an ordered output list, script parsing deferred to burnchain.Parse.
type Transaction struct {
	Txid    string
	Outputs []Output
}

// Block is the RPC client's "get_block" response shape (spec §6): a
// header plus its transaction list.
type Block struct {
	BlockIdentifier       hexid.BlockIdentifier
	ParentBlockIdentifier hexid.BlockIdentifier
	Timestamp             int64
	Transactions          []Transaction
}

// ParentChainAnnouncement is the inbound JSON shape a parent-chain node
// pushes for each new burn block (spec §6). BurnBlockHash arrives
// little-endian on the wire; ParentChainAnnouncement.BlockIdentifier
// reverses it before use, matching hexid.ReverseBytes's documented
// purpose.
type ParentChainAnnouncement struct {
	BurnBlockHash      string
	BurnBlockHeight    uint64
	RewardSlotHolders  []string
	RewardRecipients   []RewardRecipient
	BurnAmount         uint64
}

// BlockIdentifier parses BurnBlockHash and reverses its byte order, giving
// the identifier the core uses for this burn block.
func (a ParentChainAnnouncement) BlockIdentifier() (hexid.BlockIdentifier, error) {
	h, err := hexid.ParseHash32(a.BurnBlockHash)
	if err != nil {
		return hexid.BlockIdentifier{}, err
	}
	var hash hexid.Hash32
	copy(hash[:], hexid.ReverseBytes(h[:]))
	return hexid.BlockIdentifier{Index: a.BurnBlockHeight, Hash: hash}, nil
}

type RewardRecipient struct {
	Recipient string
	Amount    uint64
}

// NodeClient is the port the core calls to fetch block bodies by
// identifier. A concrete implementation (JSON-RPC, gRPC, or otherwise)
// lives outside this module, wired in by the running node.
type NodeClient interface {
	GetBlock(ctx context.Context, hash hexid.Hash32) (Block, error)
	// Ping performs the cheapest possible reachability check without
	// fetching a full block body, used by NodeHealthMonitor's tick loop.
	Ping(ctx context.Context) error
}

// ErrorCode discriminates TransportError (spec §7).
type ErrorCode int

const (
	ErrUnreachable ErrorCode = iota
	ErrTimeout
	ErrMalformedResponse
)

func (c ErrorCode) String() string {
	switch c {
	case ErrUnreachable:
		return "unreachable"
	case ErrTimeout:
		return "timeout"
	case ErrMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// TransportError wraps an RPC failure. Per spec §7, recovery from a
// TransportError is the caller's responsibility — this type never causes
// the core itself to retry or crash.
type TransportError struct {
	Code ErrorCode
	Msg  string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %s", e.Code, e.Msg)
}

func transportErr(code ErrorCode, format string, args ...interface{}) *TransportError {
	return &TransportError{Code: code, Msg: fmt.Sprintf(format, args...)}
}
