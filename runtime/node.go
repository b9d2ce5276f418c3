package runtime

import (
	"context"
	"fmt"

	"github.com/chainwatch-dev/chainwatch/blockpool"
	"github.com/chainwatch-dev/chainwatch/burnchain"
	"github.com/chainwatch-dev/chainwatch/chainindex"
	"github.com/chainwatch-dev/chainwatch/dispatch"
	"github.com/chainwatch-dev/chainwatch/predicate"
	"github.com/chainwatch-dev/chainwatch/store"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// Node bundles one parent-chain and one child-chain ingestion pipeline
// sharing a single predicate Registry, the wiring cmd/chainwatch-node's
// runtime.go drives. It has no built-in fetcher: per spec §1 RPC
// transport to the node is an external collaborator, so callers push
// headers/blocks/transactions in (e.g. from a concrete transport.NodeClient
// a deployment supplies) rather than Node pulling them itself.
type Node struct {
	Parent *ParentIngestor
	Child  *ChildIngestor

	Registry   *dispatch.Registry
	ParentDisp *dispatch.EventDispatcher
	ChildDisp  *dispatch.EventDispatcher

	DB *store.DB // nil when running without persistence
}

// Options configures a new Node.
type Options struct {
	ConfirmedDepth      uint64
	DispatchConcurrency int
	ParentParams        burnchain.NetworkParams
	ReceiptDecoder      ReceiptDecoder
	Sink                dispatch.ActionSink
	DB                  *store.DB
}

func NewNode(opts Options) *Node {
	cfg := chainindex.Config{ConfirmedDepth: opts.ConfirmedDepth}.WithDefaults()
	registry := dispatch.NewRegistry()
	sink := opts.Sink
	if sink == nil {
		sink = dispatch.NewMultiActionSink()
	}

	n := &Node{
		Parent:     NewParentIngestor(cfg, opts.ParentParams),
		Child:      NewChildIngestor(cfg, opts.ReceiptDecoder),
		Registry:   registry,
		ParentDisp: dispatch.NewEventDispatcher(registry, sink, predicate.ChainBitcoin),
		ChildDisp:  dispatch.NewEventDispatcher(registry, sink, predicate.ChainStacks),
		DB:         opts.DB,
	}
	if opts.DispatchConcurrency > 0 {
		n.ParentDisp = n.ParentDisp.WithConcurrency(opts.DispatchConcurrency)
		n.ChildDisp = n.ChildDisp.WithConcurrency(opts.DispatchConcurrency)
	}
	return n
}

// IngestParentHeader feeds one parent-chain header plus its full
// transaction set through the parent pipeline and dispatches any
// resulting event.
func (n *Node) IngestParentHeader(ctx telemetry.Context, header chainindex.BlockHeader, txs []burnchain.Transaction) error {
	event, err := n.Parent.Ingest(ctx, header, txs)
	if err != nil {
		return fmt.Errorf("runtime: parent ingest: %w", err)
	}
	if event == nil {
		return nil
	}
	return n.ParentDisp.Dispatch(ctx, *event)
}

// IngestChildAnchor feeds one child-chain anchor block through the child
// pipeline and dispatches any resulting event.
func (n *Node) IngestChildAnchor(ctx telemetry.Context, block blockpool.Block) error {
	event, err := n.Child.ProcessAnchor(ctx, block)
	if err != nil {
		return fmt.Errorf("runtime: child ingest: %w", err)
	}
	if event == nil {
		return nil
	}
	return n.ChildDisp.Dispatch(ctx, *event)
}

// RegisterPredicate installs doc into the shared registry and, if the
// Node was built with a store.DB, persists each of its network bodies so
// it survives a restart.
func (n *Node) RegisterPredicate(doc predicate.Document) error {
	doc.EnsureID()
	n.Registry.Register(doc)
	if n.DB == nil {
		return nil
	}
	for name := range doc.Networks {
		if err := n.DB.PutPredicate(name, doc); err != nil {
			return fmt.Errorf("runtime: persist predicate %s/%s: %w", doc.ID, name, err)
		}
	}
	return nil
}

// RestorePredicates reloads every persisted predicate from the node's
// store.DB into the registry, run once at startup before any ingestion.
func (n *Node) RestorePredicates(networkName string) error {
	if n.DB == nil {
		return nil
	}
	records, err := n.DB.ListPredicates(networkName)
	if err != nil {
		return fmt.Errorf("runtime: list persisted predicates: %w", err)
	}
	for _, rec := range records {
		n.Registry.Register(predicate.Document{
			ID:       rec.ID,
			Name:     rec.Name,
			Version:  rec.Version,
			Chain:    rec.Chain,
			Owner:    rec.Owner,
			Networks: map[string]predicate.NetworkSpec{networkName: rec.Network},
		})
	}
	return nil
}

// Run blocks until ctx is cancelled. It carries no ingestion loop of its
// own — Node is driven by IngestParentHeader/IngestChildAnchor calls from
// whatever external transport a deployment wires in — but gives
// cmd/chainwatch-node a single place to park the main goroutine.
func (n *Node) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
