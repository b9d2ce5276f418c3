package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chainwatch-dev/chainwatch/predicate"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// ActionSink delivers one matched action. The concrete sinks
// (HttpPostSink, FileAppendSink, and MultiActionSink over them) are in
// sink.go.
type ActionSink interface {
	Deliver(ctx context.Context, m Match) error
}

// DefaultConcurrency bounds how many predicates are evaluated in parallel
// for a single event. Grounded on golang.org/x/sync's errgroup, which
// goran-ethernal-ChainIndexor carries as a direct dependency for exactly
// this kind of bounded fan-out; the teacher's own concurrency primitives
// (node/p2p_runtime.go) are wire-protocol goroutines reacting to a single
// context cancellation, not a pool suited to fanning work out across an
// arbitrary predicate set, so this concern is grounded on the wider pack
// instead of the teacher itself (see DESIGN.md).
const DefaultConcurrency = 8

// EventDispatcher matches a Registry's active predicates against the
// transactions carried by each Event and delivers one Match per hit
// (spec §4.6). Dispatcher workers parallelize predicate evaluation for a
// single event but never reorder events, and within one predicate, matches
// are delivered in the same transaction order the event presents them.
type EventDispatcher struct {
	registry    *Registry
	sink        ActionSink
	chain       predicate.Chain
	concurrency int
}

func NewEventDispatcher(registry *Registry, sink ActionSink, chain predicate.Chain) *EventDispatcher {
	return &EventDispatcher{registry: registry, sink: sink, chain: chain, concurrency: DefaultConcurrency}
}

// WithConcurrency overrides the default fan-out width.
func (d *EventDispatcher) WithConcurrency(n int) *EventDispatcher {
	if n > 0 {
		d.concurrency = n
	}
	return d
}

// envelopeBatch pairs a set of envelopes with whether they come from the
// event's ConfirmedHeaders (vs its HeadersToApply), so a delivered Match
// can record which outbound array it belongs to (spec §6).
type envelopeBatch struct {
	envelopes []BlockEnvelope
	confirmed bool
}

// Dispatch evaluates every active predicate against event and delivers
// matches via the sink. Rollback blocks are never matched against — only
// applied and confirmed blocks can produce a delivery, since a rolled-back
// block no longer belongs to the canonical history by the time the event
// is observed (spec §4.6, §5 ordering guarantee I-DISP-1).
func (d *EventDispatcher) Dispatch(ctx telemetry.Context, event Event) error {
	entries := d.registry.snapshot(d.chain)
	if len(entries) == 0 {
		return nil
	}

	batches := make([]envelopeBatch, 0, 2)
	if len(event.HeadersToApply) > 0 {
		batches = append(batches, envelopeBatch{envelopes: event.HeadersToApply})
	}
	if len(event.ConfirmedHeaders) > 0 {
		batches = append(batches, envelopeBatch{envelopes: event.ConfirmedHeaders, confirmed: true})
	}
	if len(batches) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(d.concurrency)

	var mu sync.Mutex
	var firstErr error

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			return d.evaluateAndDeliver(gctx, ctx, entry, batches, &mu, &firstErr)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return firstErr
}

// evaluateAndDeliver runs entry's predicate against every transaction of
// every batch, in order, delivering and recording each match immediately
// rather than computing the full match set before recording any of it —
// so a predicate with expire_after_occurrence=N stops being delivered to
// the instant its Nth occurrence is recorded, even within a single event
// that would otherwise produce more than N matches for it.
func (d *EventDispatcher) evaluateAndDeliver(gctx context.Context, ctx telemetry.Context, entry registered, batches []envelopeBatch, mu *sync.Mutex, firstErr *error) error {
	for _, batch := range batches {
		for _, env := range batch.envelopes {
			for _, tx := range env.Transactions {
				if entry.network.StartBlock != nil && tx.BlockHeight < *entry.network.StartBlock {
					continue
				}
				if entry.network.EndBlock != nil && tx.BlockHeight >= *entry.network.EndBlock {
					continue
				}
				ok, detail := matchPredicate(entry.network.IfThis, tx)
				if !ok {
					continue
				}

				m := Match{
					PredicateID:     entry.predicateID,
					PredicateName:   entry.predicateName,
					Action:          entry.network.ThenThat,
					BlockIdentifier: env.BlockIdentifier,
					Txid:            tx.Txid,
					Detail:          detail,
					Confirmed:       batch.confirmed,
				}
				if err := d.sink.Deliver(gctx, m); err != nil {
					ctx.Logger().Warnw("action delivery failed", "predicate_id", m.PredicateID, "error", err)
					mu.Lock()
					if *firstErr == nil {
						*firstErr = err
					}
					mu.Unlock()
					continue
				}
				if !d.registry.recordOccurrence(entry.predicateID, entry.networkName) {
					return nil
				}
			}
		}
	}
	return nil
}
