package chainindex

import (
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// ForkScratchPad is C4, "the heart of the core" (spec §4.4): it accepts
// headers one at a time, maintains the set of competing forks, elects a
// canonical fork, emits ChainEvents describing exactly how a consumer
// should update derived state, and prunes confirmed history to bound
// memory.
//
// A ForkScratchPad is single-threaded per chain (spec §5): one instance is
// owned by one driving goroutine that sequentially calls Process. No
// internal locking is performed.
type ForkScratchPad struct {
	cfg Config

	canonicalForkID uint64
	nextForkID      uint64
	forkOrder       []uint64
	forks           map[uint64]*ChainSegment

	headers *HeaderStore

	orphanOrder []hexid.BlockIdentifier
	orphans     map[hexid.Hash32]BlockHeader

	lastCanonical *ChainSegment
}

// NewForkScratchPad constructs a scratchpad seeded with a single empty
// fork (id 0), matching spec §4.4's initial state.
func NewForkScratchPad(cfg Config) *ForkScratchPad {
	cfg = cfg.WithDefaults()
	forks := map[uint64]*ChainSegment{0: NewChainSegment()}
	return &ForkScratchPad{
		cfg:             cfg,
		canonicalForkID: 0,
		nextForkID:      1,
		forkOrder:       []uint64{0},
		forks:           forks,
		headers:         NewHeaderStore(),
		orphans:         make(map[hexid.Hash32]BlockHeader),
		lastCanonical:   NewChainSegment(),
	}
}

// CanProcess reports whether header can be attached right now: true if the
// store is empty (genesis case) or it already holds header's parent (spec
// §4.4).
func (f *ForkScratchPad) CanProcess(header BlockHeader) bool {
	if f.headers.Len() == 0 {
		return true
	}
	_, ok := f.headers.Get(header.ParentBlockIdentifier)
	return ok
}

// CanonicalSegment returns the identifiers of the current canonical fork,
// oldest first.
func (f *ForkScratchPad) CanonicalSegment() []hexid.BlockIdentifier {
	return f.forks[f.canonicalForkID].Identifiers()
}

// HeaderStoreLen reports the live HeaderStore size, for exercising
// property P4 (header store bound) in tests.
func (f *ForkScratchPad) HeaderStoreLen() int {
	return f.headers.Len()
}

// OrphanCount reports the number of headers currently parked awaiting
// their parent.
func (f *ForkScratchPad) OrphanCount() int {
	return len(f.orphanOrder)
}

// Process implements spec §4.4's algorithm. It returns (nil, nil) when no
// event should be emitted: a duplicate header, an orphan with no attaching
// fork, an attach that did not change the canonical fork, or a divergence
// whose rollback reaches past the confirmation horizon (ParentBlockUnknown,
// handled as "safety over liveness" per the edge cases in spec §4.4).
//
// No path of Process returns a non-nil error: every outcome above is
// reported either as (nil, nil) or as an event with a nil error.
func (f *ForkScratchPad) Process(ctx telemetry.Context, header BlockHeader) (*ChainEvent, error) {
	log := ctx.Logger()

	// 1. Dedup.
	if existed := f.headers.Insert(header); existed {
		log.Warnw("duplicate header ignored", "identifier", header.BlockIdentifier.String())
		return nil, nil
	}

	// 2. Attach, draining orphans to a fixpoint (3).
	if !f.attach(header) {
		f.orphans[header.BlockIdentifier.Hash] = header
		f.orphanOrder = append(f.orphanOrder, header.BlockIdentifier)
		return nil, nil
	}
	f.drainOrphans()

	// 4. Elect canonical.
	priorCanonical := f.canonicalForkID
	f.electCanonical()

	// 5. Diff.
	canonicalSeg := f.forks[f.canonicalForkID]
	newCanonical := canonicalSeg.Clone()

	event, ok, err := f.diff(newCanonical)
	if err != nil {
		// ParentBlockUnknown: restore prior canonical choice and emit
		// nothing (spec §4.4 edge case: deep reorg past the confirmation
		// horizon).
		f.canonicalForkID = priorCanonical
		log.Warnw("divergence past confirmation horizon, canonical choice reverted",
			"prior_fork_id", priorCanonical)
		return nil, nil
	}
	if !ok {
		// New canonical identical to last_canonical: nothing changed.
		return nil, nil
	}

	// 6. Confirmation pruning.
	f.confirmationPrune(event, log)

	// 7. Commit.
	f.lastCanonical = f.forks[f.canonicalForkID].Clone()

	return event, nil
}

// attach tries each fork in insertion order, stopping at the first
// Appended or Forked outcome (spec §4.4 step 2).
func (f *ForkScratchPad) attach(header BlockHeader) bool {
	for _, id := range f.forkOrder {
		seg := f.forks[id]
		res := seg.Append(header)
		switch res.Kind {
		case AppendAppended:
			return true
		case AppendForked:
			newID := f.nextForkID
			f.nextForkID++
			f.forks[newID] = res.NewSegment
			f.forkOrder = append(f.forkOrder, newID)
			return true
		}
	}
	return false
}

// drainOrphans retries every parked orphan until a full pass attaches
// none (spec §4.4 step 3).
func (f *ForkScratchPad) drainOrphans() {
	for {
		attachedAny := false
		remaining := f.orphanOrder[:0:0]
		for _, id := range f.orphanOrder {
			h := f.orphans[id.Hash]
			if f.attach(h) {
				delete(f.orphans, id.Hash)
				attachedAny = true
				continue
			}
			remaining = append(remaining, id)
		}
		f.orphanOrder = remaining
		if !attachedAny {
			return
		}
	}
}

// electCanonical scans all forks for the greatest length, tie-broken by
// smaller tip identifier (spec §4.1, §4.4 step 4).
func (f *ForkScratchPad) electCanonical() {
	best := f.forkOrder[0]
	for _, id := range f.forkOrder[1:] {
		if f.segmentBetter(f.forks[id], f.forks[best]) {
			best = id
		}
	}
	f.canonicalForkID = best
}

func (f *ForkScratchPad) segmentBetter(a, b *ChainSegment) bool {
	if a.Length() != b.Length() {
		return a.Length() > b.Length()
	}
	aTip, aOK := a.Tip()
	bTip, bOK := b.Tip()
	if !aOK || !bOK {
		return false
	}
	return aTip.Less(bTip)
}

// diff implements step 5. ok is false when nothing changed (new equals
// last_canonical); err is non-nil only for Incompatibility (the
// ParentBlockUnknown case the caller must translate into "revert and emit
// nothing").
func (f *ForkScratchPad) diff(newCanonical *ChainSegment) (event *ChainEvent, ok bool, err error) {
	if newCanonical.Equal(f.lastCanonical) {
		return nil, false, nil
	}

	if f.lastCanonical.Length() == 0 {
		return &ChainEvent{
			Kind:       EventExtended,
			NewHeaders: f.materialize(newCanonical.Identifiers()),
		}, true, nil
	}

	div, derr := newCanonical.TryIdentifyDivergence(f.lastCanonical)
	if derr != nil {
		return nil, false, derr
	}

	if len(div.RollbackIDs) == 0 {
		if len(div.ApplyIDs) == 0 {
			return nil, false, nil
		}
		return &ChainEvent{
			Kind:       EventExtended,
			NewHeaders: f.materialize(div.ApplyIDs),
		}, true, nil
	}

	return &ChainEvent{
		Kind:              EventReorganized,
		HeadersToRollback: f.materialize(div.RollbackIDs),
		HeadersToApply:    f.materialize(div.ApplyIDs),
	}, true, nil
}

// confirmationPrune implements step 6: compute the cutoff from the
// canonical fork's depth, prune every fork at that cutoff, drop empty
// forks and stale orphans, and attach the canonical-fork removals to the
// event as confirmed_headers.
//
// Non-canonical prune results are removed from the HeaderStore too (not
// just discarded from the event) so memory stays bounded by property P4
// as forks are pruned over the lifetime of the scratchpad; only the
// canonical-fork removals are reported to the caller.
func (f *ForkScratchPad) confirmationPrune(event *ChainEvent, log telemetry.Logger) {
	canonicalSeg := f.forks[f.canonicalForkID]
	tip, ok := canonicalSeg.Tip()
	if !ok || tip.Index < f.cfg.ConfirmedDepth {
		return
	}
	// A block is settled once it has ConfirmedDepth descendants; the
	// newest settled block therefore sits ConfirmedDepth below the tip,
	// and everything at or below that index is now confirmed (spec §4.4
	// step 6, §8 scenario 4).
	cutoffIndex := tip.Index - f.cfg.ConfirmedDepth

	var confirmed []BlockHeader
	liveForkOrder := f.forkOrder[:0:0]
	for _, id := range f.forkOrder {
		seg := f.forks[id]
		removed := seg.PruneConfirmed(cutoffIndex)
		if id == f.canonicalForkID {
			// Materialized before eviction, while the HeaderStore still
			// holds the removed headers.
			confirmed = f.materialize(removed)
		}
		for _, r := range removed {
			f.headers.Remove(r)
		}
		if seg.Length() > 0 || id == f.canonicalForkID {
			liveForkOrder = append(liveForkOrder, id)
		} else {
			delete(f.forks, id)
		}
	}
	f.forkOrder = liveForkOrder

	remainingOrphans := f.orphanOrder[:0:0]
	for _, id := range f.orphanOrder {
		if id.Index <= cutoffIndex {
			delete(f.orphans, id.Hash)
			f.headers.Remove(id)
			log.Debugw("orphan pruned past confirmation horizon", "identifier", id.String())
			continue
		}
		remainingOrphans = append(remainingOrphans, id)
	}
	f.orphanOrder = remainingOrphans

	event.ConfirmedHeaders = confirmed
}

// materialize looks up each identifier in the HeaderStore. Identifiers
// passed here always originate from segments attached earlier in this same
// Process call (or previous ones whose headers have not yet been pruned),
// so a missing entry indicates an internal inconsistency; it is skipped
// rather than panicking. The skip is silent: no log entry and no error
// is produced for it.
func (f *ForkScratchPad) materialize(ids []hexid.BlockIdentifier) []BlockHeader {
	out := make([]BlockHeader, 0, len(ids))
	for _, id := range ids {
		h, ok := f.headers.Get(id)
		if !ok {
			continue
		}
		out = append(out, h)
	}
	return out
}
