package chainindex

import "github.com/chainwatch-dev/chainwatch/internal/hexid"

// Snapshot is a serializable capture of a ForkScratchPad's entire state:
// forks, orphans, headers, canonical_fork_id, and last_canonical, exactly
// the five pieces of state spec §6 names as the persistent-state layout
// for a chain's scratchpad. Persisting and restoring it is an optional
// external-collaborator concern (see the `store` package); chainindex
// itself has no I/O dependency.
type Snapshot struct {
	Config Config

	CanonicalForkID uint64
	NextForkID      uint64
	ForkOrder       []uint64
	Forks           map[uint64][]hexid.BlockIdentifier

	Headers []BlockHeader

	OrphanOrder []hexid.BlockIdentifier
	Orphans     []BlockHeader

	LastCanonical []hexid.BlockIdentifier
}

// Snapshot captures the scratchpad's current state.
func (f *ForkScratchPad) Snapshot() Snapshot {
	forks := make(map[uint64][]hexid.BlockIdentifier, len(f.forks))
	for id, seg := range f.forks {
		forks[id] = seg.Identifiers()
	}

	headers := make([]BlockHeader, 0, f.headers.Len())
	for _, id := range f.headerOrder() {
		if h, ok := f.headers.Get(id); ok {
			headers = append(headers, h)
		}
	}

	orphans := make([]BlockHeader, 0, len(f.orphanOrder))
	for _, id := range f.orphanOrder {
		orphans = append(orphans, f.orphans[id.Hash])
	}

	return Snapshot{
		Config:          f.cfg,
		CanonicalForkID: f.canonicalForkID,
		NextForkID:      f.nextForkID,
		ForkOrder:       append([]uint64(nil), f.forkOrder...),
		Forks:           forks,
		Headers:         headers,
		OrphanOrder:     append([]hexid.BlockIdentifier(nil), f.orphanOrder...),
		Orphans:         orphans,
		LastCanonical:   f.lastCanonical.Identifiers(),
	}
}

// Restore rebuilds a ForkScratchPad from a prior Snapshot. It trusts the
// snapshot's internal consistency (it was produced by Snapshot on a valid
// scratchpad); a snapshot loaded from untrusted storage should be treated
// as a StoreInconsistency risk by the caller, not validated here.
func Restore(snap Snapshot) *ForkScratchPad {
	headers := NewHeaderStore()
	for _, h := range snap.Headers {
		headers.Insert(h)
	}
	for _, h := range snap.Orphans {
		headers.Insert(h)
	}

	forks := make(map[uint64]*ChainSegment, len(snap.Forks))
	for id, ids := range snap.Forks {
		seg := NewChainSegment()
		for _, blockID := range ids {
			h, ok := headers.Get(blockID)
			if !ok {
				continue
			}
			seg.ids = append(seg.ids, h.BlockIdentifier)
		}
		forks[id] = seg
	}

	orphans := make(map[hexid.Hash32]BlockHeader, len(snap.Orphans))
	for _, h := range snap.Orphans {
		orphans[h.BlockIdentifier.Hash] = h
	}

	lastCanonical := NewChainSegment()
	for _, blockID := range snap.LastCanonical {
		if h, ok := headers.Get(blockID); ok {
			lastCanonical.ids = append(lastCanonical.ids, h.BlockIdentifier)
		}
	}

	return &ForkScratchPad{
		cfg:             snap.Config.WithDefaults(),
		canonicalForkID: snap.CanonicalForkID,
		nextForkID:      snap.NextForkID,
		forkOrder:       append([]uint64(nil), snap.ForkOrder...),
		forks:           forks,
		headers:         headers,
		orphanOrder:     append([]hexid.BlockIdentifier(nil), snap.OrphanOrder...),
		orphans:         orphans,
		lastCanonical:   lastCanonical,
	}
}

// headerOrder reconstructs a stable iteration order over the HeaderStore
// by walking every fork's identifiers in fork order, deduplicating as it
// goes; orphans are not included here. HeaderStore itself (a map) has no
// ordering of its own.
func (f *ForkScratchPad) headerOrder() []hexid.BlockIdentifier {
	seen := make(map[hexid.Hash32]bool)
	var order []hexid.BlockIdentifier
	for _, id := range f.forkOrder {
		for _, blockID := range f.forks[id].Identifiers() {
			if !seen[blockID.Hash] {
				seen[blockID.Hash] = true
				order = append(order, blockID)
			}
		}
	}
	return order
}
