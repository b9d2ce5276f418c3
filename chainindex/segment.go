package chainindex

import "github.com/chainwatch-dev/chainwatch/internal/hexid"

// ChainSegment is C1: an ordered sequence of block identifiers, oldest
// first, where each identifier is the parent of its successor (spec §3,
// §4.1). The zero value is a valid empty segment.
//
// The walk-back-to-common-ancestor shape of TryIdentifyDivergence mirrors
// the teacher's DB.findForkPoint/pathFromAncestor (node/store/reorg.go),
// generalized from a persistent, UTXO-validating store to an in-memory
// slice of identifiers with no validation side effects.
type ChainSegment struct {
	ids []hexid.BlockIdentifier
}

// NewChainSegment returns an empty segment.
func NewChainSegment() *ChainSegment {
	return &ChainSegment{}
}

// Clone returns a deep copy, used to snapshot last_canonical (spec §4.4
// step 7).
func (s *ChainSegment) Clone() *ChainSegment {
	out := make([]hexid.BlockIdentifier, len(s.ids))
	copy(out, s.ids)
	return &ChainSegment{ids: out}
}

// Length reports the number of identifiers held.
func (s *ChainSegment) Length() int {
	return len(s.ids)
}

// Tip returns the newest identifier, if any.
func (s *ChainSegment) Tip() (hexid.BlockIdentifier, bool) {
	if len(s.ids) == 0 {
		return hexid.BlockIdentifier{}, false
	}
	return s.ids[len(s.ids)-1], true
}

// Identifiers returns the held identifiers, oldest first. The returned
// slice must not be mutated by the caller.
func (s *ChainSegment) Identifiers() []hexid.BlockIdentifier {
	return s.ids
}

// Equal reports whether two segments hold the same sequence of
// identifiers.
func (s *ChainSegment) Equal(other *ChainSegment) bool {
	if other == nil {
		return len(s.ids) == 0
	}
	if len(s.ids) != len(other.ids) {
		return false
	}
	for i := range s.ids {
		if !s.ids[i].Equal(other.ids[i]) {
			return false
		}
	}
	return true
}

// AppendKind discriminates the AppendResult tagged union (spec §4.1).
type AppendKind int

const (
	AppendAppended AppendKind = iota
	AppendForked
	AppendRejected
)

// AppendResult is returned by Append. NewSegment is only populated when
// Kind is AppendForked.
type AppendResult struct {
	Kind       AppendKind
	NewSegment *ChainSegment
}

// Append attempts to extend the segment with header (spec §4.1):
//   - if the segment is empty, header becomes its sole entry (the scratchpad
//     seeds fork 0 with an empty segment; its first header always attaches
//     this way rather than being rejected for an "unknown" parent);
//   - if header's parent is the current tail, it is appended in place;
//   - if header's parent is an interior identifier, a new segment sharing
//     the common prefix up to and including that parent, plus header, is
//     returned and this segment is left unchanged;
//   - otherwise the parent is unknown to this segment and Append is
//     rejected.
func (s *ChainSegment) Append(header BlockHeader) AppendResult {
	if len(s.ids) == 0 {
		s.ids = append(s.ids, header.BlockIdentifier)
		return AppendResult{Kind: AppendAppended}
	}

	tail := s.ids[len(s.ids)-1]
	if header.ParentBlockIdentifier.Equal(tail) {
		s.ids = append(s.ids, header.BlockIdentifier)
		return AppendResult{Kind: AppendAppended}
	}

	for i, id := range s.ids {
		if id.Equal(header.ParentBlockIdentifier) {
			forked := make([]hexid.BlockIdentifier, i+1, i+2)
			copy(forked, s.ids[:i+1])
			forked = append(forked, header.BlockIdentifier)
			return AppendResult{Kind: AppendForked, NewSegment: &ChainSegment{ids: forked}}
		}
	}

	return AppendResult{Kind: AppendRejected}
}

// Divergence is the result of a successful TryIdentifyDivergence (spec
// §3, §4.1). RollbackIDs are the other-only tail, newest first (the order
// a consumer should undo them in). ApplyIDs are the self-only tail,
// oldest first (the order a consumer should apply them in).
type Divergence struct {
	RollbackIDs []hexid.BlockIdentifier
	ApplyIDs    []hexid.BlockIdentifier
}

// TryIdentifyDivergence scans from newest to oldest in both segments to
// find the most recent identifier present in both, then reports the
// other-only and self-only tails past that common ancestor (spec §4.1).
// Returns *Incompatibility{ParentBlockUnknown} if no common ancestor is
// found — including when both segments are non-empty but share no prefix,
// or when other is empty (every self identifier is then "self-only" with
// no anchor, which the scratchpad treats as the "last_canonical empty"
// case before ever reaching here).
func (s *ChainSegment) TryIdentifyDivergence(other *ChainSegment) (Divergence, error) {
	otherIndex := make(map[hexid.Hash32]int, len(other.ids))
	for i, id := range other.ids {
		otherIndex[id.Hash] = i
	}

	for i := len(s.ids) - 1; i >= 0; i-- {
		if j, ok := otherIndex[s.ids[i].Hash]; ok {
			rollback := make([]hexid.BlockIdentifier, 0, len(other.ids)-j-1)
			for k := len(other.ids) - 1; k > j; k-- {
				rollback = append(rollback, other.ids[k])
			}
			apply := make([]hexid.BlockIdentifier, len(s.ids)-i-1)
			copy(apply, s.ids[i+1:])
			return Divergence{RollbackIDs: rollback, ApplyIDs: apply}, nil
		}
	}

	return Divergence{}, &Incompatibility{Code: IncompatParentUnknown}
}

// PruneConfirmed drops every entry whose index is ≤ cutoffIndex and
// returns the removed identifiers, oldest first (spec §4.1).
func (s *ChainSegment) PruneConfirmed(cutoffIndex uint64) []hexid.BlockIdentifier {
	i := 0
	for i < len(s.ids) && s.ids[i].Index <= cutoffIndex {
		i++
	}
	if i == 0 {
		return nil
	}
	removed := make([]hexid.BlockIdentifier, i)
	copy(removed, s.ids[:i])
	remaining := make([]hexid.BlockIdentifier, len(s.ids)-i)
	copy(remaining, s.ids[i:])
	s.ids = remaining
	return removed
}
