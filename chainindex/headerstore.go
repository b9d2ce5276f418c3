package chainindex

import "github.com/chainwatch-dev/chainwatch/internal/hexid"

// HeaderStore is C2: an insertion-idempotent, content-addressed cache of
// headers by identifier (spec §4.2). Keying is by hash alone, matching
// BlockIdentifier equality (spec §3: "Equality is by hash; index is
// informational").
type HeaderStore struct {
	byHash map[hexid.Hash32]BlockHeader
}

// NewHeaderStore returns an empty store.
func NewHeaderStore() *HeaderStore {
	return &HeaderStore{byHash: make(map[hexid.Hash32]BlockHeader)}
}

// Insert adds header if not already present. It reports whether an entry
// already existed for header.BlockIdentifier (spec §4.2: "Insert returns
// whether the entry existed").
func (hs *HeaderStore) Insert(header BlockHeader) (existed bool) {
	_, existed = hs.byHash[header.BlockIdentifier.Hash]
	if !existed {
		hs.byHash[header.BlockIdentifier.Hash] = header
	}
	return existed
}

// Get looks up a header by identifier.
func (hs *HeaderStore) Get(id hexid.BlockIdentifier) (BlockHeader, bool) {
	h, ok := hs.byHash[id.Hash]
	return h, ok
}

// Remove explicitly evicts an entry. No-op if absent.
func (hs *HeaderStore) Remove(id hexid.BlockIdentifier) {
	delete(hs.byHash, id.Hash)
}

// Len reports the number of stored headers.
func (hs *HeaderStore) Len() int {
	return len(hs.byHash)
}
