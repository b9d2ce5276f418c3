package dispatch

import (
	"sync"

	"github.com/chainwatch-dev/chainwatch/predicate"
)

// registered is one network body tracked under its owning document, kept
// alongside the document metadata (id, chain) the delivered Match needs.
type registered struct {
	predicateID   string
	predicateName string
	networkName   string
	chain         predicate.Chain
	network       predicate.NetworkSpec
}

// Registry is the mutable predicate set a control plane adds to and
// removes from; EventDispatcher takes a read-only snapshot of it once per
// event so that an update racing with in-flight dispatch never produces a
// torn read (spec §4.6, "the registry is mutable from a control plane;
// readers see a consistent snapshot per event").
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]map[string]registered // predicateID -> network name -> entry
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]map[string]registered)}
}

// Register installs or replaces every network body of doc.
func (r *Registry) Register(doc predicate.Document) {
	doc.EnsureID()
	r.mu.Lock()
	defer r.mu.Unlock()
	networks := make(map[string]registered, len(doc.Networks))
	for name, net := range doc.Networks {
		// Active is dispatcher-owned bookkeeping, not a document field a
		// caller supplies: every freshly registered network starts active.
		net.Active = true
		networks[name] = registered{predicateID: doc.ID, predicateName: doc.Name, networkName: name, chain: doc.Chain, network: net}
	}
	r.byID[doc.ID] = networks
}

// Unregister removes every network body of a predicate.
func (r *Registry) Unregister(predicateID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, predicateID)
}

// snapshot returns a flat, independent copy of every active network entry
// for the given chain, safe to range over without holding r.mu.
func (r *Registry) snapshot(chain predicate.Chain) []registered {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []registered
	for _, networks := range r.byID {
		for _, entry := range networks {
			if entry.chain == chain && entry.network.Active {
				out = append(out, entry)
			}
		}
	}
	return out
}

// recordOccurrence increments the match counter for predicateID/network and
// deactivates it once expire_after_occurrence is reached (spec §4.6). It
// reports whether the network body is still active after recording, so a
// caller delivering several matches for the same predicate within one event
// can stop as soon as expiry is reached instead of over-delivering.
func (r *Registry) recordOccurrence(predicateID, networkName string) (stillActive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	networks, ok := r.byID[predicateID]
	if !ok {
		return false
	}
	entry, ok := networks[networkName]
	if !ok {
		return false
	}
	entry.network.Occurrences++
	if entry.network.ExpireAfterOccurrence != nil && entry.network.Occurrences >= *entry.network.ExpireAfterOccurrence {
		entry.network.Active = false
	}
	networks[networkName] = entry
	return entry.network.Active
}
