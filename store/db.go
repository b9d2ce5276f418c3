// Package store implements the optional persistence layer named in spec
// §6: each predicate stored under predicates/<network>/<uuid>, and each
// chain's scratchpad snapshot serialized as a single blob. Persistence is
// explicitly an external-collaborator concern (spec §1) — chainindex and
// predicate themselves have no storage dependency; this package is the
// thing that wires bbolt in underneath them.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketSnapshots  = []byte("chain_snapshots")
	bucketPredicates = []byte("predicates")
)

// DB wraps a single bbolt file holding both chain snapshots and the
// predicate registry's durable copy, grounded on the teacher's
// node/store.DB (same bolt.Open/CreateBucketIfNotExists shape, collapsed
// to the two buckets this module's scope needs instead of the teacher's
// five UTXO-chainstate buckets).
type DB struct {
	db *bolt.DB
}

// Open opens (creating if absent) a bbolt database at path with the
// buckets this package needs.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path required")
	}
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	d := &DB{db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSnapshots, bucketPredicates} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("store: create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}
