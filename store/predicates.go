package store

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/chainwatch-dev/chainwatch/predicate"
)

// PutPredicate persists one network body of doc under
// predicates/<network>/<uuid>, per spec §6's persistent-state layout.
// doc.EnsureID is called first so every stored predicate has a stable key.
func (d *DB) PutPredicate(networkName string, doc predicate.Document) error {
	doc.EnsureID()
	net, ok := doc.Networks[networkName]
	if !ok {
		return fmt.Errorf("store: document %s has no network %q", doc.ID, networkName)
	}

	record := struct {
		ID      string
		Name    string
		Version string
		Chain   predicate.Chain
		Owner   string
		Network predicate.NetworkSpec
	}{ID: doc.ID, Name: doc.Name, Version: doc.Version, Chain: doc.Chain, Owner: doc.Owner, Network: net}

	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("store: encode predicate: %w", err)
	}

	return d.db.Update(func(tx *bolt.Tx) error {
		network, err := tx.Bucket(bucketPredicates).CreateBucketIfNotExists([]byte(networkName))
		if err != nil {
			return fmt.Errorf("store: create network bucket %q: %w", networkName, err)
		}
		return network.Put([]byte(doc.ID), b)
	})
}

// PredicateRecord is one persisted (document, network) pair as returned
// by ListPredicates.
type PredicateRecord struct {
	ID      string
	Name    string
	Version string
	Chain   predicate.Chain
	Owner   string
	Network predicate.NetworkSpec
}

// GetPredicate loads one predicate's network body by uuid.
func (d *DB) GetPredicate(networkName, uuid string) (PredicateRecord, bool, error) {
	var rec PredicateRecord
	var found bool
	err := d.db.View(func(tx *bolt.Tx) error {
		network := tx.Bucket(bucketPredicates).Bucket([]byte(networkName))
		if network == nil {
			return nil
		}
		v := network.Get([]byte(uuid))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("store: decode predicate: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return PredicateRecord{}, false, err
	}
	return rec, found, nil
}

// ListPredicates returns every persisted predicate for networkName.
func (d *DB) ListPredicates(networkName string) ([]PredicateRecord, error) {
	var out []PredicateRecord
	err := d.db.View(func(tx *bolt.Tx) error {
		network := tx.Bucket(bucketPredicates).Bucket([]byte(networkName))
		if network == nil {
			return nil
		}
		return network.ForEach(func(k, v []byte) error {
			var rec PredicateRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("store: decode predicate %s: %w", string(k), err)
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

// DeletePredicate removes a predicate's network body.
func (d *DB) DeletePredicate(networkName, uuid string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		network := tx.Bucket(bucketPredicates).Bucket([]byte(networkName))
		if network == nil {
			return nil
		}
		return network.Delete([]byte(uuid))
	})
}
