package store

import (
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/chainwatch-dev/chainwatch/chainindex"
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/predicate"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)

	var hash hexid.Hash32
	hash[0] = 0x01
	snap := chainindex.Snapshot{
		Config:          chainindex.Config{ConfirmedDepth: 7},
		CanonicalForkID: 0,
		NextForkID:      1,
		ForkOrder:       []uint64{0},
		Forks: map[uint64][]hexid.BlockIdentifier{
			0: {{Index: 0, Hash: hash}},
		},
		Headers:       []chainindex.BlockHeader{{BlockIdentifier: hexid.BlockIdentifier{Index: 0, Hash: hash}}},
		LastCanonical: []hexid.BlockIdentifier{{Index: 0, Hash: hash}},
	}

	if err := db.PutSnapshot("bitcoin-mainnet", snap); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	got, ok, err := db.GetSnapshot("bitcoin-mainnet")
	if err != nil || !ok {
		t.Fatalf("GetSnapshot: ok=%v err=%v", ok, err)
	}
	if got.CanonicalForkID != snap.CanonicalForkID || len(got.Forks[0]) != 1 {
		t.Fatalf("round-tripped snapshot mismatch: %+v", got)
	}

	if err := db.DeleteSnapshot("bitcoin-mainnet"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	_, ok, err = db.GetSnapshot("bitcoin-mainnet")
	if err != nil || ok {
		t.Fatalf("expected snapshot to be gone after delete, ok=%v err=%v", ok, err)
	}
}

func TestSnapshotChecksumMismatchIsRejected(t *testing.T) {
	db := openTestDB(t)

	snap := chainindex.Snapshot{Config: chainindex.Config{ConfirmedDepth: 7}, NextForkID: 1}
	if err := db.PutSnapshot("bitcoin-mainnet", snap); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	if err := db.db.Update(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSnapshots).Get([]byte("bitcoin-mainnet"))
		corrupt := append([]byte(nil), v...)
		corrupt[len(corrupt)-1] ^= 0xff
		return tx.Bucket(bucketSnapshots).Put([]byte("bitcoin-mainnet"), corrupt)
	}); err != nil {
		t.Fatalf("corrupt fixture: %v", err)
	}

	if _, _, err := db.GetSnapshot("bitcoin-mainnet"); err == nil {
		t.Fatalf("expected checksum verification to reject a corrupted snapshot")
	}
}

func TestPredicatePersistenceRoundTrip(t *testing.T) {
	db := openTestDB(t)

	doc := predicate.Document{
		Name:  "watch-transfers",
		Chain: predicate.ChainStacks,
		Networks: map[string]predicate.NetworkSpec{
			"mainnet": {
				Active: true,
				IfThis: predicate.Predicate{Kind: predicate.KindContractCall, ContractIdentifier: "ST1..c", Method: "transfer"},
				ThenThat: predicate.Action{Kind: predicate.ActionHttpPost, URL: "https://example.com/hook"},
			},
		},
	}
	doc.EnsureID()

	if err := db.PutPredicate("mainnet", doc); err != nil {
		t.Fatalf("PutPredicate: %v", err)
	}

	rec, ok, err := db.GetPredicate("mainnet", doc.ID)
	if err != nil || !ok {
		t.Fatalf("GetPredicate: ok=%v err=%v", ok, err)
	}
	if rec.Name != "watch-transfers" || rec.Network.IfThis.Method != "transfer" {
		t.Fatalf("round-tripped predicate mismatch: %+v", rec)
	}

	all, err := db.ListPredicates("mainnet")
	if err != nil {
		t.Fatalf("ListPredicates: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 predicate, got %d", len(all))
	}

	if err := db.DeletePredicate("mainnet", doc.ID); err != nil {
		t.Fatalf("DeletePredicate: %v", err)
	}
	_, ok, err = db.GetPredicate("mainnet", doc.ID)
	if err != nil || ok {
		t.Fatalf("expected predicate to be gone after delete, ok=%v err=%v", ok, err)
	}
}
