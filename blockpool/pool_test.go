package blockpool

import (
	"testing"

	"github.com/chainwatch-dev/chainwatch/chainindex"
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

func blockID(index uint64, b byte) hexid.BlockIdentifier {
	var h hexid.Hash32
	h[0] = b
	return hexid.BlockIdentifier{Index: index, Hash: h}
}

func anchor(self, parent hexid.BlockIdentifier, txids ...string) Block {
	var txs []Transaction
	for _, id := range txids {
		txs = append(txs, Transaction{Txid: id})
	}
	return Block{BlockIdentifier: self, ParentBlockIdentifier: parent, Transactions: txs}
}

func TestProcessAnchorLinearExtension(t *testing.T) {
	pool := NewBlockPool(chainindex.Config{})
	ctx := telemetry.Background()

	g := blockID(0, 0x00)
	a1 := blockID(1, 0x01)

	if _, err := pool.ProcessAnchor(ctx, anchor(g, hexid.BlockIdentifier{}, "tx-g")); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	ev, err := pool.ProcessAnchor(ctx, anchor(a1, g, "tx-1"))
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if ev == nil || ev.Kind != EventExtended {
		t.Fatalf("expected an Extended event, got %+v", ev)
	}
	if len(ev.NewBlocks) != 1 || ev.NewBlocks[0].Transactions[0].Txid != "tx-1" {
		t.Fatalf("unexpected new blocks: %+v", ev.NewBlocks)
	}
}

func TestMicroblockTrailFoldsIntoConfirmingAnchor(t *testing.T) {
	pool := NewBlockPool(chainindex.Config{})
	ctx := telemetry.Background()

	g := blockID(0, 0x00)
	a1 := blockID(1, 0x01)
	a2 := blockID(2, 0x02)

	if _, err := pool.ProcessAnchor(ctx, anchor(g, hexid.BlockIdentifier{}, "tx-g")); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	if _, err := pool.ProcessAnchor(ctx, anchor(a1, g, "tx-1")); err != nil {
		t.Fatalf("a1: %v", err)
	}

	if err := pool.AppendMicroblock(a1, Microblock{Sequence: 0, Transactions: []Transaction{{Txid: "mb-0"}}}); err != nil {
		t.Fatalf("append microblock 0: %v", err)
	}
	if err := pool.AppendMicroblock(a1, Microblock{Sequence: 1, Transactions: []Transaction{{Txid: "mb-1"}}}); err != nil {
		t.Fatalf("append microblock 1: %v", err)
	}

	ev, err := pool.ProcessAnchor(ctx, anchor(a2, a1, "tx-2"))
	if err != nil {
		t.Fatalf("a2: %v", err)
	}
	if len(ev.NewBlocks) != 1 {
		t.Fatalf("expected one new block, got %d", len(ev.NewBlocks))
	}
	got := ev.NewBlocks[0].Transactions
	if len(got) != 3 || got[0].Txid != "mb-0" || got[1].Txid != "mb-1" || got[2].Txid != "tx-2" {
		t.Fatalf("expected trail folded ahead of the anchor's own transactions, got %+v", got)
	}
}

func TestMicroblockOutOfOrderRejected(t *testing.T) {
	pool := NewBlockPool(chainindex.Config{})
	a1 := blockID(1, 0x01)

	err := pool.AppendMicroblock(a1, Microblock{Sequence: 1})
	if err == nil {
		t.Fatalf("expected an out-of-order error")
	}
}

func TestReorgDiscardsTrailOfRolledBackAnchor(t *testing.T) {
	pool := NewBlockPool(chainindex.Config{})
	ctx := telemetry.Background()

	g := blockID(0, 0x00)
	aTip := blockID(1, 0x01)

	if _, err := pool.ProcessAnchor(ctx, anchor(g, hexid.BlockIdentifier{}, "tx-g")); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	if _, err := pool.ProcessAnchor(ctx, anchor(aTip, g, "tx-a")); err != nil {
		t.Fatalf("fork a: %v", err)
	}
	if err := pool.AppendMicroblock(aTip, Microblock{Sequence: 0, Transactions: []Transaction{{Txid: "mb-a"}}}); err != nil {
		t.Fatalf("append microblock: %v", err)
	}

	// A longer competing fork overtakes aTip, rolling it back.
	bTip1 := blockID(1, 0x11)
	bTip2 := blockID(2, 0x12)
	if _, err := pool.ProcessAnchor(ctx, anchor(bTip1, g, "tx-b1")); err != nil {
		t.Fatalf("fork b1: %v", err)
	}
	ev, err := pool.ProcessAnchor(ctx, anchor(bTip2, bTip1, "tx-b2"))
	if err != nil {
		t.Fatalf("fork b2: %v", err)
	}
	if ev == nil || ev.Kind != EventReorganized {
		t.Fatalf("expected a Reorganized event, got %+v", ev)
	}
	if _, exists := pool.trails[aTip.Hash]; exists {
		t.Fatalf("trail of rolled-back anchor must be discarded")
	}
}
