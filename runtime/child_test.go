package runtime

import (
	"testing"

	"github.com/chainwatch-dev/chainwatch/blockpool"
	"github.com/chainwatch-dev/chainwatch/chainindex"
	"github.com/chainwatch-dev/chainwatch/dispatch"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

func TestChildIngestorDecodesEachTransaction(t *testing.T) {
	decoder := func(raw []byte) dispatch.TransactionView {
		return dispatch.TransactionView{
			ContractCalls: []dispatch.ContractCallEvent{{ContractIdentifier: string(raw), Method: "run"}},
		}
	}
	ingestor := NewChildIngestor(chainindex.Config{ConfirmedDepth: 7}, decoder)
	ctx := telemetry.Background()

	h0 := blockID(0, 0x00)
	h1 := blockID(1, 0x11)

	block := blockpool.Block{
		BlockIdentifier:       h1,
		ParentBlockIdentifier: h0,
		Transactions: []blockpool.Transaction{
			{Txid: "tx-1", Raw: []byte("SP000.contract")},
		},
	}
	event, err := ingestor.ProcessAnchor(ctx, block)
	if err != nil {
		t.Fatalf("process anchor: %v", err)
	}
	if event == nil {
		t.Fatalf("expected a chain event for genesis extension")
	}
	if len(event.HeadersToApply) != 1 || len(event.HeadersToApply[0].Transactions) != 1 {
		t.Fatalf("expected one applied block with one transaction, got %+v", event.HeadersToApply)
	}
	view := event.HeadersToApply[0].Transactions[0]
	if view.Txid != "tx-1" || view.BlockHeight != 1 {
		t.Fatalf("expected decoded view to carry txid/height, got %+v", view)
	}
	if len(view.ContractCalls) != 1 || view.ContractCalls[0].ContractIdentifier != "SP000.contract" {
		t.Fatalf("expected decoder output preserved, got %+v", view.ContractCalls)
	}
}

func TestChildIngestorDefaultDecoderProducesEmptyView(t *testing.T) {
	ingestor := NewChildIngestor(chainindex.Config{ConfirmedDepth: 7}, nil)
	ctx := telemetry.Background()

	h0 := blockID(0, 0x00)
	h1 := blockID(1, 0x11)
	block := blockpool.Block{
		BlockIdentifier:       h1,
		ParentBlockIdentifier: h0,
		Transactions:          []blockpool.Transaction{{Txid: "tx-1"}},
	}
	event, err := ingestor.ProcessAnchor(ctx, block)
	if err != nil {
		t.Fatalf("process anchor: %v", err)
	}
	if event == nil || len(event.HeadersToApply) != 1 {
		t.Fatalf("expected one applied block")
	}
	if event.HeadersToApply[0].Transactions[0].ContractCalls != nil {
		t.Fatalf("expected default decoder to leave decoded fields empty")
	}
}
