package dispatch

import "testing"

func u64(n uint64) *uint64 { return &n }

func TestMatchContractCallWildcardContract(t *testing.T) {
	p := predicateContractCall("*", "transfer")
	tx := TransactionView{ContractCalls: []ContractCallEvent{{ContractIdentifier: "ST1..contract", Method: "transfer"}}}
	ok, _ := matchPredicate(p, tx)
	if !ok {
		t.Fatalf("expected wildcard contract identifier to match")
	}
}

func TestMatchContractCallMethodMismatch(t *testing.T) {
	p := predicateContractCall("ST1..contract", "transfer")
	tx := TransactionView{ContractCalls: []ContractCallEvent{{ContractIdentifier: "ST1..contract", Method: "mint"}}}
	ok, _ := matchPredicate(p, tx)
	if ok {
		t.Fatalf("method mismatch must not match")
	}
}

func TestMatchPrintEventRegex(t *testing.T) {
	p := predicateImport()
	tx := TransactionView{PrintEvents: []PrintEventOccurrence{{ContractIdentifier: "*", Body: "swap:123"}}}
	ok, _ := matchPredicate(p, tx)
	if !ok {
		t.Fatalf("expected regex body to match")
	}
}

func TestMatchStxEventRequiresAllowedAction(t *testing.T) {
	p := predicateStx("transfer")
	tx := TransactionView{StxEvents: []StxEventOccurrence{{Action: "lock"}}}
	if ok, _ := matchPredicate(p, tx); ok {
		t.Fatalf("action not in allow-list must not match")
	}
	tx = TransactionView{StxEvents: []StxEventOccurrence{{Action: "transfer"}}}
	if ok, _ := matchPredicate(p, tx); !ok {
		t.Fatalf("allowed action must match")
	}
}

func TestMatchBlockHeightBetween(t *testing.T) {
	p := predicateHeightBetween(100, 200)
	if ok, _ := matchPredicate(p, TransactionView{BlockHeight: 150}); !ok {
		t.Fatalf("150 should be within [100,200]")
	}
	if ok, _ := matchPredicate(p, TransactionView{BlockHeight: 201}); ok {
		t.Fatalf("201 should be outside [100,200]")
	}
}
