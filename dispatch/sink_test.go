package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/predicate"
)

func TestHttpPostSinkDeliversExpectedBody(t *testing.T) {
	var gotAuth string
	var gotBody outboundBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewHttpPostSink()
	m := Match{
		PredicateID:     "pred-1",
		PredicateName:   "watch-prints",
		BlockIdentifier: hexid.BlockIdentifier{Index: 10, Hash: hexid.Hash32{0x01}},
		Txid:            "abc123",
		Detail:          map[string]string{"kind": "print"},
		Action: predicate.Action{
			Kind:                predicate.ActionHttpPost,
			URL:                 srv.URL,
			AuthorizationHeader: "Bearer secret",
		},
	}

	if err := sink.Deliver(context.Background(), m); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected Authorization header to be forwarded, got %q", gotAuth)
	}
	if gotBody.Chainhook.UUID != "pred-1" || gotBody.Chainhook.Predicate != "watch-prints" {
		t.Fatalf("unexpected chainhook header: %+v", gotBody.Chainhook)
	}
	if len(gotBody.Apply) != 1 || len(gotBody.Apply[0].Transactions) != 1 || gotBody.Apply[0].Transactions[0].Txid != "abc123" {
		t.Fatalf("unexpected apply entries: %+v", gotBody.Apply)
	}
	if len(gotBody.Confirmed) != 0 || len(gotBody.Rollback) != 0 {
		t.Fatalf("expected empty confirmed/rollback arrays, got %+v / %+v", gotBody.Confirmed, gotBody.Rollback)
	}
}

func TestHttpPostSinkRoutesConfirmedMatchIntoConfirmedArray(t *testing.T) {
	var gotBody outboundBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewHttpPostSink()
	m := Match{
		PredicateID:     "pred-1",
		BlockIdentifier: hexid.BlockIdentifier{Index: 10, Hash: hexid.Hash32{0x01}},
		Txid:            "abc123",
		Confirmed:       true,
		Action:          predicate.Action{Kind: predicate.ActionHttpPost, URL: srv.URL},
	}
	if err := sink.Deliver(context.Background(), m); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(gotBody.Apply) != 0 {
		t.Fatalf("expected empty apply array for a confirmed match, got %+v", gotBody.Apply)
	}
	if len(gotBody.Confirmed) != 1 || gotBody.Confirmed[0].Transactions[0].Txid != "abc123" {
		t.Fatalf("expected confirmed match in confirmed array, got %+v", gotBody.Confirmed)
	}
}

func TestHttpPostSinkRejectsWrongActionKind(t *testing.T) {
	sink := NewHttpPostSink()
	m := Match{Action: predicate.Action{Kind: predicate.ActionFileAppend}}
	if err := sink.Deliver(context.Background(), m); err == nil {
		t.Fatalf("expected error delivering FileAppend action through HttpPostSink")
	}
}

func TestFileAppendSinkAppendsOneLinePerMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matches.jsonl")

	sink := FileAppendSink{}
	for i := 0; i < 2; i++ {
		m := Match{
			PredicateID:     "pred-2",
			BlockIdentifier: hexid.BlockIdentifier{Index: uint64(i), Hash: hexid.Hash32{0x02}},
			Txid:            "tx",
			Action:          predicate.Action{Kind: predicate.ActionFileAppend, Path: path},
		}
		if err := sink.Deliver(context.Background(), m); err != nil {
			t.Fatalf("deliver %d: %v", i, err)
		}
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read appended file: %v", err)
	}
	var lines int
	for _, b := range contents {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 appended lines, got %d (contents: %s)", lines, contents)
	}
}

func TestMultiActionSinkRoutesByActionKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matches.jsonl")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewMultiActionSink()

	httpMatch := Match{PredicateID: "p", Txid: "t1", Action: predicate.Action{Kind: predicate.ActionHttpPost, URL: srv.URL}}
	if err := sink.Deliver(context.Background(), httpMatch); err != nil {
		t.Fatalf("http-routed deliver: %v", err)
	}

	fileMatch := Match{PredicateID: "p", Txid: "t2", Action: predicate.Action{Kind: predicate.ActionFileAppend, Path: path}}
	if err := sink.Deliver(context.Background(), fileMatch); err != nil {
		t.Fatalf("file-routed deliver: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file-routed match to create %s: %v", path, err)
	}
}
