package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/chainwatch-dev/chainwatch/predicate"
)

// outboundBody is the JSON body an HttpPostSink/FileAppendSink delivers,
// per spec §6: {chainhook:{uuid, predicate}, apply:[{block_identifier,
// transactions[]}], rollback:[...], confirmed:[...]}. Only a single
// Match's own block/txid/detail are known at delivery time, so each
// delivery carries a one-block, one-transaction-sized body rather than
// re-bundling the full originating Event; Rollback is always empty since
// EventDispatcher never matches rolled-back blocks (spec §4.6).
type outboundBody struct {
	Chainhook struct {
		UUID      string `json:"uuid"`
		Predicate string `json:"predicate"`
	} `json:"chainhook"`
	Apply     []outboundBlock `json:"apply"`
	Rollback  []outboundBlock `json:"rollback"`
	Confirmed []outboundBlock `json:"confirmed"`
}

type outboundBlock struct {
	BlockIdentifier string                `json:"block_identifier"`
	Transactions    []outboundTransaction `json:"transactions"`
}

type outboundTransaction struct {
	Txid   string      `json:"txid"`
	Detail interface{} `json:"detail,omitempty"`
}

// buildOutboundBody assembles the wire body for a single delivered Match,
// routing it into the "apply" or "confirmed" array per m.Confirmed.
func buildOutboundBody(m Match) outboundBody {
	var body outboundBody
	body.Chainhook.UUID = m.PredicateID
	body.Chainhook.Predicate = m.PredicateName
	body.Rollback = []outboundBlock{}
	block := outboundBlock{
		BlockIdentifier: m.BlockIdentifier.String(),
		Transactions:    []outboundTransaction{{Txid: m.Txid, Detail: m.Detail}},
	}
	if m.Confirmed {
		body.Apply = []outboundBlock{}
		body.Confirmed = []outboundBlock{block}
	} else {
		body.Apply = []outboundBlock{block}
		body.Confirmed = []outboundBlock{}
	}
	return body
}

// HttpPostSink delivers a Match as an outbound POST with the predicate's
// configured Authorization header (spec §6). No pack repo reaches for a
// third-party HTTP client for a fire-and-forget outbound POST; net/http
// is the standard-library idiom the teacher itself would reach for here
// (see DESIGN.md).
type HttpPostSink struct {
	Client *http.Client
}

func NewHttpPostSink() *HttpPostSink {
	return &HttpPostSink{Client: http.DefaultClient}
}

func (s *HttpPostSink) Deliver(ctx context.Context, m Match) error {
	if m.Action.Kind != predicate.ActionHttpPost {
		return fmt.Errorf("dispatch: HttpPostSink cannot deliver action kind %d", m.Action.Kind)
	}

	encoded, err := json.Marshal(buildOutboundBody(m))
	if err != nil {
		return fmt.Errorf("dispatch: encode outbound body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Action.URL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("dispatch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.Action.AuthorizationHeader != "" {
		req.Header.Set("Authorization", m.Action.AuthorizationHeader)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch: post delivery failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("dispatch: delivery rejected with status %d", resp.StatusCode)
	}
	return nil
}

// FileAppendSink appends one JSON-encoded line per Match to the
// predicate's configured path (spec §6's FileAppend action).
type FileAppendSink struct{}

func (FileAppendSink) Deliver(ctx context.Context, m Match) error {
	if m.Action.Kind != predicate.ActionFileAppend {
		return fmt.Errorf("dispatch: FileAppendSink cannot deliver action kind %d", m.Action.Kind)
	}

	encoded, err := json.Marshal(buildOutboundBody(m))
	if err != nil {
		return fmt.Errorf("dispatch: encode outbound body: %w", err)
	}
	encoded = append(encoded, '\n')

	f, err := os.OpenFile(m.Action.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("dispatch: open file append target: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(encoded); err != nil {
		return fmt.Errorf("dispatch: append write: %w", err)
	}
	return nil
}

// MultiActionSink dispatches a Match to HttpPostSink or FileAppendSink
// depending on its Action.Kind, so EventDispatcher's caller can register a
// single sink regardless of which action kinds predicates configure.
type MultiActionSink struct {
	HTTP *HttpPostSink
	File FileAppendSink
}

func NewMultiActionSink() *MultiActionSink {
	return &MultiActionSink{HTTP: NewHttpPostSink()}
}

func (s *MultiActionSink) Deliver(ctx context.Context, m Match) error {
	switch m.Action.Kind {
	case predicate.ActionHttpPost:
		return s.HTTP.Deliver(ctx, m)
	case predicate.ActionFileAppend:
		return s.File.Deliver(ctx, m)
	default:
		return fmt.Errorf("dispatch: unknown action kind %d", m.Action.Kind)
	}
}
