// Package runtime is the wiring glue the dispatch package's types.go
// comment calls for: it bridges chainindex/blockpool's ChainEvent output
// (bare headers or child blocks) to fully enriched dispatch.BlockEnvelopes,
// and bundles the whole per-chain pipeline (scratchpad/pool, registry,
// dispatcher, store) behind a small per-chain API a CLI or an external
// fetcher drives.
package runtime

import (
	"github.com/chainwatch-dev/chainwatch/burnchain"
	"github.com/chainwatch-dev/chainwatch/chainindex"
	"github.com/chainwatch-dev/chainwatch/dispatch"
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// ParentIngestor pairs a chainindex.ForkScratchPad with the full
// transaction bodies each header carries, since ForkScratchPad (spec
// §4.4) only ever sees bare headers. Fetching those bodies from the
// parent node is the external collaborator's job (spec §1); the caller
// supplies them alongside the header being ingested.
type ParentIngestor struct {
	scratch *chainindex.ForkScratchPad
	params  burnchain.NetworkParams
	bodies  map[hexid.Hash32][]burnchain.Transaction
}

func NewParentIngestor(cfg chainindex.Config, params burnchain.NetworkParams) *ParentIngestor {
	return &ParentIngestor{
		scratch: chainindex.NewForkScratchPad(cfg),
		params:  params,
		bodies:  make(map[hexid.Hash32][]burnchain.Transaction),
	}
}

// Ingest runs header through the scratchpad's fork-election algorithm and,
// if it produces a ChainEvent, converts it into a dispatch.Event whose
// envelopes carry the parsed OP_RETURN payload and output scripts of every
// transaction touched. txs must be header's own transaction set; a
// reorganization's rolled-back or newly-applied headers are resolved from
// bodies recorded by earlier Ingest calls.
func (p *ParentIngestor) Ingest(ctx telemetry.Context, header chainindex.BlockHeader, txs []burnchain.Transaction) (*dispatch.Event, error) {
	for i := range txs {
		if err := burnchain.ParseTransaction(&txs[i], header.BlockIdentifier.Index, p.params); err != nil {
			ctx.Logger().Warnw("parent transaction parse failed", "txid", txs[i].Txid, "error", err)
		}
	}
	p.bodies[header.BlockIdentifier.Hash] = txs

	event, err := p.scratch.Process(ctx, header)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	applied := event.NewHeaders
	if event.Kind == chainindex.EventReorganized {
		applied = event.HeadersToApply
	}

	return &dispatch.Event{
		Kind:              dispatch.Kind(event.Kind),
		HeadersToRollback: p.envelopes(event.HeadersToRollback),
		HeadersToApply:    p.envelopes(applied),
		ConfirmedHeaders:  p.envelopes(event.ConfirmedHeaders),
	}, nil
}

func (p *ParentIngestor) envelopes(headers []chainindex.BlockHeader) []dispatch.BlockEnvelope {
	out := make([]dispatch.BlockEnvelope, 0, len(headers))
	for _, h := range headers {
		id := h.BlockIdentifier
		out = append(out, dispatch.BlockEnvelope{
			BlockIdentifier: id,
			Transactions:    p.transactionViews(id),
		})
	}
	return out
}

func (p *ParentIngestor) transactionViews(id hexid.BlockIdentifier) []dispatch.TransactionView {
	txs := p.bodies[id.Hash]
	views := make([]dispatch.TransactionView, 0, len(txs))
	for _, tx := range txs {
		scripts := make([][]byte, 0, len(tx.Outputs))
		for _, out := range tx.Outputs {
			scripts = append(scripts, out.ScriptPubkey)
		}
		views = append(views, dispatch.TransactionView{
			Txid:          tx.Txid.String(),
			BlockHeight:   id.Index,
			OutputScripts: scripts,
			OpReturnData:  extractOpReturn(tx.Outputs),
		})
	}
	return views
}

// extractOpReturn returns the payload following the OP_RETURN opcode
// (0x6a) of the first output whose script carries one, matching
// dispatch.TransactionView.OpReturnData's documented contract: "payload of
// the first OP_RETURN output, if any".
func extractOpReturn(outputs []burnchain.Output) []byte {
	for _, out := range outputs {
		if len(out.ScriptPubkey) > 0 && out.ScriptPubkey[0] == 0x6a {
			return out.ScriptPubkey[1:]
		}
	}
	return nil
}
