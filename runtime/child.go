package runtime

import (
	"github.com/chainwatch-dev/chainwatch/blockpool"
	"github.com/chainwatch-dev/chainwatch/chainindex"
	"github.com/chainwatch-dev/chainwatch/dispatch"
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// ReceiptDecoder turns one child-chain transaction's raw payload into the
// typed event slices dispatch.TransactionView matches against. Decoding a
// Clarity contract-call/print/asset receipt is the "higher-level contract
// predicate evaluator" spec.md names as an external collaborator's job
// (out of scope here); ChildIngestor accepts it as a pluggable hook so a
// caller with that decoder can still drive matching end to end, and
// carries no events at all (correctly: BlockPool only moves bytes) when
// none is supplied.
type ReceiptDecoder func(raw []byte) dispatch.TransactionView

// ChildIngestor wraps a blockpool.BlockPool to convert its ChainEvent
// output into dispatch.Events, decoding each transaction's raw payload
// through decode.
type ChildIngestor struct {
	pool   *blockpool.BlockPool
	decode ReceiptDecoder
}

func NewChildIngestor(cfg chainindex.Config, decode ReceiptDecoder) *ChildIngestor {
	if decode == nil {
		decode = func([]byte) dispatch.TransactionView { return dispatch.TransactionView{} }
	}
	return &ChildIngestor{pool: blockpool.NewBlockPool(cfg), decode: decode}
}

func (c *ChildIngestor) CanProcess(block blockpool.Block) bool {
	return c.pool.CanProcess(block)
}

func (c *ChildIngestor) AppendMicroblock(parentAnchor hexid.BlockIdentifier, mb blockpool.Microblock) error {
	return c.pool.AppendMicroblock(parentAnchor, mb)
}

// ProcessAnchor ingests block and converts the resulting blockpool
// ChainEvent, if any, into a dispatch.Event.
func (c *ChildIngestor) ProcessAnchor(ctx telemetry.Context, block blockpool.Block) (*dispatch.Event, error) {
	event, err := c.pool.ProcessAnchor(ctx, block)
	if err != nil || event == nil {
		return nil, err
	}
	return &dispatch.Event{
		Kind:              dispatch.Kind(event.Kind),
		HeadersToRollback: c.envelopes(event.BlocksToRollback),
		HeadersToApply:    c.envelopes(append(event.NewBlocks, event.BlocksToApply...)),
		ConfirmedHeaders:  c.envelopes(event.ConfirmedBlocks),
	}, nil
}

func (c *ChildIngestor) envelopes(blocks []blockpool.Block) []dispatch.BlockEnvelope {
	out := make([]dispatch.BlockEnvelope, 0, len(blocks))
	for _, b := range blocks {
		views := make([]dispatch.TransactionView, 0, len(b.Transactions))
		for _, tx := range b.Transactions {
			view := c.decode(tx.Raw)
			view.Txid = tx.Txid
			view.BlockHeight = b.BlockIdentifier.Index
			views = append(views, view)
		}
		out = append(out, dispatch.BlockEnvelope{BlockIdentifier: b.BlockIdentifier, Transactions: views})
	}
	return out
}
