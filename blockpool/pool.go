package blockpool

import (
	"fmt"

	"github.com/chainwatch-dev/chainwatch/chainindex"
	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// ErrOutOfOrderMicroblock is returned by AppendMicroblock when a sequence
// number does not immediately follow the trail's current tail.
type ErrOutOfOrderMicroblock struct {
	Want, Got uint16
}

func (e *ErrOutOfOrderMicroblock) Error() string {
	return fmt.Sprintf("out-of-order microblock: want sequence %d, got %d", e.Want, e.Got)
}

// BlockPool wraps a chainindex.ForkScratchPad to run the same fork-election
// algorithm over anchor blocks, additionally tracking each block's full
// transaction list and the microblock trail appended after it (spec §4.7:
// "analogous to §4.4 but operates over blocks containing transactions...
// and additionally handles microblock trails").
type BlockPool struct {
	scratch *chainindex.ForkScratchPad
	bodies  map[hexid.Hash32]Block
	trails  map[hexid.Hash32][]Microblock // keyed by the anchor the trail was appended after
}

func NewBlockPool(cfg chainindex.Config) *BlockPool {
	return &BlockPool{
		scratch: chainindex.NewForkScratchPad(cfg),
		bodies:  make(map[hexid.Hash32]Block),
		trails:  make(map[hexid.Hash32][]Microblock),
	}
}

// CanProcess mirrors chainindex.ForkScratchPad.CanProcess for an anchor.
func (p *BlockPool) CanProcess(block Block) bool {
	return p.scratch.CanProcess(chainindex.BlockHeader{
		BlockIdentifier:       block.BlockIdentifier,
		ParentBlockIdentifier: block.ParentBlockIdentifier,
		Timestamp:             block.Timestamp,
	})
}

// AppendMicroblock adds mb to the trail following parentAnchor. Trails must
// be appended in strictly increasing sequence order starting at 0; a caller
// that receives an out-of-order microblock should hold it and retry rather
// than force it in, mirroring the header store's own reentrant-safe retry
// contract (spec §7).
func (p *BlockPool) AppendMicroblock(parentAnchor hexid.BlockIdentifier, mb Microblock) error {
	trail := p.trails[parentAnchor.Hash]
	want := uint16(len(trail))
	if mb.Sequence != want {
		return &ErrOutOfOrderMicroblock{Want: want, Got: mb.Sequence}
	}
	p.trails[parentAnchor.Hash] = append(trail, mb)
	return nil
}

// ProcessAnchor ingests a new anchor block: it runs the embedded
// ForkScratchPad's header-level algorithm, folds any microblock trail
// appended after the anchor's parent into the anchor once it joins the
// canonical history, and discards trails whose parent anchor is rolled
// back (spec §4.7).
func (p *BlockPool) ProcessAnchor(ctx telemetry.Context, block Block) (*ChainEvent, error) {
	p.bodies[block.BlockIdentifier.Hash] = block

	header := chainindex.BlockHeader{
		BlockIdentifier:       block.BlockIdentifier,
		ParentBlockIdentifier: block.ParentBlockIdentifier,
		Timestamp:             block.Timestamp,
	}
	ev, err := p.scratch.Process(ctx, header)
	if err != nil || ev == nil {
		return nil, err
	}

	out := &ChainEvent{Kind: ChainEventKind(ev.Kind)}
	out.NewBlocks = p.applyAndFold(ev.NewHeaders)
	out.BlocksToApply = p.applyAndFold(ev.HeadersToApply)
	out.BlocksToRollback = p.rollback(ev.HeadersToRollback)
	out.ConfirmedBlocks = p.confirm(ev.ConfirmedHeaders)

	return out, nil
}

// applyAndFold resolves each header to its stored body, folds in any trail
// appended after the header's parent, and persists the folded body back so
// a later ConfirmedBlocks lookup sees the same transaction list.
func (p *BlockPool) applyAndFold(headers []chainindex.BlockHeader) []Block {
	out := make([]Block, 0, len(headers))
	for _, h := range headers {
		block, ok := p.bodies[h.BlockIdentifier.Hash]
		if !ok {
			continue
		}
		if trail, ok := p.trails[h.ParentBlockIdentifier.Hash]; ok {
			block.Transactions = foldTrail(trail, block.Transactions)
			delete(p.trails, h.ParentBlockIdentifier.Hash)
			p.bodies[h.BlockIdentifier.Hash] = block
		}
		out = append(out, block)
	}
	return out
}

// rollback resolves rolled-back headers to their stored bodies, discards
// the trail each one was carrying (it was never confirmed by a later
// anchor, and the anchor itself is leaving canonical history), and evicts
// the body.
func (p *BlockPool) rollback(headers []chainindex.BlockHeader) []Block {
	out := make([]Block, 0, len(headers))
	for _, h := range headers {
		block, ok := p.bodies[h.BlockIdentifier.Hash]
		if ok {
			out = append(out, block)
			delete(p.bodies, h.BlockIdentifier.Hash)
		}
		delete(p.trails, h.BlockIdentifier.Hash)
	}
	return out
}

// confirm resolves confirmed headers to their (already-folded) bodies and
// evicts them: once emitted as confirmed, the pool no longer needs them.
func (p *BlockPool) confirm(headers []chainindex.BlockHeader) []Block {
	out := make([]Block, 0, len(headers))
	for _, h := range headers {
		block, ok := p.bodies[h.BlockIdentifier.Hash]
		if !ok {
			continue
		}
		out = append(out, block)
		delete(p.bodies, h.BlockIdentifier.Hash)
	}
	return out
}

func foldTrail(trail []Microblock, anchorTxs []Transaction) []Transaction {
	total := len(anchorTxs)
	for _, mb := range trail {
		total += len(mb.Transactions)
	}
	folded := make([]Transaction, 0, total)
	for _, mb := range trail {
		folded = append(folded, mb.Transactions...)
	}
	folded = append(folded, anchorTxs...)
	return folded
}
