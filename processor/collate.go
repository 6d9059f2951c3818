package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
)

// SinkFunc receives the batches built by Collate.
type SinkFunc func(ctx context.Context, b *example.Batch) error

// Collate is a processor that stacks decoded examples into batches of exactly
// BatchSize examples and hands them to Sink.
//
// Examples left over after a Process call are carried into the next call, so
// batches stay full even when an earlier processor drops items. Flush handles
// whatever remains once the input is exhausted.
//
// A call whose items include an error emits nothing and discards the items.
// Collate keeps state between calls: run it with batch concurrency 1 so items
// arrive in read order.
type Collate struct {
	// BatchSize is the number of examples per batch. Must be positive.
	BatchSize int

	// AllowSmaller makes Flush emit a final batch with fewer than BatchSize
	// examples instead of dropping it.
	AllowSmaller bool

	// Pad is the value used to fill padded positions of value fields.
	Pad int64

	// Sink receives every batch. Required.
	Sink SinkFunc

	// Logger receives a message for each emitted or dropped batch. May be nil.
	Logger batch.Logger

	mu      sync.Mutex
	pending []*batch.Item
}

// Process implements the batch.Processor interface. It returns the items it
// was given; those not yet part of an emitted batch stay pending.
func (p *Collate) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	for _, item := range items {
		if item.Error != nil {
			return items, nil
		}
		if _, ok := item.Data.(*example.SequenceExample); !ok {
			item.Error = fmt.Errorf("collate: unexpected item type %T", item.Data)
			return items, nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = append(p.pending, items...)
	for len(p.pending) >= p.BatchSize {
		if err := p.emit(ctx, p.pending[:p.BatchSize]); err != nil {
			return items, err
		}
		p.pending = p.pending[p.BatchSize:]
	}

	return items, nil
}

// Flush emits the pending examples as a final short batch when AllowSmaller
// is set, and drops them otherwise.
func (p *Collate) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := p.pending
	p.pending = nil
	if len(pending) == 0 {
		return nil
	}

	if !p.AllowSmaller {
		p.logf("Dropping final batch of %d examples", len(pending))
		return nil
	}
	return p.emit(ctx, pending)
}

// Pending returns the number of examples waiting for a full batch.
func (p *Collate) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *Collate) emit(ctx context.Context, items []*batch.Item) error {
	examples := make([]*example.SequenceExample, len(items))
	ids := make([]uint64, len(items))
	for i, item := range items {
		examples[i] = item.Data.(*example.SequenceExample)
		ids[i] = item.ID
	}

	b, err := example.Collate(examples, p.Pad)
	if err != nil {
		return err
	}
	b.IDs = ids

	p.logf("Collated batch of %d examples starting at item %d", b.Size, ids[0])
	return p.Sink(ctx, b)
}

func (p *Collate) logf(format string, args ...interface{}) {
	if p.Logger != nil {
		p.Logger.Debug(format, args...)
	}
}
