package batch_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/MasterOfBinary/seqbatch/batch"
)

// testSource emits predefined items with optional delay and final error.
type testSource struct {
	Items   []interface{}
	Delay   time.Duration
	WithErr error
}

func (s *testSource) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	out := make(chan interface{})
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		for _, item := range s.Items {
			if s.Delay > 0 {
				time.Sleep(s.Delay)
			}
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
		if s.WithErr != nil {
			errs <- s.WithErr
		}
	}()
	return out, errs
}

func intItems(n int) []interface{} {
	items := make([]interface{}, n)
	for i := range items {
		items[i] = i
	}
	return items
}

// countProcessor counts processed items and can inject delays or errors.
type countProcessor struct {
	count        *uint32
	delay        time.Duration
	processorErr error
}

func (p *countProcessor) Process(_ context.Context, items []*Item) ([]*Item, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	atomic.AddUint32(p.count, uint32(len(items)))
	return items, p.processorErr
}

// errorPerItemProcessor marks every n-th item of a batch as failed.
type errorPerItemProcessor struct {
	FailEvery int
}

func (p *errorPerItemProcessor) Process(_ context.Context, items []*Item) ([]*Item, error) {
	for i, item := range items {
		if p.FailEvery > 0 && i%p.FailEvery == 0 {
			item.Error = fmt.Errorf("fail item %d", item.ID)
		}
	}
	return items, nil
}

// recordProcessor records the size and contents of every batch it sees.
type recordProcessor struct {
	delay time.Duration

	mu      sync.Mutex
	batches [][]interface{}
	active  int32
	maxSeen int32
}

func (p *recordProcessor) Process(_ context.Context, items []*Item) ([]*Item, error) {
	n := atomic.AddInt32(&p.active, 1)
	defer atomic.AddInt32(&p.active, -1)

	p.mu.Lock()
	if n > p.maxSeen {
		p.maxSeen = n
	}
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	data := make([]interface{}, len(items))
	for i, item := range items {
		data[i] = item.Data
	}

	p.mu.Lock()
	p.batches = append(p.batches, data)
	p.mu.Unlock()
	return items, nil
}

func (p *recordProcessor) sizes() map[int]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	sizes := make(map[int]int)
	for _, b := range p.batches {
		sizes[len(b)]++
	}
	return sizes
}
