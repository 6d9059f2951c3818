package sqlite

import (
	"context"
	"errors"
	"sync"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
)

// ErrWriterClosed is returned by Submit after Close.
var ErrWriterClosed = errors.New("batch writer is closed")

// BatchWriter accepts records one at a time and inserts them in batches, one
// transaction per batch. Records are inserted in submission order.
type BatchWriter struct {
	input chan *writeRequest
	batch *batch.Batch

	mu     sync.Mutex
	closed bool
}

type writeRequest struct {
	ctx      context.Context
	record   *example.Record
	response chan error
}

// NewBatchWriter creates a BatchWriter inserting through w. Batch sizes and
// timing follow config. Close the BatchWriter before closing w.
func NewBatchWriter(w *Writer, config batch.Config) *BatchWriter {
	input := make(chan *writeRequest, 100)
	src := &writeSource{input: input}
	proc := &writeProcessor{w: w}

	b := batch.New(config).WithConcurrency(1)
	batch.IgnoreErrors(b.Go(context.Background(), src, proc))

	return &BatchWriter{
		input: input,
		batch: b,
	}
}

// Submit queues r and returns a channel that receives the result of its
// batch insert.
func (w *BatchWriter) Submit(ctx context.Context, r *example.Record) <-chan error {
	req := &writeRequest{
		ctx:      ctx,
		record:   r,
		response: make(chan error, 1),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		req.response <- ErrWriterClosed
		return req.response
	}

	select {
	case w.input <- req:
	case <-ctx.Done():
		req.response <- ctx.Err()
	}
	return req.response
}

// Write inserts r and blocks until its batch is committed or ctx is done.
func (w *BatchWriter) Write(ctx context.Context, r *example.Record) error {
	select {
	case err := <-w.Submit(ctx, r):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for queued records to be inserted.
func (w *BatchWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.closed = true
	close(w.input)
	<-w.batch.Done()
}

type writeSource struct {
	input <-chan *writeRequest
}

func (s *writeSource) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	out := make(chan interface{})
	errs := make(chan error)

	go func() {
		defer close(out)
		defer close(errs)

		for req := range s.input {
			out <- req
		}
	}()

	return out, errs
}

type writeProcessor struct {
	w *Writer
}

func (p *writeProcessor) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	active := make([]*writeRequest, 0, len(items))
	records := make([]*example.Record, 0, len(items))

	for _, item := range items {
		req, ok := item.Data.(*writeRequest)
		if !ok {
			item.Error = errors.New("invalid request type")
			continue
		}

		if err := req.ctx.Err(); err != nil {
			req.response <- err
			continue
		}
		active = append(active, req)
		records = append(records, req.record)
	}

	if len(records) == 0 {
		return items, nil
	}

	_, err := p.w.Insert(ctx, records...)
	for _, req := range active {
		req.response <- err
	}

	return items, err
}
