package seqbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor"
	"github.com/MasterOfBinary/seqbatch/processor"
	"github.com/MasterOfBinary/seqbatch/source"
)

// Extractor reads and decodes one record at a time. See package extractor.
type Extractor = extractor.Extractor

// Batch is a padded batch of examples. See package example.
type Batch = example.Batch

type state int

const (
	stateNew state = iota
	stateStreaming
	stateDone
)

// Producer assembles batches of padded sequence examples read from a single
// input. Create one with NewProducer.
//
// The pipeline starts on the first call to Next. Once the input is exhausted
// Next returns io.EOF, and once any read, decode or padding step fails Next
// keeps returning that error.
type Producer struct {
	extractor Extractor
	batchSize int
	filename  string
	opts      options

	mu      sync.Mutex
	state   state
	err     error
	batches chan *Batch
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewProducer returns a Producer reading filename through ex and grouping
// examples into batches of batchSize.
func NewProducer(ex Extractor, batchSize int, filename string, opts ...Option) (*Producer, error) {
	if ex == nil {
		return nil, ErrNilExtractor
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}

	o := options{
		schema:        example.DefaultSchema,
		queueCapacity: 2 * batchSize,
		logger:        &batch.NoOpLogger{},
		stats:         &batch.NoOpStatsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Producer{
		extractor: ex,
		batchSize: batchSize,
		filename:  filename,
		opts:      o,
	}, nil
}

// Produce reads a single batch from filename. It is a shortcut for creating
// a Producer, calling Next once and closing it.
func Produce(ctx context.Context, ex Extractor, batchSize int, filename string, opts ...Option) (*Batch, error) {
	p, err := NewProducer(ex, batchSize, filename, opts...)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return p.Next(ctx)
}

// Next returns the next batch. It blocks until a batch is ready, the input
// ends (io.EOF), the pipeline fails or ctx is done. A canceled ctx does not
// stop the pipeline; use Close for that.
func (p *Producer) Next(ctx context.Context) (*Batch, error) {
	p.mu.Lock()
	switch p.state {
	case stateNew:
		p.start(ctx)
	case stateDone:
		err := p.err
		p.mu.Unlock()
		return nil, err
	}
	batches := p.batches
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b, ok := <-batches:
		if ok {
			return b, nil
		}
	}

	err := p.group.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.finish(err)
	return nil, p.err
}

// Close stops the pipeline and waits for its goroutines to exit. It does not
// close the extractor. A failure that Next has not reported yet is returned.
// Close is safe to call more than once.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateNew {
		p.state = stateDone
		p.err = ErrClosed
		return nil
	}
	if p.cancel == nil {
		return nil
	}

	reported := p.state == stateDone
	p.cancel()
	err := p.group.Wait()
	p.cancel = nil

	if !reported {
		p.state = stateDone
		p.err = ErrClosed
	}
	if reported || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// finish records the outcome of a pipeline that has ended on its own. It
// must be called with p.mu held.
func (p *Producer) finish(err error) {
	if p.state == stateDone {
		return
	}
	p.state = stateDone
	if err == nil {
		err = io.EOF
	}
	p.err = err
}

// start launches the pipeline. It must be called with p.mu held.
func (p *Producer) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.batches = make(chan *Batch)
	p.state = stateStreaming

	g, gctx := errgroup.WithContext(runCtx)
	p.group = g

	observer, _ := p.opts.stats.(BatchObserver)
	collate := &processor.Collate{
		BatchSize:    p.batchSize,
		AllowSmaller: p.opts.allowSmaller,
		Pad:          p.opts.pad,
		Logger:       p.opts.logger,
		Sink: func(ctx context.Context, b *Batch) error {
			if observer != nil {
				observer.ObserveBatch(b)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case p.batches <- b:
				return nil
			}
		},
	}

	procs := []batch.Processor{
		processor.WithLogging(&processor.Decode{Schema: p.opts.schema}, p.opts.logger, "decode"),
	}
	if p.opts.maxSteps > 0 {
		procs = append(procs, &processor.Filter{Predicate: processor.MaxSteps(p.opts.maxSteps)})
	}
	procs = append(procs, collate)

	src := &source.Extractor{
		Extractor: p.extractor,
		Filename:  p.filename,
	}

	size := batch.FixedSize(uint64(p.batchSize))
	engine := batch.New(batch.NewConstantConfig(&size)).
		WithConcurrency(1).
		WithBufferConfig(batch.BufferConfig{ItemBufferSize: p.opts.queueCapacity}).
		WithLogger(p.opts.logger).
		WithStats(p.opts.stats)

	p.opts.logger.Info("Producing batches of %d from %s", p.batchSize, p.filename)

	g.Go(func() error {
		defer close(p.batches)

		// The first error stops the pipeline; the rest are drained. The source
		// stops by itself after an error, so batches it has already read are
		// still delivered before the error.
		var first error
		for err := range engine.Go(gctx, src, procs...) {
			if first == nil {
				first = err
				var serr *batch.SourceError
				if !errors.As(err, &serr) {
					cancel()
				}
			} else {
				p.opts.logger.Debug("Ignoring error after failure: %v", err)
			}
		}
		if first != nil {
			p.opts.logger.Error("Producing from %s failed: %v", p.filename, first)
			return fmt.Errorf("produce %s: %w", p.filename, first)
		}

		return collate.Flush(gctx)
	})
}
