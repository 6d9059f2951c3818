package batch

import (
	"context"
	"sync"
	"time"
)

// closedDone is a pre-closed channel returned by Done when Go has not been
// called yet. This prevents callers from blocking on a nil channel.
var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// BufferConfig configures the internal buffer sizes used by Batch.
// Zero values select the defaults.
type BufferConfig struct {
	// ItemBufferSize is the capacity of the queue between the Source and the
	// batch collector. When it is full, reading blocks until a batch is taken.
	// Default: DefaultItemBufferSize
	ItemBufferSize int

	// ErrorBufferSize is the buffer size for the error channel.
	// Default: DefaultErrorBufferSize
	ErrorBufferSize int
}

// Batch reads items from a Source, groups them according to its Config and
// runs every group through a chain of Processors. Errors are wrapped in
// either a SourceError or a ProcessorError, so the caller can determine where
// they came from.
//
// If Config is nil, items are processed one at a time as they are read.
//
// Batch runs asynchronously after Go is called. When processing is complete,
// both the error channel returned from Go and the channel returned from Done
// are closed:
//
//	errs := b.Go(ctx, s, p)
//	for err := range errs {
//		log.Print(err)
//	}
//	// Now batch processing is done
type Batch struct {
	config       Config
	bufferConfig BufferConfig
	concurrency  int
	logger       Logger
	stats        StatsCollector
	src          Source
	processors   []Processor
	items        chan *Item

	mu      sync.Mutex
	running bool
	errs    chan error
	done    chan struct{}
}

// New creates a new Batch using the provided config. If config is nil,
// a default configuration is used.
func New(config Config) *Batch {
	return &Batch{
		config: config,
	}
}

// WithBufferConfig sets custom buffer sizes for the Batch.
// Panics if called after Go has started.
func (b *Batch) WithBufferConfig(config BufferConfig) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustNotRun("WithBufferConfig")

	b.bufferConfig = config
	return b
}

// WithConcurrency limits the number of batches being processed at the same
// time. Zero means no limit. With a limit of 1, batches are processed one
// after another in the order they were collected, and collection of the next
// batch waits until the previous one has gone through every processor.
// Panics if called after Go has started.
func (b *Batch) WithConcurrency(n int) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustNotRun("WithConcurrency")

	if n < 0 {
		panic("batch: concurrency can't be < 0")
	}
	b.concurrency = n
	return b
}

// WithLogger sets the logger for the Batch. If not set, nothing is logged.
// Panics if called after Go has started.
func (b *Batch) WithLogger(logger Logger) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustNotRun("WithLogger")

	b.logger = logger
	return b
}

// WithStats sets the stats collector for the Batch. If not set, no statistics
// are collected. Panics if called after Go has started.
func (b *Batch) WithStats(stats StatsCollector) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustNotRun("WithStats")

	b.stats = stats
	return b
}

func (b *Batch) mustNotRun(method string) {
	if b.running {
		panic("batch: " + method + " cannot be called after Go() has started")
	}
}

// Go starts batch processing asynchronously and returns an error channel,
// which must be read until it is closed (see IgnoreErrors).
//
// Go must only be called once at a time. Calling Go again while a batch is
// already running panics.
//
// Canceling ctx stops the Source; items that were already read are still
// handed to the processors, which are expected to check ctx themselves.
func (b *Batch) Go(ctx context.Context, s Source, procs ...Processor) <-chan error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("batch: concurrent calls to Batch.Go are not allowed")
	}

	if b.config == nil {
		b.config = NewConstantConfig(nil)
	}
	if b.logger == nil {
		b.logger = &NoOpLogger{}
	}
	if b.stats == nil {
		b.stats = &NoOpStatsCollector{}
	}

	if s == nil {
		b.errs = make(chan error, 1)
		b.done = make(chan struct{})
		b.errs <- ErrNilSource
		close(b.errs)
		close(b.done)
		return b.errs
	}

	b.running = true
	b.src = s

	b.processors = make([]Processor, 0, len(procs))
	for _, p := range procs {
		if p != nil {
			b.processors = append(b.processors, p)
		}
	}

	itemBuf := b.bufferConfig.ItemBufferSize
	if itemBuf <= 0 {
		itemBuf = DefaultItemBufferSize
	}
	errBuf := b.bufferConfig.ErrorBufferSize
	if errBuf <= 0 {
		errBuf = DefaultErrorBufferSize
	}

	b.items = make(chan *Item, itemBuf)
	b.errs = make(chan error, errBuf)
	b.done = make(chan struct{})

	b.logger.Info("Starting batch processing with %d processor(s), concurrency %d",
		len(b.processors), b.concurrency)

	go b.doReader(ctx)
	go b.doProcessors(ctx)

	return b.errs
}

// Done returns a channel that is closed when batch processing is complete.
// Before Go is called it returns a closed channel.
func (b *Batch) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done == nil {
		return closedDone
	}
	return b.done
}

// doReader forwards items from the Source to the collector, assigning IDs in
// read order, and wraps Source errors in SourceError. It closes the items
// channel once the Source has closed both of its channels.
func (b *Batch) doReader(ctx context.Context) {
	defer close(b.items)

	b.logger.Debug("Starting source reader")
	out, errs := b.src.Read(ctx)
	if out == nil || errs == nil {
		b.logger.Error("Invalid source implementation: returned nil channel(s)")
		b.errs <- &SourceError{Err: errInvalidSource}
		return
	}

	var (
		outClosed, errsClosed bool
		id                    uint64
	)
	for !outClosed || !errsClosed {
		select {
		case data, ok := <-out:
			if !ok {
				outClosed = true
				out = nil
				continue
			}
			b.items <- &Item{ID: id, Data: data}
			b.logger.Debug("Read item %d from source", id)
			id++

		case err, ok := <-errs:
			if !ok {
				errsClosed = true
				errs = nil
				continue
			}
			b.logger.Error("Source error: %v", err)
			b.stats.RecordSourceError()
			b.errs <- &SourceError{Err: err}
		}
	}

	b.logger.Info("Source reading complete. Total items read: %d", id)
}

// doProcessors collects batches and runs each through the processor chain in
// its own goroutine, bounded by the concurrency limit. Once the Source is
// exhausted it waits for in-flight batches and closes the error and done
// channels.
func (b *Batch) doProcessors(ctx context.Context) {
	var (
		wg         sync.WaitGroup
		batchCount uint64
		slots      chan struct{}
	)
	if b.concurrency > 0 {
		slots = make(chan struct{}, b.concurrency)
	}

	for {
		config := fixConfig(b.config.Get())
		items := b.waitForItems(config)
		if len(items) == 0 {
			break
		}

		if slots != nil {
			slots <- struct{}{}
		}

		batchCount++
		b.logger.Debug("Processing batch %d with %d items", batchCount, len(items))
		b.stats.RecordBatchStart(len(items))

		wg.Add(1)
		go func(items []*Item, batchNum uint64) {
			defer wg.Done()
			if slots != nil {
				defer func() { <-slots }()
			}
			b.process(ctx, items, batchNum)
		}(items, batchCount)
	}

	wg.Wait()
	b.logger.Info("Batch processing complete. Total batches: %d", batchCount)

	b.mu.Lock()
	close(b.errs)
	close(b.done)
	b.running = false
	b.mu.Unlock()
}

func (b *Batch) process(ctx context.Context, items []*Item, batchNum uint64) {
	start := time.Now()

	for i, proc := range b.processors {
		var err error
		items, err = proc.Process(ctx, items)
		if err != nil {
			b.logger.Error("Batch %d: processor %d error: %v", batchNum, i+1, err)
			b.stats.RecordProcessorError()
			b.errs <- &ProcessorError{ItemID: -1, Err: err}
		}
	}

	var successCount, errorCount int
	for _, item := range items {
		if item.Error != nil {
			errorCount++
			b.stats.RecordItemError()
			b.errs <- &ProcessorError{ItemID: int64(item.ID), Err: item.Error}
		} else {
			successCount++
			b.stats.RecordItemProcessed()
		}
	}

	duration := time.Since(start)
	b.stats.RecordBatchComplete(len(items), duration)
	b.logger.Debug("Batch %d complete: %d successful, %d errors, duration: %v",
		batchNum, successCount, errorCount, duration)
}

// waitForItems collects items until a batch is ready, following the priority
//
//	MaxTime = MaxItems > EOF > MinTime > MinItems
//
// It returns an empty slice only when the Source is exhausted.
func (b *Batch) waitForItems(config ConfigValues) []*Item {
	var (
		reachedMinTime bool
		items          = make([]*Item, 0, config.MinItems)
		minTimer       <-chan time.Time
		maxTimer       <-chan time.Time
	)

	// Unset timers stay nil so the select statement ignores them.
	if config.MinTime > 0 {
		t := time.NewTimer(config.MinTime)
		defer t.Stop()
		minTimer = t.C
	} else {
		reachedMinTime = true
	}
	if config.MaxTime > 0 {
		t := time.NewTimer(config.MaxTime)
		defer t.Stop()
		maxTimer = t.C
	}

	for {
		select {
		case item, ok := <-b.items:
			if !ok {
				return items
			}

			items = append(items, item)
			n := uint64(len(items))
			if n >= config.MinItems && reachedMinTime {
				return items
			}
			if config.MaxItems > 0 && n >= config.MaxItems {
				return items
			}

		case <-minTimer:
			reachedMinTime = true
			if uint64(len(items)) >= config.MinItems {
				return items
			}

		case <-maxTimer:
			if len(items) > 0 {
				return items
			}
		}
	}
}
