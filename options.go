package seqbatch

import (
	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
)

type options struct {
	allowSmaller  bool
	schema        example.Schema
	queueCapacity int
	maxSteps      int
	pad           int64
	logger        batch.Logger
	stats         batch.StatsCollector
}

// Option configures a Producer.
type Option func(o *options)

// WithAllowSmallerFinalBatch emits the examples left when the extractor
// reaches the end as a final, smaller batch. By default they are dropped so
// every batch has exactly batchSize examples.
func WithAllowSmallerFinalBatch() Option {
	return func(o *options) {
		o.allowSmaller = true
	}
}

// WithSchema selects where each record key is read from. The default is
// example.DefaultSchema.
func WithSchema(schema example.Schema) Option {
	if schema == nil {
		panic("schema can't be nil")
	}
	return func(o *options) {
		o.schema = schema
	}
}

// WithQueueCapacity sets how many records may be read ahead of the batcher.
// The default is twice the batch size.
func WithQueueCapacity(n int) Option {
	if n < 1 {
		panic("queue capacity can't be < 1")
	}
	return func(o *options) {
		o.queueCapacity = n
	}
}

// WithMaxSequenceLength drops examples with more than n steps before they
// are batched.
func WithMaxSequenceLength(n int) Option {
	if n < 1 {
		panic("max sequence length can't be < 1")
	}
	return func(o *options) {
		o.maxSteps = n
	}
}

// WithPadValue sets the value written to padded positions of label, char,
// phone and stress fields. Length fields are always padded with zero. The
// default is zero.
func WithPadValue(v int64) Option {
	return func(o *options) {
		o.pad = v
	}
}

// WithLogger sets the logger used by the Producer and its pipeline.
func WithLogger(logger batch.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStats sets the stats collector of the pipeline. If it also implements
// BatchObserver, it receives every emitted batch.
func WithStats(stats batch.StatsCollector) Option {
	return func(o *options) {
		o.stats = stats
	}
}

// BatchObserver is implemented by stats collectors that inspect emitted
// batches, for example to track padding.
type BatchObserver interface {
	ObserveBatch(b *Batch)
}
