// Package metrics exports batch pipeline statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
)

// Config holds the options of the Prometheus metrics.
//
// An instance can be created only by NewConfig. The zero value is invalid.
type Config struct {
	// Options for the started batches counter.
	BatchesStarted prometheus.CounterOpts
	// Options for the completed batches counter.
	BatchesCompleted prometheus.CounterOpts
	// Options for the processed items counter.
	ItemsProcessed prometheus.CounterOpts
	// Options for the errors counter, labeled by kind.
	Errors prometheus.CounterOpts
	// Options for the batch duration histogram, in seconds.
	BatchDuration prometheus.HistogramOpts
	// Options for the padding ratio histogram.
	PaddingRatio prometheus.HistogramOpts

	registerer prometheus.Registerer
}

// NewConfig returns a Config with the provided registerer. If registerer is
// nil, metrics are not registered.
func NewConfig(registerer prometheus.Registerer, configFuncs ...func(c *Config)) *Config {
	const (
		namespace = "seqbatch"
		subsystem = "producer"
	)

	c := Config{
		registerer: registerer,
		BatchesStarted: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batches_started",
			Help:      "Number of batches handed to the processors",
		},
		BatchesCompleted: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batches_completed",
			Help:      "Number of batches that went through every processor",
		},
		ItemsProcessed: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items_processed",
			Help:      "Number of records processed without error",
		},
		Errors: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors",
			Help:      "Number of errors by kind",
		},
		BatchDuration: prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_duration_seconds",
			Help:      "Duration of batch processing",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		PaddingRatio: prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "padding_ratio",
			Help:      "Share of padded cells in emitted batches",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
		},
	}

	for _, cf := range configFuncs {
		if cf != nil {
			cf(&c)
		}
	}

	return &c
}

// Prometheus is a batch.StatsCollector that records to Prometheus. It also
// keeps the in-memory statistics returned by GetStats.
type Prometheus struct {
	basic *batch.BasicStatsCollector

	batchesStarted   prometheus.Counter
	batchesCompleted prometheus.Counter
	itemsProcessed   prometheus.Counter
	errors           *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	paddingRatio     prometheus.Histogram
}

var _ batch.StatsCollector = (*Prometheus)(nil)

// New creates the metrics described by c and registers them, labeled with
// the given producer name.
func New(c *Config, producer string) *Prometheus {
	p := &Prometheus{
		basic:            batch.NewBasicStatsCollector(),
		batchesStarted:   prometheus.NewCounter(c.BatchesStarted),
		batchesCompleted: prometheus.NewCounter(c.BatchesCompleted),
		itemsProcessed:   prometheus.NewCounter(c.ItemsProcessed),
		errors:           prometheus.NewCounterVec(c.Errors, []string{"kind"}),
		batchDuration:    prometheus.NewHistogram(c.BatchDuration),
		paddingRatio:     prometheus.NewHistogram(c.PaddingRatio),
	}

	if c.registerer != nil {
		registerer := prometheus.WrapRegistererWith(
			prometheus.Labels{"producer": producer},
			c.registerer,
		)
		registerer.MustRegister(
			p.batchesStarted,
			p.batchesCompleted,
			p.itemsProcessed,
			p.errors,
			p.batchDuration,
			p.paddingRatio,
		)
	}

	return p
}

// RecordBatchStart implements batch.StatsCollector.
func (p *Prometheus) RecordBatchStart(batchSize int) {
	p.basic.RecordBatchStart(batchSize)
	p.batchesStarted.Inc()
}

// RecordBatchComplete implements batch.StatsCollector.
func (p *Prometheus) RecordBatchComplete(batchSize int, duration time.Duration) {
	p.basic.RecordBatchComplete(batchSize, duration)
	p.batchesCompleted.Inc()
	p.batchDuration.Observe(duration.Seconds())
}

// RecordItemProcessed implements batch.StatsCollector.
func (p *Prometheus) RecordItemProcessed() {
	p.basic.RecordItemProcessed()
	p.itemsProcessed.Inc()
}

// RecordItemError implements batch.StatsCollector.
func (p *Prometheus) RecordItemError() {
	p.basic.RecordItemError()
	p.errors.WithLabelValues("item").Inc()
}

// RecordSourceError implements batch.StatsCollector.
func (p *Prometheus) RecordSourceError() {
	p.basic.RecordSourceError()
	p.errors.WithLabelValues("source").Inc()
}

// RecordProcessorError implements batch.StatsCollector.
func (p *Prometheus) RecordProcessorError() {
	p.basic.RecordProcessorError()
	p.errors.WithLabelValues("processor").Inc()
}

// GetStats implements batch.StatsCollector.
func (p *Prometheus) GetStats() batch.Stats {
	return p.basic.GetStats()
}

// ObserveBatch records the padding ratio of b. Batches without variable
// length fields are ignored.
func (p *Prometheus) ObserveBatch(b *example.Batch) {
	total, padding := b.Cells()
	if total == 0 {
		return
	}
	p.paddingRatio.Observe(float64(padding) / float64(total))
}
