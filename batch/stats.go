package batch

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// StatsCollector receives metrics during batch processing. Implementations
// must be safe for concurrent use. The metrics package provides a Prometheus
// implementation.
type StatsCollector interface {
	// RecordBatchStart is called when a batch is handed to the processors.
	RecordBatchStart(batchSize int)

	// RecordBatchComplete is called when a batch has gone through every
	// processor.
	RecordBatchComplete(batchSize int, duration time.Duration)

	// RecordItemProcessed is called for each item that finished without error.
	RecordItemProcessed()

	// RecordItemError is called for each item that finished with an error.
	RecordItemError()

	// RecordSourceError is called when the source reports an error.
	RecordSourceError()

	// RecordProcessorError is called when a processor returns an error.
	RecordProcessorError()

	// GetStats returns a snapshot of the current statistics.
	GetStats() Stats
}

// Stats holds aggregated statistics about batch processing.
type Stats struct {
	BatchesStarted   uint64
	BatchesCompleted uint64
	ItemsProcessed   uint64
	ItemErrors       uint64
	SourceErrors     uint64
	ProcessorErrors  uint64

	TotalProcessingTime time.Duration
	MinBatchTime        time.Duration
	MaxBatchTime        time.Duration
	MinBatchSize        int
	MaxBatchSize        int

	StartTime      time.Time
	LastUpdateTime time.Time
}

// AverageBatchTime returns the average time taken to process a batch.
func (s *Stats) AverageBatchTime() time.Duration {
	if s.BatchesCompleted == 0 {
		return 0
	}
	return s.TotalProcessingTime / time.Duration(s.BatchesCompleted)
}

// AverageBatchSize returns the average number of items per completed batch.
func (s *Stats) AverageBatchSize() float64 {
	if s.BatchesCompleted == 0 {
		return 0
	}
	return float64(s.ItemsProcessed+s.ItemErrors) / float64(s.BatchesCompleted)
}

// ErrorRate returns the percentage of items that finished with an error.
func (s *Stats) ErrorRate() float64 {
	total := s.ItemsProcessed + s.ItemErrors
	if total == 0 {
		return 0
	}
	return float64(s.ItemErrors) / float64(total) * 100
}

// NoOpStatsCollector discards all metrics. It is the default when no
// StatsCollector is set.
type NoOpStatsCollector struct{}

func (*NoOpStatsCollector) RecordBatchStart(int)                   {}
func (*NoOpStatsCollector) RecordBatchComplete(int, time.Duration) {}
func (*NoOpStatsCollector) RecordItemProcessed()                   {}
func (*NoOpStatsCollector) RecordItemError()                       {}
func (*NoOpStatsCollector) RecordSourceError()                     {}
func (*NoOpStatsCollector) RecordProcessorError()                  {}
func (*NoOpStatsCollector) GetStats() Stats                        { return Stats{} }

// BasicStatsCollector keeps statistics in memory.
type BasicStatsCollector struct {
	batchesStarted   atomic.Uint64
	batchesCompleted atomic.Uint64
	itemsProcessed   atomic.Uint64
	itemErrors       atomic.Uint64
	sourceErrors     atomic.Uint64
	processorErrors  atomic.Uint64

	// mu protects stats
	mu    sync.Mutex
	stats Stats
}

// NewBasicStatsCollector creates a new BasicStatsCollector.
func NewBasicStatsCollector() *BasicStatsCollector {
	now := time.Now()
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      now,
			LastUpdateTime: now,
			MinBatchTime:   time.Duration(math.MaxInt64),
		},
	}
}

// RecordBatchStart implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordBatchStart(batchSize int) {
	b.batchesStarted.Add(1)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	if batchSize < b.stats.MinBatchSize || b.stats.MinBatchSize == 0 {
		b.stats.MinBatchSize = batchSize
	}
	if batchSize > b.stats.MaxBatchSize {
		b.stats.MaxBatchSize = batchSize
	}
}

// RecordBatchComplete implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordBatchComplete(_ int, duration time.Duration) {
	b.batchesCompleted.Add(1)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	b.stats.TotalProcessingTime += duration
	if duration < b.stats.MinBatchTime {
		b.stats.MinBatchTime = duration
	}
	if duration > b.stats.MaxBatchTime {
		b.stats.MaxBatchTime = duration
	}
}

// RecordItemProcessed implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemProcessed() { b.itemsProcessed.Add(1) }

// RecordItemError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemError() { b.itemErrors.Add(1) }

// RecordSourceError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordSourceError() { b.sourceErrors.Add(1) }

// RecordProcessorError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordProcessorError() { b.processorErrors.Add(1) }

// GetStats implements the StatsCollector interface.
func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.Lock()
	stats := b.stats
	b.mu.Unlock()

	stats.BatchesStarted = b.batchesStarted.Load()
	stats.BatchesCompleted = b.batchesCompleted.Load()
	stats.ItemsProcessed = b.itemsProcessed.Load()
	stats.ItemErrors = b.itemErrors.Load()
	stats.SourceErrors = b.sourceErrors.Load()
	stats.ProcessorErrors = b.processorErrors.Load()

	if stats.BatchesCompleted == 0 {
		stats.MinBatchTime = 0
	}
	return stats
}
