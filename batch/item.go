package batch

import "context"

// Item represents a single data item flowing through the batch pipeline.
type Item struct {
	// ID is a unique, increasing identifier assigned in read order. It must not
	// be modified by processors.
	ID uint64

	// Data holds the payload being processed. It is safe for processors to modify.
	Data interface{}

	// Error is set by processors to indicate a failure specific to this item.
	Error error
}

// Source reads items that are to be batch processed.
type Source interface {
	// Read reads items from a data source and returns two channels:
	// one for items, and one for errors.
	//
	// Read must create both channels (never return nil channels), and must close
	// them when reading is finished or when ctx is canceled.
	Read(ctx context.Context) (<-chan interface{}, <-chan error)
}

// Processor processes items in batches. Implementations may modify items or
// set per-item errors, and can be chained to form multi-stage pipelines.
type Processor interface {
	// Process applies operations to a batch of items. It returns the items to
	// hand to the next processor and a processor-wide error, if any.
	//
	// Process should respect context cancellation.
	Process(ctx context.Context, items []*Item) ([]*Item, error)
}
