package batch

import (
	"errors"
	"fmt"
)

// ErrNilSource is sent on the error channel when Go is called without a Source.
var ErrNilSource = errors.New("source cannot be nil")

var errInvalidSource = errors.New("invalid source implementation: returned nil channel(s)")

// ProcessorError is returned when a processor fails, or when a processor
// marks an item as failed.
type ProcessorError struct {
	// ItemID is the ID of the failed item, or -1 for processor-wide errors.
	ItemID int64
	Err    error
}

func (e *ProcessorError) Error() string {
	if e.ItemID >= 0 {
		return fmt.Sprintf("processor error on item %d: %v", e.ItemID, e.Err)
	}
	return fmt.Sprintf("processor error: %v", e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// SourceError is returned when a source fails.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source error: %v", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IgnoreErrors drains errs in the background. The error channel returned by
// Go must be read, otherwise the pipeline blocks once its buffer fills up:
//
//	// NOTE: bad - this can deadlock!
//	_ = b.Go(ctx, s, p)
//
//	// OK
//	batch.IgnoreErrors(b.Go(ctx, s, p))
func IgnoreErrors(errs <-chan error) {
	// nil channels always block, so check for nil first to avoid leaking the
	// goroutine.
	if errs == nil {
		return
	}
	go func() {
		for range errs {
		}
	}()
}
