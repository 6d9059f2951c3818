// Package extractor defines the Extractor interface, which reads and decodes
// example records one at a time. Implementations live in subpackages.
package extractor

import (
	"context"

	"github.com/MasterOfBinary/seqbatch/example"
)

// Extractor decodes records from named inputs.
//
// Every call returns the next record of filename, so an Extractor keeps one
// read cursor per filename. ReadAndDecodeSingleExample returns io.EOF once the
// input is exhausted. Whether an input is read once or cycled is decided by
// the implementation.
//
// Calls for the same filename are not made concurrently.
type Extractor interface {
	ReadAndDecodeSingleExample(ctx context.Context, filename string) (*example.Record, error)
}

// Func adapts a function to the Extractor interface.
type Func func(ctx context.Context, filename string) (*example.Record, error)

// ReadAndDecodeSingleExample implements Extractor.
func (f Func) ReadAndDecodeSingleExample(ctx context.Context, filename string) (*example.Record, error) {
	return f(ctx, filename)
}
