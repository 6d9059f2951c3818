package source

import (
	"context"
	"errors"
	"io"

	"github.com/MasterOfBinary/seqbatch/extractor"
)

// Extractor is a Source that repeatedly calls ReadAndDecodeSingleExample on
// an extractor.Extractor and emits the returned *example.Record values.
//
// Reading stops at io.EOF, at the first other error (which is forwarded on
// the error channel), after Limit records if Limit is positive, or when the
// context is canceled.
type Extractor struct {
	Extractor extractor.Extractor
	Filename  string

	// Limit caps the number of records read. Zero means no limit.
	Limit uint64

	// BufferSize is the capacity of the output channel. Zero means unbuffered.
	BufferSize int
}

// Read implements the batch.Source interface.
func (s *Extractor) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	out := make(chan interface{}, s.BufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		for n := uint64(0); s.Limit == 0 || n < s.Limit; n++ {
			if ctx.Err() != nil {
				return
			}

			rec, err := s.Extractor.ReadAndDecodeSingleExample(ctx, s.Filename)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if !errors.Is(err, context.Canceled) || ctx.Err() == nil {
					errs <- err
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case out <- rec:
			}
		}
	}()

	return out, errs
}
