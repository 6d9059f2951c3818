// Package static provides in-memory extractors, mostly for tests and
// benchmarks.
package static

import (
	"context"
	"io"
	"sync"

	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor"
)

// Repeat returns r on every call, for any filename. It never returns io.EOF.
type Repeat struct {
	Record *example.Record
}

var _ extractor.Extractor = (*Repeat)(nil)

// ReadAndDecodeSingleExample implements extractor.Extractor.
func (s *Repeat) ReadAndDecodeSingleExample(ctx context.Context, _ string) (*example.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Record, nil
}

// List returns its records in order, once per filename, followed by io.EOF.
type List struct {
	Records []*example.Record

	mu  sync.Mutex
	pos map[string]int
}

var _ extractor.Extractor = (*List)(nil)

// ReadAndDecodeSingleExample implements extractor.Extractor.
func (s *List) ReadAndDecodeSingleExample(ctx context.Context, filename string) (*example.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos == nil {
		s.pos = make(map[string]int)
	}
	i := s.pos[filename]
	if i >= len(s.Records) {
		return nil, io.EOF
	}
	s.pos[filename] = i + 1
	return s.Records[i], nil
}
