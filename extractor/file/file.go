// Package file implements an extractor.Extractor over record files written
// with package recordio.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MasterOfBinary/seqbatch/codec"
	msgpcodec "github.com/MasterOfBinary/seqbatch/codec/msgp"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor"
	"github.com/MasterOfBinary/seqbatch/recordio"
)

// ErrClosed is returned once the Extractor has been closed.
var ErrClosed = errors.New("extractor is closed")

// Extractor reads records from files, keeping one open file and read cursor
// per filename. It is safe for concurrent use.
type Extractor struct {
	codec  codec.Codec
	epochs int

	mu      sync.Mutex
	closed  bool
	cursors map[string]*cursor
}

var _ extractor.Extractor = (*Extractor)(nil)

type cursor struct {
	f       *os.File
	r       *recordio.Reader
	epoch   int
	records int
	done    bool
}

// Option configures an Extractor.
type Option func(e *Extractor)

// WithCodec sets the codec used to decode payloads. The default is MessagePack.
func WithCodec(c codec.Codec) Option {
	if c == nil {
		panic("codec can't be nil")
	}
	return func(e *Extractor) {
		e.codec = c
	}
}

// WithEpochs sets how many times each file is read before io.EOF is
// returned. Zero cycles forever. The default is 1.
func WithEpochs(n int) Option {
	if n < 0 {
		panic("epochs can't be < 0")
	}
	return func(e *Extractor) {
		e.epochs = n
	}
}

// New returns an Extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		codec:   msgpcodec.New(),
		epochs:  1,
		cursors: make(map[string]*cursor),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReadAndDecodeSingleExample implements extractor.Extractor. Records are
// returned in file order. After the last epoch every call returns io.EOF.
func (e *Extractor) ReadAndDecodeSingleExample(ctx context.Context, filename string) (*example.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	c, err := e.cursor(filename)
	if err != nil {
		return nil, err
	}
	if c.done {
		return nil, io.EOF
	}

	offset := c.r.Offset()
	data, err := c.r.Next()
	if errors.Is(err, io.EOF) {
		if err := e.rewind(c); err != nil {
			return nil, fmt.Errorf("rewind %s: %w", filename, err)
		}
		if c.done {
			return nil, io.EOF
		}
		offset = 0
		data, err = c.r.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("read %s at offset %d: %w", filename, offset, err)
	}
	c.records++

	rec, err := e.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s at offset %d: %w", filename, offset, err)
	}
	return rec, nil
}

func (e *Extractor) cursor(filename string) (*cursor, error) {
	if c, ok := e.cursors[filename]; ok {
		return c, nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	c := &cursor{f: f, r: recordio.NewReader(f)}
	e.cursors[filename] = c
	return c, nil
}

// rewind starts the next epoch, or marks c done when there is none. An empty
// file is done after its first epoch regardless of the epoch count.
func (e *Extractor) rewind(c *cursor) error {
	c.epoch++
	if (e.epochs != 0 && c.epoch >= e.epochs) || c.records == 0 {
		c.done = true
		return nil
	}

	if _, err := c.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	c.r = recordio.NewReader(c.f)
	return nil
}

// Epoch returns the zero-based epoch currently being read from filename.
func (e *Extractor) Epoch(filename string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.cursors[filename]; ok {
		return c.epoch
	}
	return 0
}

// Close closes every open file. Later reads return ErrClosed.
func (e *Extractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for name, c := range e.cursors {
		if err := c.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	e.cursors = nil
	return errors.Join(errs...)
}
