package file

import (
	"fmt"
	"os"

	"github.com/MasterOfBinary/seqbatch/codec"
	msgpcodec "github.com/MasterOfBinary/seqbatch/codec/msgp"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/recordio"
)

// Writer writes records to a file readable by Extractor.
type Writer struct {
	codec codec.Codec
	w     *recordio.Writer
	count int
}

// Create creates or truncates filename and returns a Writer for it. If c is
// nil, records are encoded with MessagePack.
func Create(filename string, c codec.Codec) (*Writer, error) {
	if c == nil {
		c = msgpcodec.New()
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	return &Writer{
		codec: c,
		w:     recordio.NewWriter(f),
	}, nil
}

// Write appends r to the file.
func (w *Writer) Write(r *example.Record) error {
	data, err := w.codec.Encode(r)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", w.count, err)
	}
	if err := w.w.Write(data); err != nil {
		return fmt.Errorf("write record %d: %w", w.count, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered records and closes the file.
func (w *Writer) Close() error {
	return w.w.Close()
}
