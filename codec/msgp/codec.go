// Package msgp implements codec.Codec with MessagePack.
package msgp

import (
	"fmt"

	"github.com/MasterOfBinary/seqbatch/codec"
	"github.com/MasterOfBinary/seqbatch/example"
)

// Codec encodes records as MessagePack maps. It is the default codec of the
// record file extractor.
type Codec struct {
	buf []byte
}

var _ codec.Codec = (*Codec)(nil)

// New returns a new Codec.
func New() *Codec {
	return &Codec{buf: make([]byte, 0)}
}

// Encode implements codec.Codec. The returned slice is not reused by later
// calls.
func (c *Codec) Encode(r *example.Record) ([]byte, error) {
	b, err := r.MarshalMsg(c.buf[:0])
	if err != nil {
		return nil, err
	}
	c.buf = b

	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Decode implements codec.Codec.
func (c *Codec) Decode(data []byte) (*example.Record, error) {
	var r example.Record
	rest, err := r.UnmarshalMsg(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("msgp: %d trailing bytes after record", len(rest))
	}
	return &r, nil
}
