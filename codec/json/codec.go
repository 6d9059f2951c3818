// Package json implements codec.Codec with JSON. It is mostly useful for
// fixtures and debugging, as the encoding is several times larger than the
// msgp one.
package json

import (
	"github.com/goccy/go-json"

	"github.com/MasterOfBinary/seqbatch/codec"
	"github.com/MasterOfBinary/seqbatch/example"
)

// Codec encodes records as JSON objects.
type Codec struct{}

var _ codec.Codec = (*Codec)(nil)

// New returns a new Codec.
func New() *Codec {
	return &Codec{}
}

// Encode implements codec.Codec.
func (*Codec) Encode(r *example.Record) ([]byte, error) {
	return json.Marshal(r)
}

// Decode implements codec.Codec.
func (*Codec) Decode(data []byte) (*example.Record, error) {
	var r example.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
