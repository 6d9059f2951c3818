// Package codec contains the Codec interface used to serialize example
// records, with implementations in subpackages.
package codec

import "github.com/MasterOfBinary/seqbatch/example"

// Codec encodes and decodes single example records.
//
// Implementations must be safe to use from a single goroutine at a time.
type Codec interface {
	// Encode serializes a record.
	Encode(r *example.Record) ([]byte, error)
	// Decode deserializes a record from data.
	Decode(data []byte) (*example.Record, error)
}
