// Package example defines the serialized record layout of a rapper sequence
// example and decodes records into shaped tensors.
//
// A Record holds two mappings of flattened int64 lists: per-example context
// values and per-step sequence values. Decode looks every key up in the
// mapping named by a Schema, reshapes the char, phone and stress values with
// their stored shapes and returns a SequenceExample.
package example

import (
	"errors"
	"fmt"

	"github.com/MasterOfBinary/seqbatch/tensor"
)

// Record keys.
const (
	KeyRapper          = "rapper0"
	KeyLabels          = "labels"
	KeyChars           = "chars"
	KeyCharsLengths    = "chars.lengths"
	KeyCharsShape      = "chars.shape"
	KeyPhones          = "phones"
	KeyPhonesLengths   = "phones.lengths"
	KeyPhonesShape     = "phones.shape"
	KeyStresses        = "stresses"
	KeyStressesLengths = "stresses.lengths"
	KeyStressesShape   = "stresses.shape"
)

var (
	// ErrMissingField is returned when a key is absent from the mapping the
	// schema reads it from.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidField is returned when a field holds the wrong number of values,
	// for example a rapper id that is not a single value.
	ErrInvalidField = errors.New("invalid field")
)

// Fields maps a key to its flattened values.
type Fields map[string][]int64

// Record is one decoded serialized example.
type Record struct {
	Context  Fields `json:"context"`
	Sequence Fields `json:"sequence"`
}

// SequenceExample is a single example with its variable-length fields shaped.
type SequenceExample struct {
	RapperID int64

	Labels *tensor.Tensor

	Chars        *tensor.Tensor
	CharsLengths *tensor.Tensor

	Phones        *tensor.Tensor
	PhonesLengths *tensor.Tensor

	Stresses        *tensor.Tensor
	StressesLengths *tensor.Tensor
}

// Steps returns the number of label steps in the example.
func (e *SequenceExample) Steps() int {
	if e.Labels == nil {
		return 0
	}
	return e.Labels.Len()
}

// Decode converts r into a SequenceExample, reading each key from the
// mapping selected by schema.
func Decode(r *Record, schema Schema) (*SequenceExample, error) {
	d := decoder{record: r, schema: schema}

	rapper := d.values(KeyRapper)
	if d.err == nil && len(rapper) != 1 {
		return nil, fmt.Errorf("%w: %s has %d values, expected 1", ErrInvalidField, KeyRapper, len(rapper))
	}

	ex := &SequenceExample{Labels: d.vector(KeyLabels)}
	ex.Chars = d.shaped(KeyChars, KeyCharsShape)
	ex.CharsLengths = d.lengths(KeyCharsLengths, ex.Chars)
	ex.Phones = d.shaped(KeyPhones, KeyPhonesShape)
	ex.PhonesLengths = d.lengths(KeyPhonesLengths, ex.Phones)
	ex.Stresses = d.shaped(KeyStresses, KeyStressesShape)
	ex.StressesLengths = d.lengths(KeyStressesLengths, ex.Stresses)
	if d.err != nil {
		return nil, d.err
	}

	ex.RapperID = rapper[0]
	return ex, nil
}

// decoder keeps the first error so Decode can read every field in one pass.
type decoder struct {
	record *Record
	schema Schema
	err    error
}

func (d *decoder) values(key string) []int64 {
	if d.err != nil {
		return nil
	}

	src := d.schema.SourceOf(key)
	var fields Fields
	switch src {
	case Context:
		fields = d.record.Context
	case Sequence:
		fields = d.record.Sequence
	}

	v, ok := fields[key]
	if !ok {
		d.err = fmt.Errorf("%w: %s not found in %s", ErrMissingField, key, src)
		return nil
	}
	return v
}

func (d *decoder) vector(key string) *tensor.Tensor {
	v := d.values(key)
	if d.err != nil {
		return nil
	}
	return tensor.Vector(v)
}

func (d *decoder) shaped(key, shapeKey string) *tensor.Tensor {
	flat := d.values(key)
	dims := d.values(shapeKey)
	if d.err != nil {
		return nil
	}

	shape := make([]int, len(dims))
	for i, dim := range dims {
		shape[i] = int(dim)
	}

	t, err := tensor.Vector(flat).Reshape(shape)
	if err != nil {
		d.err = fmt.Errorf("reshape %s: %w", key, err)
		return nil
	}
	return t
}

// lengths reads the true row lengths of t. Every length must fit in a row
// of t.
func (d *decoder) lengths(key string, t *tensor.Tensor) *tensor.Tensor {
	v := d.vector(key)
	if d.err != nil || t.Rank() == 0 {
		return v
	}

	width := int64(t.Dim(t.Rank() - 1))
	for i, n := range v.Data {
		if n < 0 || n > width {
			d.err = fmt.Errorf("%w: %s[%d] is %d, rows have %d values", ErrInvalidField, key, i, n, width)
			return nil
		}
	}
	return v
}
