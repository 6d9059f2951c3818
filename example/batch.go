package example

import (
	"fmt"

	"github.com/MasterOfBinary/seqbatch/tensor"
)

// Keys of the map returned by Batch.Map.
const (
	BatchKeyRapper          = "rapper0"
	BatchKeyLabels          = "labels"
	BatchKeyChars           = "chars"
	BatchKeyCharsLength     = "chars_length"
	BatchKeyPhones          = "phones"
	BatchKeyPhonesLengths   = "phones_lengths"
	BatchKeyStresses        = "stresses"
	BatchKeyStressesLengths = "stresses_lengths"
)

// Batch is a group of examples whose fields have been stacked along a new
// leading dimension of size Size, with every variable-length dimension
// right-padded to the largest size found in the batch.
type Batch struct {
	Size int

	// IDs holds the pipeline IDs of the examples, in batch order.
	IDs []uint64

	Rapper          *tensor.Tensor
	Labels          *tensor.Tensor
	Chars           *tensor.Tensor
	CharsLength     *tensor.Tensor
	Phones          *tensor.Tensor
	PhonesLengths   *tensor.Tensor
	Stresses        *tensor.Tensor
	StressesLengths *tensor.Tensor
}

// Map returns the batch fields by name.
func (b *Batch) Map() map[string]*tensor.Tensor {
	return map[string]*tensor.Tensor{
		BatchKeyRapper:          b.Rapper,
		BatchKeyLabels:          b.Labels,
		BatchKeyChars:           b.Chars,
		BatchKeyCharsLength:     b.CharsLength,
		BatchKeyPhones:          b.Phones,
		BatchKeyPhonesLengths:   b.PhonesLengths,
		BatchKeyStresses:        b.Stresses,
		BatchKeyStressesLengths: b.StressesLengths,
	}
}

// Cells returns the number of stored values in the batch and how many of
// them are padding, summed over the char, phone and stress fields.
func (b *Batch) Cells() (total, padding int) {
	for _, f := range []struct{ values, lengths *tensor.Tensor }{
		{b.Chars, b.CharsLength},
		{b.Phones, b.PhonesLengths},
		{b.Stresses, b.StressesLengths},
	} {
		if f.values == nil || f.values.Rank() != 3 {
			continue
		}
		total += f.values.Len()

		used := 0
		for _, l := range f.lengths.Data {
			used += int(l)
		}
		if used > f.values.Len() {
			used = f.values.Len()
		}
		padding += f.values.Len() - used
	}
	return total, padding
}

// Collate stacks examples into a Batch. Label, char, phone and stress values
// are padded with pad, length fields with zero. It fails when the same field
// has different ranks in two examples.
func Collate(examples []*SequenceExample, pad int64) (*Batch, error) {
	n := len(examples)
	rapper := make([]int64, n)
	for i, ex := range examples {
		rapper[i] = ex.RapperID
	}

	b := &Batch{Size: n, Rapper: tensor.Vector(rapper)}

	fields := []struct {
		key    string
		values bool
		dst    **tensor.Tensor
		get    func(*SequenceExample) *tensor.Tensor
	}{
		{BatchKeyLabels, true, &b.Labels, func(e *SequenceExample) *tensor.Tensor { return e.Labels }},
		{BatchKeyChars, true, &b.Chars, func(e *SequenceExample) *tensor.Tensor { return e.Chars }},
		{BatchKeyCharsLength, false, &b.CharsLength, func(e *SequenceExample) *tensor.Tensor { return e.CharsLengths }},
		{BatchKeyPhones, true, &b.Phones, func(e *SequenceExample) *tensor.Tensor { return e.Phones }},
		{BatchKeyPhonesLengths, false, &b.PhonesLengths, func(e *SequenceExample) *tensor.Tensor { return e.PhonesLengths }},
		{BatchKeyStresses, true, &b.Stresses, func(e *SequenceExample) *tensor.Tensor { return e.Stresses }},
		{BatchKeyStressesLengths, false, &b.StressesLengths, func(e *SequenceExample) *tensor.Tensor { return e.StressesLengths }},
	}

	ts := make([]*tensor.Tensor, n)
	for _, f := range fields {
		for i, ex := range examples {
			ts[i] = f.get(ex)
		}

		fill := int64(0)
		if f.values {
			fill = pad
		}

		stacked, err := tensor.Stack(ts, fill)
		if err != nil {
			return nil, fmt.Errorf("stack %s: %w", f.key, err)
		}
		*f.dst = stacked
	}

	return b, nil
}
