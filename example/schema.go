package example

// Source names the mapping of a Record a key is read from.
type Source int

const (
	// Context is the per-example mapping.
	Context Source = iota
	// Sequence is the per-step mapping.
	Sequence
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case Context:
		return "context"
	case Sequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Schema maps record keys to the mapping they are read from. Keys that are
// not listed are read from Sequence.
type Schema map[string]Source

// SourceOf returns the mapping key is read from.
func (s Schema) SourceOf(key string) Source {
	if src, ok := s[key]; ok {
		return src
	}
	return Sequence
}

// DefaultSchema matches the layout the training records were written with:
// phone values are per-step, while char and stress values live in the
// context next to their shapes. Every *.lengths field is per-step.
var DefaultSchema = Schema{
	KeyRapper:          Context,
	KeyLabels:          Sequence,
	KeyChars:           Context,
	KeyCharsLengths:    Sequence,
	KeyCharsShape:      Context,
	KeyPhones:          Sequence,
	KeyPhonesLengths:   Sequence,
	KeyPhonesShape:     Context,
	KeyStresses:        Context,
	KeyStressesLengths: Sequence,
	KeyStressesShape:   Context,
}

// SequenceSchema reads every char, phone and stress value from the per-step
// mapping. Shapes and the rapper id stay in the context.
var SequenceSchema = Schema{
	KeyRapper:          Context,
	KeyLabels:          Sequence,
	KeyChars:           Sequence,
	KeyCharsLengths:    Sequence,
	KeyCharsShape:      Context,
	KeyPhones:          Sequence,
	KeyPhonesLengths:   Sequence,
	KeyPhonesShape:     Context,
	KeyStresses:        Sequence,
	KeyStressesLengths: Sequence,
	KeyStressesShape:   Context,
}

// Put stores values under key in the mapping s selects. It is the inverse of
// the lookup Decode performs and is used to build records.
func (s Schema) Put(r *Record, key string, values []int64) {
	switch s.SourceOf(key) {
	case Context:
		if r.Context == nil {
			r.Context = Fields{}
		}
		r.Context[key] = values
	default:
		if r.Sequence == nil {
			r.Sequence = Fields{}
		}
		r.Sequence[key] = values
	}
}
