package example

// Raw is an example before flattening: chars, phones and stresses are
// ragged rows, one row per word.
type Raw struct {
	RapperID int64     `json:"rapper_id"`
	Labels   []int64   `json:"labels"`
	Chars    [][]int64 `json:"chars"`
	Phones   [][]int64 `json:"phones"`
	Stresses [][]int64 `json:"stresses"`
}

// Record flattens r into a Record laid out according to schema. Ragged rows
// are right-padded with zeros to the longest row, the padded shape is stored
// under the *.shape key and the true row lengths under *.lengths.
func (r *Raw) Record(schema Schema) *Record {
	rec := &Record{Context: Fields{}, Sequence: Fields{}}

	schema.Put(rec, KeyRapper, []int64{r.RapperID})
	schema.Put(rec, KeyLabels, append([]int64{}, r.Labels...))
	putRagged(schema, rec, r.Chars, KeyChars, KeyCharsShape, KeyCharsLengths)
	putRagged(schema, rec, r.Phones, KeyPhones, KeyPhonesShape, KeyPhonesLengths)
	putRagged(schema, rec, r.Stresses, KeyStresses, KeyStressesShape, KeyStressesLengths)

	return rec
}

func putRagged(schema Schema, rec *Record, rows [][]int64, key, shapeKey, lengthsKey string) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	flat := make([]int64, len(rows)*width)
	lengths := make([]int64, len(rows))
	for i, row := range rows {
		copy(flat[i*width:], row)
		lengths[i] = int64(len(row))
	}

	schema.Put(rec, key, flat)
	schema.Put(rec, shapeKey, []int64{int64(len(rows)), int64(width)})
	schema.Put(rec, lengthsKey, lengths)
}
