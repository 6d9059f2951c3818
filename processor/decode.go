package processor

import (
	"context"
	"fmt"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
)

// Decode is a processor that replaces each *example.Record item with the
// *example.SequenceExample it describes. Items that cannot be decoded have
// their Error set and keep their record.
type Decode struct {
	// Schema selects where each key is read from. If nil, example.DefaultSchema
	// is used.
	Schema example.Schema
}

// Process implements the batch.Processor interface.
func (p *Decode) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if err := ctx.Err(); err != nil {
		return items, err
	}

	schema := p.Schema
	if schema == nil {
		schema = example.DefaultSchema
	}

	for _, item := range items {
		if item.Error != nil {
			continue
		}

		rec, ok := item.Data.(*example.Record)
		if !ok {
			item.Error = fmt.Errorf("decode: unexpected item type %T", item.Data)
			continue
		}

		ex, err := example.Decode(rec, schema)
		if err != nil {
			item.Error = err
			continue
		}
		item.Data = ex
	}

	return items, nil
}
