package processor

import (
	"context"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
)

// FilterFunc is a function that decides whether an item should be included in the output.
// Return true to keep the item, false to filter it out.
type FilterFunc func(item *batch.Item) bool

// Filter is a processor that filters items based on a predicate function.
// Items that already have an error are always kept so the error is reported.
type Filter struct {
	// Predicate returns true for items that should be kept.
	// If nil, no filtering occurs.
	Predicate FilterFunc

	// InvertMatch removes the items matching Predicate instead of keeping them.
	InvertMatch bool
}

// Process implements the batch.Processor interface. Filtered items are left
// out of the returned slice; no error is set on them.
func (p *Filter) Process(_ context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if len(items) == 0 || p.Predicate == nil {
		return items, nil
	}

	result := make([]*batch.Item, 0, len(items))
	for _, item := range items {
		if item.Error != nil {
			result = append(result, item)
			continue
		}

		keep := p.Predicate(item)
		if p.InvertMatch {
			keep = !keep
		}
		if keep {
			result = append(result, item)
		}
	}

	return result, nil
}

// MaxSteps returns a FilterFunc that keeps decoded examples with at most n
// steps. Items that are not *example.SequenceExample values are kept.
func MaxSteps(n int) FilterFunc {
	return func(item *batch.Item) bool {
		ex, ok := item.Data.(*example.SequenceExample)
		if !ok {
			return true
		}
		return ex.Steps() <= n
	}
}
