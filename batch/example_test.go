package batch_test

import (
	"context"
	"fmt"

	"github.com/MasterOfBinary/seqbatch/batch"
)

type sliceSource []interface{}

func (s sliceSource) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	out := make(chan interface{})
	errs := make(chan error)
	go func() {
		defer close(out)
		defer close(errs)
		for _, v := range s {
			select {
			case <-ctx.Done():
				return
			case out <- v:
			}
		}
	}()
	return out, errs
}

type printProcessor struct{}

func (printProcessor) Process(_ context.Context, items []*batch.Item) ([]*batch.Item, error) {
	data := make([]interface{}, len(items))
	for i, item := range items {
		data[i] = item.Data
	}
	fmt.Println(data)
	return items, nil
}

func Example() {
	cfg := batch.FixedSize(3)
	b := batch.New(batch.NewConstantConfig(&cfg)).WithConcurrency(1)

	errs := b.Go(context.Background(), sliceSource{1, 2, 3, 4, 5, 6, 7}, printProcessor{})
	for err := range errs {
		fmt.Println("error:", err)
	}

	// Output:
	// [1 2 3]
	// [4 5 6]
	// [7]
}
