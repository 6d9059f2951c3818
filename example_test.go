package seqbatch_test

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MasterOfBinary/seqbatch"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor/static"
)

func ExampleProducer() {
	short := &example.Raw{RapperID: 1, Labels: []int64{1}, Chars: [][]int64{{1, 2, 3}}, Phones: [][]int64{{1}}, Stresses: [][]int64{{0}}}
	long := &example.Raw{RapperID: 2, Labels: []int64{2, 3}, Chars: [][]int64{{4}, {5, 6}}, Phones: [][]int64{{2}, {3}}, Stresses: [][]int64{{1}, {0}}}

	var records []*example.Record
	for _, raw := range []*example.Raw{short, long, short, short, long} {
		records = append(records, raw.Record(example.DefaultSchema))
	}

	p, err := seqbatch.NewProducer(&static.List{Records: records}, 2, "train.rec")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer p.Close()

	for {
		b, err := p.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(b.Chars.Shape, b.CharsLength.Data)
	}
	// Output:
	// [2 2 3] [3 0 1 2]
	// [2 1 3] [3 3]
}
