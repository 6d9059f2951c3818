package processor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/processor"
	"github.com/MasterOfBinary/seqbatch/tensor"
)

// rawWithSteps returns a raw example with the given number of steps, each
// with steps+1 chars.
func rawWithSteps(id int64, steps int) *example.Raw {
	raw := &example.Raw{RapperID: id}
	for i := 0; i < steps; i++ {
		raw.Labels = append(raw.Labels, int64(i))
		chars := make([]int64, steps+1)
		for j := range chars {
			chars[j] = int64(j + 1)
		}
		raw.Chars = append(raw.Chars, chars)
		raw.Phones = append(raw.Phones, []int64{int64(i + 1)})
		raw.Stresses = append(raw.Stresses, []int64{1, 0})
	}
	return raw
}

func recordItems(steps ...int) []*batch.Item {
	items := make([]*batch.Item, len(steps))
	for i, s := range steps {
		items[i] = &batch.Item{
			ID:   uint64(i),
			Data: rawWithSteps(int64(i), s).Record(example.DefaultSchema),
		}
	}
	return items
}

func decoded(t *testing.T, steps ...int) []*batch.Item {
	t.Helper()
	items, err := (&processor.Decode{}).Process(context.Background(), recordItems(steps...))
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, item.Error)
	}
	return items
}

func TestDecode_Process(t *testing.T) {
	items := recordItems(2, 3)
	items = append(items,
		&batch.Item{ID: 2, Data: "not a record"},
		&batch.Item{ID: 3, Data: &example.Record{}},
		&batch.Item{ID: 4, Error: errors.New("earlier")},
	)

	res, err := (&processor.Decode{Schema: example.DefaultSchema}).Process(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, res, 5)

	ex, ok := res[1].Data.(*example.SequenceExample)
	require.True(t, ok)
	assert.Equal(t, 3, ex.Steps())
	assert.Equal(t, []int{3, 4}, ex.Chars.Shape)

	assert.ErrorContains(t, res[2].Error, "unexpected item type string")
	assert.ErrorIs(t, res[3].Error, example.ErrMissingField)
	assert.EqualError(t, res[4].Error, "earlier")
}

func TestDecode_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&processor.Decode{}).Process(ctx, recordItems(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilter_Process(t *testing.T) {
	items := decoded(t, 1, 5, 2, 8)
	items = append(items, &batch.Item{ID: 9, Error: errors.New("kept")})

	tests := []struct {
		name    string
		filter  *processor.Filter
		wantIDs []uint64
	}{
		{"nil predicate keeps all", &processor.Filter{}, []uint64{0, 1, 2, 3, 9}},
		{"max steps", &processor.Filter{Predicate: processor.MaxSteps(2)}, []uint64{0, 2, 9}},
		{"inverted", &processor.Filter{Predicate: processor.MaxSteps(2), InvertMatch: true}, []uint64{1, 3, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.filter.Process(context.Background(), items)
			require.NoError(t, err)

			var ids []uint64
			for _, item := range res {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestNewFilter(t *testing.T) {
	_, err := processor.NewFilter(processor.FilterConfig{})
	assert.Error(t, err)

	f, err := processor.NewFilter(processor.FilterConfig{Predicate: processor.MaxSteps(1), InvertMatch: true})
	require.NoError(t, err)
	assert.True(t, f.InvertMatch)
}

type batchSink struct {
	batches []*example.Batch
	err     error
}

func (s *batchSink) sink(_ context.Context, b *example.Batch) error {
	s.batches = append(s.batches, b)
	return s.err
}

func TestCollate_CarriesPending(t *testing.T) {
	var s batchSink
	c := &processor.Collate{BatchSize: 2, Pad: -1, Sink: s.sink}
	ctx := context.Background()

	items := decoded(t, 1, 3, 2)
	_, err := c.Process(ctx, items[:1])
	require.NoError(t, err)
	assert.Empty(t, s.batches)
	assert.Equal(t, 1, c.Pending())

	_, err = c.Process(ctx, items[1:])
	require.NoError(t, err)
	require.Len(t, s.batches, 1)
	assert.Equal(t, 1, c.Pending())

	b := s.batches[0]
	assert.Equal(t, 2, b.Size)
	assert.Equal(t, []uint64{0, 1}, b.IDs)
	assert.Equal(t, []int{2, 3, 4}, b.Chars.Shape)
	assert.Equal(t, []int64{1, 2, -1, -1}, b.Chars.Row(0).Row(0).Data)

	require.NoError(t, c.Flush(ctx))
	assert.Len(t, s.batches, 1, "short final batch is dropped")
	assert.Zero(t, c.Pending())
}

func TestCollate_FlushAllowSmaller(t *testing.T) {
	var s batchSink
	c, err := processor.NewCollate(processor.CollateConfig{BatchSize: 4, AllowSmaller: true, Sink: s.sink})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Process(ctx, decoded(t, 2, 2, 1))
	require.NoError(t, err)
	require.NoError(t, c.Flush(ctx))

	require.Len(t, s.batches, 1)
	for key, v := range s.batches[0].Map() {
		assert.Equal(t, 3, v.Dim(0), key)
	}
}

func TestCollate_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("item error emits nothing", func(t *testing.T) {
		var s batchSink
		c := &processor.Collate{BatchSize: 2, Sink: s.sink}
		items := decoded(t, 1, 1)
		items[1].Error = errors.New("bad")

		_, err := c.Process(ctx, items)
		require.NoError(t, err)
		assert.Empty(t, s.batches)
		assert.Zero(t, c.Pending())
	})

	t.Run("undecoded item", func(t *testing.T) {
		var s batchSink
		c := &processor.Collate{BatchSize: 1, Sink: s.sink}
		items := recordItems(1)

		_, err := c.Process(ctx, items)
		require.NoError(t, err)
		assert.ErrorContains(t, items[0].Error, "unexpected item type")
		assert.Empty(t, s.batches)
	})

	t.Run("rank mismatch", func(t *testing.T) {
		var s batchSink
		c := &processor.Collate{BatchSize: 2, Sink: s.sink}
		items := decoded(t, 2, 2)
		ex := items[1].Data.(*example.SequenceExample)
		ex.Chars = ex.Chars.Flatten()

		_, err := c.Process(ctx, items)
		assert.ErrorIs(t, err, tensor.ErrRankMismatch)
	})

	t.Run("sink error", func(t *testing.T) {
		s := batchSink{err: errors.New("full")}
		c := &processor.Collate{BatchSize: 1, Sink: s.sink}

		_, err := c.Process(ctx, decoded(t, 1))
		assert.EqualError(t, err, "full")
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := processor.NewCollate(processor.CollateConfig{BatchSize: 0, Sink: (&batchSink{}).sink})
		assert.Error(t, err)
		_, err = processor.NewCollate(processor.CollateConfig{BatchSize: 1})
		assert.Error(t, err)
	})
}

type recordingLogger struct {
	batch.NoOpLogger
	debug, errs int
}

func (l *recordingLogger) Debug(string, ...interface{}) { l.debug++ }
func (l *recordingLogger) Error(string, ...interface{}) { l.errs++ }

type failingProcessor struct{}

func (failingProcessor) Process(_ context.Context, items []*batch.Item) ([]*batch.Item, error) {
	return items, errors.New("failed")
}

func TestLogging_Process(t *testing.T) {
	ctx := context.Background()
	logger := &recordingLogger{}

	res, err := processor.WithLogging(&processor.Decode{}, logger, "decode").Process(ctx, recordItems(1, 2))
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, 2, logger.debug)

	_, err = processor.WithLogging(failingProcessor{}, logger, "").Process(ctx, nil)
	assert.EqualError(t, err, "failed")
	assert.Equal(t, 1, logger.errs)

	res, err = (&processor.Logging{}).Process(ctx, recordItems(1))
	require.NoError(t, err)
	assert.Len(t, res, 1)
}
