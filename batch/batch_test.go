package batch_test

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/MasterOfBinary/seqbatch/batch"
)

func TestBatch_ProcessorChainingAndErrorTracking(t *testing.T) {
	t.Run("processor chaining with individual errors", func(t *testing.T) {
		var count uint32
		b := New(NewConstantConfig(&ConfigValues{MinItems: 5}))
		src := &testSource{Items: intItems(9)}

		errs := b.Go(context.Background(), src,
			&errorPerItemProcessor{FailEvery: 3},
			&countProcessor{count: &count})

		received := 0
		for err := range errs {
			var processorError *ProcessorError
			if !errors.As(err, &processorError) {
				t.Errorf("unexpected error type: %v", err)
				continue
			}
			if processorError.ItemID < 0 {
				t.Errorf("expected an item error, got %v", err)
			}
			received++
		}

		// Batches of 5 and 4: indexes 0 and 3 of each fail.
		if received != 4 {
			t.Errorf("expected 4 item errors, got %d", received)
		}
		if atomic.LoadUint32(&count) != 9 {
			t.Errorf("expected 9 items processed, got %d", count)
		}
	})

	t.Run("source error forwarding", func(t *testing.T) {
		srcErr := errors.New("source failed")
		b := New(nil)
		src := &testSource{Items: intItems(2), WithErr: srcErr}

		errs := b.Go(context.Background(), src, &countProcessor{count: new(uint32)})

		var found bool
		for err := range errs {
			var sourceError *SourceError
			if errors.As(err, &sourceError) && errors.Is(err, srcErr) {
				found = true
			}
		}
		if !found {
			t.Error("expected to find source error")
		}
	})

	t.Run("processor error unwrapping", func(t *testing.T) {
		procErr := errors.New("processor failed")
		b := New(NewConstantConfig(&ConfigValues{MinItems: 3}))
		src := &testSource{Items: intItems(3)}

		errs := b.Go(context.Background(), src, &countProcessor{count: new(uint32), processorErr: procErr})

		var got []error
		for err := range errs {
			got = append(got, err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 error, got %d", len(got))
		}

		var processorError *ProcessorError
		if !errors.As(got[0], &processorError) || processorError.ItemID != -1 {
			t.Errorf("expected processor-wide error, got %v", got[0])
		}
		if errors.Unwrap(got[0]) != procErr {
			t.Errorf("expected unwrapped error %v, got %v", procErr, errors.Unwrap(got[0]))
		}
	})
}

func TestBatch_Configurations(t *testing.T) {
	tests := []struct {
		name   string
		config *ConfigValues
		delay  time.Duration
		size   int
		want   map[int]int
	}{
		{
			name:   "min items",
			config: &ConfigValues{MinItems: 5},
			size:   10,
			want:   map[int]int{5: 2},
		},
		{
			name:   "fixed size with remainder",
			config: &ConfigValues{MinItems: 4, MaxItems: 4},
			size:   10,
			want:   map[int]int{4: 2, 2: 1},
		},
		{
			name:   "min and max items interaction",
			config: &ConfigValues{MinItems: 5, MaxItems: 3},
			size:   10,
			want:   map[int]int{3: 3, 1: 1},
		},
		{
			name:   "high min items with smaller source",
			config: &ConfigValues{MinItems: 10},
			size:   5,
			want:   map[int]int{5: 1},
		},
		{
			name:   "max time",
			config: &ConfigValues{MinItems: 5, MaxTime: 100 * time.Millisecond},
			delay:  80 * time.Millisecond,
			size:   3,
			want:   map[int]int{1: 3},
		},
		{
			name:   "zero thresholds",
			config: &ConfigValues{},
			size:   6,
			want:   map[int]int{1: 6},
		},
		{
			name:   "empty source",
			config: &ConfigValues{MinItems: 5},
			size:   0,
			want:   map[int]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(NewConstantConfig(tt.config)).WithConcurrency(1)
			src := &testSource{Items: intItems(tt.size), Delay: tt.delay}
			proc := &recordProcessor{}

			IgnoreErrors(b.Go(context.Background(), src, proc))
			<-b.Done()

			if got := proc.sizes(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("batch sizes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBatch_WithConcurrency(t *testing.T) {
	t.Run("ordered", func(t *testing.T) {
		b := New(NewConstantConfig(&ConfigValues{MinItems: 2, MaxItems: 2})).WithConcurrency(1)
		proc := &recordProcessor{delay: 5 * time.Millisecond}

		IgnoreErrors(b.Go(context.Background(), &testSource{Items: intItems(8)}, proc))
		<-b.Done()

		want := [][]interface{}{{0, 1}, {2, 3}, {4, 5}, {6, 7}}
		if !reflect.DeepEqual(proc.batches, want) {
			t.Errorf("batches = %v, want %v", proc.batches, want)
		}
		if proc.maxSeen != 1 {
			t.Errorf("max concurrent batches = %d, want 1", proc.maxSeen)
		}
	})

	t.Run("bounded", func(t *testing.T) {
		b := New(NewConstantConfig(&ConfigValues{MinItems: 1})).WithConcurrency(3)
		proc := &recordProcessor{delay: 20 * time.Millisecond}

		IgnoreErrors(b.Go(context.Background(), &testSource{Items: intItems(12)}, proc))
		<-b.Done()

		if proc.maxSeen > 3 {
			t.Errorf("max concurrent batches = %d, want <= 3", proc.maxSeen)
		}
		if len(proc.batches) != 12 {
			t.Errorf("expected 12 batches, got %d", len(proc.batches))
		}
	})

	t.Run("negative panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		New(nil).WithConcurrency(-1)
	})
}

func TestBatch_NilSource(t *testing.T) {
	b := New(nil)
	errs := b.Go(context.Background(), nil)

	err, ok := <-errs
	if !ok || !errors.Is(err, ErrNilSource) {
		t.Errorf("expected ErrNilSource, got %v", err)
	}
	<-b.Done()
}

func TestBatch_DoneBeforeGo(t *testing.T) {
	select {
	case <-New(nil).Done():
	default:
		t.Error("Done should be closed before Go is called")
	}
}

func TestBatch_ConcurrentGo(t *testing.T) {
	b := New(NewConstantConfig(&ConfigValues{MinItems: 10}))
	src := &testSource{Items: intItems(5), Delay: 10 * time.Millisecond}
	IgnoreErrors(b.Go(context.Background(), src))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on concurrent Go")
		}
		<-b.Done()
	}()
	b.Go(context.Background(), src)
}

func TestBatch_ContextCancellation(t *testing.T) {
	var count uint32
	b := New(NewConstantConfig(&ConfigValues{MinItems: 10}))
	src := &testSource{Items: intItems(200), Delay: 2 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	IgnoreErrors(b.Go(ctx, src, &countProcessor{count: &count}))

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("batch did not finish after cancellation")
	}

	if got := atomic.LoadUint32(&count); got == 200 {
		t.Errorf("expected cancellation to stop reading, all %d items processed", got)
	}
}

func TestBatch_Stats(t *testing.T) {
	stats := NewBasicStatsCollector()
	b := New(NewConstantConfig(&ConfigValues{MinItems: 3, MaxItems: 3})).
		WithConcurrency(1).
		WithStats(stats)

	IgnoreErrors(b.Go(context.Background(),
		&testSource{Items: intItems(7), WithErr: errors.New("boom")},
		&errorPerItemProcessor{FailEvery: 3}))
	<-b.Done()

	s := stats.GetStats()
	if s.BatchesStarted != 3 || s.BatchesCompleted != 3 {
		t.Errorf("batches = %d/%d, want 3/3", s.BatchesStarted, s.BatchesCompleted)
	}
	if s.ItemErrors != 3 || s.ItemsProcessed != 4 {
		t.Errorf("items = %d ok / %d failed, want 4 / 3", s.ItemsProcessed, s.ItemErrors)
	}
	if s.SourceErrors != 1 {
		t.Errorf("SourceErrors = %d, want 1", s.SourceErrors)
	}
	if s.MinBatchSize != 1 || s.MaxBatchSize != 3 {
		t.Errorf("batch size range = [%d, %d], want [1, 3]", s.MinBatchSize, s.MaxBatchSize)
	}
}
