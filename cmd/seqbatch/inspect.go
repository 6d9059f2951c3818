package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MasterOfBinary/seqbatch"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/metrics"
)

// batchKeys fixes the print order of batch fields.
var batchKeys = []string{
	example.BatchKeyRapper,
	example.BatchKeyLabels,
	example.BatchKeyChars,
	example.BatchKeyCharsLength,
	example.BatchKeyPhones,
	example.BatchKeyPhonesLengths,
	example.BatchKeyStresses,
	example.BatchKeyStressesLengths,
}

func inspect(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("inspect")
	fs.String("extractor", "file", "dataset type: file or sqlite")
	fs.Int("batch-size", 32, "examples per batch")
	fs.Int("epochs", 1, "passes over the dataset, 0 to cycle forever")
	fs.Int("queue-capacity", 0, "records read ahead, 0 for twice the batch size")
	fs.Int("max-sequence-length", 0, "drop examples with more steps, 0 to keep all")
	fs.Bool("allow-smaller-final-batch", false, "emit the last partial batch")
	fs.Int64("pad-value", 0, "value of padded positions")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	fs.Duration("timeout", 0, "stop after this long, 0 for no limit")
	limit := fs.Int("batches", 0, "stop after this many batches, 0 for all")

	e, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	cfg := e.cfg
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ex, err := newExtractor(cfg)
	if err != nil {
		return err
	}
	defer ex.Close()

	schema, err := newSchema(cfg.Schema)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	stats := metrics.New(metrics.NewConfig(reg), filepath.Base(cfg.Input))

	opts := []seqbatch.Option{
		seqbatch.WithSchema(schema),
		seqbatch.WithPadValue(cfg.PadValue),
		seqbatch.WithLogger(e.logger),
		seqbatch.WithStats(stats),
	}
	if cfg.AllowSmallerFinalBatch {
		opts = append(opts, seqbatch.WithAllowSmallerFinalBatch())
	}
	if cfg.QueueCapacity > 0 {
		opts = append(opts, seqbatch.WithQueueCapacity(cfg.QueueCapacity))
	}
	if cfg.MaxSequenceLength > 0 {
		opts = append(opts, seqbatch.WithMaxSequenceLength(cfg.MaxSequenceLength))
	}

	p, err := seqbatch.NewProducer(ex, cfg.BatchSize, cfg.Input, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	if cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			p.Close()
			return fmt.Errorf("metrics listener: %w", err)
		}
		srv := &http.Server{
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		e.logger.Info("Serving metrics on %s", ln.Addr())

		g.Go(func() error {
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-done:
			case <-gctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer close(done)
		defer p.Close()
		return printBatches(gctx, p, *limit, stdout)
	})

	if err := g.Wait(); err != nil {
		e.logger.Error("Inspecting %s failed: %v", cfg.Input, err)
		return err
	}

	s := stats.GetStats()
	e.logger.Info("Done: %d batches, %d examples, %d errors",
		s.BatchesCompleted, s.ItemsProcessed, s.ItemErrors+s.SourceErrors+s.ProcessorErrors)
	return nil
}

func printBatches(ctx context.Context, p *seqbatch.Producer, limit int, w io.Writer) error {
	var (
		batches, examples    int
		totalCells, padCells int
	)
	for limit == 0 || batches < limit {
		b, err := p.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return err
		}

		batches++
		examples += b.Size
		total, padding := b.Cells()
		totalCells += total
		padCells += padding

		fmt.Fprintf(w, "batch %d: %s\n", batches, shapes(b))
	}

	ratio := 0.0
	if totalCells > 0 {
		ratio = 100 * float64(padCells) / float64(totalCells)
	}
	fmt.Fprintf(w, "%d batches, %d examples, %.1f%% padding\n", batches, examples, ratio)
	return nil
}

func shapes(b *seqbatch.Batch) string {
	m := b.Map()
	parts := make([]string, 0, len(batchKeys))
	for _, key := range batchKeys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, m[key].Shape))
	}
	return strings.Join(parts, " ")
}
