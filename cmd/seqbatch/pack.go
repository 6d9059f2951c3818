package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/MasterOfBinary/seqbatch/batch"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor/file"
	"github.com/MasterOfBinary/seqbatch/extractor/sqlite"
)

// loadChunk is the largest number of records inserted per transaction by
// load.
const loadChunk = 256

func pack(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	e, err := setup(newFlagSet("pack"), args)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	c, err := newCodec(e.cfg.Codec)
	if err != nil {
		return err
	}
	schema, err := newSchema(e.cfg.Schema)
	if err != nil {
		return err
	}

	w, err := file.Create(e.cfg.Input, c)
	if err != nil {
		return err
	}

	err = readInputs(ctx, e.args, stdin, func(raw *example.Raw) error {
		return w.Write(raw.Record(schema))
	})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		e.logger.Error("Packing %s failed: %v", e.cfg.Input, err)
		return err
	}

	e.logger.Info("Packed %d records into %s", w.Count(), e.cfg.Input)
	fmt.Fprintf(stdout, "packed %d records into %s\n", w.Count(), e.cfg.Input)
	return nil
}

func load(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	e, err := setup(newFlagSet("load"), args)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	c, err := newCodec(e.cfg.Codec)
	if err != nil {
		return err
	}
	schema, err := newSchema(e.cfg.Schema)
	if err != nil {
		return err
	}

	w, err := sqlite.NewWriter(e.cfg.Input, func(sc *sqlite.Config) { sc.Codec(c) })
	if err != nil {
		return err
	}
	defer w.Close()

	bw := sqlite.NewBatchWriter(w, batch.NewConstantConfig(&batch.ConfigValues{
		MinItems: loadChunk,
		MaxItems: loadChunk,
		MaxTime:  100 * time.Millisecond,
	}))

	var pending []<-chan error
	err = readInputs(ctx, e.args, stdin, func(raw *example.Raw) error {
		pending = append(pending, bw.Submit(ctx, raw.Record(schema)))
		return nil
	})
	bw.Close()

	for i, res := range pending {
		if ierr := <-res; ierr != nil && err == nil {
			err = fmt.Errorf("insert record %d: %w", i, ierr)
		}
	}
	if err != nil {
		e.logger.Error("Loading %s failed: %v", e.cfg.Input, err)
		return err
	}

	rows, err := w.Insert(ctx)
	if err != nil {
		return err
	}

	e.logger.Info("Loaded %d records, %s has %d rows", len(pending), e.cfg.Input, rows)
	fmt.Fprintf(stdout, "loaded %d records into %s (%d rows)\n", len(pending), e.cfg.Input, rows)
	return nil
}

// readInputs decodes JSON lines of raw examples from every named file, or
// from stdin when there are none, and calls fn for each.
func readInputs(ctx context.Context, names []string, stdin io.Reader, fn func(*example.Raw) error) error {
	if len(names) == 0 {
		return readRaw(ctx, "stdin", stdin, fn)
	}

	for _, name := range names {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = readRaw(ctx, name, f, fn)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func readRaw(ctx context.Context, name string, r io.Reader, fn func(*example.Raw) error) error {
	dec := json.NewDecoder(r)
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var raw example.Raw
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: example %d: %w", name, i, err)
		}
		if err := fn(&raw); err != nil {
			return fmt.Errorf("%s: example %d: %w", name, i, err)
		}
	}
}
