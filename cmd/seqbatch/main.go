// Command seqbatch prepares and inspects sequence example datasets.
//
// Usage:
//
//	seqbatch pack    --input train.rec  [--codec msgp] examples.jsonl...
//	seqbatch load    --input train.db   [--codec msgp] examples.jsonl...
//	seqbatch inspect --input train.rec  [--batch-size 32] [--batches 10]
//
// pack and load read JSON lines of raw examples (stdin when no file is
// given) and store them as a record file or a SQLite database. inspect
// produces padded batches from a dataset and prints their shapes.
//
// Every flag can also be set in seqbatch.yaml or through SEQBATCH_*
// environment variables, see package config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

const usage = `usage: seqbatch <command> [flags] [files]

commands:
  pack     convert JSON lines into a record file
  load     convert JSON lines into a SQLite database
  inspect  produce batches and print their shapes

run "seqbatch <command> --help" for the flags of a command`

var errUsage = errors.New(usage)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "seqbatch:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	var err error
	switch args[0] {
	case "pack":
		err = pack(ctx, args[1:], stdin, stdout)
	case "load":
		err = load(ctx, args[1:], stdin, stdout)
	case "inspect":
		err = inspect(ctx, args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
	default:
		err = fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}

	// The flag set has already printed the command's flags.
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}
