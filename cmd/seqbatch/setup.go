package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/MasterOfBinary/seqbatch"
	"github.com/MasterOfBinary/seqbatch/codec"
	jsoncodec "github.com/MasterOfBinary/seqbatch/codec/json"
	msgpcodec "github.com/MasterOfBinary/seqbatch/codec/msgp"
	"github.com/MasterOfBinary/seqbatch/config"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor/file"
	"github.com/MasterOfBinary/seqbatch/extractor/sqlite"
	"github.com/MasterOfBinary/seqbatch/logging"
)

// env is what every command starts from.
type env struct {
	cfg    *config.AppConfig
	logger *logging.Logger
	runID  string
	args   []string
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, json, toml or env)")
	fs.String("input", "", "record file or SQLite database")
	fs.String("codec", "msgp", "payload codec: msgp or json")
	fs.String("schema", "default", "record layout: default or sequence")
	fs.String("log.level", "info", "log level")
	fs.String("log.file", "", "log file, stderr when empty")
	return fs
}

// setup parses args with fs and loads the configuration.
func setup(fs *pflag.FlagSet, args []string) (*env, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}

	v, err := config.InitConfig(path)
	if err != nil {
		return nil, err
	}
	if err := config.BindFlags(v, fs); err != nil {
		return nil, err
	}

	cfg, err := config.GetApplicationConfig(v)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &env{
		cfg:    cfg,
		logger: logger.With("run_id", runID, "command", fs.Name()),
		runID:  runID,
		args:   fs.Args(),
	}, nil
}

func newCodec(name string) (codec.Codec, error) {
	switch name {
	case "msgp":
		return msgpcodec.New(), nil
	case "json":
		return jsoncodec.New(), nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

func newSchema(name string) (example.Schema, error) {
	switch name {
	case "default":
		return example.DefaultSchema, nil
	case "sequence":
		return example.SequenceSchema, nil
	}
	return nil, fmt.Errorf("unknown schema %q", name)
}

type closingExtractor interface {
	seqbatch.Extractor
	Close() error
}

func newExtractor(cfg *config.AppConfig) (closingExtractor, error) {
	c, err := newCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	switch cfg.Extractor {
	case "file":
		return file.New(file.WithCodec(c), file.WithEpochs(cfg.Epochs)), nil
	case "sqlite":
		return sqlite.New(func(sc *sqlite.Config) {
			sc.Codec(c)
			sc.Epochs(cfg.Epochs)
		}), nil
	}
	return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
}
