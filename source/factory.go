package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MasterOfBinary/seqbatch/extractor"
)

// ExtractorConfig provides configuration options for creating an Extractor
// source.
type ExtractorConfig struct {
	// Extractor decodes the records. This field is required.
	Extractor extractor.Extractor

	// Filename is passed to every ReadAndDecodeSingleExample call. This field
	// is required.
	Filename string

	// Limit caps the number of records read. Zero means no limit.
	Limit uint64

	// BufferSize is the capacity of the output channel.
	BufferSize int
}

// Validate checks if the ExtractorConfig is valid.
func (c ExtractorConfig) Validate() error {
	if c.Extractor == nil {
		return errors.New("extractor cannot be nil")
	}
	if strings.TrimSpace(c.Filename) == "" {
		return errors.New("filename cannot be blank")
	}
	if c.BufferSize < 0 {
		return errors.New("buffer size cannot be negative")
	}
	return nil
}

// NewExtractor creates an Extractor source with the given configuration.
//
// Example:
//
//	src, err := source.NewExtractor(source.ExtractorConfig{
//		Extractor: file.New(),
//		Filename:  "train.rec",
//	})
//	if err != nil {
//		// handle error
//	}
func NewExtractor(config ExtractorConfig) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor config: %w", err)
	}

	return &Extractor{
		Extractor:  config.Extractor,
		Filename:   config.Filename,
		Limit:      config.Limit,
		BufferSize: config.BufferSize,
	}, nil
}
