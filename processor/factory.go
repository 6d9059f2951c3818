package processor

import (
	"errors"
	"fmt"
)

// FilterConfig provides configuration options for creating a Filter processor.
type FilterConfig struct {
	// Predicate returns true for items that should be kept. Required.
	Predicate FilterFunc

	// InvertMatch removes matching items instead of keeping them.
	InvertMatch bool
}

// Validate checks if the FilterConfig is valid.
func (c FilterConfig) Validate() error {
	if c.Predicate == nil {
		return errors.New("predicate function cannot be nil")
	}
	return nil
}

// NewFilter creates a Filter processor with the given configuration.
//
// Example:
//
//	proc, err := processor.NewFilter(processor.FilterConfig{
//		Predicate: processor.MaxSteps(200),
//	})
//	if err != nil {
//		// handle error
//	}
func NewFilter(config FilterConfig) (*Filter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter config: %w", err)
	}

	return &Filter{
		Predicate:   config.Predicate,
		InvertMatch: config.InvertMatch,
	}, nil
}

// CollateConfig provides configuration options for creating a Collate processor.
type CollateConfig struct {
	BatchSize    int
	AllowSmaller bool
	Pad          int64
	Sink         SinkFunc
}

// Validate checks if the CollateConfig is valid.
func (c CollateConfig) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.Sink == nil {
		return errors.New("sink cannot be nil")
	}
	return nil
}

// NewCollate creates a Collate processor with the given configuration.
func NewCollate(config CollateConfig) (*Collate, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collate config: %w", err)
	}

	return &Collate{
		BatchSize:    config.BatchSize,
		AllowSmaller: config.AllowSmaller,
		Pad:          config.Pad,
		Sink:         config.Sink,
	}, nil
}
