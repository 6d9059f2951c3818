package seqbatch

import "errors"

var (
	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrNilExtractor is returned when no extractor is given.
	ErrNilExtractor = errors.New("extractor cannot be nil")

	// ErrEmptyFilename is returned when the filename is blank.
	ErrEmptyFilename = errors.New("filename cannot be blank")

	// ErrClosed is returned by Next after Close.
	ErrClosed = errors.New("producer is closed")
)
