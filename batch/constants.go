package batch

// Default buffer sizes for channels used in batch processing.
const (
	// DefaultItemBufferSize is the default capacity of the queue between the
	// reader and the batch collector.
	DefaultItemBufferSize = 100

	// DefaultErrorBufferSize is the default buffer size for the error channel.
	DefaultErrorBufferSize = 100
)
