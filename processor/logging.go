package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/MasterOfBinary/seqbatch/batch"
)

// Logging wraps another processor and logs when it starts and completes,
// along with any error it returns.
type Logging struct {
	// Processor does the actual work.
	Processor batch.Processor

	// Logger receives the messages. If nil, nothing is logged.
	Logger batch.Logger

	// Name is used in log messages. Defaults to the processor's type.
	Name string
}

// Process implements the batch.Processor interface.
func (p *Logging) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if p.Processor == nil {
		return items, nil
	}
	if p.Logger == nil {
		return p.Processor.Process(ctx, items)
	}

	name := p.Name
	if name == "" {
		name = fmt.Sprintf("%T", p.Processor)
	}

	start := time.Now()
	p.Logger.Debug("Processor '%s' starting with %d items", name, len(items))

	result, err := p.Processor.Process(ctx, items)

	duration := time.Since(start)
	if err != nil {
		p.Logger.Error("Processor '%s' failed after %v: %v", name, duration, err)
		return result, err
	}

	var failed int
	for _, item := range result {
		if item.Error != nil {
			failed++
		}
	}
	p.Logger.Debug("Processor '%s' completed in %v: %d items (%d errors)",
		name, duration, len(result), failed)

	return result, nil
}

// WithLogging wraps proc in a Logging processor.
func WithLogging(proc batch.Processor, logger batch.Logger, name string) *Logging {
	return &Logging{
		Processor: proc,
		Logger:    logger,
		Name:      name,
	}
}
