package source

import "context"

// Slice is a Source that emits Items in order.
type Slice struct {
	Items []interface{}
}

// Read implements the batch.Source interface.
func (s *Slice) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	out := make(chan interface{})
	errs := make(chan error)

	go func() {
		defer close(out)
		defer close(errs)

		for _, item := range s.Items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()

	return out, errs
}
