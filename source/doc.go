// Package source contains batch.Source implementations:
//
//   - Extractor: pulls decoded example records from an extractor.Extractor
//   - Slice: emits a fixed list of values, mostly for tests
//
// Each source handles context cancellation and closes both of its channels
// when it is done.
package source
