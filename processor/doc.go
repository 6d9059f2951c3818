// Package processor contains the batch.Processor implementations used to turn
// records into padded batches:
//
//   - Decode: converts *example.Record items into *example.SequenceExample
//   - Filter: drops items based on a predicate
//   - Collate: stacks decoded examples into *example.Batch values
//   - Logging: wraps another processor and logs its progress
//
// Processors skip items that already carry an error, leaving them for the
// batch engine to report.
//
// A typical chain:
//
//	procs := []batch.Processor{
//		&processor.Decode{Schema: example.DefaultSchema},
//		&processor.Filter{Predicate: processor.MaxSteps(200)},
//		collate,
//	}
package processor
