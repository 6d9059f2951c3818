// Package batch contains the engine that groups streamed items into batches.
// The main type is Batch, which can be created using New. It reads items from
// a Source and runs each collected batch through one or more Processors.
//
// Batch uses MinTime, MinItems, MaxTime, and MaxItems from Config to determine
// when and how many items are processed at once. Setting MinItems and MaxItems
// to the same value gives fixed-size batches; only the final batch read before
// the Source is exhausted may be smaller.
//
// These parameters may conflict; for example, during slow periods,
// MaxTime may be reached before MinItems are collected. In these cases,
// the following priority order is used (EOF means end of input data):
//
//	MaxTime = MaxItems > EOF > MinTime > MinItems
//
// Timers and counters are relative to when the previous batch was handed to
// the processors. Each batch starts a new MinTime/MaxTime window and counts
// new items from zero.
//
// Processors can be chained together. Each processor receives the output items
// from the previous processor:
//
//	b.Go(ctx, source, processor1, processor2, processor3)
//
// By default batches are processed concurrently. WithConcurrency limits the
// number of batches in flight; with a limit of 1 batches reach the processors
// strictly in the order they were collected.
package batch
