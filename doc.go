// Package seqbatch turns a stream of serialized rapper sequence examples into
// fixed-size, dynamically padded batches for a training loop.
//
// A Producer pulls records from an Extractor one at a time, decodes each into
// an example.SequenceExample and stacks every batchSize examples into a
// Batch. Variable-length fields are right-padded to the largest size found in
// the batch, so two batches may have different shapes:
//
//	p, err := seqbatch.NewProducer(file.New(), 32, "train.rec")
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	for {
//		b, err := p.Next(ctx)
//		if errors.Is(err, io.EOF) {
//			break
//		} else if err != nil {
//			return err
//		}
//		fmt.Println(b.Chars.Shape)
//	}
//
// Reading, decoding and padding run in background goroutines on top of the
// batch package, with a bounded queue between the reader and the batcher.
// Batches are delivered in read order.
package seqbatch
