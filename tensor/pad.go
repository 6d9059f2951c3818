package tensor

import "fmt"

// MaxShape returns the per-dimension maximum of the shapes of ts. All
// tensors must have the same rank.
func MaxShape(ts []*Tensor) ([]int, error) {
	if len(ts) == 0 {
		return nil, nil
	}

	rank := ts[0].Rank()
	max := make([]int, rank)
	for i, t := range ts {
		if t.Rank() != rank {
			return nil, fmt.Errorf("%w: element %d has rank %d, expected %d",
				ErrRankMismatch, i, t.Rank(), rank)
		}
		for d, size := range t.Shape {
			if size > max[d] {
				max[d] = size
			}
		}
	}
	return max, nil
}

// Stack combines ts into a single tensor with a new leading dimension of
// len(ts). Every dimension is padded on the right with pad up to the largest
// size found among ts, so tensors of different lengths can share a batch.
func Stack(ts []*Tensor, pad int64) (*Tensor, error) {
	inner, err := MaxShape(ts)
	if err != nil {
		return nil, err
	}

	shape := append([]int{len(ts)}, inner...)
	if _, ok := product(shape); !ok {
		return nil, fmt.Errorf("%w: padded shape %v has too many elements", ErrShapeMismatch, shape)
	}
	out := Zeros(shape, pad)
	stride := NumElements(inner)

	for i, t := range ts {
		copyPadded(out.Data[i*stride:(i+1)*stride], inner, t.Data, t.Shape)
	}
	return out, nil
}

// Pad returns a copy of t padded on the right with pad up to shape. Every
// dimension of shape must be at least as large as the matching one in t.
func Pad(t *Tensor, shape []int, pad int64) (*Tensor, error) {
	if len(shape) != t.Rank() {
		return nil, fmt.Errorf("%w: cannot pad rank %d to %v", ErrRankMismatch, t.Rank(), shape)
	}
	for d := range shape {
		if shape[d] < t.Shape[d] {
			return nil, fmt.Errorf("%w: cannot pad %v down to %v", ErrShapeMismatch, t.Shape, shape)
		}
	}

	out := Zeros(shape, pad)
	copyPadded(out.Data, shape, t.Data, t.Shape)
	return out, nil
}

// copyPadded copies src (with srcShape) into the leading corner of dst, which
// is laid out with dstShape. Both shapes have the same rank.
func copyPadded(dst []int64, dstShape []int, src []int64, srcShape []int) {
	if len(src) == 0 {
		return
	}
	if len(srcShape) == 0 {
		dst[0] = src[0]
		return
	}
	if len(srcShape) == 1 {
		copy(dst, src[:srcShape[0]])
		return
	}

	dstStride := NumElements(dstShape[1:])
	srcStride := NumElements(srcShape[1:])
	for i := 0; i < srcShape[0]; i++ {
		copyPadded(
			dst[i*dstStride:(i+1)*dstStride], dstShape[1:],
			src[i*srcStride:(i+1)*srcStride], srcShape[1:],
		)
	}
}
