package tensor

import "fmt"

// Transpose swaps the two axes of a rank-2 tensor.
//
// Returns an error wrapping ErrUnsupported for any other rank.
func (t *Tensor[T]) Transpose() (*Tensor[T], error) {
	if len(t.shape) != 2 {
		return nil, fmt.Errorf("transpose: rank %d tensor %v: %w", len(t.shape), t.shape, ErrUnsupported)
	}
	rows, cols := t.shape[0], t.shape[1]
	out := make([]T, len(t.data))
	for i := 0; i < rows; i++ {
		row := t.data[i*cols : (i+1)*cols]
		for j, v := range row {
			out[j*rows+i] = v
		}
	}
	return newTensor(Shape{cols, rows}, out), nil
}

// Matrix returns a copy of t viewed as the matrix [Rows, Last], folding every
// leading axis into the row axis.
func (t *Tensor[T]) Matrix() *Tensor[T] {
	data := make([]T, len(t.data))
	copy(data, t.data)
	return newTensor(Shape{t.shape.Rows(), t.shape.Last()}, data)
}

// Dot contracts the last axis of t with the second-to-last axis of other.
//
// Shapes:
//
//	t:      [a0, ..., ap, k]
//	other:  [b0, ..., bq, k, n]
//	result: [a0, ..., ap, b0, ..., bq, n]
//
// For rank-2 operands this is ordinary matrix multiplication. For higher ranks
// the leading axes on each side are independent batches: every combination of
// a left row and a right matrix produces one row of n inner products.
// Accumulation runs left to right from the zero value of T.
//
// Returns a *ShapeError (wrapping ErrShapeMismatch) naming both axes when the
// contracted extents differ.
func (t *Tensor[T]) Dot(other *Tensor[T]) (*Tensor[T], error) {
	if len(t.shape) < 1 || len(other.shape) < 2 {
		return nil, fmt.Errorf("dot: operands of rank %d and %d: %w", len(t.shape), len(other.shape), ErrUnsupported)
	}

	axisL := len(t.shape) - 1
	axisR := len(other.shape) - 2
	k := t.shape[axisL]
	if k != other.shape[axisR] {
		return nil, &ShapeError{Op: "dot", Left: t.shape, Right: other.shape, AxisL: axisL, AxisR: axisR}
	}
	n := other.shape[axisR+1]

	leftBatches := t.shape.Rows()
	rightBatches := 1
	for _, d := range other.shape[:axisR] {
		rightBatches *= d
	}

	outShape := make(Shape, 0, axisL+axisR+1)
	outShape = append(outShape, t.shape[:axisL]...)
	outShape = append(outShape, other.shape[:axisR]...)
	outShape = append(outShape, n)

	out := make([]T, leftBatches*rightBatches*n)
	matSize := k * n
	for a := 0; a < leftBatches; a++ {
		row := t.data[a*k : (a+1)*k]
		for b := 0; b < rightBatches; b++ {
			mat := other.data[b*matSize : (b+1)*matSize]
			dst := out[(a*rightBatches+b)*n : (a*rightBatches+b+1)*n]
			for j := 0; j < n; j++ {
				var sum T
				for p, v := range row {
					sum += v * mat[p*n+j]
				}
				dst[j] = sum
			}
		}
	}

	return newTensor(NewShape(outShape...), out), nil
}
