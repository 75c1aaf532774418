package tensor

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
)

// AddInPlace adds other to t element by element.
//
// The shapes must match exactly. A mismatch is not fatal: it is logged as a
// warning, t is left unchanged and AddInPlace returns false.
func (t *Tensor[T]) AddInPlace(other *Tensor[T]) bool {
	if !t.shape.Equal(other.shape) {
		slog.Warn("dimension mismatch, skipping element-wise add", "left", t.shape, "right", other.shape)
		return false
	}
	if dst, ok := any(t.data).([]float64); ok {
		floats.Add(dst, any(other.data).([]float64))
		return true
	}
	for i, v := range other.data {
		t.data[i] += v
	}
	return true
}

// Scale multiplies every element of t by c in place.
func (t *Tensor[T]) Scale(c T) {
	if dst, ok := any(t.data).([]float64); ok {
		floats.Scale(float64(c), dst)
		return
	}
	for i := range t.data {
		t.data[i] *= c
	}
}

// Apply returns a new tensor with fn applied to every element.
func (t *Tensor[T]) Apply(fn func(T) T) *Tensor[T] {
	out := make([]T, len(t.data))
	for i, v := range t.data {
		out[i] = fn(v)
	}
	return newTensor(t.shape.Clone(), out)
}

// Mul returns the element-wise (Hadamard) product of t and other.
func (t *Tensor[T]) Mul(other *Tensor[T]) (*Tensor[T], error) {
	if !t.shape.Equal(other.shape) {
		return nil, mismatch("mul", t.shape, other.shape)
	}
	out := t.Clone()
	if dst, ok := any(out.data).([]float64); ok {
		floats.Mul(dst, any(other.data).([]float64))
		return out, nil
	}
	for i, v := range other.data {
		out.data[i] *= v
	}
	return out, nil
}

// AddRowBroadcast adds the single-row tensor row ([1, Last]) to every row of t
// viewed as [Rows, Last].
func (t *Tensor[T]) AddRowBroadcast(row *Tensor[T]) error {
	cols := t.shape.Last()
	if row.NumElements() != cols {
		return &ShapeError{
			Op: "add-broadcast", Left: t.shape, Right: row.shape, AxisL: -1, AxisR: -1,
			Details: fmt.Sprintf("row of %d elements cannot broadcast over last axis %d of %v", row.NumElements(), cols, t.shape),
		}
	}
	for r := 0; r < t.shape.Rows(); r++ {
		dst := t.data[r*cols : (r+1)*cols]
		for j, v := range row.data {
			dst[j] += v
		}
	}
	return nil
}

// SumRows returns the column sums of t viewed as [Rows, Last], shaped [1, Last].
func (t *Tensor[T]) SumRows() *Tensor[T] {
	cols := t.shape.Last()
	out := make([]T, cols)
	for r := 0; r < t.shape.Rows(); r++ {
		for j, v := range t.data[r*cols : (r+1)*cols] {
			out[j] += v
		}
	}
	return newTensor(Shape{1, cols}, out)
}

// Sum returns the sum of all elements.
func (t *Tensor[T]) Sum() T {
	if src, ok := any(t.data).([]float64); ok {
		return T(floats.Sum(src))
	}
	var sum T
	for _, v := range t.data {
		sum += v
	}
	return sum
}
