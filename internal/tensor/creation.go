package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Panics on a non-positive dimension.
//
// Example:
//
//	t := tensor.Zeros[float32](tensor.Shape{3, 4})
func Zeros[T Float](shape Shape) *Tensor[T] {
	shape = NewShape(shape...)
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("invalid shape: %v", err))
	}
	// Data is already zero-initialized by make()
	return newTensor(shape, make([]T, shape.NumElements()))
}

// Ones creates a tensor filled with ones.
func Ones[T Float](shape Shape) *Tensor[T] {
	return Full[T](shape, 1)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float64](tensor.Shape{3, 3}, 3.14)
func Full[T Float](shape Shape, value T) *Tensor[T] {
	t := Zeros[T](shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Random creates a tensor with values uniformly distributed in [low, high).
//
// The random source is explicit so that weight initialization is
// reproducible from a seed.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	w := tensor.Random[float64](tensor.Shape{784, 100}, -0.5, 0.5, rng)
func Random[T Float](shape Shape, low, high T, rng *rand.Rand) *Tensor[T] {
	t := Zeros[T](shape)
	span := float64(high - low)
	for i := range t.data {
		t.data[i] = low + T(rng.Float64()*span)
	}
	return t
}

// With creates a tensor of the given shape holding a copy of data.
//
// Returns an error wrapping ErrShapeMismatch if len(data) differs from the
// number of elements of shape.
func With[T Float](shape Shape, data []T) (*Tensor[T], error) {
	shape = NewShape(shape...)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("with: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, &ShapeError{
			Op: "with", Left: shape, AxisL: -1, AxisR: -1,
			Details: fmt.Sprintf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data)),
		}
	}
	buf := make([]T, len(data))
	copy(buf, data)
	return newTensor(shape, buf), nil
}

// MustWith is like With but panics on error. Intended for literals in tests
// and examples.
func MustWith[T Float](shape Shape, data []T) *Tensor[T] {
	t, err := With(shape, data)
	if err != nil {
		panic(err)
	}
	return t
}

// Eye creates a 2D identity matrix.
func Eye[T Float](n int) *Tensor[T] {
	t := Zeros[T](Shape{n, n})
	for i := 0; i < n; i++ {
		t.data[i*n+i] = 1
	}
	return t
}
