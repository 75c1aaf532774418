package nn

import (
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Input is the first layer of a model. It declares the shape every sample is
// wrapped in and passes tensors through unchanged in both directions.
//
// Example:
//
//	model := nn.NewSequential[float64](nn.NewInput[float64](1, 784))
type Input[T tensor.Float] struct {
	shape tensor.Shape
}

// NewInput creates an Input layer with the given dimensions.
// A single dimension n is normalized to [n, 1].
//
// Panics on a non-positive dimension.
func NewInput[T tensor.Float](dims ...int) *Input[T] {
	shape := tensor.NewShape(dims...)
	if len(shape) == 0 {
		panic("input: at least one dimension is required")
	}
	if err := shape.Validate(); err != nil {
		panic("input: " + err.Error())
	}
	return &Input[T]{shape: shape}
}

// Name returns "input".
func (l *Input[T]) Name() string { return "input" }

// OutputShape returns the declared input shape.
func (l *Input[T]) OutputShape() tensor.Shape { return l.shape }

// ConfigShape is a no-op: the shape is fixed at construction.
func (l *Input[T]) ConfigShape(tensor.Shape, *rand.Rand) error { return nil }

// Forward returns x unchanged.
func (l *Input[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	return x, nil
}

// Backward returns grad unchanged.
func (l *Input[T]) Backward(grad *tensor.Tensor[T]) (Gradients[T], error) {
	return Gradients[T]{Input: grad}, nil
}

// Replica returns l itself; Input holds no per-sample state.
func (l *Input[T]) Replica() Layer[T] { return l }
