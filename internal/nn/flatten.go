package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Flatten folds its input into a single row, [d0, ..., dn] -> [1, d0*...*dn],
// so that convolution feature maps can feed Dense layers.
type Flatten[T tensor.Float] struct {
	inShape  tensor.Shape
	outShape tensor.Shape
}

// NewFlatten creates a Flatten layer.
func NewFlatten[T tensor.Float]() *Flatten[T] {
	return &Flatten[T]{}
}

// Name returns "flatten".
func (l *Flatten[T]) Name() string { return "flatten" }

// OutputShape returns [1, N] once configured.
func (l *Flatten[T]) OutputShape() tensor.Shape { return l.outShape }

// ConfigShape records the shape to restore in Backward.
func (l *Flatten[T]) ConfigShape(prev tensor.Shape, _ *rand.Rand) error {
	if len(prev) == 0 {
		return fmt.Errorf("flatten: empty input shape: %w", tensor.ErrShapeMismatch)
	}
	l.inShape = prev.Clone()
	l.outShape = tensor.Shape{1, prev.NumElements()}
	return nil
}

// Forward reshapes x to [1, N].
func (l *Flatten[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if l.outShape == nil {
		return nil, fmt.Errorf("flatten forward: %w", ErrNotConfigured)
	}
	if !x.Shape().Equal(l.inShape) {
		return nil, fmt.Errorf("flatten forward: %w", &tensor.ShapeError{
			Op: "forward", Left: l.inShape, Right: x.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	return x.Reshape(l.outShape)
}

// Backward restores the input shape.
func (l *Flatten[T]) Backward(grad *tensor.Tensor[T]) (Gradients[T], error) {
	if l.inShape == nil {
		return Gradients[T]{}, fmt.Errorf("flatten backward: %w", ErrNotConfigured)
	}
	dx, err := grad.Reshape(l.inShape)
	if err != nil {
		return Gradients[T]{}, fmt.Errorf("flatten backward: %w", err)
	}
	return Gradients[T]{Input: dx}, nil
}

// Replica returns l itself; Flatten holds no per-sample state.
func (l *Flatten[T]) Replica() Layer[T] { return l }
