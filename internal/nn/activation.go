package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Activation applies an Operator element-wise.
//
// Forward caches its input; Backward drains the cache and returns
// derivative(input) * grad. The derivative is evaluated on the cached raw
// input, never on the activation output.
//
// Example:
//
//	sigmoid := nn.NewSigmoid[float64]()
//	relu := nn.NewActivation[float64](nn.ReLUOp{})
type Activation[T tensor.Float] struct {
	op     Operator
	shape  tensor.Shape      // nil until configured
	cached *tensor.Tensor[T] // input of the last Forward, drained by Backward
}

// NewActivation creates an activation layer around op.
func NewActivation[T tensor.Float](op Operator) *Activation[T] {
	if op == nil {
		panic("activation: nil operator")
	}
	return &Activation[T]{op: op}
}

// NewSigmoid creates a logistic activation layer.
func NewSigmoid[T tensor.Float]() *Activation[T] { return NewActivation[T](SigmoidOp{}) }

// NewReLU creates a rectified linear activation layer.
func NewReLU[T tensor.Float]() *Activation[T] { return NewActivation[T](ReLUOp{}) }

// NewReLU6 creates a rectified linear activation layer clipped at 6.
func NewReLU6[T tensor.Float]() *Activation[T] { return NewActivation[T](ReLU6Op{}) }

// NewTanh creates a hyperbolic tangent activation layer.
func NewTanh[T tensor.Float]() *Activation[T] { return NewActivation[T](TanhOp{}) }

// Name returns the operator name.
func (a *Activation[T]) Name() string { return a.op.Name() }

// Operator returns the wrapped operator.
func (a *Activation[T]) Operator() Operator { return a.op }

// OutputShape equals the configured input shape.
func (a *Activation[T]) OutputShape() tensor.Shape { return a.shape }

// ConfigShape records the predecessor's output shape.
func (a *Activation[T]) ConfigShape(prev tensor.Shape, _ *rand.Rand) error {
	if len(prev) == 0 {
		return fmt.Errorf("%s: empty input shape: %w", a.op.Name(), tensor.ErrShapeMismatch)
	}
	a.shape = prev.Clone()
	return nil
}

// Forward applies the activation.
func (a *Activation[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if a.shape == nil {
		return nil, fmt.Errorf("%s forward: %w", a.op.Name(), ErrNotConfigured)
	}
	if !x.Shape().Equal(a.shape) {
		return nil, fmt.Errorf("%s forward: %w", a.op.Name(), &tensor.ShapeError{
			Op: "forward", Left: a.shape, Right: x.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	a.cached = x
	return x.Apply(func(v T) T { return T(a.op.Activation(float64(v))) }), nil
}

// Backward returns derivative(cached input) * grad.
func (a *Activation[T]) Backward(grad *tensor.Tensor[T]) (Gradients[T], error) {
	x := a.cached
	if x == nil {
		return Gradients[T]{}, fmt.Errorf("%s backward: %w", a.op.Name(), ErrNoCachedInput)
	}
	a.cached = nil

	d := x.Apply(func(v T) T { return T(a.op.Derivative(float64(v))) })
	dx, err := d.Mul(grad)
	if err != nil {
		return Gradients[T]{}, fmt.Errorf("%s backward: %w", a.op.Name(), err)
	}
	return Gradients[T]{Input: dx}, nil
}

// Replica returns a copy with its own (empty) cache.
func (a *Activation[T]) Replica() Layer[T] {
	return &Activation[T]{op: a.op, shape: a.shape.Clone()}
}
