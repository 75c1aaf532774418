package nn

import (
	"fmt"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters typically represent weights and biases of layers. The tensor
// is owned by the layer; replicas of a layer share the same *Parameter.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[T tensor.Float] struct {
	name   string            // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor[T] // The parameter tensor
}

// NewParameter creates a new trainable parameter.
func NewParameter[T tensor.Float](name string, t *tensor.Tensor[T]) *Parameter[T] {
	return &Parameter[T]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[T]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[T]) Tensor() *tensor.Tensor[T] {
	return p.tensor
}

// Shape returns the shape of the parameter tensor.
func (p *Parameter[T]) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Add adds delta to the parameter in place. The shapes must match exactly.
func (p *Parameter[T]) Add(delta *tensor.Tensor[T]) error {
	if delta == nil {
		return nil
	}
	if !delta.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("%s update: %w", p.name, &tensor.ShapeError{
			Op: "update", Left: p.tensor.Shape(), Right: delta.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	p.tensor.AddInPlace(delta)
	return nil
}

// Replace swaps in a copy of t after checking that its shape matches exactly.
func (p *Parameter[T]) Replace(t *tensor.Tensor[T]) error {
	if t == nil {
		return fmt.Errorf("%s: nil tensor", p.name)
	}
	if !t.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("set %s: %w", p.name, &tensor.ShapeError{
			Op: "set-parameters", Left: p.tensor.Shape(), Right: t.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	copy(p.tensor.Data(), t.Data())
	return nil
}
