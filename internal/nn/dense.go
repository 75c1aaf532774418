package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Dense implements a fully connected (affine) layer.
//
// Performs the transformation: y = x · W + b
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [in_features, units]
//   - b is the bias row with shape [1, units], broadcast over every row of x
//   - y is the output tensor with shape [..., units]
//
// in_features is only known once the predecessor's output shape is, so
// parameters are allocated by ConfigShape and drawn from U(-0.5, 0.5).
//
// Example:
//
//	model := nn.NewSequential[float64](
//	    nn.NewInput[float64](1, 784),
//	    nn.NewDense[float64](100),
//	    nn.NewSigmoid[float64](),
//	)
type Dense[T tensor.Float] struct {
	units    int
	inShape  tensor.Shape
	outShape tensor.Shape
	weight   *Parameter[T] // [in_features, units]
	bias     *Parameter[T] // [1, units]
	cached   *tensor.Tensor[T]
}

// NewDense creates a Dense layer with the given number of output units.
//
// Panics if units is not positive.
func NewDense[T tensor.Float](units int) *Dense[T] {
	if units <= 0 {
		panic(fmt.Sprintf("dense: invalid units %d", units))
	}
	return &Dense[T]{units: units}
}

// Name returns "dense".
func (l *Dense[T]) Name() string { return "dense" }

// Units returns the number of output units.
func (l *Dense[T]) Units() int { return l.units }

// OutputShape is the input shape with its last axis replaced by units.
func (l *Dense[T]) OutputShape() tensor.Shape { return l.outShape }

// Weight returns the weight parameter (nil until configured).
func (l *Dense[T]) Weight() *Parameter[T] { return l.weight }

// Bias returns the bias parameter (nil until configured).
func (l *Dense[T]) Bias() *Parameter[T] { return l.bias }

// ConfigShape allocates W as [prev.Last(), units] and b as [1, units].
func (l *Dense[T]) ConfigShape(prev tensor.Shape, rng *rand.Rand) error {
	if len(prev) == 0 {
		return fmt.Errorf("dense: empty input shape: %w", tensor.ErrShapeMismatch)
	}
	in := prev.Last()
	l.weight = NewParameter("weight", Uniform[T](tensor.Shape{in, l.units}, initBound, rng))
	l.bias = NewParameter("bias", Uniform[T](tensor.Shape{1, l.units}, initBound, rng))
	l.inShape = prev.Clone()
	l.outShape = prev.WithLast(l.units)
	return nil
}

// Forward computes x · W + b.
func (l *Dense[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if l.weight == nil {
		return nil, fmt.Errorf("dense forward: %w", ErrNotConfigured)
	}
	if !x.Shape().Equal(l.inShape) {
		return nil, fmt.Errorf("dense forward: %w", &tensor.ShapeError{
			Op: "forward", Left: l.inShape, Right: x.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	l.cached = x

	out, err := x.Dot(l.weight.Tensor())
	if err != nil {
		return nil, fmt.Errorf("dense forward: %w", err)
	}
	if err := out.AddRowBroadcast(l.bias.Tensor()); err != nil {
		return nil, fmt.Errorf("dense forward: %w", err)
	}
	return out, nil
}

// Backward computes:
//
//	dx = grad · Wᵀ
//	dW = xᵀ · grad   (leading axes of x and grad folded into rows)
//	db = column sums of grad (grad itself for a single row)
func (l *Dense[T]) Backward(grad *tensor.Tensor[T]) (Gradients[T], error) {
	x := l.cached
	if x == nil {
		return Gradients[T]{}, fmt.Errorf("dense backward: %w", ErrNoCachedInput)
	}
	l.cached = nil

	if !grad.Shape().Equal(l.outShape) {
		return Gradients[T]{}, fmt.Errorf("dense backward: %w", &tensor.ShapeError{
			Op: "backward", Left: l.outShape, Right: grad.Shape(), AxisL: -1, AxisR: -1,
		})
	}

	wT, err := l.weight.Tensor().Transpose()
	if err != nil {
		return Gradients[T]{}, fmt.Errorf("dense backward: %w", err)
	}
	dx, err := grad.Dot(wT)
	if err != nil {
		return Gradients[T]{}, fmt.Errorf("dense backward: %w", err)
	}

	xT, err := x.Matrix().Transpose()
	if err != nil {
		return Gradients[T]{}, fmt.Errorf("dense backward: %w", err)
	}
	dW, err := xT.Dot(grad.Matrix())
	if err != nil {
		return Gradients[T]{}, fmt.Errorf("dense backward: %w", err)
	}

	return Gradients[T]{Input: dx, Weights: dW, Bias: grad.SumRows()}, nil
}

// UpdateParameters adds the deltas to W and b in place.
func (l *Dense[T]) UpdateParameters(deltaW, deltaB *tensor.Tensor[T]) error {
	if l.weight == nil {
		return fmt.Errorf("dense update: %w", ErrNotConfigured)
	}
	if err := l.weight.Add(deltaW); err != nil {
		return fmt.Errorf("dense: %w", err)
	}
	if err := l.bias.Add(deltaB); err != nil {
		return fmt.Errorf("dense: %w", err)
	}
	return nil
}

// SetParameters replaces W and b. Both shapes must match exactly.
func (l *Dense[T]) SetParameters(weights, bias *tensor.Tensor[T]) error {
	if l.weight == nil {
		return fmt.Errorf("dense set parameters: %w", ErrNotConfigured)
	}
	if err := checkParameterShapes(l.weight, l.bias, weights, bias); err != nil {
		return fmt.Errorf("dense: %w", err)
	}
	if err := l.weight.Replace(weights); err != nil {
		return fmt.Errorf("dense: %w", err)
	}
	if err := l.bias.Replace(bias); err != nil {
		return fmt.Errorf("dense: %w", err)
	}
	return nil
}

// Parameters returns [weight, bias], or nil while unconfigured.
func (l *Dense[T]) Parameters() []*Parameter[T] {
	if l.weight == nil {
		return nil
	}
	return []*Parameter[T]{l.weight, l.bias}
}

// Replica shares W and b but has its own forward cache.
func (l *Dense[T]) Replica() Layer[T] {
	r := *l
	r.cached = nil
	return &r
}

// checkParameterShapes validates both replacement tensors before either
// parameter is touched.
func checkParameterShapes[T tensor.Float](w, b *Parameter[T], weights, bias *tensor.Tensor[T]) error {
	if weights == nil || bias == nil {
		return fmt.Errorf("set parameters: weights and bias are required")
	}
	if !weights.Shape().Equal(w.Shape()) {
		return fmt.Errorf("set weight: %w", &tensor.ShapeError{
			Op: "set-parameters", Left: w.Shape(), Right: weights.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	if !bias.Shape().Equal(b.Shape()) {
		return fmt.Errorf("set bias: %w", &tensor.ShapeError{
			Op: "set-parameters", Left: b.Shape(), Right: bias.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	return nil
}
