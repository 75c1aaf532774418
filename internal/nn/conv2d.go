package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// Conv2D is a 2D convolutional layer over channel-last images.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [height, width, in_channels]
// Weight shape: [kernel, kernel, in_channels, filters]
// Bias shape:   [filters, 1]
// Output shape: [height-kernel+1, width-kernel+1, filters]
//
// Stride is 1 and there is no padding. Parameters are allocated by
// ConfigShape once in_channels is known, drawn from U(-0.5, 0.5), and can be
// replaced with pre-trained values through SetParameters.
//
// Example:
//
//	model := nn.NewSequential[float64](
//	    nn.NewInput[float64](64, 64, 3),
//	    nn.NewConv2D[float64](32, 3), // -> [62, 62, 32]
//	    nn.NewReLU[float64](),
//	)
type Conv2D[T tensor.Float] struct {
	filters int
	kernel  int

	inShape  tensor.Shape // [H, W, Cin]
	outShape tensor.Shape // [H-k+1, W-k+1, filters]

	weight *Parameter[T] // [kernel, kernel, in_channels, filters]
	bias   *Parameter[T] // [filters, 1]

	cached *tensor.Tensor[T]
}

// NewConv2D creates a convolution with the given number of filters and a
// square kernel.
//
// Panics if filters or kernel is not positive.
func NewConv2D[T tensor.Float](filters, kernel int) *Conv2D[T] {
	if filters <= 0 {
		panic(fmt.Sprintf("conv2d: invalid filters %d", filters))
	}
	if kernel <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernel))
	}
	return &Conv2D[T]{filters: filters, kernel: kernel}
}

// Name returns "conv2d".
func (c *Conv2D[T]) Name() string { return "conv2d" }

// Filters returns the number of output channels.
func (c *Conv2D[T]) Filters() int { return c.filters }

// KernelSize returns the kernel extent.
func (c *Conv2D[T]) KernelSize() int { return c.kernel }

// OutputShape returns [H-k+1, W-k+1, filters] once configured.
func (c *Conv2D[T]) OutputShape() tensor.Shape { return c.outShape }

// Weight returns the weight parameter (nil until configured).
func (c *Conv2D[T]) Weight() *Parameter[T] { return c.weight }

// Bias returns the bias parameter (nil until configured).
func (c *Conv2D[T]) Bias() *Parameter[T] { return c.bias }

// ConfigShape expects a [H, W, C] predecessor.
func (c *Conv2D[T]) ConfigShape(prev tensor.Shape, rng *rand.Rand) error {
	if len(prev) != 3 {
		return fmt.Errorf("conv2d: expected [height, width, channels] input, got %v: %w", prev, tensor.ErrShapeMismatch)
	}
	h, w, cin := prev[0], prev[1], prev[2]
	if h < c.kernel || w < c.kernel {
		return fmt.Errorf("conv2d: kernel %d larger than input %dx%d: %w", c.kernel, h, w, tensor.ErrShapeMismatch)
	}

	c.weight = NewParameter("weight", Uniform[T](tensor.Shape{c.kernel, c.kernel, cin, c.filters}, initBound, rng))
	c.bias = NewParameter("bias", Uniform[T](tensor.Shape{c.filters, 1}, initBound, rng))
	c.inShape = prev.Clone()
	c.outShape = tensor.Shape{h - c.kernel + 1, w - c.kernel + 1, c.filters}
	return nil
}

// Forward computes
//
//	out[i, j, oc] = Σ_{ki, kj, ic} weight[ki, kj, ic, oc] * x[i+ki, j+kj, ic] + bias[oc]
func (c *Conv2D[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if c.weight == nil {
		return nil, fmt.Errorf("conv2d forward: %w", ErrNotConfigured)
	}
	if !x.Shape().Equal(c.inShape) {
		return nil, fmt.Errorf("conv2d forward: %w", &tensor.ShapeError{
			Op: "forward", Left: c.inShape, Right: x.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	c.cached = x

	w, cin := c.inShape[1], c.inShape[2]
	hOut, wOut, f := c.outShape[0], c.outShape[1], c.outShape[2]
	k := c.kernel

	in := x.Data()
	kernel := c.weight.Tensor().Data()
	bias := c.bias.Tensor().Data()

	out := tensor.Zeros[T](c.outShape)
	outData := out.Data()

	// Output rows are independent.
	parallel.For(hOut, func(i int) {
		for j := 0; j < wOut; j++ {
			// Pre-slice output pixel (all filters)
			dst := outData[(i*wOut+j)*f : (i*wOut+j+1)*f]
			for ki := 0; ki < k; ki++ {
				for kj := 0; kj < k; kj++ {
					inOffset := ((i+ki)*w + (j + kj)) * cin
					for ic := 0; ic < cin; ic++ {
						v := in[inOffset+ic]
						kOffset := ((ki*k+kj)*cin + ic) * f
						row := kernel[kOffset : kOffset+f]
						for oc, kv := range row {
							dst[oc] += kv * v
						}
					}
				}
			}
			for oc := range dst {
				dst[oc] += bias[oc]
			}
		}
	}, parallel.DefaultConfig())

	return out, nil
}

// UpdateParameters adds the deltas to the kernel and bias in place.
func (c *Conv2D[T]) UpdateParameters(deltaW, deltaB *tensor.Tensor[T]) error {
	if c.weight == nil {
		return fmt.Errorf("conv2d update: %w", ErrNotConfigured)
	}
	if err := c.weight.Add(deltaW); err != nil {
		return fmt.Errorf("conv2d: %w", err)
	}
	if err := c.bias.Add(deltaB); err != nil {
		return fmt.Errorf("conv2d: %w", err)
	}
	return nil
}

// SetParameters replaces kernel and bias with pre-trained values.
//
// weights must be [kernel, kernel, in_channels, filters] and bias
// [filters, 1] (a rank-1 [filters] tensor normalizes to this).
func (c *Conv2D[T]) SetParameters(weights, bias *tensor.Tensor[T]) error {
	if c.weight == nil {
		return fmt.Errorf("conv2d set parameters: %w", ErrNotConfigured)
	}
	if err := checkParameterShapes(c.weight, c.bias, weights, bias); err != nil {
		return fmt.Errorf("conv2d: %w", err)
	}
	if err := c.weight.Replace(weights); err != nil {
		return fmt.Errorf("conv2d: %w", err)
	}
	if err := c.bias.Replace(bias); err != nil {
		return fmt.Errorf("conv2d: %w", err)
	}
	return nil
}

// Parameters returns [weight, bias], or nil while unconfigured.
func (c *Conv2D[T]) Parameters() []*Parameter[T] {
	if c.weight == nil {
		return nil
	}
	return []*Parameter[T]{c.weight, c.bias}
}

// Replica shares kernel and bias but has its own forward cache.
func (c *Conv2D[T]) Replica() Layer[T] {
	r := *c
	r.cached = nil
	return &r
}

// String returns a string representation of the layer.
func (c *Conv2D[T]) String() string {
	return fmt.Sprintf("Conv2D(filters=%d, kernel_size=(%d, %d))", c.filters, c.kernel, c.kernel)
}
