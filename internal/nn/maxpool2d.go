package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer over channel-last images.
//
// Max pooling reduces spatial dimensions by taking the maximum value
// in each window, per channel. It has no learnable parameters.
//
// Input shape:  [height, width, channels]
// Output shape: [out_height, out_width, channels]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
//
// Example:
//
//	model := nn.NewSequential[float64](
//	    nn.NewInput[float64](28, 28, 1),
//	    nn.NewConv2D[float64](8, 3), // -> [26, 26, 8]
//	    nn.NewReLU[float64](),
//	    nn.NewMaxPool2D[float64](2, 2), // -> [13, 13, 8]
//	    nn.NewFlatten[float64](),
//	    nn.NewDense[float64](10),
//	)
type MaxPool2D[T tensor.Float] struct {
	kernelSize int
	stride     int

	inShape  tensor.Shape
	outShape tensor.Shape

	// argmax holds, per output element, the flat input index that won.
	argmax []int
}

// NewMaxPool2D creates a new 2D max pooling layer.
//
// Panics if kernelSize or stride is not positive.
func NewMaxPool2D[T tensor.Float](kernelSize, stride int) *MaxPool2D[T] {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D[T]{kernelSize: kernelSize, stride: stride}
}

// Name returns "maxpool2d".
func (m *MaxPool2D[T]) Name() string { return "maxpool2d" }

// KernelSize returns the pooling kernel size.
func (m *MaxPool2D[T]) KernelSize() int { return m.kernelSize }

// Stride returns the stride.
func (m *MaxPool2D[T]) Stride() int { return m.stride }

// OutputShape returns the pooled shape once configured.
func (m *MaxPool2D[T]) OutputShape() tensor.Shape { return m.outShape }

// ComputeOutputSize computes output spatial dimensions for given input size.
//
// Returns: [out_height, out_width].
func (m *MaxPool2D[T]) ComputeOutputSize(inputH, inputW int) [2]int {
	outH := (inputH-m.kernelSize)/m.stride + 1
	outW := (inputW-m.kernelSize)/m.stride + 1
	return [2]int{outH, outW}
}

// ConfigShape expects a [H, W, C] predecessor at least one window large.
func (m *MaxPool2D[T]) ConfigShape(prev tensor.Shape, _ *rand.Rand) error {
	if len(prev) != 3 {
		return fmt.Errorf("maxpool2d: expected [height, width, channels] input, got %v: %w", prev, tensor.ErrShapeMismatch)
	}
	if prev[0] < m.kernelSize || prev[1] < m.kernelSize {
		return fmt.Errorf("maxpool2d: kernel %d larger than input %dx%d: %w",
			m.kernelSize, prev[0], prev[1], tensor.ErrShapeMismatch)
	}
	out := m.ComputeOutputSize(prev[0], prev[1])
	m.inShape = prev.Clone()
	m.outShape = tensor.Shape{out[0], out[1], prev[2]}
	return nil
}

// Forward takes the per-channel maximum of every window and remembers where
// it came from.
func (m *MaxPool2D[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if m.outShape == nil {
		return nil, fmt.Errorf("maxpool2d forward: %w", ErrNotConfigured)
	}
	if !x.Shape().Equal(m.inShape) {
		return nil, fmt.Errorf("maxpool2d forward: %w", &tensor.ShapeError{
			Op: "forward", Left: m.inShape, Right: x.Shape(), AxisL: -1, AxisR: -1,
		})
	}

	w, c := m.inShape[1], m.inShape[2]
	hOut, wOut := m.outShape[0], m.outShape[1]
	in := x.Data()

	out := tensor.Zeros[T](m.outShape)
	outData := out.Data()
	argmax := make([]int, len(outData))

	for i := 0; i < hOut; i++ {
		for j := 0; j < wOut; j++ {
			for ch := 0; ch < c; ch++ {
				best := ((i*m.stride)*w+j*m.stride)*c + ch
				for ki := 0; ki < m.kernelSize; ki++ {
					for kj := 0; kj < m.kernelSize; kj++ {
						idx := ((i*m.stride+ki)*w+(j*m.stride+kj))*c + ch
						if in[idx] > in[best] {
							best = idx
						}
					}
				}
				o := (i*wOut+j)*c + ch
				outData[o] = in[best]
				argmax[o] = best
			}
		}
	}

	m.argmax = argmax
	return out, nil
}

// Backward routes each output gradient to the input element that produced
// the maximum. Overlapping windows accumulate.
func (m *MaxPool2D[T]) Backward(grad *tensor.Tensor[T]) (Gradients[T], error) {
	if m.argmax == nil {
		return Gradients[T]{}, fmt.Errorf("maxpool2d backward: %w", ErrNoCachedInput)
	}
	if !grad.Shape().Equal(m.outShape) {
		return Gradients[T]{}, fmt.Errorf("maxpool2d backward: %w", &tensor.ShapeError{
			Op: "backward", Left: m.outShape, Right: grad.Shape(), AxisL: -1, AxisR: -1,
		})
	}
	argmax := m.argmax
	m.argmax = nil

	dx := tensor.Zeros[T](m.inShape)
	dxData := dx.Data()
	for o, g := range grad.Data() {
		dxData[argmax[o]] += g
	}
	return Gradients[T]{Input: dx}, nil
}

// Replica returns a pooling layer with the same configuration and its own
// argmax cache.
func (m *MaxPool2D[T]) Replica() Layer[T] {
	r := *m
	r.argmax = nil
	return &r
}

// String returns a string representation of the layer.
func (m *MaxPool2D[T]) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d)", m.kernelSize, m.stride)
}
