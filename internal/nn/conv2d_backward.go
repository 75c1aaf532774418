package nn

import (
	"fmt"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Backward computes the three convolution gradients in one sweep over the
// output positions:
//
//   - input: full correlation of the 180°-rotated kernel with grad, written in
//     scatter form: every grad[i, j, oc] is distributed to the input window
//     x[i:i+k, j:j+k, :] it was computed from, weighted by the kernel
//   - weight: correlation of the input with grad,
//     dW[ki, kj, ic, oc] = Σ_{i, j} x[i+ki, j+kj, ic] * grad[i, j, oc]
//   - bias: channel-wise sum, db[oc] = Σ_{i, j} grad[i, j, oc]
//
// References:
//   - "A guide to convolution arithmetic for deep learning" (Dumoulin & Visin, 2016)
func (c *Conv2D[T]) Backward(grad *tensor.Tensor[T]) (Gradients[T], error) {
	x := c.cached
	if x == nil {
		return Gradients[T]{}, fmt.Errorf("conv2d backward: %w", ErrNoCachedInput)
	}
	c.cached = nil

	if !grad.Shape().Equal(c.outShape) {
		return Gradients[T]{}, fmt.Errorf("conv2d backward: %w", &tensor.ShapeError{
			Op: "backward", Left: c.outShape, Right: grad.Shape(), AxisL: -1, AxisR: -1,
		})
	}

	w, cin := c.inShape[1], c.inShape[2]
	hOut, wOut, f := c.outShape[0], c.outShape[1], c.outShape[2]
	k := c.kernel

	in := x.Data()
	kernel := c.weight.Tensor().Data()
	gradData := grad.Data()

	dx := tensor.Zeros[T](c.inShape)
	dW := tensor.Zeros[T](c.weight.Shape())
	db := tensor.Zeros[T](c.bias.Shape())
	dxData, dWData, dbData := dx.Data(), dW.Data(), db.Data()

	for i := 0; i < hOut; i++ {
		for j := 0; j < wOut; j++ {
			// Pre-slice gradient pixel (all filters)
			g := gradData[(i*wOut+j)*f : (i*wOut+j+1)*f]
			for oc, gv := range g {
				dbData[oc] += gv
			}

			for ki := 0; ki < k; ki++ {
				for kj := 0; kj < k; kj++ {
					inOffset := ((i+ki)*w + (j + kj)) * cin
					for ic := 0; ic < cin; ic++ {
						v := in[inOffset+ic]
						kOffset := ((ki*k+kj)*cin + ic) * f
						kRow := kernel[kOffset : kOffset+f]
						dWRow := dWData[kOffset : kOffset+f]

						var acc T
						for oc, gv := range g {
							acc += gv * kRow[oc]
							dWRow[oc] += gv * v
						}
						dxData[inOffset+ic] += acc
					}
				}
			}
		}
	}

	return Gradients[T]{Input: dx, Weights: dW, Bias: db}, nil
}
