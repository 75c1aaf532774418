package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/internal/tensor"
)

func configuredConv(t *testing.T, filters, kernel int, in tensor.Shape) *Conv2D[float64] {
	t.Helper()
	c := NewConv2D[float64](filters, kernel)
	require.NoError(t, c.ConfigShape(in, testRand()))
	return c
}

// TestConv2D_Creation tests Conv2D layer configuration.
func TestConv2D_Creation(t *testing.T) {
	conv := NewConv2D[float64](32, 3)
	assert.Equal(t, 32, conv.Filters())
	assert.Equal(t, 3, conv.KernelSize())
	assert.Nil(t, conv.OutputShape())
	assert.Equal(t, "Conv2D(filters=32, kernel_size=(3, 3))", conv.String())

	require.NoError(t, conv.ConfigShape(tensor.Shape{64, 64, 3}, testRand()))
	assert.Equal(t, tensor.Shape{62, 62, 32}, conv.OutputShape())
	assert.Equal(t, tensor.Shape{3, 3, 3, 32}, conv.Weight().Shape())
	assert.Equal(t, tensor.Shape{32, 1}, conv.Bias().Shape())

	assert.Panics(t, func() { NewConv2D[float64](0, 3) })
	assert.Panics(t, func() { NewConv2D[float64](1, 0) })
}

func TestConv2D_ConfigShapeErrors(t *testing.T) {
	conv := NewConv2D[float64](4, 3)
	assert.ErrorIs(t, conv.ConfigShape(tensor.Shape{8, 8}, testRand()), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, conv.ConfigShape(tensor.Shape{2, 8, 1}, testRand()), tensor.ErrShapeMismatch)
	assert.Nil(t, conv.Parameters())
}

// TestConv2D_Forward checks a hand-computed valid convolution.
func TestConv2D_Forward(t *testing.T) {
	conv := configuredConv(t, 1, 2, tensor.Shape{3, 3, 1})
	require.NoError(t, conv.SetParameters(
		tensor.Ones[float64](tensor.Shape{2, 2, 1, 1}),
		tensor.MustWith(tensor.Shape{1}, []float64{0.5}),
	))

	x := tensor.MustWith(tensor.Shape{3, 3, 1}, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	out, err := conv.Forward(x)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 2, 1}, out.Shape())
	assert.Equal(t, []float64{12.5, 16.5, 24.5, 28.5}, out.Data())
}

// TestConv2D_ForwardChannels checks channel mixing against a direct
// evaluation of the convolution sum.
func TestConv2D_ForwardChannels(t *testing.T) {
	in := tensor.Shape{5, 4, 2}
	conv := configuredConv(t, 3, 2, in)
	x := tensor.Random[float64](in, -1, 1, testRand())

	out, err := conv.Forward(x)
	require.NoError(t, err)

	w, b := conv.Weight().Tensor(), conv.Bias().Tensor()
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			for oc := 0; oc < 3; oc++ {
				want := b.At(oc, 0)
				for ki := 0; ki < 2; ki++ {
					for kj := 0; kj < 2; kj++ {
						for ic := 0; ic < 2; ic++ {
							want += w.At(ki, kj, ic, oc) * x.At(i+ki, j+kj, ic)
						}
					}
				}
				assert.InDelta(t, want, out.At(i, j, oc), 1e-12, "out[%d,%d,%d]", i, j, oc)
			}
		}
	}
}

func TestConv2D_Backward(t *testing.T) {
	tests := []struct {
		name    string
		in      tensor.Shape
		filters int
		kernel  int
	}{
		{"single channel", tensor.Shape{4, 4, 1}, 1, 2},
		{"multi channel", tensor.Shape{4, 5, 2}, 3, 2},
		{"kernel equals input", tensor.Shape{3, 3, 2}, 2, 3},
		{"1x1 kernel", tensor.Shape{3, 2, 3}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := configuredConv(t, tt.filters, tt.kernel, tt.in)
			x := tensor.Random[float64](tt.in, -1, 1, testRand())
			checkLayerGradients(t, conv, x, conv.Parameters())
		})
	}
}

func TestConv2D_BackwardErrors(t *testing.T) {
	conv := configuredConv(t, 2, 2, tensor.Shape{3, 3, 1})

	_, err := conv.Backward(tensor.Ones[float64](tensor.Shape{2, 2, 2}))
	assert.ErrorIs(t, err, ErrNoCachedInput)

	_, err = conv.Forward(tensor.Ones[float64](tensor.Shape{3, 3, 1}))
	require.NoError(t, err)
	_, err = conv.Backward(tensor.Ones[float64](tensor.Shape{2, 2, 1}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestConv2D_ForwardErrors(t *testing.T) {
	conv := NewConv2D[float64](2, 2)
	_, err := conv.Forward(tensor.Ones[float64](tensor.Shape{3, 3, 1}))
	assert.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, conv.ConfigShape(tensor.Shape{3, 3, 1}, testRand()))
	_, err = conv.Forward(tensor.Ones[float64](tensor.Shape{3, 3, 2}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestConv2D_SetParameters(t *testing.T) {
	conv := configuredConv(t, 32, 3, tensor.Shape{8, 8, 3})

	weights := tensor.Random[float64](tensor.Shape{3, 3, 3, 32}, -1, 1, testRand())
	bias := tensor.Random[float64](tensor.Shape{32}, -1, 1, testRand())
	require.NoError(t, conv.SetParameters(weights, bias))
	assert.Equal(t, weights.Data(), conv.Weight().Tensor().Data())
	assert.Equal(t, bias.Data(), conv.Bias().Tensor().Data())

	tests := []struct {
		name    string
		weights tensor.Shape
		bias    tensor.Shape
	}{
		{"transposed kernel", tensor.Shape{32, 3, 3, 3}, tensor.Shape{32, 1}},
		{"wrong channels", tensor.Shape{3, 3, 1, 32}, tensor.Shape{32, 1}},
		{"wrong bias", tensor.Shape{3, 3, 3, 32}, tensor.Shape{16, 1}},
		{"bias as row", tensor.Shape{3, 3, 3, 32}, tensor.Shape{1, 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := conv.SetParameters(tensor.Zeros[float64](tt.weights), tensor.Zeros[float64](tt.bias))
			assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
			assert.Equal(t, weights.Data(), conv.Weight().Tensor().Data(), "parameters unchanged")
		})
	}
}

func TestConv2D_SetParametersRejectsNil(t *testing.T) {
	conv := configuredConv(t, 2, 1, tensor.Shape{2, 2, 1})
	before := conv.Weight().Tensor().Clone()

	assert.Error(t, conv.SetParameters(nil, tensor.Zeros[float64](tensor.Shape{2, 1})))
	assert.Error(t, conv.SetParameters(tensor.Zeros[float64](tensor.Shape{1, 1, 1, 2}), nil))
	assert.True(t, before.Equal(conv.Weight().Tensor()))
}

func TestConv2D_UpdateParameters(t *testing.T) {
	conv := configuredConv(t, 1, 1, tensor.Shape{2, 2, 1})
	require.NoError(t, conv.SetParameters(tensor.Zeros[float64](tensor.Shape{1, 1, 1, 1}), tensor.Zeros[float64](tensor.Shape{1, 1})))

	require.NoError(t, conv.UpdateParameters(
		tensor.Full[float64](tensor.Shape{1, 1, 1, 1}, 2),
		tensor.Full[float64](tensor.Shape{1, 1}, -1),
	))

	out, err := conv.Forward(tensor.MustWith(tensor.Shape{2, 2, 1}, []float64{1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5, 7}, out.Data())
}

func TestConv2D_ParallelRowsMatchSequential(t *testing.T) {
	// Large enough for the row loop to be sharded.
	in := tensor.Shape{40, 12, 2}
	conv := configuredConv(t, 4, 3, in)
	x := tensor.Random[float64](in, -1, 1, testRand())

	out, err := conv.Forward(x)
	require.NoError(t, err)

	small := configuredConv(t, 4, 3, tensor.Shape{3, 12, 2})
	require.NoError(t, small.SetParameters(conv.Weight().Tensor(), conv.Bias().Tensor()))
	// Every output row only depends on k input rows.
	for i := 0; i < 38; i++ {
		window := tensor.MustWith(tensor.Shape{3, 12, 2}, x.Data()[i*12*2:(i+3)*12*2])
		row, err := small.Forward(window)
		require.NoError(t, err)
		assertSlicesInDelta(t, row.Data(), out.Data()[i*10*4:(i+1)*10*4], 1e-12, "row")
	}
}
