package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/internal/tensor"
)

func TestMaxPool2D_Creation(t *testing.T) {
	pool := NewMaxPool2D[float64](2, 2)
	assert.Equal(t, 2, pool.KernelSize())
	assert.Equal(t, 2, pool.Stride())
	assert.Equal(t, "MaxPool2D(kernel_size=2, stride=2)", pool.String())
	assert.Equal(t, [2]int{14, 14}, pool.ComputeOutputSize(28, 28))
	assert.Equal(t, [2]int{3, 3}, NewMaxPool2D[float64](3, 2).ComputeOutputSize(7, 7))

	assert.Panics(t, func() { NewMaxPool2D[float64](0, 1) })
	assert.Panics(t, func() { NewMaxPool2D[float64](2, 0) })
}

func TestMaxPool2D_ConfigShape(t *testing.T) {
	pool := NewMaxPool2D[float64](2, 2)
	require.NoError(t, pool.ConfigShape(tensor.Shape{28, 28, 3}, nil))
	assert.Equal(t, tensor.Shape{14, 14, 3}, pool.OutputShape())

	assert.ErrorIs(t, NewMaxPool2D[float64](2, 2).ConfigShape(tensor.Shape{1, 4}, nil), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, NewMaxPool2D[float64](3, 1).ConfigShape(tensor.Shape{2, 5, 1}, nil), tensor.ErrShapeMismatch)
}

func TestMaxPool2D_ForwardValues(t *testing.T) {
	pool := NewMaxPool2D[float64](2, 2)
	require.NoError(t, pool.ConfigShape(tensor.Shape{4, 4, 1}, nil))

	// Sequential values 1-16 in a single channel.
	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i + 1)
	}
	out, err := pool.Forward(tensor.MustWith(tensor.Shape{4, 4, 1}, data))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 1}, out.Shape())
	assert.Equal(t, []float64{6, 8, 14, 16}, out.Data())
}

func TestMaxPool2D_ChannelsIndependent(t *testing.T) {
	pool := NewMaxPool2D[float64](2, 2)
	require.NoError(t, pool.ConfigShape(tensor.Shape{2, 2, 2}, nil))

	// Channel 0 peaks at (0, 0), channel 1 at (1, 1).
	x := tensor.MustWith(tensor.Shape{2, 2, 2}, []float64{9, 1, 2, 3, 4, 5, 6, 7})
	out, err := pool.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 7}, out.Data())

	grads, err := pool.Backward(tensor.MustWith(tensor.Shape{1, 1, 2}, []float64{10, 20}))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 0, 0, 0, 0, 0, 0, 20}, grads.Input.Data())
	assert.Nil(t, grads.Weights)
	assert.Nil(t, grads.Bias)
}

func TestMaxPool2D_Backward(t *testing.T) {
	tests := []struct {
		name          string
		in            tensor.Shape
		kernel, stride int
	}{
		{"2x2 stride 2", tensor.Shape{4, 4, 2}, 2, 2},
		{"3x3 stride 2 overlapping", tensor.Shape{7, 5, 1}, 3, 2},
		{"2x2 stride 1", tensor.Shape{3, 3, 3}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewMaxPool2D[float64](tt.kernel, tt.stride)
			require.NoError(t, pool.ConfigShape(tt.in, nil))
			x := tensor.Random[float64](tt.in, -1, 1, testRand())
			checkLayerGradients(t, pool, x, nil)
		})
	}
}

func TestMaxPool2D_Errors(t *testing.T) {
	pool := NewMaxPool2D[float64](2, 2)
	_, err := pool.Forward(tensor.Zeros[float64](tensor.Shape{2, 2, 1}))
	assert.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, pool.ConfigShape(tensor.Shape{2, 2, 1}, nil))
	_, err = pool.Backward(tensor.Zeros[float64](tensor.Shape{1, 1, 1}))
	assert.ErrorIs(t, err, ErrNoCachedInput)

	_, err = pool.Forward(tensor.Zeros[float64](tensor.Shape{3, 3, 1}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = pool.Forward(tensor.Zeros[float64](tensor.Shape{2, 2, 1}))
	require.NoError(t, err)
	_, err = pool.Backward(tensor.Zeros[float64](tensor.Shape{2, 1, 1}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestMaxPool2D_InSequential(t *testing.T) {
	model := NewSequential[float64](
		NewInput[float64](6, 6, 1),
		NewConv2D[float64](2, 3),
		NewReLU[float64](),
		NewMaxPool2D[float64](2, 2),
		NewFlatten[float64](),
		NewDense[float64](1),
	).WithRand(testRand())
	require.NoError(t, model.Compile())
	assert.Equal(t, tensor.Shape{2, 2, 2}, model.Layer(3).OutputShape())
	assert.Equal(t, tensor.Shape{1, 1}, model.OutputShape())

	samples := [][]float64{make([]float64, 36)}
	for i := range samples[0] {
		samples[0][i] = float64(i) / 36
	}
	err := model.Train(samples, [][]float64{{1}}, TrainConfig[float64]{Epochs: 3, BatchSize: 1, LearningRate: 0.01})
	require.NoError(t, err)

	replica, ok := model.Layer(3).Replica().(*MaxPool2D[float64])
	require.True(t, ok)
	assert.NotSame(t, model.Layer(3), replica)
	assert.Equal(t, tensor.Shape{2, 2, 2}, replica.OutputShape())
}
