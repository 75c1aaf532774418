package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/optim"
	"github.com/born-ml/seqnet/internal/tensor"
)

// recorder is an nn.Updater that applies deltas to a single scalar weight
// and bias.
type recorder struct {
	w, b float64
}

func (r *recorder) UpdateParameters(dw, db *tensor.Tensor[float64]) error {
	if dw != nil {
		r.w += dw.Data()[0]
	}
	if db != nil {
		r.b += db.Data()[0]
	}
	return nil
}

func scalar(v float64) *tensor.Tensor[float64] {
	return tensor.Full[float64](tensor.Shape{1, 1}, v)
}

// Compile-time interface checks.
var (
	_ nn.Optimizer[float64] = (*optim.SGD[float64])(nil)
	_ nn.Optimizer[float32] = (*optim.Adam[float32])(nil)
	_ nn.Optimizer[float64] = nn.GradientDescent[float64]{}
)

func TestSGD_SimpleUpdate(t *testing.T) {
	r := &recorder{w: 2.0}
	sgd := optim.NewSGD[float64](optim.SGDConfig{})

	require.NoError(t, sgd.Step(0, r, scalar(1.0), scalar(0.5), 0.1))

	// x_new = x_old - lr * grad
	assert.InDelta(t, 1.9, r.w, 1e-12)
	assert.InDelta(t, -0.05, r.b, 1e-12)
}

func TestSGD_WithMomentum(t *testing.T) {
	r := &recorder{w: 2.0}
	sgd := optim.NewSGD[float64](optim.SGDConfig{Momentum: 0.9})

	// Step 1: v = 1, w = 2 - 0.1*1 = 1.9
	require.NoError(t, sgd.Step(0, r, scalar(1.0), nil, 0.1))
	assert.InDelta(t, 1.9, r.w, 1e-12)

	// Step 2: v = 0.9*1 + 1 = 1.9, w = 1.9 - 0.19 = 1.71
	require.NoError(t, sgd.Step(0, r, scalar(1.0), nil, 0.1))
	assert.InDelta(t, 1.71, r.w, 1e-12)
	assert.Zero(t, r.b)
}

func TestSGD_MomentumIsPerLayer(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	sgd := optim.NewSGD[float64](optim.SGDConfig{Momentum: 0.5})

	require.NoError(t, sgd.Step(0, a, scalar(1.0), nil, 1))
	require.NoError(t, sgd.Step(1, b, scalar(1.0), nil, 1))
	require.NoError(t, sgd.Step(0, a, scalar(1.0), nil, 1))

	assert.InDelta(t, -2.5, a.w, 1e-12)
	assert.InDelta(t, -1.0, b.w, 1e-12)

	sgd.Reset()
	require.NoError(t, sgd.Step(1, b, scalar(1.0), nil, 1))
	assert.InDelta(t, -2.0, b.w, 1e-12)
}

func TestSGD_ShapeChange(t *testing.T) {
	sgd := optim.NewSGD[float64](optim.SGDConfig{Momentum: 0.9})
	r := &recorder{}

	require.NoError(t, sgd.Step(0, r, scalar(1), nil, 0.1))
	err := sgd.Step(0, r, tensor.Zeros[float64](tensor.Shape{2, 2}), nil, 0.1)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestAdam_FirstStepIsLearningRate(t *testing.T) {
	// With bias correction the first update is lr * g/|g| (up to eps).
	r := &recorder{w: 1.0}
	adam := optim.NewAdam[float64](optim.AdamConfig{})

	require.NoError(t, adam.Step(0, r, scalar(4.0), scalar(-0.25), 0.01))

	assert.InDelta(t, 0.99, r.w, 1e-6)
	assert.InDelta(t, 0.01, r.b, 1e-6)
	assert.Equal(t, 1, adam.Timestep(0))
	assert.Equal(t, 0, adam.Timestep(1))
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	// Minimize f(w) = (w - 3)^2.
	r := &recorder{w: 0}
	adam := optim.NewAdam[float64](optim.AdamConfig{})

	for range 2000 {
		grad := 2 * (r.w - 3)
		require.NoError(t, adam.Step(0, r, scalar(grad), nil, 0.05))
	}

	assert.InDelta(t, 3.0, r.w, 5e-2)
	assert.False(t, math.IsNaN(r.w))
}

func TestAdam_TrainsModel(t *testing.T) {
	model := nn.NewSequential[float64](
		nn.NewInput[float64](1, 1),
		nn.NewDense[float64](1),
	).WithSeed(3)
	require.NoError(t, model.Compile())

	samples := [][]float64{{0}, {1}, {2}, {3}}
	targets := [][]float64{{1}, {3}, {5}, {7}}

	var losses []float64
	err := model.Train(samples, targets, nn.TrainConfig[float64]{
		Epochs:       500,
		BatchSize:    4,
		LearningRate: 0.05,
		Optimizer:    optim.NewAdam[float64](optim.AdamConfig{}),
		OnEpoch:      func(s nn.EpochStats) { losses = append(losses, s.Loss) },
	})
	require.NoError(t, err)
	require.Len(t, losses, 500)
	assert.Less(t, losses[len(losses)-1], 0.01)
}
