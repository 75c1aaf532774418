package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/nn"
	"github.com/born-ml/seqnet/optim"
	"github.com/born-ml/seqnet/tensor"
)

func TestSequential_PublicAPI(t *testing.T) {
	model := nn.NewSequential[float64](
		nn.NewInput[float64](1, 3),
		nn.NewDense[float64](2),
		nn.NewReLU[float64](),
	)

	_, err := model.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, nn.ErrNotCompiled)

	require.NoError(t, model.Compile())
	assert.ErrorIs(t, model.Compile(), nn.ErrAlreadyCompiled)

	w := tensor.MustWith[float64](tensor.Shape{3, 2}, []float64{1, 0, 0, 1, 1, -1})
	b := tensor.MustWith[float64](tensor.Shape{1, 2}, []float64{0.5, 0})
	require.NoError(t, model.SetParameters(1, w, b))

	out, err := model.Predict([][]float64{{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4.5, 0}}, out)
}

func TestTrain_PublicAPI(t *testing.T) {
	model := nn.NewSequential[float64](
		nn.NewInput[float64](1, 1),
		nn.NewDense[float64](1),
	).WithSeed(nn.DefaultSeed)
	require.NoError(t, model.Compile())

	samples := [][]float64{{0}, {1}, {2}, {3}}
	targets := [][]float64{{1}, {3}, {5}, {7}}

	var losses []float64
	err := model.Train(samples, targets, nn.TrainConfig[float64]{
		Epochs:       300,
		BatchSize:    4,
		LearningRate: 0.05,
		Optimizer:    optim.NewAdam[float64](optim.AdamConfig{}),
		OnEpoch:      func(s nn.EpochStats) { losses = append(losses, s.Loss) },
	})
	require.NoError(t, err)
	require.Len(t, losses, 300)
	assert.Less(t, losses[len(losses)-1], losses[0])
}

func TestOperatorByName_PublicAPI(t *testing.T) {
	op, err := nn.OperatorByName("relu6")
	require.NoError(t, err)
	assert.Equal(t, 6.0, op.Activation(10))
}
