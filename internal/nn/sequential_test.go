package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/internal/tensor"
)

func xorModel(seed int64) *Sequential[float64] {
	return NewSequential[float64](
		NewInput[float64](1, 2),
		NewDense[float64](8),
		NewTanh[float64](),
		NewDense[float64](1),
		NewSigmoid[float64](),
	).WithSeed(seed)
}

func TestSequential_Compile(t *testing.T) {
	model := xorModel(1)
	assert.False(t, model.Compiled())
	assert.Equal(t, 5, model.Len())
	assert.Equal(t, tensor.Shape{1, 2}, model.InputShape())

	require.NoError(t, model.Compile())
	assert.True(t, model.Compiled())
	assert.Equal(t, tensor.Shape{1, 1}, model.OutputShape())
	assert.Equal(t, tensor.Shape{1, 8}, model.Layer(2).OutputShape())

	// 2*8 + 8 + 8*1 + 1
	assert.Equal(t, 33, model.NumParameters())
	assert.Len(t, model.Parameters(), 4)
}

func TestSequential_CompileTwiceFails(t *testing.T) {
	model := xorModel(1)
	require.NoError(t, model.Compile())
	assert.ErrorIs(t, model.Compile(), ErrAlreadyCompiled)
}

func TestSequential_CompileErrors(t *testing.T) {
	assert.ErrorIs(t, NewSequential[float64]().Compile(), ErrPrecondition)

	// A first layer without an output shape cannot start the model.
	noInput := NewSequential[float64](NewDense[float64](3), NewReLU[float64]())
	assert.ErrorIs(t, noInput.Compile(), ErrPrecondition)
	assert.False(t, noInput.Compiled())

	badConv := NewSequential[float64](NewInput[float64](1, 10), NewConv2D[float64](2, 3))
	assert.ErrorIs(t, badConv.Compile(), tensor.ErrShapeMismatch)
}

func TestSequential_SameSeedSameParameters(t *testing.T) {
	a, b, c := xorModel(5), xorModel(5), xorModel(6)
	require.NoError(t, a.Compile())
	require.NoError(t, b.Compile())
	require.NoError(t, c.Compile())

	for key, w := range a.StateDict() {
		assert.Equal(t, w.Data(), b.StateDict()[key].Data(), key)
	}
	assert.NotEqual(t, a.StateDict()["1.weight"].Data(), c.StateDict()["1.weight"].Data())
}

func TestSequential_AddChaining(t *testing.T) {
	model := NewSequential[float64]().
		Add(NewInput[float64](1, 784)).
		Add(NewDense[float64](100)).
		Add(NewSigmoid[float64]()).
		Add(NewDense[float64](10))
	require.NoError(t, model.Compile())
	assert.Equal(t, tensor.Shape{1, 10}, model.OutputShape())

	assert.Panics(t, func() { model.Add(NewReLU[float64]()) })
	assert.Panics(t, func() { model.Layer(4) })
}

func TestSequential_PredictBeforeCompileFails(t *testing.T) {
	_, err := xorModel(1).Predict([][]float64{{0, 1}})
	assert.ErrorIs(t, err, ErrNotCompiled)

	_, err = xorModel(1).Forward(tensor.Zeros[float64](tensor.Shape{1, 2}))
	assert.ErrorIs(t, err, ErrNotCompiled)
}

func TestSequential_Predict(t *testing.T) {
	model := NewSequential[float64](NewInput[float64](1, 2), NewDense[float64](2))
	require.NoError(t, model.Compile())
	require.NoError(t, model.SetParameters(1,
		tensor.MustWith(tensor.Shape{2, 2}, []float64{1, 0, 0, 2}),
		tensor.MustWith(tensor.Shape{1, 2}, []float64{1, 1}),
	))

	out, err := model.Predict([][]float64{{1, 2}, {3, 4}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 5}, {4, 9}, {1, 1}}, out)

	_, err = model.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	out, err = model.Predict(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSequential_SetParameters(t *testing.T) {
	model := xorModel(1)
	require.NoError(t, model.Compile())

	err := model.SetParameters(2, nil, nil)
	assert.ErrorIs(t, err, tensor.ErrUnsupported, "tanh has no parameters")

	err = model.SetParameters(9, nil, nil)
	assert.ErrorIs(t, err, tensor.ErrOutOfRange)

	err = model.SetParameters(1, tensor.Zeros[float64](tensor.Shape{8, 2}), tensor.Zeros[float64](tensor.Shape{1, 8}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestSequential_ConvPipeline(t *testing.T) {
	model := NewSequential[float64](
		NewInput[float64](6, 6, 3),
		NewConv2D[float64](4, 3),
		NewReLU[float64](),
		NewFlatten[float64](),
		NewDense[float64](2),
	)
	require.NoError(t, model.Compile())
	assert.Equal(t, tensor.Shape{4, 4, 4}, model.Layer(2).OutputShape())
	assert.Equal(t, tensor.Shape{1, 64}, model.Layer(3).OutputShape())

	sample := tensor.Random[float64](tensor.Shape{6, 6, 3}, 0, 1, testRand()).Data()
	out, err := model.Predict([][]float64{sample})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0], 2)
}

func TestSequential_StateDictRoundTrip(t *testing.T) {
	src, dst := xorModel(1), xorModel(2)
	require.NoError(t, src.Compile())
	require.NoError(t, dst.Compile())

	state := src.StateDict()
	assert.ElementsMatch(t, []string{"1.weight", "1.bias", "3.weight", "3.bias"}, keys(state))

	require.NoError(t, dst.LoadStateDict(state))

	samples := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	want, err := src.Predict(samples)
	require.NoError(t, err)
	got, err := dst.Predict(samples)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Loaded values are copies.
	state["1.bias"].Data()[0] = 100
	assert.NotEqual(t, 100.0, dst.StateDict()["1.bias"].Data()[0])
}

func TestSequential_LoadStateDictErrors(t *testing.T) {
	model := xorModel(1)
	assert.ErrorIs(t, model.LoadStateDict(nil), ErrNotCompiled)
	require.NoError(t, model.Compile())

	good := xorModel(2)
	require.NoError(t, good.Compile())
	before := model.StateDict()["1.weight"].Clone()

	missing := good.StateDict()
	delete(missing, "3.bias")
	assert.ErrorContains(t, model.LoadStateDict(missing), `missing key "3.bias"`)

	extra := good.StateDict()
	extra["7.weight"] = tensor.Zeros[float64](tensor.Shape{1, 1})
	assert.ErrorContains(t, model.LoadStateDict(extra), `unexpected key "7.weight"`)

	wrong := good.StateDict()
	wrong["3.weight"] = tensor.Zeros[float64](tensor.Shape{1, 8})
	assert.ErrorIs(t, model.LoadStateDict(wrong), tensor.ErrShapeMismatch)

	nilEntry := good.StateDict()
	nilEntry["3.bias"] = nil
	assert.NotPanics(t, func() {
		assert.ErrorContains(t, model.LoadStateDict(nilEntry), `"3.bias": nil tensor`)
	})

	assert.True(t, before.Equal(model.StateDict()["1.weight"]), "failed loads leave parameters untouched")
}

func TestSequential_Summary(t *testing.T) {
	model := xorModel(1)
	require.NoError(t, model.Compile())

	summary := model.Summary()
	require.Len(t, summary, 5)
	assert.Equal(t, LayerSummary{Index: 1, Name: "dense", OutputShape: tensor.Shape{1, 8}, Parameters: 24}, summary[1])
	assert.Equal(t, LayerSummary{Index: 4, Name: "sigmoid", OutputShape: tensor.Shape{1, 1}, Parameters: 0}, summary[4])
	assert.Contains(t, model.String(), "(3): dense -> [1 1]")
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
