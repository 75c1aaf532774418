package nn

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/born-ml/seqnet/internal/tensor"
)

// DefaultSeed seeds the parameter initializer when no other seed is given.
const DefaultSeed = 42

// Sequential is an ordered stack of layers trained as one model.
//
// Each layer's output becomes the next layer's input. The first layer fixes
// the input shape (typically an Input layer); every following layer is sized
// from its predecessor by Compile.
//
// Example:
//
//	model := nn.NewSequential[float64](
//	    nn.NewInput[float64](1, 2),
//	    nn.NewDense[float64](8),
//	    nn.NewTanh[float64](),
//	    nn.NewDense[float64](1),
//	    nn.NewSigmoid[float64](),
//	)
//	if err := model.Compile(); err != nil { ... }
//	err := model.Train(samples, targets, nn.TrainConfig[float64]{
//	    Epochs: 10000, BatchSize: 1, LearningRate: 0.1,
//	})
type Sequential[T tensor.Float] struct {
	layers   []Layer[T]
	compiled bool
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewSequential creates a model from the given layers, seeded with
// DefaultSeed and logging through slog.Default().
func NewSequential[T tensor.Float](layers ...Layer[T]) *Sequential[T] {
	return &Sequential[T]{
		layers: layers,
		rng:    rand.New(rand.NewSource(DefaultSeed)), //nolint:gosec // parameter init, not security
		logger: slog.Default(),
	}
}

// WithSeed reseeds the parameter initializer. It only has an effect before
// Compile.
func (s *Sequential[T]) WithSeed(seed int64) *Sequential[T] {
	s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // parameter init, not security
	return s
}

// WithRand makes Compile draw initial parameters from rng.
func (s *Sequential[T]) WithRand(rng *rand.Rand) *Sequential[T] {
	s.rng = rng
	return s
}

// WithLogger sets the logger used for compile and training progress.
func (s *Sequential[T]) WithLogger(logger *slog.Logger) *Sequential[T] {
	s.logger = logger
	return s
}

// Add appends a layer to the stack.
//
// This allows building models incrementally:
//
//	model := nn.NewSequential[float64]().
//	    Add(nn.NewInput[float64](1, 784)).
//	    Add(nn.NewDense[float64](100)).
//	    Add(nn.NewSigmoid[float64]())
//
// Panics if the model is already compiled.
func (s *Sequential[T]) Add(layer Layer[T]) *Sequential[T] {
	if s.compiled {
		panic("Sequential.Add: model is already compiled")
	}
	s.layers = append(s.layers, layer)
	return s
}

// Compile configures every layer after the first with its predecessor's
// output shape, allocating and initializing parameters.
//
// Compile succeeds at most once.
func (s *Sequential[T]) Compile() error {
	if s.compiled {
		return fmt.Errorf("compile: %w", ErrAlreadyCompiled)
	}
	if len(s.layers) == 0 {
		return fmt.Errorf("compile: model has no layers: %w", ErrPrecondition)
	}

	shape := s.layers[0].OutputShape()
	if len(shape) == 0 {
		return fmt.Errorf("compile: first layer %q has no output shape: %w", s.layers[0].Name(), ErrPrecondition)
	}

	for i := 1; i < len(s.layers); i++ {
		layer := s.layers[i]
		if err := layer.ConfigShape(shape, s.rng); err != nil {
			return fmt.Errorf("compile: layer %d (%s): %w", i, layer.Name(), err)
		}
		shape = layer.OutputShape()
	}

	s.compiled = true
	s.logger.Debug("model compiled",
		"layers", len(s.layers),
		"input", s.InputShape().String(),
		"output", s.OutputShape().String(),
		"parameters", s.NumParameters())
	return nil
}

// Compiled reports whether Compile has succeeded.
func (s *Sequential[T]) Compiled() bool { return s.compiled }

// Predict runs every sample through the model and returns the flattened
// outputs in sample order.
func (s *Sequential[T]) Predict(samples [][]T) ([][]T, error) {
	if !s.compiled {
		return nil, fmt.Errorf("predict: %w", ErrNotCompiled)
	}

	inShape := s.InputShape()
	outputs := make([][]T, len(samples))
	for i, sample := range samples {
		x, err := tensor.With(inShape, sample)
		if err != nil {
			return nil, fmt.Errorf("predict: sample %d: %w", i, err)
		}
		out, err := forward(s.layers, x)
		if err != nil {
			return nil, fmt.Errorf("predict: sample %d: %w", i, err)
		}
		outputs[i] = append([]T(nil), out.Data()...)
	}
	return outputs, nil
}

// Forward runs a single tensor through the model.
func (s *Sequential[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if !s.compiled {
		return nil, fmt.Errorf("forward: %w", ErrNotCompiled)
	}
	return forward(s.layers, x)
}

// forward threads x through layers in order.
func forward[T tensor.Float](layers []Layer[T], x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	out := x
	for i, layer := range layers {
		var err error
		out, err = layer.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
	}
	return out, nil
}

// backward propagates grad through layers in reverse order and returns each
// layer's gradients, indexed like layers.
func backward[T tensor.Float](layers []Layer[T], grad *tensor.Tensor[T]) ([]Gradients[T], error) {
	grads := make([]Gradients[T], len(layers))
	for i := len(layers) - 1; i >= 0; i-- {
		g, err := layers[i].Backward(grad)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layers[i].Name(), err)
		}
		grads[i] = g
		grad = g.Input
	}
	return grads, nil
}

// SetParameters replaces the weights and bias of the layer at index.
func (s *Sequential[T]) SetParameters(index int, weights, bias *tensor.Tensor[T]) error {
	if index < 0 || index >= len(s.layers) {
		return fmt.Errorf("set parameters: layer %d of %d: %w", index, len(s.layers), tensor.ErrOutOfRange)
	}
	setter, ok := s.layers[index].(ParameterSetter[T])
	if !ok {
		return fmt.Errorf("set parameters: layer %d (%s) has no parameters: %w",
			index, s.layers[index].Name(), tensor.ErrUnsupported)
	}
	if err := setter.SetParameters(weights, bias); err != nil {
		return fmt.Errorf("set parameters: layer %d: %w", index, err)
	}
	return nil
}

// Layers returns the layer stack. The slice must not be modified.
func (s *Sequential[T]) Layers() []Layer[T] { return s.layers }

// Len returns the number of layers.
func (s *Sequential[T]) Len() int { return len(s.layers) }

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential[T]) Layer(index int) Layer[T] {
	if index < 0 || index >= len(s.layers) {
		panic("Sequential.Layer: index out of bounds")
	}
	return s.layers[index]
}

// InputShape is the first layer's output shape.
func (s *Sequential[T]) InputShape() tensor.Shape {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[0].OutputShape()
}

// OutputShape is the last layer's output shape (nil before Compile for
// most stacks).
func (s *Sequential[T]) OutputShape() tensor.Shape {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[len(s.layers)-1].OutputShape()
}

// Parameters returns all trainable parameters in layer order.
func (s *Sequential[T]) Parameters() []*Parameter[T] {
	var params []*Parameter[T]
	for _, layer := range s.layers {
		if p, ok := layer.(Parameterized[T]); ok {
			params = append(params, p.Parameters()...)
		}
	}
	return params
}

// NumParameters returns the total number of trainable scalars.
func (s *Sequential[T]) NumParameters() int {
	n := 0
	for _, p := range s.Parameters() {
		n += p.Shape().NumElements()
	}
	return n
}

// StateDict returns a map of parameter names to tensors.
//
// Parameters are prefixed with their layer index (e.g., "1.weight",
// "1.bias", "3.weight") to avoid name collisions. The tensors are the live
// parameters, not copies.
func (s *Sequential[T]) StateDict() map[string]*tensor.Tensor[T] {
	stateDict := make(map[string]*tensor.Tensor[T])
	for i, layer := range s.layers {
		p, ok := layer.(Parameterized[T])
		if !ok {
			continue
		}
		for _, param := range p.Parameters() {
			stateDict[fmt.Sprintf("%d.%s", i, param.Name())] = param.Tensor()
		}
	}
	return stateDict
}

// LoadStateDict copies parameters from a state dictionary produced by
// StateDict (or read from a checkpoint).
//
// Every parameter of the model must be present with its exact shape, and
// every key must belong to a parameter. Nothing is modified unless the whole
// dictionary validates.
func (s *Sequential[T]) LoadStateDict(stateDict map[string]*tensor.Tensor[T]) error {
	if !s.compiled {
		return fmt.Errorf("load state dict: %w", ErrNotCompiled)
	}

	own := s.StateDict()
	for key := range stateDict {
		if _, ok := own[key]; !ok {
			return fmt.Errorf("load state dict: unexpected key %q", key)
		}
	}
	for key, dst := range own {
		src, ok := stateDict[key]
		if !ok {
			return fmt.Errorf("load state dict: missing key %q", key)
		}
		if src == nil {
			return fmt.Errorf("load state dict: %q: nil tensor", key)
		}
		if !src.Shape().Equal(dst.Shape()) {
			return fmt.Errorf("load state dict: %q: %w", key, &tensor.ShapeError{
				Op: "load", Left: dst.Shape(), Right: src.Shape(), AxisL: -1, AxisR: -1,
			})
		}
	}

	for key, dst := range own {
		copy(dst.Data(), stateDict[key].Data())
	}
	return nil
}

// LayerSummary describes one layer for reporting.
type LayerSummary struct {
	Index       int
	Name        string
	OutputShape tensor.Shape
	Parameters  int
}

// Summary lists every layer with its output shape and parameter count.
func (s *Sequential[T]) Summary() []LayerSummary {
	rows := make([]LayerSummary, len(s.layers))
	for i, layer := range s.layers {
		n := 0
		if p, ok := layer.(Parameterized[T]); ok {
			for _, param := range p.Parameters() {
				n += param.Shape().NumElements()
			}
		}
		rows[i] = LayerSummary{Index: i, Name: layer.Name(), OutputShape: layer.OutputShape(), Parameters: n}
	}
	return rows
}

// String returns a string representation of the model.
func (s *Sequential[T]) String() string {
	var b strings.Builder
	b.WriteString("Sequential(\n")
	for i, layer := range s.layers {
		fmt.Fprintf(&b, "  (%d): %s -> %v\n", i, layer.Name(), layer.OutputShape())
	}
	b.WriteString(")")
	return b.String()
}
