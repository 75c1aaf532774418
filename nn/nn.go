// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for building and training seqnet
// models.
//
// A model is a Sequential stack of layers. The first layer (usually Input)
// fixes the input shape; Compile sizes every following layer from its
// predecessor.
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
package nn

import (
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// DefaultSeed seeds parameter initialization unless WithSeed is used.
const DefaultSeed = nn.DefaultSeed

// Errors returned by layers and models.
var (
	ErrNotConfigured   = nn.ErrNotConfigured
	ErrNoCachedInput   = nn.ErrNoCachedInput
	ErrNotCompiled     = nn.ErrNotCompiled
	ErrAlreadyCompiled = nn.ErrAlreadyCompiled
	ErrPrecondition    = nn.ErrPrecondition
)

// Layer is one stage of a Sequential model.
type Layer[T tensor.Float] = nn.Layer[T]

// Gradients is the result of a layer's backward pass.
type Gradients[T tensor.Float] = nn.Gradients[T]

// Updater is implemented by layers whose parameters can be trained.
type Updater[T tensor.Float] = nn.Updater[T]

// ParameterSetter is implemented by layers accepting external parameters.
type ParameterSetter[T tensor.Float] = nn.ParameterSetter[T]

// Parameterized is implemented by layers owning trainable parameters.
type Parameterized[T tensor.Float] = nn.Parameterized[T]

// Parameter represents a trainable parameter in a neural network.
type Parameter[T tensor.Float] = nn.Parameter[T]

// Layers

// Input declares the model's input shape.
type Input[T tensor.Float] = nn.Input[T]

// NewInput creates an input layer for samples of the given shape.
func NewInput[T tensor.Float](dims ...int) *Input[T] {
	return nn.NewInput[T](dims...)
}

// Dense is a fully connected layer: y = x·W + b.
type Dense[T tensor.Float] = nn.Dense[T]

// NewDense creates a fully connected layer with the given number of units.
func NewDense[T tensor.Float](units int) *Dense[T] {
	return nn.NewDense[T](units)
}

// Conv2D is a valid (no padding, stride 1) 2D convolution over [H, W, C]
// inputs.
type Conv2D[T tensor.Float] = nn.Conv2D[T]

// NewConv2D creates a convolution with filters square kernels of size
// kernel.
func NewConv2D[T tensor.Float](filters, kernel int) *Conv2D[T] {
	return nn.NewConv2D[T](filters, kernel)
}

// Flatten reshapes its input to a single row.
type Flatten[T tensor.Float] = nn.Flatten[T]

// NewFlatten creates a Flatten layer.
func NewFlatten[T tensor.Float]() *Flatten[T] {
	return nn.NewFlatten[T]()
}

// MaxPool2D takes the per-channel maximum of every window of a
// [H, W, C] input.
type MaxPool2D[T tensor.Float] = nn.MaxPool2D[T]

// NewMaxPool2D creates a pooling layer with a square window.
func NewMaxPool2D[T tensor.Float](kernelSize, stride int) *MaxPool2D[T] {
	return nn.NewMaxPool2D[T](kernelSize, stride)
}

// Activation applies an Operator element-wise.
type Activation[T tensor.Float] = nn.Activation[T]

// NewActivation wraps op in a layer.
func NewActivation[T tensor.Float](op Operator) *Activation[T] {
	return nn.NewActivation[T](op)
}

// NewSigmoid creates a sigmoid activation layer.
func NewSigmoid[T tensor.Float]() *Activation[T] { return nn.NewSigmoid[T]() }

// NewReLU creates a ReLU activation layer.
func NewReLU[T tensor.Float]() *Activation[T] { return nn.NewReLU[T]() }

// NewReLU6 creates a ReLU6 activation layer.
func NewReLU6[T tensor.Float]() *Activation[T] { return nn.NewReLU6[T]() }

// NewTanh creates a tanh activation layer.
func NewTanh[T tensor.Float]() *Activation[T] { return nn.NewTanh[T]() }

// Operators

// Operator is a scalar activation function with its derivative.
type Operator = nn.Operator

// Built-in operators.
type (
	SigmoidOp = nn.SigmoidOp
	ReLUOp    = nn.ReLUOp
	ReLU6Op   = nn.ReLU6Op
	TanhOp    = nn.TanhOp
)

// OperatorByName returns the operator called name ("sigmoid", "relu",
// "relu6", "tanh").
func OperatorByName(name string) (Operator, error) {
	return nn.OperatorByName(name)
}

// Loss and training

// Loss reduces a prediction against its ground truth.
type Loss[T tensor.Float] = nn.Loss[T]

// MSELoss is the mean squared error.
type MSELoss[T tensor.Float] = nn.MSELoss[T]

// CrossEntropyLoss is softmax cross-entropy over raw logits.
type CrossEntropyLoss[T tensor.Float] = nn.CrossEntropyLoss[T]

// LossByName returns the loss called name ("mse", "cross_entropy").
func LossByName[T tensor.Float](name string) (Loss[T], error) {
	return nn.LossByName[T](name)
}

// Softmax returns exp(z) / Σ exp(z).
func Softmax[T tensor.Float](z []T) []T {
	return nn.Softmax(z)
}

// Optimizer turns summed batch gradients into parameter updates.
type Optimizer[T tensor.Float] = nn.Optimizer[T]

// GradientDescent applies param += -lr * grad.
type GradientDescent[T tensor.Float] = nn.GradientDescent[T]

// Sequential is an ordered stack of layers.
type Sequential[T tensor.Float] = nn.Sequential[T]

// NewSequential creates a model from layers.
func NewSequential[T tensor.Float](layers ...Layer[T]) *Sequential[T] {
	return nn.NewSequential[T](layers...)
}

// TrainConfig holds the hyperparameters of Sequential.Train.
type TrainConfig[T tensor.Float] = nn.TrainConfig[T]

// EpochStats describes one finished training epoch.
type EpochStats = nn.EpochStats

// LayerSummary describes one layer of Sequential.Summary.
type LayerSummary = nn.LayerSummary
