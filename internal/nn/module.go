// Package nn implements the layers and the Sequential model of seqnet.
//
// This package provides:
//   - Layer interface: forward/backward/shape configuration for every stage
//   - Optional capabilities: Updater, ParameterSetter, Parameterized
//   - Layers: Input, Dense, Conv2D, MaxPool2D, Activation, Flatten
//   - Operators: Sigmoid, ReLU, ReLU6, Tanh
//   - Loss functions: MSE, softmax cross-entropy
//   - Sequential: ordered layer stack with compile, predict and batched training
package nn

import (
	"errors"
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Common errors.
var (
	ErrNotConfigured   = errors.New("layer is not configured")
	ErrNoCachedInput   = errors.New("backward called without a cached forward input")
	ErrNotCompiled     = errors.New("model is not compiled")
	ErrAlreadyCompiled = errors.New("model is already compiled")
	ErrPrecondition    = errors.New("precondition violated")
)

// Gradients is the result of a layer's backward pass.
//
// Input is the gradient with respect to the layer's input. Weights and Bias
// are nil for layers without trainable parameters.
type Gradients[T tensor.Float] struct {
	Input   *tensor.Tensor[T]
	Weights *tensor.Tensor[T]
	Bias    *tensor.Tensor[T]
}

// Layer is one stage of the forward/backward pipeline.
//
// A layer starts unconfigured. The owning model calls ConfigShape once with
// the predecessor's output shape during compilation; this is where parameter
// tensors are allocated. Forward and Backward are only valid afterwards.
type Layer[T tensor.Float] interface {
	// Name identifies the layer kind (e.g., "dense", "relu").
	Name() string

	// OutputShape returns the shape Forward produces, or nil while unconfigured.
	OutputShape() tensor.Shape

	// ConfigShape sizes the layer from its predecessor's output shape.
	ConfigShape(prev tensor.Shape, rng *rand.Rand) error

	// Forward computes the layer output. The layer keeps x for Backward.
	Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error)

	// Backward consumes the input cached by Forward and propagates grad,
	// the gradient of the loss with respect to this layer's output.
	Backward(grad *tensor.Tensor[T]) (Gradients[T], error)

	// Replica returns a layer sharing this layer's parameters but owning its
	// own forward cache, so that samples can be processed concurrently.
	Replica() Layer[T]
}

// Updater is implemented by layers whose parameters can be trained.
type Updater[T tensor.Float] interface {
	// UpdateParameters adds deltaW and deltaB to the weights and bias in place.
	// A nil delta leaves the corresponding parameter untouched.
	UpdateParameters(deltaW, deltaB *tensor.Tensor[T]) error
}

// ParameterSetter is implemented by layers accepting externally supplied
// (e.g., pre-trained) parameters.
type ParameterSetter[T tensor.Float] interface {
	SetParameters(weights, bias *tensor.Tensor[T]) error
}

// Parameterized is implemented by layers owning trainable parameters.
type Parameterized[T tensor.Float] interface {
	Parameters() []*Parameter[T]
}
