// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - SGD: plain gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// Both implement nn.Optimizer and are passed to training through
// nn.TrainConfig:
//
//	err := model.Train(samples, targets, nn.TrainConfig[float64]{
//	    Epochs:       50,
//	    BatchSize:    16,
//	    LearningRate: 0.01,
//	    Optimizer:    optim.NewSGD[float64](optim.SGDConfig{Momentum: 0.9}),
//	})
//
// Optimizer state is keyed by the layer index that nn.Sequential passes to
// Step, so one optimizer instance belongs to one model.
package optim

import (
	"fmt"

	"github.com/born-ml/seqnet/internal/tensor"
)

// slots holds one piece of per-layer optimizer state for weights and bias.
type slots[T tensor.Float] struct {
	weights *tensor.Tensor[T]
	bias    *tensor.Tensor[T]
}

// slot returns the state tensor for grad, allocating zeros on first use.
// A nil grad yields nil.
func slot[T tensor.Float](state **tensor.Tensor[T], grad *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if grad == nil {
		return nil, nil
	}
	if *state == nil {
		*state = tensor.Zeros[T](grad.Shape())
	}
	if !(*state).Shape().Equal(grad.Shape()) {
		return nil, fmt.Errorf("optimizer state %v does not match gradient %v: %w",
			(*state).Shape(), grad.Shape(), tensor.ErrShapeMismatch)
	}
	return *state, nil
}
