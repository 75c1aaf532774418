package optim

import (
	"fmt"

	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum helps accelerate SGD in relevant directions and dampens oscillations.
// With Momentum 0 SGD is exactly nn.GradientDescent.
//
// Example:
//
//	optimizer := optim.NewSGD[float64](optim.SGDConfig{Momentum: 0.9})
type SGD[T tensor.Float] struct {
	momentum   T
	velocities map[int]*slots[T]
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD[T tensor.Float](config SGDConfig) *SGD[T] {
	return &SGD[T]{
		momentum:   T(config.Momentum),
		velocities: make(map[int]*slots[T]),
	}
}

// Momentum returns the momentum factor.
func (s *SGD[T]) Momentum() T { return s.momentum }

// Step applies one update to the layer at index.
func (s *SGD[T]) Step(index int, layer nn.Updater[T], dw, db *tensor.Tensor[T], lr T) error {
	if s.momentum == 0 {
		return nn.GradientDescent[T]{}.Step(index, layer, dw, db, lr)
	}

	v, ok := s.velocities[index]
	if !ok {
		v = &slots[T]{}
		s.velocities[index] = v
	}

	deltaW, err := s.velocityStep(&v.weights, dw, lr)
	if err != nil {
		return fmt.Errorf("sgd: layer %d weights: %w", index, err)
	}
	deltaB, err := s.velocityStep(&v.bias, db, lr)
	if err != nil {
		return fmt.Errorf("sgd: layer %d bias: %w", index, err)
	}

	if err := layer.UpdateParameters(deltaW, deltaB); err != nil {
		return fmt.Errorf("sgd: layer %d: %w", index, err)
	}
	return nil
}

// velocityStep updates velocity = momentum*velocity + grad and returns
// -lr * velocity.
func (s *SGD[T]) velocityStep(state **tensor.Tensor[T], grad *tensor.Tensor[T], lr T) (*tensor.Tensor[T], error) {
	velocity, err := slot(state, grad)
	if velocity == nil || err != nil {
		return nil, err
	}
	velocity.Scale(s.momentum)
	velocity.AddInPlace(grad)

	delta := velocity.Clone()
	delta.Scale(-lr)
	return delta, nil
}

// Reset drops all velocity buffers.
func (s *SGD[T]) Reset() {
	s.velocities = make(map[int]*slots[T])
}
