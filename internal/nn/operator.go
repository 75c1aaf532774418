package nn

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Operator is an element-wise activation function paired with its derivative.
//
// Derivative receives the same raw (pre-activation) input as Activation; it
// is not fed the activation output.
type Operator interface {
	Name() string
	Activation(x float64) float64
	Derivative(x float64) float64
}

// SigmoidOp is the logistic function σ(x) = 1 / (1 + exp(-x)).
type SigmoidOp struct{}

// Name returns "sigmoid".
func (SigmoidOp) Name() string { return "sigmoid" }

// Activation computes σ(x).
func (SigmoidOp) Activation(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Derivative computes σ(x)(1 - σ(x)).
func (s SigmoidOp) Derivative(x float64) float64 {
	y := s.Activation(x)
	return y * (1 - y)
}

// ReLUOp is the rectified linear unit max(0, x).
type ReLUOp struct{}

// Name returns "relu".
func (ReLUOp) Name() string { return "relu" }

// Activation computes max(0, x).
func (ReLUOp) Activation(x float64) float64 {
	return math.Max(0, x)
}

// Derivative is 1 for x > 0 and 0 otherwise.
func (ReLUOp) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// ReLU6Op is the rectified linear unit clipped at 6.
type ReLU6Op struct{}

// Name returns "relu6".
func (ReLU6Op) Name() string { return "relu6" }

// Activation computes clamp(x, 0, 6).
func (ReLU6Op) Activation(x float64) float64 {
	return math.Min(math.Max(0, x), 6)
}

// Derivative is 1 strictly inside (0, 6) and 0 elsewhere.
func (ReLU6Op) Derivative(x float64) float64 {
	if x > 0 && x < 6 {
		return 1
	}
	return 0
}

// TanhOp is the hyperbolic tangent.
type TanhOp struct{}

// Name returns "tanh".
func (TanhOp) Name() string { return "tanh" }

// Activation computes tanh(x).
func (TanhOp) Activation(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)².
func (TanhOp) Derivative(x float64) float64 {
	y := math.Tanh(x)
	return 1 - y*y
}

// OperatorByName returns the operator registered under name (case-insensitive).
func OperatorByName(name string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sigmoid", "logistic":
		return SigmoidOp{}, nil
	case "relu":
		return ReLUOp{}, nil
	case "relu6":
		return ReLU6Op{}, nil
	case "tanh":
		return TanhOp{}, nil
	default:
		return nil, fmt.Errorf("unknown activation %q: %w", name, tensor.ErrUnsupported)
	}
}
