package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/seqnet/internal/tensor"
)

// CrossEntropyLoss computes softmax cross-entropy for classification.
//
// The prediction is treated as raw logits (the model should end in a Dense
// layer, not a Sigmoid) and the truth as a probability vector, typically
// one-hot:
//
//	Loss = -Σ truth_i * LogSoftmax(predicted)_i
//
// Gradient:
//
//	∂L/∂predicted_i = Softmax(predicted)_i * Σ truth - truth_i
//
// which reduces to Softmax - one_hot for one-hot targets.
type CrossEntropyLoss[T tensor.Float] struct{}

// Calculate computes the cross-entropy of truth against softmax(predicted).
//
// Panics if the element counts differ.
func (CrossEntropyLoss[T]) Calculate(truth, predicted *tensor.Tensor[T]) T {
	yt, z := truth.Data(), predicted.Data()
	if len(yt) != len(z) {
		panic(fmt.Sprintf("CrossEntropyLoss: truth has %d elements, prediction has %d", len(yt), len(z)))
	}
	logProbs := logSoftmax(z)
	var loss float64
	for i, t := range yt {
		if t != 0 {
			loss -= float64(t) * logProbs[i]
		}
	}
	return T(loss)
}

// Derivative returns the gradient with respect to the logits.
//
// Panics if the element counts differ.
func (CrossEntropyLoss[T]) Derivative(truth, predicted *tensor.Tensor[T]) *tensor.Tensor[T] {
	yt, z := truth.Data(), predicted.Data()
	if len(yt) != len(z) {
		panic(fmt.Sprintf("CrossEntropyLoss: truth has %d elements, prediction has %d", len(yt), len(z)))
	}
	var mass float64
	for _, t := range yt {
		mass += float64(t)
	}

	grad := tensor.Zeros[T](predicted.Shape())
	g := grad.Data()
	for i, lp := range logSoftmax(z) {
		g[i] = T(math.Exp(lp)*mass - float64(yt[i]))
	}
	return grad
}

// logSoftmax computes log(softmax(z)) using the log-sum-exp trick:
//
//	LogSoftmax(z)[i] = z[i] - (max(z) + log(Σ exp(z - max(z))))
func logSoftmax[T tensor.Float](z []T) []float64 {
	result := make([]float64, len(z))
	if len(z) == 0 {
		return result
	}

	maxZ := float64(z[0])
	for _, v := range z[1:] {
		maxZ = math.Max(maxZ, float64(v))
	}

	var sumExp float64
	for _, v := range z {
		sumExp += math.Exp(float64(v) - maxZ)
	}
	logSumExp := maxZ + math.Log(sumExp)

	for i, v := range z {
		result[i] = float64(v) - logSumExp
	}
	return result
}

// Softmax returns exp(z) / Σ exp(z), computed stably.
func Softmax[T tensor.Float](z []T) []T {
	out := make([]T, len(z))
	for i, lp := range logSoftmax(z) {
		out[i] = T(math.Exp(lp))
	}
	return out
}

// LossByName returns the loss called name ("mse", "cross_entropy").
func LossByName[T tensor.Float](name string) (Loss[T], error) {
	switch name {
	case "", "mse":
		return MSELoss[T]{}, nil
	case "cross_entropy", "crossentropy", "ce":
		return CrossEntropyLoss[T]{}, nil
	default:
		return nil, fmt.Errorf("unknown loss %q: %w", name, tensor.ErrUnsupported)
	}
}
