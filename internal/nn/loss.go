package nn

import (
	"fmt"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Loss reduces a prediction against its ground truth and provides the
// gradient of that reduction with respect to the prediction.
type Loss[T tensor.Float] interface {
	// Calculate returns the scalar loss.
	Calculate(truth, predicted *tensor.Tensor[T]) T

	// Derivative returns dLoss/dPredicted, shaped like predicted.
	Derivative(truth, predicted *tensor.Tensor[T]) *tensor.Tensor[T]
}

// MSELoss computes Mean Squared Error loss.
//
// Loss = (1/n) Σ (truth_i - predicted_i)²
//
// MSE is commonly used for regression tasks and, with one-hot targets, as a
// simple classification loss.
//
// Example:
//
//	mse := nn.MSELoss[float64]{}
//	loss := mse.Calculate(truth, prediction)
type MSELoss[T tensor.Float] struct{}

// Calculate computes the mean of the squared differences.
//
// Panics if the element counts differ.
func (MSELoss[T]) Calculate(truth, predicted *tensor.Tensor[T]) T {
	yt, yh := truth.Data(), predicted.Data()
	if len(yt) != len(yh) {
		panic(fmt.Sprintf("MSELoss: truth has %d elements, prediction has %d", len(yt), len(yh)))
	}
	var sum T
	for i := range yt {
		d := yt[i] - yh[i]
		sum += d * d
	}
	return sum / T(len(yt))
}

// Derivative computes (2/n)(predicted_i - truth_i) element-wise.
//
// Panics if the element counts differ.
func (MSELoss[T]) Derivative(truth, predicted *tensor.Tensor[T]) *tensor.Tensor[T] {
	yt, yh := truth.Data(), predicted.Data()
	if len(yt) != len(yh) {
		panic(fmt.Sprintf("MSELoss: truth has %d elements, prediction has %d", len(yt), len(yh)))
	}
	scale := 2 / T(len(yt))
	grad := predicted.Clone()
	out := grad.Data()
	for i := range out {
		out[i] = (yh[i] - yt[i]) * scale
	}
	return grad
}
