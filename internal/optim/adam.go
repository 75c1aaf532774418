package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSprop and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Applies bias correction to compensate for initialization at zero
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// The summed batch gradient is used as-is, so the effective step does not
// depend on the batch size.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[T tensor.Float] struct {
	beta1 float64
	beta2 float64
	eps   float64

	t map[int]int       // Timestep per layer for bias correction
	m map[int]*slots[T] // First moment estimates
	v map[int]*slots[T] // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam[T tensor.Float](config AdamConfig) *Adam[T] {
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[T]{
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		t:     make(map[int]int),
		m:     make(map[int]*slots[T]),
		v:     make(map[int]*slots[T]),
	}
}

// Step applies one Adam update to the layer at index.
//
// Every layer is stepped once per batch, so the per-layer timestep equals the
// number of batches seen.
func (a *Adam[T]) Step(index int, layer nn.Updater[T], dw, db *tensor.Tensor[T], lr T) error {
	a.t[index]++
	t := float64(a.t[index])
	biasCorrection1 := 1.0 - math.Pow(a.beta1, t)
	biasCorrection2 := 1.0 - math.Pow(a.beta2, t)

	m, ok := a.m[index]
	if !ok {
		m = &slots[T]{}
		a.m[index] = m
	}
	v, ok := a.v[index]
	if !ok {
		v = &slots[T]{}
		a.v[index] = v
	}

	deltaW, err := a.moments(&m.weights, &v.weights, dw, float64(lr), biasCorrection1, biasCorrection2)
	if err != nil {
		return fmt.Errorf("adam: layer %d weights: %w", index, err)
	}
	deltaB, err := a.moments(&m.bias, &v.bias, db, float64(lr), biasCorrection1, biasCorrection2)
	if err != nil {
		return fmt.Errorf("adam: layer %d bias: %w", index, err)
	}

	if err := layer.UpdateParameters(deltaW, deltaB); err != nil {
		return fmt.Errorf("adam: layer %d: %w", index, err)
	}
	return nil
}

// moments updates both moment estimates from grad and overwrites grad with
// the parameter delta.
func (a *Adam[T]) moments(mState, vState **tensor.Tensor[T], grad *tensor.Tensor[T], lr, bc1, bc2 float64) (*tensor.Tensor[T], error) {
	m, err := slot(mState, grad)
	if m == nil || err != nil {
		return nil, err
	}
	v, err := slot(vState, grad)
	if err != nil {
		return nil, err
	}

	gradData := grad.Data()
	mData := m.Data()
	vData := v.Data()
	for i, g := range gradData {
		gf := float64(g)
		mf := a.beta1*float64(mData[i]) + (1.0-a.beta1)*gf
		vf := a.beta2*float64(vData[i]) + (1.0-a.beta2)*gf*gf
		mData[i] = T(mf)
		vData[i] = T(vf)

		mHat := mf / bc1
		vHat := vf / bc2
		gradData[i] = T(-lr * mHat / (math.Sqrt(vHat) + a.eps))
	}
	return grad, nil
}

// Timestep returns the number of updates applied to the layer at index.
func (a *Adam[T]) Timestep(index int) int {
	return a.t[index]
}
