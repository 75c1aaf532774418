package nn

import (
	"fmt"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Optimizer turns a batch's summed gradients into parameter updates.
//
// Step is called once per trainable layer after every batch, with index the
// layer's position in the model. dw and db are owned by the caller's batch
// totals and may be modified. Either may be nil when the layer produced no
// gradient for it.
type Optimizer[T tensor.Float] interface {
	Step(index int, layer Updater[T], dw, db *tensor.Tensor[T], lr T) error
}

// GradientDescent is the plain update rule: param += -lr * grad.
type GradientDescent[T tensor.Float] struct{}

// Step scales the gradients by -lr in place and applies them.
func (GradientDescent[T]) Step(index int, layer Updater[T], dw, db *tensor.Tensor[T], lr T) error {
	if dw != nil {
		dw.Scale(-lr)
	}
	if db != nil {
		db.Scale(-lr)
	}
	if err := layer.UpdateParameters(dw, db); err != nil {
		return fmt.Errorf("layer %d: %w", index, err)
	}
	return nil
}
