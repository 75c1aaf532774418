package nn

import (
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// initBound is the half-width of the uniform range parameters are drawn from.
const initBound = 0.5

// Uniform creates a tensor with values drawn from U(-bound, bound).
//
// Parameters:
//   - shape: Shape of the tensor
//   - bound: Half-width of the range
//   - rng: Random source (required, for reproducible initialization)
//
// Returns a tensor initialized with uniform values.
func Uniform[T tensor.Float](shape tensor.Shape, bound T, rng *rand.Rand) *tensor.Tensor[T] {
	return tensor.Random[T](shape, -bound, bound, rng)
}
