package dataset

import "github.com/born-ml/seqnet/internal/tensor"

// XOR returns the four XOR input pairs and their targets.
func XOR[T tensor.Float]() (samples, targets [][]T) {
	samples = [][]T{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	targets = [][]T{{0}, {1}, {1}, {0}}
	return samples, targets
}
