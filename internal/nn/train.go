package nn

import (
	"fmt"
	"time"

	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// TrainConfig holds the hyperparameters of Sequential.Train.
type TrainConfig[T tensor.Float] struct {
	Epochs       int // Passes over the data set (0 trains nothing)
	BatchSize    int // Samples per parameter update; the final batch may be smaller
	LearningRate T   // Step size, must be positive

	// Workers > 1 splits every batch into contiguous shards processed
	// concurrently on layer replicas. The summed gradients are identical up to
	// floating-point association order.
	Workers int

	Loss      Loss[T]      // Default: MSELoss
	Optimizer Optimizer[T] // Default: GradientDescent

	// OnEpoch, if set, receives the statistics of every finished epoch.
	OnEpoch func(EpochStats)
}

// EpochStats describes one finished training epoch.
type EpochStats struct {
	Epoch    int     // 1-based
	Epochs   int     // Total epochs requested
	Loss     float64 // Mean per-sample loss over the epoch
	Samples  int
	Duration time.Duration
}

// batchTotals holds the summed weight and bias gradients of one layer.
type batchTotals[T tensor.Float] struct {
	weights *tensor.Tensor[T]
	bias    *tensor.Tensor[T]
}

// Train fits the model with mini-batch gradient descent.
//
// Samples are processed in contiguous batches. For each sample the loss
// against that sample's own target is accumulated and the loss derivative is
// propagated backwards through every layer; weight and bias gradients are
// summed over the batch. After each batch the optimizer applies the totals
// scaled by -LearningRate. The mean epoch loss is reported through OnEpoch and
// the model's logger.
//
// All preconditions are checked before any parameter is touched and fail with
// ErrPrecondition.
func (s *Sequential[T]) Train(samples, targets [][]T, cfg TrainConfig[T]) error {
	if !s.compiled {
		return fmt.Errorf("train: %w", ErrNotCompiled)
	}
	if err := s.checkTrain(samples, targets, cfg); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if cfg.Loss == nil {
		cfg.Loss = MSELoss[T]{}
	}
	if cfg.Optimizer == nil {
		cfg.Optimizer = GradientDescent[T]{}
	}

	inShape, outShape := s.InputShape(), s.OutputShape()
	xs := make([]*tensor.Tensor[T], len(samples))
	ys := make([]*tensor.Tensor[T], len(targets))
	for i := range samples {
		xs[i] = tensor.MustWith(inShape, samples[i])
		ys[i] = tensor.MustWith(outShape, targets[i])
	}

	workers := max(cfg.Workers, 1)
	replicas := make([][]Layer[T], workers)
	replicas[0] = s.layers
	for w := 1; w < workers; w++ {
		replicas[w] = make([]Layer[T], len(s.layers))
		for i, layer := range s.layers {
			replicas[w][i] = layer.Replica()
		}
	}

	s.logger.Info("training started",
		"samples", len(samples),
		"epochs", cfg.Epochs,
		"batch_size", cfg.BatchSize,
		"learning_rate", float64(cfg.LearningRate),
		"workers", workers)

	n := len(samples)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		start := time.Now()
		var lossSum float64

		for b := 0; b < n; b += cfg.BatchSize {
			end := min(b+cfg.BatchSize, n)
			ranges := parallel.Split(end-b, parallel.Workers(workers))

			shardTotals := make([][]batchTotals[T], len(ranges))
			shardLoss := make([]float64, len(ranges))
			err := parallel.Run(ranges, func(w int, r parallel.Range) error {
				totals := make([]batchTotals[T], len(s.layers))
				for k := b + r.Start; k < b+r.End; k++ {
					loss, grads, err := trainSample(replicas[w], cfg.Loss, xs[k], ys[k])
					if err != nil {
						return fmt.Errorf("sample %d: %w", k, err)
					}
					shardLoss[w] += loss
					accumulate(totals, grads)
				}
				shardTotals[w] = totals
				return nil
			})
			if err != nil {
				return fmt.Errorf("train: epoch %d: %w", epoch+1, err)
			}

			// Merge in shard order so the sum follows sample order.
			totals := shardTotals[0]
			lossSum += shardLoss[0]
			for w := 1; w < len(ranges); w++ {
				mergeTotals(totals, shardTotals[w])
				lossSum += shardLoss[w]
			}

			if err := s.applyUpdates(cfg.Optimizer, totals, cfg.LearningRate); err != nil {
				return fmt.Errorf("train: epoch %d: %w", epoch+1, err)
			}
		}

		stats := EpochStats{
			Epoch:    epoch + 1,
			Epochs:   cfg.Epochs,
			Loss:     lossSum / float64(n),
			Samples:  n,
			Duration: time.Since(start),
		}
		s.logger.Debug("epoch finished",
			"epoch", stats.Epoch,
			"loss", stats.Loss,
			"duration", stats.Duration)
		if cfg.OnEpoch != nil {
			cfg.OnEpoch(stats)
		}
	}

	return nil
}

func (s *Sequential[T]) checkTrain(samples, targets [][]T, cfg TrainConfig[T]) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples: %w", ErrPrecondition)
	}
	if len(samples) != len(targets) {
		return fmt.Errorf("%d samples but %d targets: %w", len(samples), len(targets), ErrPrecondition)
	}
	if cfg.Epochs < 0 {
		return fmt.Errorf("negative epochs %d: %w", cfg.Epochs, ErrPrecondition)
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size %d: %w", cfg.BatchSize, ErrPrecondition)
	}
	if !(cfg.LearningRate > 0) {
		return fmt.Errorf("learning rate %v: %w", cfg.LearningRate, ErrPrecondition)
	}

	inSize := s.InputShape().NumElements()
	outSize := s.OutputShape().NumElements()
	for i := range samples {
		if len(samples[i]) != inSize {
			return fmt.Errorf("sample %d has %d values, input %v needs %d: %w",
				i, len(samples[i]), s.InputShape(), inSize, ErrPrecondition)
		}
		if len(targets[i]) != outSize {
			return fmt.Errorf("target %d has %d values, output %v needs %d: %w",
				i, len(targets[i]), s.OutputShape(), outSize, ErrPrecondition)
		}
	}
	return nil
}

// trainSample runs one forward/backward pass and returns the sample loss and
// every layer's gradients.
func trainSample[T tensor.Float](layers []Layer[T], loss Loss[T], x, y *tensor.Tensor[T]) (float64, []Gradients[T], error) {
	out, err := forward(layers, x)
	if err != nil {
		return 0, nil, err
	}
	value := loss.Calculate(y, out)
	grads, err := backward(layers, loss.Derivative(y, out))
	if err != nil {
		return 0, nil, err
	}
	return float64(value), grads, nil
}

// accumulate adds one sample's gradients to the batch totals. The first
// gradient seen for a layer becomes its running total.
func accumulate[T tensor.Float](totals []batchTotals[T], grads []Gradients[T]) {
	for i, g := range grads {
		totals[i].weights = addTotal(totals[i].weights, g.Weights)
		totals[i].bias = addTotal(totals[i].bias, g.Bias)
	}
}

func mergeTotals[T tensor.Float](dst, src []batchTotals[T]) {
	for i := range src {
		dst[i].weights = addTotal(dst[i].weights, src[i].weights)
		dst[i].bias = addTotal(dst[i].bias, src[i].bias)
	}
}

func addTotal[T tensor.Float](total, g *tensor.Tensor[T]) *tensor.Tensor[T] {
	if g == nil {
		return total
	}
	if total == nil {
		return g
	}
	total.AddInPlace(g)
	return total
}

func (s *Sequential[T]) applyUpdates(opt Optimizer[T], totals []batchTotals[T], lr T) error {
	for i, t := range totals {
		if t.weights == nil && t.bias == nil {
			continue
		}
		updater, ok := s.layers[i].(Updater[T])
		if !ok {
			continue
		}
		if err := opt.Step(i, updater, t.weights, t.bias, lr); err != nil {
			return err
		}
	}
	return nil
}
