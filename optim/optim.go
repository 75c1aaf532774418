// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers for nn.Sequential training.
//
// Every optimizer satisfies nn.Optimizer and is passed through
// nn.TrainConfig:
//
//	err := model.Train(samples, targets, nn.TrainConfig[float64]{
//	    Epochs: 100, BatchSize: 32, LearningRate: 0.001,
//	    Optimizer: optim.NewAdam[float64](optim.AdamConfig{}),
//	})
package optim

import (
	"github.com/born-ml/seqnet/internal/optim"
	"github.com/born-ml/seqnet/internal/tensor"
)

// SGD represents the SGD optimizer with optional momentum.
type SGD[T tensor.Float] = optim.SGD[T]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD[float64](optim.SGDConfig{Momentum: 0.9})
func NewSGD[T tensor.Float](config SGDConfig) *SGD[T] {
	return optim.NewSGD[T](config)
}

// Adam represents the Adam optimizer.
type Adam[T tensor.Float] = optim.Adam[T]

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer. Zero config fields take the
// defaults betas (0.9, 0.999) and eps 1e-8.
func NewAdam[T tensor.Float](config AdamConfig) *Adam[T] {
	return optim.NewAdam[T](config)
}
