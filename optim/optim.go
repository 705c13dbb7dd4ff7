// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim exposes Strand's gradient-descent optimizers.
package optim

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/optim"
	"github.com/strand-ml/strand/internal/tensor"
)

// Optimizer is the interface shared by all optimizers.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum and weight
// decay.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig holds SGD hyperparameters.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Adam is adaptive moment estimation.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig holds Adam hyperparameters.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return optim.NewAdam(params, config)
}
