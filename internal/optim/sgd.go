package optim

import (
	"fmt"

	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum and
// decoupled weight decay.
//
// Update rule:
//
//	g = grad + weight_decay * param
//	velocity = momentum * velocity + g      (when momentum > 0)
//	param = param - lr * velocity
//
// Weight decay regularizes the recurrent and projection weights the same
// way the AWD-LSTM training recipe does.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	decay      float32
	velocities map[*nn.Parameter[B]][]float32
}

// SGDConfig holds SGD hyperparameters. Zero values fall back to defaults
// (LR 0.01, no momentum, no weight decay).
type SGDConfig struct {
	LR          float32
	Momentum    float32 // range [0, 1)
	WeightDecay float32
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		decay:      config.WeightDecay,
		velocities: make(map[*nn.Parameter[B]][]float32),
	}
}

// Step updates every parameter that carries a gradient.
func (s *SGD[B]) Step() {
	for _, param := range s.params {
		grad := gradient(param)
		if grad == nil {
			continue
		}
		data := param.Tensor().Raw().AsFloat32()

		if s.momentum == 0 {
			for i := range data {
				g := grad[i] + s.decay*data[i]
				data[i] -= s.lr * g
			}
			continue
		}

		velocity, ok := s.velocities[param]
		if !ok {
			velocity = make([]float32, len(data))
			s.velocities[param] = velocity
		}
		for i := range data {
			g := grad[i] + s.decay*data[i]
			velocity[i] = s.momentum*velocity[i] + g
			data[i] -= s.lr * velocity[i]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD[B]) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}

// StateDict exports the velocity buffers, keyed "velocity.{index}". Empty
// without momentum.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return state
	}
	for i, param := range s.params {
		velocity, ok := s.velocities[param]
		if !ok {
			continue
		}
		raw, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, param.Tensor().Raw().Device())
		if err != nil {
			continue
		}
		copy(raw.AsFloat32(), velocity)
		state[fmt.Sprintf("velocity.%d", i)] = raw
	}
	return state
}

// LoadStateDict restores velocity buffers exported by StateDict.
func (s *SGD[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}
	s.velocities = make(map[*nn.Parameter[B]][]float32)
	for i, param := range s.params {
		raw, ok := state[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !raw.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), raw.Shape())
		}
		velocity := make([]float32, param.Tensor().NumElements())
		copy(velocity, raw.AsFloat32())
		s.velocities[param] = velocity
	}
	return nil
}
