package optim

import (
	"math"

	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// Adam implements adaptive moment estimation.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * grad
//	v_t = beta2 * v_{t-1} + (1-beta2) * grad²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization"
// (Kingma & Ba, 2014).
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int
	m      map[*nn.Parameter[B]][]float32
	v      map[*nn.Parameter[B]][]float32
}

// AdamConfig holds Adam hyperparameters. Zero values fall back to the
// usual defaults (LR 0.001, betas 0.9/0.999, eps 1e-8).
type AdamConfig struct {
	LR    float32
	Betas [2]float32
	Eps   float32
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam[B]{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter[B]][]float32),
		v:      make(map[*nn.Parameter[B]][]float32),
	}
}

// Step updates every parameter that carries a gradient.
func (a *Adam[B]) Step() {
	a.t++
	bc1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	bc2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := gradient(param)
		if grad == nil {
			continue
		}
		data := param.Tensor().Raw().AsFloat32()

		m, ok := a.m[param]
		if !ok {
			m = make([]float32, len(data))
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = make([]float32, len(data))
			a.v[param] = v
		}

		for i := range data {
			g := grad[i]
			m[i] = a.beta1*m[i] + (1.0-a.beta1)*g
			v[i] = a.beta2*v[i] + (1.0-a.beta2)*g*g
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			data[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam[B]) LR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float32) {
	a.lr = lr
}
