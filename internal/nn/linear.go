package nn

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// Linear implements a fully connected layer: y = x @ W.T + b.
//
// Shapes:
//   - x: [..., inFeatures] (leading dimensions are flattened for the matmul
//     and restored afterwards, so sequence activations pass through directly)
//   - W: [outFeatures, inFeatures]
//   - b: [outFeatures], optional
//   - y: [..., outFeatures]
//
// Weights use Xavier initialization; biases start at zero.
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B]
	bias        *Parameter[B] // nil when constructed without bias
	backend     B
}

// NewLinear creates a Linear layer with Xavier-initialized weights and a
// zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, withBias bool, backend B) *Linear[B] {
	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend))

	var bias *Parameter[B]
	if withBias {
		bias = NewParameter("bias", tensor.Zeros[float32](tensor.Shape{outFeatures}, backend))
	}

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes y = x @ W.T + b.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("Linear.Forward: expected at least 2D input, got shape %v", shape))
	}
	if shape[len(shape)-1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, shape[len(shape)-1]))
	}

	// Flatten leading dims: [..., in] -> [rows, in].
	rows := shape.NumElements() / l.inFeatures
	x2d := input.Reshape(rows, l.inFeatures)

	output := x2d.MatMul(l.weight.Tensor().Transpose())

	if l.bias != nil {
		output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	}

	outShape := shape.Clone()
	outShape[len(outShape)-1] = l.outFeatures
	return output.Reshape(outShape...)
}

// Parameters returns [weight, bias] (bias omitted when absent).
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// TieWeight replaces the layer's weight parameter with another module's
// parameter. The two modules then share one tensor: updates through either
// are visible to both. Shapes must agree.
func (l *Linear[B]) TieWeight(other *Parameter[B]) {
	want := tensor.Shape{l.outFeatures, l.inFeatures}
	if !other.Tensor().Shape().Equal(want) {
		panic(fmt.Sprintf("Linear.TieWeight: shape mismatch: expected %v, got %v", want, other.Tensor().Shape()))
	}
	l.weight = other
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
