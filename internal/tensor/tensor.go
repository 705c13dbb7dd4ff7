package tensor

import "fmt"

// Tensor is a generic tensor with element type T computed by backend B.
//
// Type Parameters:
//   - T: element type (must satisfy DType)
//   - B: computation backend (must implement Backend)
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{3, 4}, backend)
//	y := x.Add(x)
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
	grad    *Tensor[T, B] // gradient slot, filled by an external training loop
}

// New creates a Tensor from a RawTensor and backend.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice creates a tensor from a Go slice. The data is copied.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor[T, B]) DType() DataType {
	return t.raw.DType()
}

// NumElements returns the total number of elements.
func (t *Tensor[T, B]) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
func (t *Tensor[T, B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor[T, B]) Backend() B {
	return t.backend
}

// Grad returns the gradient tensor, or nil if none has been installed.
func (t *Tensor[T, B]) Grad() *Tensor[T, B] {
	return t.grad
}

// SetGrad installs a gradient tensor. Called by the training collaborator.
func (t *Tensor[T, B]) SetGrad(grad *Tensor[T, B]) {
	t.grad = grad
}

// Data returns a typed slice view of the tensor's data (zero-copy).
//
// WARNING: modifications to the returned slice modify the tensor.
func (t *Tensor[T, B]) Data() []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case int32:
		return any(t.raw.AsInt32()).([]T)
	case bool:
		return any(t.raw.AsBool()).([]T)
	default:
		panic("unsupported type")
	}
}

// Clone returns a deep copy of the tensor.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return New[T, B](t.raw.Clone(), t.backend)
}

// Arithmetic. All binary operations follow NumPy broadcasting rules.

// Add returns t + other element-wise.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub returns t - other element-wise.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul returns t * other element-wise.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div returns t / other element-wise.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// AddScalar returns t + s element-wise.
func (t *Tensor[T, B]) AddScalar(s float64) *Tensor[T, B] {
	return New[T, B](t.backend.AddScalar(t.raw, s), t.backend)
}

// MulScalar returns t * s element-wise.
func (t *Tensor[T, B]) MulScalar(s float64) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, s), t.backend)
}

// MatMul multiplies two 2D matrices: [M, K] @ [K, N] -> [M, N].
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Exp returns e^t element-wise.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return New[T, B](t.backend.Exp(t.raw), t.backend)
}

// Sqrt returns the element-wise square root.
func (t *Tensor[T, B]) Sqrt() *Tensor[T, B] {
	return New[T, B](t.backend.Sqrt(t.raw), t.backend)
}

// Tanh returns tanh(t) element-wise.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	return New[T, B](t.backend.Tanh(t.raw), t.backend)
}

// Sigmoid returns 1/(1+e^-t) element-wise.
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.Sigmoid(t.raw), t.backend)
}

// Reshape returns a view of the tensor with a new shape.
// The element count must match.
func (t *Tensor[T, B]) Reshape(dims ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(dims)), t.backend)
}

// Transpose returns the transpose of a 2D tensor.
func (t *Tensor[T, B]) Transpose() *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw), t.backend)
}

// Narrow returns a copy of a slice of the tensor along dim:
// positions [start, start+length).
func (t *Tensor[T, B]) Narrow(dim, start, length int) *Tensor[T, B] {
	return New[T, B](t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// Flip reverses the tensor along dim.
func (t *Tensor[T, B]) Flip(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Flip(t.raw, dim), t.backend)
}

// SumDim sums along dim.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// MeanDim averages along dim.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MeanDim(t.raw, dim, keepDim), t.backend)
}

// MaxDim takes the element-wise maximum along dim.
func (t *Tensor[T, B]) MaxDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MaxDim(t.raw, dim, keepDim), t.backend)
}

// Softmax applies softmax along dim.
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Softmax(t.raw, dim), t.backend)
}

// Embedding looks up rows of this [V, E] weight tensor by indices,
// producing a [..., E] tensor.
func (t *Tensor[T, B]) Embedding(indices *Tensor[int32, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Embedding(t.raw, indices.raw), t.backend)
}

// Cat concatenates tensors along a dimension.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("Cat: no tensors")
	}
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	return New[T, B](tensors[0].backend.Cat(raws, dim), tensors[0].backend)
}
