package tensor

// Backend defines the interface compute backends must implement. The op
// surface is sized to recurrent language models: elementwise algebra with
// broadcasting, 2D matrix multiplication, embedding lookup, concatenation
// and slicing along a dimension, and the reductions used by pooling heads.
//
// Implementations:
//   - cpu: pure Go, single-threaded (internal/backend/cpu)
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations.
	AddScalar(x *RawTensor, s float64) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor

	// MatMul multiplies two 2D matrices: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Shape operations.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Transpose(x *RawTensor) *RawTensor // 2D only

	// Manipulation.
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Narrow(x *RawTensor, dim, start, length int) *RawTensor
	Flip(x *RawTensor, dim int) *RawTensor

	// Embedding looks up rows of weight [V, E] by indices (any int32 shape),
	// producing [..., E].
	Embedding(weight, indices *RawTensor) *RawTensor

	// Reductions along a dimension.
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Softmax along a dimension.
	Softmax(x *RawTensor, dim int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
