// Package cpu implements the tensor.Backend interface in pure Go.
//
// Operations are synchronous and deterministic from the caller's point of
// view; matrix multiplication fans rows out across goroutines internally,
// everything else runs in plain loops. Float32 is the only arithmetic
// dtype; int32 appears solely as embedding indices.
package cpu

import (
	"fmt"
	"math"

	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// CPUBackend computes tensor operations with plain Go loops.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

// Name returns the backend name.
func (c *CPUBackend) Name() string {
	return "cpu"
}

// Device returns the compute device.
func (c *CPUBackend) Device() tensor.Device {
	return tensor.CPU
}

// mustRaw allocates an output tensor, panicking on invalid shapes.
// Backends panic rather than return errors: shape problems at this level are
// programming errors already validated by the layers above.
func mustRaw(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	raw, err := tensor.NewRaw(shape, dtype, tensor.CPU)
	if err != nil {
		panic(err)
	}
	return raw
}

func checkFloat32(op string, ts ...*tensor.RawTensor) {
	for _, t := range ts {
		if t.DType() != tensor.Float32 {
			panic(fmt.Sprintf("cpu: %s requires float32 tensors, got %v", op, t.DType()))
		}
	}
}

// binaryOp applies op element-wise with NumPy broadcasting.
func (c *CPUBackend) binaryOp(name string, a, b *tensor.RawTensor, op func(x, y float32) float32) *tensor.RawTensor {
	checkFloat32(name, a, b)

	outShape, broadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("cpu: %s: %v", name, err))
	}

	out := mustRaw(outShape, tensor.Float32)
	outData := out.AsFloat32()
	aData := a.AsFloat32()
	bData := b.AsFloat32()

	if !broadcast {
		for i := range outData {
			outData[i] = op(aData[i], bData[i])
		}
		return out
	}

	aIdx := newBroadcastIndexer(a.Shape(), outShape)
	bIdx := newBroadcastIndexer(b.Shape(), outShape)
	idx := make([]int, len(outShape))
	for i := range outData {
		outData[i] = op(aData[aIdx.at(idx)], bData[bIdx.at(idx)])
		advance(idx, outShape)
	}
	return out
}

// broadcastIndexer maps an output coordinate to a flat index of a (possibly
// lower-rank or size-1-dimension) input tensor.
type broadcastIndexer struct {
	strides []int // aligned to the output rank; 0 where the input broadcasts
}

func newBroadcastIndexer(in, out tensor.Shape) broadcastIndexer {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := range out {
		j := i - offset
		if j < 0 || in[j] == 1 {
			continue
		}
		strides[i] = inStrides[j]
	}
	return broadcastIndexer{strides: strides}
}

func (bi broadcastIndexer) at(idx []int) int {
	flat := 0
	for i, v := range idx {
		flat += v * bi.strides[i]
	}
	return flat
}

// advance increments a multi-dimensional index in row-major order.
func advance(idx []int, shape tensor.Shape) {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < shape[i] {
			return
		}
		idx[i] = 0
	}
}

// Add returns a + b element-wise.
func (c *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("Add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub returns a - b element-wise.
func (c *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("Sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul returns a * b element-wise.
func (c *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("Mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div returns a / b element-wise.
func (c *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("Div", a, b, func(x, y float32) float32 { return x / y })
}

func (c *CPUBackend) unaryOp(name string, x *tensor.RawTensor, op func(v float32) float32) *tensor.RawTensor {
	checkFloat32(name, x)
	out := mustRaw(x.Shape(), tensor.Float32)
	outData := out.AsFloat32()
	for i, v := range x.AsFloat32() {
		outData[i] = op(v)
	}
	return out
}

// AddScalar returns x + s element-wise.
func (c *CPUBackend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	f := float32(s)
	return c.unaryOp("AddScalar", x, func(v float32) float32 { return v + f })
}

// MulScalar returns x * s element-wise.
func (c *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	f := float32(s)
	return c.unaryOp("MulScalar", x, func(v float32) float32 { return v * f })
}

// Exp returns e^x element-wise.
func (c *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("Exp", x, func(v float32) float32 { return float32(math.Exp(float64(v))) })
}

// Sqrt returns the element-wise square root.
func (c *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("Sqrt", x, func(v float32) float32 { return float32(math.Sqrt(float64(v))) })
}

// Tanh returns tanh(x) element-wise.
func (c *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("Tanh", x, func(v float32) float32 { return float32(math.Tanh(float64(v))) })
}

// Sigmoid returns 1/(1+e^-x) element-wise.
func (c *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("Sigmoid", x, func(v float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(float64(-v))))
	})
}

// MatMul multiplies two 2D matrices: [M, K] @ [K, N] -> [M, N].
func (c *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	checkFloat32("MatMul", a, b)
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("cpu: MatMul requires 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("cpu: MatMul shape mismatch: %v @ %v", as, bs))
	}

	m, k, n := as[0], as[1], bs[1]
	out := mustRaw(tensor.Shape{m, n}, tensor.Float32)
	outData := out.AsFloat32()
	aData := a.AsFloat32()
	bData := b.AsFloat32()

	parallel.For(m, func(i int) {
		aRow := aData[i*k : (i+1)*k]
		outRow := outData[i*n : (i+1)*n]
		for j := 0; j < k; j++ {
			av := aRow[j]
			if av == 0 {
				continue
			}
			bRow := bData[j*n : (j+1)*n]
			for l := 0; l < n; l++ {
				outRow[l] += av * bRow[l]
			}
		}
	}, c.par)
	return out
}

// Reshape returns a view with a new shape (shared buffer).
func (c *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return x.View(shape)
}

// Transpose returns the transpose of a 2D tensor.
func (c *CPUBackend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	checkFloat32("Transpose", x)
	s := x.Shape()
	if len(s) != 2 {
		panic(fmt.Sprintf("cpu: Transpose requires a 2D tensor, got %v", s))
	}
	rows, cols := s[0], s[1]
	out := mustRaw(tensor.Shape{cols, rows}, tensor.Float32)
	outData := out.AsFloat32()
	xData := x.AsFloat32()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			outData[j*rows+i] = xData[i*cols+j]
		}
	}
	return out
}
