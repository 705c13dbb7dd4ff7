package cpu

import (
	"fmt"
	"math"

	"github.com/strand-ml/strand/internal/tensor"
)

// split decomposes a shape around dim as (outer, size, inner), so any
// per-dimension operation becomes three nested loops over contiguous memory.
// normDim resolves a possibly negative dimension index (-1 is the last dim).
func normDim(dim, rank int) int {
	if dim < 0 {
		dim += rank
	}
	return dim
}

func split(shape tensor.Shape, dim int) (outer, size, inner int) {
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("cpu: invalid dim %d for shape %v", dim, shape))
	}
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (c *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cpu: Cat of zero tensors")
	}
	checkFloat32("Cat", tensors...)
	dim = normDim(dim, len(tensors[0].Shape()))

	first := tensors[0].Shape()
	outShape := first.Clone()
	for _, t := range tensors[1:] {
		s := t.Shape()
		if len(s) != len(first) {
			panic(fmt.Sprintf("cpu: Cat rank mismatch: %v vs %v", first, s))
		}
		for i := range s {
			if i == dim {
				continue
			}
			if s[i] != first[i] {
				panic(fmt.Sprintf("cpu: Cat shape mismatch at dim %d: %v vs %v", i, first, s))
			}
		}
		outShape[dim] += s[dim]
	}

	out := mustRaw(outShape, tensor.Float32)
	outData := out.AsFloat32()
	outer, outSize, inner := split(outShape, dim)

	offset := 0
	for _, t := range tensors {
		_, size, _ := split(t.Shape(), dim)
		data := t.AsFloat32()
		for o := 0; o < outer; o++ {
			src := data[o*size*inner : (o+1)*size*inner]
			dst := outData[(o*outSize+offset)*inner:]
			copy(dst[:size*inner], src)
		}
		offset += size
	}
	return out
}

// Narrow copies positions [start, start+length) of x along dim.
// Works for any dtype: token-id tensors get chunked along the sequence axis
// just like activations.
func (c *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	dim = normDim(dim, len(x.Shape()))
	outer, size, inner := split(x.Shape(), dim)
	if start < 0 || length <= 0 || start+length > size {
		panic(fmt.Sprintf("cpu: Narrow range [%d, %d) out of bounds for dim of size %d", start, start+length, size))
	}

	outShape := x.Shape().Clone()
	outShape[dim] = length
	out := mustRaw(outShape, x.DType())
	es := x.DType().Size()
	outBytes := out.Bytes()
	xBytes := x.Bytes()

	for o := 0; o < outer; o++ {
		src := xBytes[(o*size+start)*inner*es : (o*size+start+length)*inner*es]
		copy(outBytes[o*length*inner*es:(o+1)*length*inner*es], src)
	}
	return out
}

// Flip reverses x along dim.
func (c *CPUBackend) Flip(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	checkFloat32("Flip", x)
	dim = normDim(dim, len(x.Shape()))
	outer, size, inner := split(x.Shape(), dim)

	out := mustRaw(x.Shape(), tensor.Float32)
	outData := out.AsFloat32()
	xData := x.AsFloat32()

	for o := 0; o < outer; o++ {
		for s := 0; s < size; s++ {
			src := xData[(o*size+s)*inner : (o*size+s+1)*inner]
			dst := outData[(o*size+size-1-s)*inner:]
			copy(dst[:inner], src)
		}
	}
	return out
}

// Embedding looks up rows of weight [V, E] by int32 indices of any shape,
// producing a [..., E] tensor. Out-of-range indices panic.
func (c *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	checkFloat32("Embedding", weight)
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("cpu: Embedding indices must be int32, got %v", indices.DType()))
	}
	ws := weight.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("cpu: Embedding weight must be 2D, got %v", ws))
	}
	vocab, embDim := ws[0], ws[1]

	outShape := append(indices.Shape().Clone(), embDim)
	out := mustRaw(outShape, tensor.Float32)
	outData := out.AsFloat32()
	wData := weight.AsFloat32()

	for i, id := range indices.AsInt32() {
		if id < 0 || int(id) >= vocab {
			panic(fmt.Sprintf("cpu: Embedding index %d out of range [0, %d)", id, vocab))
		}
		copy(outData[i*embDim:(i+1)*embDim], wData[int(id)*embDim:(int(id)+1)*embDim])
	}
	return out
}

// reduceDim applies a running reduction along dim.
func (c *CPUBackend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim bool,
	init func(v float32) float32, step func(acc, v float32) float32, finish func(acc float32, n int) float32,
) *tensor.RawTensor {
	checkFloat32(name, x)
	dim = normDim(dim, len(x.Shape()))
	outer, size, inner := split(x.Shape(), dim)

	outShape := tensor.Shape{}
	for i, d := range x.Shape() {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	out := mustRaw(outShape, tensor.Float32)
	outData := out.AsFloat32()
	xData := x.AsFloat32()

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			acc := init(xData[o*size*inner+in])
			for s := 1; s < size; s++ {
				acc = step(acc, xData[(o*size+s)*inner+in])
			}
			outData[o*inner+in] = finish(acc, size)
		}
	}
	return out
}

// SumDim sums along dim.
func (c *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("SumDim", x, dim, keepDim,
		func(v float32) float32 { return v },
		func(acc, v float32) float32 { return acc + v },
		func(acc float32, _ int) float32 { return acc })
}

// MeanDim averages along dim.
func (c *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("MeanDim", x, dim, keepDim,
		func(v float32) float32 { return v },
		func(acc, v float32) float32 { return acc + v },
		func(acc float32, n int) float32 { return acc / float32(n) })
}

// MaxDim takes the element-wise maximum along dim.
func (c *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("MaxDim", x, dim, keepDim,
		func(v float32) float32 { return v },
		func(acc, v float32) float32 {
			if v > acc {
				return v
			}
			return acc
		},
		func(acc float32, _ int) float32 { return acc })
}

// Softmax applies softmax along dim with the usual max-subtraction for
// numerical stability.
func (c *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	checkFloat32("Softmax", x)
	dim = normDim(dim, len(x.Shape()))
	outer, size, inner := split(x.Shape(), dim)

	out := mustRaw(x.Shape(), tensor.Float32)
	outData := out.AsFloat32()
	xData := x.AsFloat32()

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			maxVal := float32(math.Inf(-1))
			for s := 0; s < size; s++ {
				if v := xData[(o*size+s)*inner+in]; v > maxVal {
					maxVal = v
				}
			}
			sum := float32(0)
			for s := 0; s < size; s++ {
				e := float32(math.Exp(float64(xData[(o*size+s)*inner+in] - maxVal)))
				outData[(o*size+s)*inner+in] = e
				sum += e
			}
			for s := 0; s < size; s++ {
				outData[(o*size+s)*inner+in] /= sum
			}
		}
	}
	return out
}
