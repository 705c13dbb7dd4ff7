package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, inferDataType(*new(T)), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[float32, B] {
	return Full(shape, 1, b)
}

// Full creates a float32 tensor filled with value.
func Full[B Backend](shape Shape, value float32, b B) *Tensor[float32, B] {
	t := Zeros[float32](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a float32 tensor with values drawn from N(0, 1).
func Randn[B Backend](shape Shape, b B) *Tensor[float32, B] {
	t := Zeros[float32](shape, b)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand is fine for weight initialization
		data[i] = float32(rand.NormFloat64())
	}
	return t
}

// Rand creates a float32 tensor with values drawn from U(0, 1).
func Rand[B Backend](shape Shape, b B) *Tensor[float32, B] {
	t := Zeros[float32](shape, b)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand is fine for initialization
		data[i] = rand.Float32()
	}
	return t
}
