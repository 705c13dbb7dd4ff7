// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in Strand.
//
// The package defines the core types for type-safe tensor math:
//   - Tensor[T, B]: generic tensor over a data type and a compute backend
//   - RawTensor: untyped buffer plus shape/dtype, the serialization unit
//   - Backend: interface for device-specific compute implementations
//   - Shape, DataType, Device: core type definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// DType is the constraint for tensor element types: float32, int32, bool.
type DType = tensor.DType

// DataType identifies the runtime element type of a RawTensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int32   DataType = tensor.Int32
	Bool    DataType = tensor.Bool
)

// Device identifies where tensor data resides. Strand ships a CPU backend.
type Device = tensor.Device

// CPU is the only supported device.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Backend is the compute interface tensors dispatch to. See backend/cpu
// for the pure Go implementation.
type Backend = tensor.Backend

// RawTensor is the low-level representation: an untyped byte buffer with
// shape, strides, and dtype. Checkpoints move RawTensors; model code uses
// the typed Tensor.
type RawTensor = tensor.RawTensor

// Tensor is a generic type-safe tensor over element type T and backend B.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a float32 tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[float32, B] {
	return tensor.Ones(shape, b)
}

// Full creates a float32 tensor filled with value.
func Full[B Backend](shape Shape, value float32, b B) *Tensor[float32, B] {
	return tensor.Full(shape, value, b)
}

// Randn creates a float32 tensor drawn from N(0, 1).
func Randn[B Backend](shape Shape, b B) *Tensor[float32, B] {
	return tensor.Randn(shape, b)
}

// Rand creates a float32 tensor drawn from U(0, 1).
func Rand[B Backend](shape Shape, b B) *Tensor[float32, B] {
	return tensor.Rand(shape, b)
}

// FromSlice creates a tensor from a Go slice with the given shape.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New wraps a RawTensor in a typed Tensor. Low-level; most callers use the
// creation functions instead.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw allocates a raw tensor with the given shape, dtype, and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Cat concatenates tensors along a dimension.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}

// BroadcastShapes computes the broadcast shape of two shapes following
// NumPy rules. The boolean reports whether any broadcasting is needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
