package tensor

import (
	"fmt"
	"unsafe"
)

// Device represents the compute device for tensor operations.
//
// Strand only ships a CPU backend; the enum exists so backends can identify
// themselves and checkpoint files can record where a tensor lived.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	if d == CPU {
		return "CPU"
	}
	return "Unknown"
}

// RawTensor is the low-level tensor representation: an untyped byte buffer
// plus shape, strides and runtime type information. All tensors are
// contiguous and row-major; views created by Reshape share the buffer.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw creates a new zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Bytes returns the underlying byte buffer. Used by serialization.
func (r *RawTensor) Bytes() []byte {
	return r.data
}

// AsFloat32 returns the buffer as a float32 slice (zero-copy).
// Panics if the tensor is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("AsFloat32 on %v tensor", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 returns the buffer as an int32 slice (zero-copy).
// Panics if the tensor is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("AsInt32 on %v tensor", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsBool returns the buffer as a bool slice (zero-copy).
// Panics if the tensor is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("AsBool on %v tensor", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*bool)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	clone := &RawTensor{
		data:   make([]byte, len(r.data)),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
	copy(clone.data, r.data)
	return clone
}

// View returns a RawTensor sharing this tensor's buffer with a new shape.
// The element count must match.
func (r *RawTensor) View(shape Shape) *RawTensor {
	if shape.NumElements() != r.NumElements() {
		panic(fmt.Sprintf("cannot view %v tensor as %v", r.shape, shape))
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
	}
}
