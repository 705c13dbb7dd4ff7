// Package tensor provides the core tensor types and operations for the
// Strand text-modeling library.
package tensor

// DType is a constraint for supported tensor data types.
// Strand only needs activations (float32), token ids (int32) and masks (bool).
type DType interface {
	~float32 | ~int32 | ~bool
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Int32
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case int32:
		return Int32
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
