package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
// Shape{3, 20, 400} is a rank-3 tensor laid out row-major.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// A scalar (empty shape) has one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape:
// stride[i] is the product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting.
//
// Shapes are compared element-wise from the right; dimensions are compatible
// when they are equal or one of them is 1, and missing leading dimensions are
// treated as 1. A (batch, feature) dropout mask therefore broadcasts cleanly
// against a (seq, batch, feature) activation.
//
// Returns the broadcast shape, whether any broadcasting is needed, and an
// error for incompatible shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	result := make(Shape, n)
	needed := false

	for i := 0; i < n; i++ {
		aDim, bDim := 1, 1
		if j := len(a) - 1 - i; j >= 0 {
			aDim = a[j]
		}
		if j := len(b) - 1 - i; j >= 0 {
			bDim = b[j]
		}

		switch {
		case aDim == bDim:
			result[n-1-i] = aDim
		case aDim == 1:
			result[n-1-i] = bDim
			needed = true
		case bDim == 1:
			result[n-1-i] = aDim
			needed = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v", a, b)
		}
	}
	return result, needed, nil
}
