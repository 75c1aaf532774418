// Package tensor provides the N-dimensional array used by every layer of the
// network: a flat row-major buffer with derived strides, element-wise
// arithmetic and the generalized contraction Dot.
package tensor

import "unsafe"

// Float is the constraint for tensor element types.
type Float interface {
	~float32 | ~float64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// DTypeOf infers the DataType of the element type T.
func DTypeOf[T Float]() DataType {
	var dummy T
	if unsafe.Sizeof(dummy) == 4 {
		return Float32
	}
	return Float64
}
