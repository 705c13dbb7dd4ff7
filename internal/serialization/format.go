// Package serialization implements the .strand checkpoint format for model
// state dicts.
//
// Layout:
//
//	[4 bytes: magic "STRD"]
//	[4 bytes: version (uint32 LE)]
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON metadata]
//	[tensor data: raw bytes, 64-byte aligned]
//	[32 bytes: SHA-256 over everything before it]
//
// The header lists every tensor's name, dtype, shape, and offset into the
// data section. Tensor bytes are written in the platform byte order of the
// in-memory buffers (little-endian on all supported targets).
package serialization

import (
	"time"

	"github.com/strand-ml/strand/internal/tensor"
)

const (
	// Magic identifies a .strand file.
	Magic = "STRD"
	// FormatVersion is the current format revision.
	FormatVersion = 1
	// DataAlignment aligns the start of the tensor data section.
	DataAlignment = 64
	// checksumSize is the trailing SHA-256 digest length.
	checksumSize = 32
	// maxHeaderSize bounds the JSON header to reject corrupt files early.
	maxHeaderSize = 16 << 20
)

// Data type names used in the JSON header.
const (
	dtypeFloat32 = "float32"
	dtypeInt32   = "int32"
	dtypeBool    = "bool"
)

// Header is the JSON metadata block of a .strand file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return dtypeFloat32
	case tensor.Int32:
		return dtypeInt32
	case tensor.Bool:
		return dtypeBool
	default:
		return "unknown"
	}
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case dtypeFloat32:
		return tensor.Float32, true
	case dtypeInt32:
		return tensor.Int32, true
	case dtypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}
