package serialization

import (
	"time"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "SEQN"
	FormatVersion   = 1
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Data type string constants for serialization.
const (
	DTypeFloat16 = "float16"
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Flags for the .seqn format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
	FlagHasTraining uint32 = 1 << 1 // bit 1: training settings included
)

// Header represents the JSON header in a .seqn file.
type Header struct {
	FormatVersion int               `json:"format_version"`     // Version of the .seqn format
	ID            string            `json:"id"`                 // Unique checkpoint id (UUID)
	SeqnetVersion string            `json:"seqnet_version"`     // Version of seqnet that created this file
	ModelType     string            `json:"model_type"`         // Type of model (e.g., "Sequential")
	CreatedAt     time.Time         `json:"created_at"`         // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`            // Tensor metadata
	Metadata      map[string]string `json:"metadata"`           // Custom metadata
	Training      *TrainingMeta     `json:"training,omitempty"` // Training settings (optional)
}

// TrainingMeta records how the saved parameters were produced.
type TrainingMeta struct {
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	Optimizer    string  `json:"optimizer"`
	Loss         float64 `json:"loss"` // Mean loss of the final epoch
}

// TensorMeta describes a tensor in the .seqn file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "1.weight")
	DType  string `json:"dtype"`  // Storage type (e.g., "float16", "float64")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeSize returns the byte width of a storage type.
func dtypeSize(dtype string) (int, bool) {
	switch dtype {
	case DTypeFloat16:
		return 2, true
	case DTypeFloat32:
		return 4, true
	case DTypeFloat64:
		return 8, true
	default:
		return 0, false
	}
}

// nativeDType returns the storage type matching T.
func nativeDType[T tensor.Float]() string {
	if tensor.DTypeOf[T]() == tensor.Float32 {
		return DTypeFloat32
	}
	return DTypeFloat64
}
