package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB - maximum header size
	MaxTensorCount   = 10_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 256              // Maximum tensor name length
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName accepts the names nn.Sequential produces: non-empty,
// printable, without path separators or "..".
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{Type: "invalid_name", Details: "empty tensor name"}
	}
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains a path separator, '..' or a null byte",
		}
	}
	return nil
}

// ValidateTensorMeta checks that a tensor's dtype is known and that its byte
// size matches its shape.
func ValidateTensorMeta(t TensorMeta) error {
	width, ok := dtypeSize(t.DType)
	if !ok {
		return &ValidationError{Type: "unsupported_dtype", Tensor: t.Name, Details: fmt.Sprintf("dtype %q", t.DType)}
	}
	if len(t.Shape) == 0 {
		return &ValidationError{Type: "invalid_shape", Tensor: t.Name, Details: "empty shape"}
	}
	n := int64(1)
	for _, d := range t.Shape {
		if d <= 0 {
			return &ValidationError{Type: "invalid_shape", Tensor: t.Name, Details: fmt.Sprintf("shape %v", t.Shape)}
		}
		n *= int64(d)
	}
	if n*int64(width) != t.Size {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v of %s needs %d bytes, header says %d", t.Shape, t.DType, n*int64(width), t.Size),
		}
	}
	return nil
}

// ValidateHeader performs comprehensive header validation against the size
// of the data section that follows it.
func ValidateHeader(h *Header, dataSize int64) error {
	if _, err := uuid.Parse(h.ID); err != nil {
		return &ValidationError{Type: "invalid_id", Details: fmt.Sprintf("%q: %v", h.ID, err)}
	}

	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_name", Tensor: t.Name, Details: "tensor listed twice"}
		}
		seen[t.Name] = true
		if err := ValidateTensorMeta(t); err != nil {
			return err
		}
	}

	return ValidateTensorOffsets(h.Tensors, dataSize)
}
