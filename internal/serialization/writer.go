package serialization

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/x448/float16"

	"github.com/born-ml/seqnet/internal/tensor"
	"github.com/born-ml/seqnet/internal/version"
)

// Options configures how a state dictionary is written.
type Options struct {
	DType     string            // Storage type; empty stores the in-memory type
	ModelType string            // Free-form model description (e.g., "Sequential")
	Metadata  map[string]string // Custom metadata
	Training  *TrainingMeta     // Training settings (optional)
}

// Save writes a state dictionary to path in .seqn format and returns the
// header that was written.
func Save[T tensor.Float](path string, stateDict map[string]*tensor.Tensor[T], opts Options) (Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return Header{}, fmt.Errorf("failed to create file: %w", err)
	}

	header, err := Encode(file, stateDict, opts)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return Header{}, err
	}
	if err := file.Close(); err != nil {
		return Header{}, fmt.Errorf("failed to close file: %w", err)
	}
	return header, nil
}

// Encode writes a state dictionary to w in .seqn format.
//
// Tensors are laid out in name order so the same parameters always produce
// the same data section.
func Encode[T tensor.Float](w io.Writer, stateDict map[string]*tensor.Tensor[T], opts Options) (Header, error) {
	dtype := opts.DType
	if dtype == "" {
		dtype = nativeDType[T]()
	}
	width, ok := dtypeSize(dtype)
	if !ok {
		return Header{}, fmt.Errorf("encode: %w: %q", ErrUnsupportedDType, dtype)
	}

	header := Header{
		FormatVersion: FormatVersion,
		ID:            uuid.NewString(),
		SeqnetVersion: version.Version,
		ModelType:     opts.ModelType,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(stateDict)),
		Metadata:      opts.Metadata,
		Training:      opts.Training,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return Header{}, fmt.Errorf("encode: %w", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Calculate tensor offsets and encode the data section
	var data bytes.Buffer
	var currentOffset int64
	for _, name := range names {
		t := stateDict[name]
		size := int64(t.NumElements() * width)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtype,
			Shape:  []int(t.Shape().Clone()),
			Offset: currentOffset,
			Size:   size,
		})
		data.Write(encodeValues(t.Data(), dtype))
		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return Header{}, fmt.Errorf("failed to marshal header: %w", err)
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Training != nil {
		flags |= FlagHasTraining
	}

	var fixed [FixedHeaderSize]byte
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[12:20], uint64(len(headerJSON)))
	checksum := sha256.Sum256(data.Bytes())
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(fixed[:]); err != nil {
		return Header{}, fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return Header{}, fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := bw.Write(make([]byte, padding(len(headerJSON)))); err != nil {
		return Header{}, fmt.Errorf("failed to write padding: %w", err)
	}
	if _, err := bw.Write(data.Bytes()); err != nil {
		return Header{}, fmt.Errorf("failed to write tensor data: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return Header{}, fmt.Errorf("failed to flush: %w", err)
	}

	return header, nil
}

// padding returns the number of zero bytes between a JSON header of the
// given length and the 64-byte aligned data section.
func padding(headerLen int) int {
	pos := FixedHeaderSize + headerLen
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}

// encodeValues converts values to little-endian bytes of the storage type.
func encodeValues[T tensor.Float](values []T, dtype string) []byte {
	switch dtype {
	case DTypeFloat16:
		out := make([]byte, 2*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint16(out[2*i:], float16.Fromfloat32(float32(v)).Bits())
		}
		return out
	case DTypeFloat32:
		out := make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(float32(v)))
		}
		return out
	default:
		out := make([]byte, 8*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(float64(v)))
		}
		return out
	}
}
