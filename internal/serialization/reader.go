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

	"github.com/x448/float16"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Load reads a .seqn file, verifies it and converts every tensor to T.
func Load[T tensor.Float](path string) (map[string]*tensor.Tensor[T], Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode[T](file)
}

// ReadHeader returns the JSON header of a .seqn file without reading or
// verifying the tensor data.
func ReadHeader(path string) (Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	header, _, err := parseHeader(bufio.NewReader(file))
	return header, err
}

// Decode reads a .seqn stream from r.
//
// The data section checksum and the header (names, sizes, offsets, id) are
// verified before any tensor is built.
func Decode[T tensor.Float](r io.Reader) (map[string]*tensor.Tensor[T], Header, error) {
	br := bufio.NewReader(r)
	header, checksum, err := parseHeader(br)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header: %w", err)
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateChecksum(sha256.Sum256(data), checksum); err != nil {
		return nil, Header{}, err
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	stateDict := make(map[string]*tensor.Tensor[T], len(header.Tensors))
	for _, meta := range header.Tensors {
		raw := data[meta.Offset : meta.Offset+meta.Size]
		t, err := tensor.With(tensor.Shape(meta.Shape), decodeValues[T](raw, meta.DType))
		if err != nil {
			return nil, Header{}, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		stateDict[meta.Name] = t
	}
	return stateDict, header, nil
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

// parseHeader reads the fixed header, the JSON header and the padding,
// leaving r at the start of the data section.
func parseHeader(r io.Reader) (Header, [32]byte, error) {
	var checksum [32]byte

	var fixed [FixedHeaderSize]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, checksum, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return Header{}, checksum, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != FormatVersion {
		return Header{}, checksum, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, v, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[12:20])
	if headerSize > MaxHeaderSize {
		return Header{}, checksum, ErrHeaderTooLarge
	}
	copy(checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return Header{}, checksum, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	dec := json.NewDecoder(bytes.NewReader(headerJSON))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&header); err != nil {
		return Header{}, checksum, fmt.Errorf("failed to unmarshal header: %w", err)
	}

	if _, err := io.CopyN(io.Discard, r, int64(padding(int(headerSize)))); err != nil {
		return Header{}, checksum, fmt.Errorf("failed to skip padding: %w", err)
	}
	return header, checksum, nil
}

// decodeValues converts little-endian bytes of the storage type to T.
// raw must hold a whole number of values; ValidateHeader guarantees it.
func decodeValues[T tensor.Float](raw []byte, dtype string) []T {
	switch dtype {
	case DTypeFloat16:
		out := make([]T, len(raw)/2)
		for i := range out {
			out[i] = T(float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:])).Float32())
		}
		return out
	case DTypeFloat32:
		out := make([]T, len(raw)/4)
		for i := range out {
			out[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:])))
		}
		return out
	default:
		out := make([]T, len(raw)/8)
		for i := range out {
			out[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:])))
		}
		return out
	}
}
