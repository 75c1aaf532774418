// Package dataset loads training data and raw parameter files for seqnet
// models: MNIST IDX files, the XOR toy set and comma-separated weight files.
package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/seqnet/internal/tensor"
)

// IDX magic numbers.
const (
	MagicLabels = 2049 // idx1-ubyte: one byte per label
	MagicImages = 2051 // idx3-ubyte: count x rows x cols bytes
)

// NumClasses is the width of the one-hot label vectors.
const NumClasses = 10

// MaxImageSide bounds the rows and cols of an IDX image header.
const MaxImageSide = 4096

// readChunk caps allocations made from header counts before data arrives.
const readChunk = 1 << 16

// ErrInvalidMagic is returned for files that are neither IDX labels nor
// IDX images.
var ErrInvalidMagic = errors.New("invalid IDX magic number")

// ErrInvalidDimensions is returned for image headers with empty or oversized
// sides.
var ErrInvalidDimensions = errors.New("invalid IDX image dimensions")

// IDX holds a decoded IDX file.
//
// For images Sizes is [count, rows, cols] and every sample is the image
// flattened row by row, scaled to [0, 1]. For labels Sizes is [count] and
// every sample is a one-hot vector over NumClasses.
type IDX[T tensor.Float] struct {
	Magic uint32
	Sizes []int
	Data  [][]T
}

// Len returns the number of samples.
func (d *IDX[T]) Len() int { return len(d.Data) }

// Head returns the first n samples (all of them if n is out of range).
func (d *IDX[T]) Head(n int) [][]T {
	if n < 0 || n > len(d.Data) {
		n = len(d.Data)
	}
	return d.Data[:n]
}

// ReadIDX decodes the IDX file at path.
func ReadIDX[T tensor.Float](path string) (*IDX[T], error) {
	//nolint:gosec // G304: path is supplied by the user on purpose
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	d, err := DecodeIDX[T](bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// DecodeIDX reads an IDX label or image stream.
//
// IDX file format (big endian):
//
//	magic number: 4 bytes (2049 labels, 2051 images)
//	number of items: 4 bytes
//	rows, cols: 4 bytes each (images only)
//	data: unsigned bytes
func DecodeIDX[T tensor.Float](r io.Reader) (*IDX[T], error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}

	switch magic {
	case MagicLabels:
		return decodeLabels[T](r)
	case MagicImages:
		return decodeImages[T](r)
	default:
		return nil, fmt.Errorf("%w: got %d, want %d or %d", ErrInvalidMagic, magic, MagicLabels, MagicImages)
	}
}

func decodeLabels[T tensor.Float](r io.Reader) (*IDX[T], error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("failed to read label count: %w", err)
	}
	count := int(n)

	// The header count is untrusted: buffers grow with the bytes actually read.
	buf := make([]byte, min(count, readChunk))
	data := make([][]T, 0, min(count, readChunk))
	for len(data) < count {
		chunk := buf[:min(count-len(data), len(buf))]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("failed to read labels: %w", err)
		}
		for _, label := range chunk {
			if int(label) >= NumClasses {
				return nil, fmt.Errorf("label %d is %d, want < %d", len(data), label, NumClasses)
			}
			onehot := make([]T, NumClasses)
			onehot[label] = 1
			data = append(data, onehot)
		}
	}
	return &IDX[T]{Magic: MagicLabels, Sizes: []int{count}, Data: data}, nil
}

func decodeImages[T tensor.Float](r io.Reader) (*IDX[T], error) {
	var dims [3]uint32
	if err := binary.Read(r, binary.BigEndian, &dims); err != nil {
		return nil, fmt.Errorf("failed to read image dimensions: %w", err)
	}
	count, rows, cols := int(dims[0]), int(dims[1]), int(dims[2])
	if rows == 0 || cols == 0 || rows > MaxImageSide || cols > MaxImageSide {
		return nil, fmt.Errorf("%w: image %dx%d, sides must be in [1, %d]",
			ErrInvalidDimensions, rows, cols, MaxImageSide)
	}

	pixels := make([]byte, rows*cols)
	data := make([][]T, 0, min(count, readChunk))
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		image := make([]T, len(pixels))
		for j, p := range pixels {
			image[j] = T(p) / 255
		}
		data = append(data, image)
	}
	return &IDX[T]{Magic: MagicImages, Sizes: []int{count, rows, cols}, Data: data}, nil
}

// ArgMax returns the index of the largest value, or -1 for an empty slice.
func ArgMax[T tensor.Float](values []T) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}
