package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/seqnet/internal/tensor"
)

// ReadWeights reads a file of comma-separated numbers, e.g. exported
// convolution weights or a test image.
func ReadWeights[T tensor.Float](path string) ([]T, error) {
	//nolint:gosec // G304: path is supplied by the user on purpose
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	values, err := ParseWeights[T](file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// ParseWeights parses comma-separated numbers. Whitespace around values is
// ignored and a trailing comma is allowed.
func ParseWeights[T tensor.Float](r io.Reader) ([]T, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fields := strings.Split(string(content), ",")
	values := make([]T, 0, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			if i == len(fields)-1 {
				break
			}
			return nil, fmt.Errorf("value %d is empty", i)
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values = append(values, T(v))
	}
	return values, nil
}

// WriteValues writes values as ", "-separated text.
func WriteValues[T tensor.Float](w io.Writer, values []T) error {
	bitSize := 64
	if tensor.DTypeOf[T]() == tensor.Float32 {
		bitSize = 32
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, bitSize)
	}
	_, err := io.WriteString(w, strings.Join(parts, ", "))
	return err
}
