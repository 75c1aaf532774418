package dataset

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idxBytes(magic uint32, dims []uint32, payload []byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, magic)
	_ = binary.Write(&buf, binary.BigEndian, dims)
	buf.Write(payload)
	return buf.Bytes()
}

func TestDecodeIDX_Labels(t *testing.T) {
	raw := idxBytes(MagicLabels, []uint32{3}, []byte{0, 7, 9})

	d, err := DecodeIDX[float64](bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, uint32(MagicLabels), d.Magic)
	assert.Equal(t, []int{3}, d.Sizes)
	require.Equal(t, 3, d.Len())

	for i, label := range []int{0, 7, 9} {
		require.Len(t, d.Data[i], NumClasses)
		assert.Equal(t, label, ArgMax(d.Data[i]))
		var sum float64
		for _, v := range d.Data[i] {
			sum += v
		}
		assert.Equal(t, 1.0, sum)
	}
}

func TestDecodeIDX_Images(t *testing.T) {
	pixels := []byte{0, 255, 51, 102, 0, 0, 0, 255}
	raw := idxBytes(MagicImages, []uint32{2, 2, 2}, pixels)

	d, err := DecodeIDX[float32](bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2}, d.Sizes)
	require.Equal(t, 2, d.Len())
	assert.InDeltaSlice(t, []float32{0, 1, 0.2, 0.4}, d.Data[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 0, 0, 1}, d.Data[1], 1e-6)
	assert.Len(t, d.Head(1), 1)
	assert.Len(t, d.Head(10), 2)
}

func TestDecodeIDX_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		wantErr error
	}{
		{"bad magic", idxBytes(2050, []uint32{1}, []byte{1}), ErrInvalidMagic},
		{"empty", nil, nil},
		{"truncated labels", idxBytes(MagicLabels, []uint32{4}, []byte{1, 2}), nil},
		{"truncated image", idxBytes(MagicImages, []uint32{2, 2, 2}, []byte{1, 2, 3, 4, 5}), nil},
		{"label out of range", idxBytes(MagicLabels, []uint32{1}, []byte{10}), nil},
		{"huge label count", idxBytes(MagicLabels, []uint32{math.MaxUint32}, []byte{1, 2}), io.ErrUnexpectedEOF},
		{"huge label count no data", idxBytes(MagicLabels, []uint32{math.MaxUint32}, nil), io.EOF},
		{"huge image count", idxBytes(MagicImages, []uint32{math.MaxUint32, 28, 28}, []byte{1, 2, 3}), io.ErrUnexpectedEOF},
		{"zero rows", idxBytes(MagicImages, []uint32{1, 0, 28}, nil), ErrInvalidDimensions},
		{"zero cols", idxBytes(MagicImages, []uint32{math.MaxUint32, 28, 0}, nil), ErrInvalidDimensions},
		{"oversized image", idxBytes(MagicImages, []uint32{1, math.MaxUint32, math.MaxUint32}, nil), ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeIDX[float64](bytes.NewReader(tt.raw))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeIDX_LabelsAcrossChunks(t *testing.T) {
	count := readChunk + 3
	payload := make([]byte, count)
	for i := range payload {
		payload[i] = byte(i % NumClasses)
	}

	d, err := DecodeIDX[float32](bytes.NewReader(idxBytes(MagicLabels, []uint32{uint32(count)}, payload)))
	require.NoError(t, err)
	require.Equal(t, count, d.Len())
	assert.Equal(t, []int{count}, d.Sizes)
	assert.Equal(t, 0, ArgMax(d.Data[0]))
	assert.Equal(t, readChunk%NumClasses, ArgMax(d.Data[readChunk]))
	assert.Equal(t, (count-1)%NumClasses, ArgMax(d.Data[count-1]))
}

func TestReadIDX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.idx1-ubyte")
	require.NoError(t, os.WriteFile(path, idxBytes(MagicLabels, []uint32{2}, []byte{4, 2}), 0o600))

	d, err := ReadIDX[float64](path)
	require.NoError(t, err)
	assert.Equal(t, 4, ArgMax(d.Data[0]))
	assert.Equal(t, 2, ArgMax(d.Data[1]))

	_, err = ReadIDX[float64](filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestArgMax(t *testing.T) {
	assert.Equal(t, -1, ArgMax([]float64{}))
	assert.Equal(t, 0, ArgMax([]float64{3, 3, 1}))
	assert.Equal(t, 2, ArgMax([]float64{-1, -0.5, 0.25}))
}

func TestXOR(t *testing.T) {
	samples, targets := XOR[float64]()
	require.Len(t, samples, 4)
	require.Len(t, targets, 4)
	for i, s := range samples {
		want := 0.0
		if s[0] != s[1] {
			want = 1
		}
		assert.Equal(t, []float64{want}, targets[i])
	}
}

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{"plain", "1,2,3", []float64{1, 2, 3}, false},
		{"spaces and newline", " 0.5, -1.25 ,\n3e-2\n", []float64{0.5, -1.25, 0.03}, false},
		{"trailing comma", "1, 2,", []float64{1, 2}, false},
		{"empty input", "", []float64{}, false},
		{"empty field", "1,,2", nil, true},
		{"not a number", "1,x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeights[float64](strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadWeightsAndWriteValues(t *testing.T) {
	values := []float64{0.25, -3, 1e-9, 42}

	var buf bytes.Buffer
	require.NoError(t, WriteValues(&buf, values))
	assert.Equal(t, "0.25, -3, 1e-09, 42", buf.String())

	path := filepath.Join(t.TempDir(), "weights.txt")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	got, err := ReadWeights[float64](path)
	require.NoError(t, err)
	assert.Equal(t, values, got)

	var buf32 bytes.Buffer
	require.NoError(t, WriteValues(&buf32, []float32{0.1}))
	assert.Equal(t, "0.1", buf32.String())
}
