package tensor

import (
	"errors"
	"testing"
)

// Test helpers

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDTypeOf(t *testing.T) {
	type weight float32

	if got := DTypeOf[float32](); got != Float32 {
		t.Errorf("DTypeOf[float32]() = %s", got)
	}
	if got := DTypeOf[float64](); got != Float64 {
		t.Errorf("DTypeOf[float64]() = %s", got)
	}
	if got := DTypeOf[weight](); got != Float32 {
		t.Errorf("DTypeOf[weight]() = %s", got)
	}
}

// Shape Tests

func TestNewShapeNormalizesRankOne(t *testing.T) {
	assertEqualShape(t, Shape{5, 1}, NewShape(5), "rank-1")
	assertEqualShape(t, Shape{2, 3}, NewShape(2, 3), "rank-2")
	assertEqualShape(t, Shape{}, NewShape(), "rank-0")
}

func TestShapeComputeStrides(t *testing.T) {
	tests := []struct {
		shape   Shape
		strides []int
	}{
		{Shape{2, 3}, []int{3, 1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
		{Shape{3, 3, 3, 32}, []int{288, 96, 32, 1}},
	}

	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		for i := range got {
			if got[i] != tt.strides[i] {
				t.Errorf("%v.ComputeStrides() = %v, want %v", tt.shape, got, tt.strides)
				break
			}
		}
	}
}

func TestShapeRowsAndLast(t *testing.T) {
	s := Shape{4, 5, 6}
	if s.Rows() != 20 || s.Last() != 6 {
		t.Errorf("Rows/Last of %v = %d/%d, want 20/6", s, s.Rows(), s.Last())
	}
	assertEqualShape(t, Shape{4, 5, 9}, s.WithLast(9), "WithLast")
	assertEqualShape(t, Shape{4, 5, 6}, s, "WithLast must not mutate")
}

// Tensor Tests

func TestEmpty(t *testing.T) {
	e := Empty[float64]()
	if !e.IsEmpty() || e.NumElements() != 0 || e.Rank() != 0 {
		t.Errorf("Empty() = %v with %d elements", e.Shape(), e.NumElements())
	}
}

func TestIndexResolvesStrides(t *testing.T) {
	data := make([]float64, 24)
	for i := range data {
		data[i] = float64(i)
	}
	x := MustWith(Shape{2, 3, 4}, data)

	v, err := x.Index(1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if v != 23 {
		t.Errorf("Index(1,2,3) = %v, want 23", v)
	}
	if got := x.At(0, 1, 2); got != 6 {
		t.Errorf("At(0,1,2) = %v, want 6", got)
	}

	if err := x.SetIndex(-1, 1, 0, 0); err != nil {
		t.Fatal(err)
	}
	if x.Data()[12] != -1 {
		t.Errorf("SetIndex wrote to wrong offset")
	}
}

func TestIndexOutOfRange(t *testing.T) {
	x := Zeros[float32](Shape{2, 3})

	cases := [][]int{{2, 0}, {0, 3}, {-1, 0}, {0}, {0, 0, 0}}
	for _, idx := range cases {
		if _, err := x.Index(idx...); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Index(%v) error = %v, want ErrOutOfRange", idx, err)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("At() should panic on out of range index")
		}
	}()
	x.At(5, 5)
}

func TestCloneIsDeep(t *testing.T) {
	a := MustWith(Shape{2, 2}, []float64{1, 2, 3, 4})
	b := a.Clone()
	b.Set(99, 0, 0)

	if a.At(0, 0) != 1 {
		t.Error("Clone shares buffer with original")
	}
	if !a.Shape().Equal(b.Shape()) {
		t.Errorf("Clone shape = %v, want %v", b.Shape(), a.Shape())
	}
}

func TestReshape(t *testing.T) {
	a := MustWith(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})

	r, err := a.Reshape(Shape{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	assertEqualShape(t, Shape{3, 2}, r.Shape(), "Reshape")
	if r.At(2, 1) != 6 {
		t.Errorf("Reshape reordered data")
	}

	if _, err := a.Reshape(Shape{4, 2}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Reshape to wrong size error = %v, want ErrShapeMismatch", err)
	}
}

func TestTensorString(t *testing.T) {
	x := Zeros[float32](Shape{2, 3})
	if got := x.String(); got != "Tensor[float32][2 3]" {
		t.Errorf("String() = %q", got)
	}
}
