package optics

import (
	"errors"
	"fmt"
)

// ErrRaggedMatrix is returned when rows of a 2D array differ in length.
var ErrRaggedMatrix = errors.New("ragged matrix")

// RectSize returns the height and width of m, or an error if m is ragged.
func RectSize(m [][]float64) (h, w int, err error) {
	h = len(m)
	if h == 0 {
		return 0, 0, nil
	}
	w = len(m[0])
	for i := 1; i < h; i++ {
		if len(m[i]) != w {
			return 0, 0, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(m[i]), w, ErrRaggedMatrix)
		}
	}
	return h, w, nil
}

// ComplexRectSize is RectSize for complex arrays.
func ComplexRectSize(m [][]complex128) (h, w int, err error) {
	h = len(m)
	if h == 0 {
		return 0, 0, nil
	}
	w = len(m[0])
	for i := 1; i < h; i++ {
		if len(m[i]) != w {
			return 0, 0, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(m[i]), w, ErrRaggedMatrix)
		}
	}
	return h, w, nil
}

// MakeComplex2D allocates an h x w complex array.
func MakeComplex2D(h, w int) [][]complex128 {
	m := make([][]complex128, h)
	for i := range m {
		m[i] = make([]complex128, w)
	}
	return m
}

// MakeReal2D allocates an h x w real array.
func MakeReal2D(h, w int) [][]float64 {
	m := make([][]float64, h)
	for i := range m {
		m[i] = make([]float64, w)
	}
	return m
}

// CopyComplex2D returns a deep copy of m.
func CopyComplex2D(m [][]complex128) [][]complex128 {
	out := make([][]complex128, len(m))
	for i := range m {
		out[i] = make([]complex128, len(m[i]))
		copy(out[i], m[i])
	}
	return out
}
