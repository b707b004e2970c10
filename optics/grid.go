// Package optics implements scalar angular-spectrum propagation of 2D complex
// fields: the sampling grid, the propagation kernel, centred 2D Fourier
// transforms and the derived amplitude, phase and absorption maps.
//
// All arrays are row-major [][]float64 or [][]complex128 with rows along y.
package optics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Grid holds the spatial and spatial-frequency coordinates of an Ny x Nx
// sampling grid, broadcast to full 2D arrays.
type Grid struct {
	Nx, Ny int
	Dx, Dy float64 // pixel pitch (m)

	X, Y   [][]float64 // spatial coordinates (m)
	Fx, Fy [][]float64 // spatial frequencies (1/m)
}

// NewGrid builds the coordinate arrays for an ny x nx image sampled with
// pitches dx, dy. Sample k of an axis of length N sits at (k - N/2)*pitch,
// and the frequency axis uses the same indices scaled by 1/(N*pitch), so both
// are centred on zero with the zero sample at index N/2.
func NewGrid(ny, nx int, dx, dy float64) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, &ConfigurationError{Param: "image size", Reason: fmt.Sprintf("%d x %d has no samples", ny, nx)}
	}
	if err := RequirePositive("dx", dx); err != nil {
		return nil, err
	}
	if err := RequirePositive("dy", dy); err != nil {
		return nil, err
	}

	nxAxis := centredIndices(nx)
	nyAxis := centredIndices(ny)

	x := make([]float64, nx)
	fx := make([]float64, nx)
	floats.ScaleTo(x, dx, nxAxis)
	floats.ScaleTo(fx, 1/(float64(nx)*dx), nxAxis)

	y := make([]float64, ny)
	fy := make([]float64, ny)
	floats.ScaleTo(y, dy, nyAxis)
	floats.ScaleTo(fy, 1/(float64(ny)*dy), nyAxis)

	g := &Grid{Nx: nx, Ny: ny, Dx: dx, Dy: dy}
	g.X, g.Y = meshgrid(x, y)
	g.Fx, g.Fy = meshgrid(fx, fy)
	return g, nil
}

// DFx returns the frequency spacing along x, 1/(Nx*Dx).
func (g *Grid) DFx() float64 { return 1 / (float64(g.Nx) * g.Dx) }

// DFy returns the frequency spacing along y, 1/(Ny*Dy).
func (g *Grid) DFy() float64 { return 1 / (float64(g.Ny) * g.Dy) }

// centredIndices returns -n/2, -n/2+1, ... (n values). For odd n the values
// are half-integers.
func centredIndices(n int) []float64 {
	idx := make([]float64, n)
	start := -float64(n) / 2
	for k := range idx {
		idx[k] = start + float64(k)
	}
	return idx
}

func meshgrid(x, y []float64) (xx, yy [][]float64) {
	xx = MakeReal2D(len(y), len(x))
	yy = MakeReal2D(len(y), len(x))
	for r := range y {
		copy(xx[r], x)
		for c := range x {
			yy[r][c] = y[r]
		}
	}
	return xx, yy
}
