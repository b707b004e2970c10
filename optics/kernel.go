package optics

import (
	"math"
	"math/cmplx"
)

// Kernel returns the angular-spectrum transfer function
//
//	H(fx, fy) = exp(i 2π z sqrt(1/λ² - fx² - fy²))
//
// on the frequency grid of g, for wavelength λ (m) and signed distance z (m).
// The square root is taken in the complex plane, so evanescent frequencies
// (1/λ² < fx² + fy²) get a real exponent instead of a NaN: they decay for
// z > 0 and grow for z < 0.
func Kernel(wavelength, distance float64, g *Grid) [][]complex128 {
	h := MakeComplex2D(g.Ny, g.Nx)
	invLambda2 := 1 / (wavelength * wavelength)
	k := complex(0, 2*math.Pi*distance)
	for y := 0; y < g.Ny; y++ {
		for x := 0; x < g.Nx; x++ {
			fx := g.Fx[y][x]
			fy := g.Fy[y][x]
			root := cmplx.Sqrt(complex(invLambda2-fx*fx-fy*fy, 0))
			h[y][x] = cmplx.Exp(k * root)
		}
	}
	return h
}

// ConjugateKernel returns the complex conjugate of Kernel, the reverse
// propagation over -distance on propagating frequencies. Evanescent
// frequencies keep the decay of the forward kernel; Kernel(-distance) would
// grow there as exp(2π|z|s) and overflow.
func ConjugateKernel(wavelength, distance float64, g *Grid) [][]complex128 {
	h := Kernel(wavelength, distance, g)
	for y := range h {
		for x, v := range h[y] {
			h[y][x] = cmplx.Conj(v)
		}
	}
	return h
}

// IsEvanescent reports whether the frequency (fx, fy) lies beyond the
// propagating-wave limit 1/λ.
func IsEvanescent(wavelength, fx, fy float64) bool {
	return fx*fx+fy*fy > 1/(wavelength*wavelength)
}
