// Package unwrap removes 2π ambiguities from wrapped phase maps.
//
// The main path is a transport-of-intensity (TIE) unwrapper: the Laplacian
// of the phase is estimated from the complex field ψ = exp(iφ) and the
// resulting Poisson equation is solved with a cosine transform. Refiner
// wraps it in a loop that corrects integer wrap-count errors. QualityGuided
// is an independent reliability-sorting unwrapper used as a reference.
package unwrap

import (
	"math/cmplx"
)

// TIE is a single-pass transport-of-intensity phase unwrapper. The result
// is only defined up to an additive constant (piston).
type TIE struct {
	// Wrapper maps the phase increments of ψ onto the principal interval.
	// A nil Wrapper means Principal.
	Wrapper Wrapper
}

// Unwrap implements Unwrapper.
//
// With ψ = exp(iφ), the first differences of ψ along each axis are padded
// with a zero border and differenced again to give the discrete Laplacian
// lap; rho = Im(conj(ψ)·lap) estimates ∇²φ, and SolvePoisson integrates it.
func (u TIE) Unwrap(wrapped [][]float64) [][]float64 {
	n := len(wrapped)
	if n == 0 {
		return nil
	}
	m := len(wrapped[0])

	psi := make([][]complex128, n)
	for y := range wrapped {
		psi[y] = make([]complex128, m)
		for x, v := range wrapped[y] {
			psi[y][x] = cmplx.Exp(complex(0, v))
		}
	}

	// edx[y][x] is the difference between columns x+1 and x, edy[y][x]
	// between rows y+1 and y.
	edx := make([][]complex128, n)
	for y := 0; y < n; y++ {
		edx[y] = make([]complex128, max(m-1, 0))
		for x := 0; x < m-1; x++ {
			edx[y][x] = psi[y][x+1] - psi[y][x]
		}
	}
	edy := make([][]complex128, max(n-1, 0))
	for y := 0; y < n-1; y++ {
		edy[y] = make([]complex128, m)
		for x := 0; x < m; x++ {
			edy[y][x] = psi[y+1][x] - psi[y][x]
		}
	}
	w := u.Wrapper
	if w == nil {
		w = Principal{}
	}
	edx = wrapIncrements(w, edx)
	edy = wrapIncrements(w, edy)

	rho := make([][]float64, n)
	for y := 0; y < n; y++ {
		rho[y] = make([]float64, m)
		for x := 0; x < m; x++ {
			var lap complex128
			// Zero border: a missing edge contributes nothing.
			if x < m-1 {
				lap += edx[y][x]
			}
			if x > 0 {
				lap -= edx[y][x-1]
			}
			if y < n-1 {
				lap += edy[y][x]
			}
			if y > 0 {
				lap -= edy[y-1][x]
			}
			rho[y][x] = imag(cmplx.Conj(psi[y][x]) * lap)
		}
	}
	return SolvePoisson(rho)
}

// wrapIncrements passes the argument of every complex increment through w
// and rebuilds the increment with its original modulus.
func wrapIncrements(w Wrapper, d [][]complex128) [][]complex128 {
	if len(d) == 0 || len(d[0]) == 0 {
		return d
	}
	args := make([][]float64, len(d))
	for y := range d {
		args[y] = make([]float64, len(d[y]))
		for x, v := range d[y] {
			args[y][x] = cmplx.Phase(v)
		}
	}
	wrapped := w.Wrap(args)
	out := make([][]complex128, len(d))
	for y := range d {
		out[y] = make([]complex128, len(d[y]))
		for x, v := range d[y] {
			out[y][x] = cmplx.Rect(cmplx.Abs(v), wrapped[y][x])
		}
	}
	return out
}
