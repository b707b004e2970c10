package unwrap

import "math"

// SolvePoisson solves the discrete Poisson equation ∇²φ = rho on the grid of
// rho with reflecting (Neumann) boundaries, the boundary condition implied
// by the cosine basis.
//
// The solution is only defined up to an additive constant; SolvePoisson
// returns the one with zero mean and leaves fixing the piston to the caller.
// An all-zero rho gives an all-zero φ.
func SolvePoisson(rho [][]float64) [][]float64 {
	if len(rho) == 0 {
		return nil
	}
	return idct2(poissonSpectrum(rho))
}

// poissonSpectrum returns the cosine spectrum of the solution: the DCT-II of
// rho divided by the eigenvalues 2(cos(πi/M) + cos(πj/N) - 2) of the
// five-point Laplacian. The (0,0) eigenvalue is zero and its coefficient is
// set to exactly 0.
func poissonSpectrum(rho [][]float64) [][]float64 {
	spec := dct2(rho)
	n := len(spec)
	m := len(spec[0])
	for j := 0; j < n; j++ {
		cy := math.Cos(math.Pi * float64(j) / float64(n))
		for i := 0; i < m; i++ {
			if i == 0 && j == 0 {
				spec[0][0] = 0
				continue
			}
			cx := math.Cos(math.Pi * float64(i) / float64(m))
			spec[j][i] /= 2 * (cx + cy - 2)
		}
	}
	return spec
}

// Laplacian returns the five-point Laplacian of phi with reflecting
// boundaries: first differences padded with zeros at the borders, then
// differenced again. SolvePoisson inverts it exactly up to the mean.
func Laplacian(phi [][]float64) [][]float64 {
	n := len(phi)
	if n == 0 {
		return nil
	}
	m := len(phi[0])
	lap := make([][]float64, n)
	for y := 0; y < n; y++ {
		lap[y] = make([]float64, m)
		for x := 0; x < m; x++ {
			v := phi[y][x]
			if x > 0 {
				lap[y][x] += phi[y][x-1] - v
			}
			if x < m-1 {
				lap[y][x] += phi[y][x+1] - v
			}
			if y > 0 {
				lap[y][x] += phi[y-1][x] - v
			}
			if y < n-1 {
				lap[y][x] += phi[y+1][x] - v
			}
		}
	}
	return lap
}
