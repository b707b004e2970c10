package unwrap

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// cosineTransform computes orthonormal DCT-II (forward) and DCT-III
// (inverse) transforms of length n through FFTs of the length-2n even
// extension. gonum's fourier.DCT is a type I transform, whose basis does not
// diagonalise the cell-centred Neumann Laplacian used by SolvePoisson.
type cosineTransform struct {
	n     int
	fft   *fourier.FFT      // real FFT of length 2n
	cfft  *fourier.CmplxFFT // complex FFT of length 2n
	twid  []complex128      // exp(-iπk/2n)
	scale []float64         // orthonormal weights sqrt(1/n), sqrt(2/n)

	ext   []float64
	coeff []complex128
	seq   []complex128
}

func newCosineTransform(n int) *cosineTransform {
	c := &cosineTransform{
		n:     n,
		fft:   fourier.NewFFT(2 * n),
		cfft:  fourier.NewCmplxFFT(2 * n),
		twid:  make([]complex128, n),
		scale: make([]float64, n),
		ext:   make([]float64, 2*n),
		coeff: make([]complex128, n+1),
		seq:   make([]complex128, 2*n),
	}
	for k := 0; k < n; k++ {
		c.twid[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/float64(2*n)))
		c.scale[k] = math.Sqrt(2 / float64(n))
	}
	c.scale[0] = math.Sqrt(1 / float64(n))
	return c
}

// forward writes the orthonormal DCT-II of src into dst:
//
//	dst[k] = s_k Σ src[j] cos(πk(2j+1)/2n)
//
// dst and src may be the same slice.
func (c *cosineTransform) forward(dst, src []float64) {
	n := c.n
	for j := 0; j < n; j++ {
		c.ext[j] = src[j]
		c.ext[2*n-1-j] = src[j]
	}
	c.fft.Coefficients(c.coeff, c.ext)
	for k := 0; k < n; k++ {
		dst[k] = c.scale[k] * real(c.twid[k]*c.coeff[k]) / 2
	}
}

// inverse writes the orthonormal DCT-III of src into dst, undoing forward.
// dst and src may be the same slice.
func (c *cosineTransform) inverse(dst, src []float64) {
	n := c.n
	for k := 0; k < n; k++ {
		// conj(twid) = exp(+iπk/2n)
		c.seq[k] = complex(c.scale[k]*src[k], 0) * cmplx.Conj(c.twid[k])
	}
	for k := n; k < 2*n; k++ {
		c.seq[k] = 0
	}
	c.cfft.Sequence(c.seq, c.seq)
	for j := 0; j < n; j++ {
		dst[j] = real(c.seq[j])
	}
}

// dct2 returns the orthonormal 2D DCT-II of a (rows then columns).
func dct2(a [][]float64) [][]float64 {
	return transform2D(a, true)
}

// idct2 returns the orthonormal 2D DCT-III of a, the inverse of dct2.
func idct2(a [][]float64) [][]float64 {
	return transform2D(a, false)
}

func transform2D(a [][]float64, forward bool) [][]float64 {
	h := len(a)
	if h == 0 {
		return nil
	}
	w := len(a[0])
	out := make([][]float64, h)
	for y := range a {
		out[y] = make([]float64, w)
		copy(out[y], a[y])
	}
	if w == 0 {
		return out
	}

	rowT := newCosineTransform(w)
	for y := 0; y < h; y++ {
		if forward {
			rowT.forward(out[y], out[y])
		} else {
			rowT.inverse(out[y], out[y])
		}
	}

	colT := newCosineTransform(h)
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = out[y][x]
		}
		if forward {
			colT.forward(col, col)
		} else {
			colT.inverse(col, col)
		}
		for y := 0; y < h; y++ {
			out[y][x] = col[y]
		}
	}
	return out
}
