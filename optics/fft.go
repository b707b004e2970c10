package optics

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// CenteredFFT2 returns the 2D discrete Fourier transform of a for an array
// whose origin sits at the centre (index N/2 on each axis); the spectrum is
// returned with zero frequency at the centre as well. a is not modified.
func CenteredFFT2(a [][]complex128) [][]complex128 {
	out := ifftshift2D(a)
	fft2InPlace(out, true)
	return fftshift2D(out)
}

// CenteredIFFT2 is the inverse of CenteredFFT2, normalised so that
// CenteredIFFT2(CenteredFFT2(a)) == a up to rounding.
func CenteredIFFT2(a [][]complex128) [][]complex128 {
	out := ifftshift2D(a)
	fft2InPlace(out, false)

	// Gonum transforms are unnormalized: forward then inverse multiplies by N.
	h, w := len(out), 0
	if h > 0 {
		w = len(out[0])
	}
	scale := complex(1/float64(h*w), 0)
	for y := range out {
		for x := range out[y] {
			out[y][x] *= scale
		}
	}
	return fftshift2D(out)
}

// fft2InPlace transforms rows then columns using gonum's CmplxFFT.
func fft2InPlace(a [][]complex128, forward bool) {
	h := len(a)
	if h == 0 {
		return
	}
	w := len(a[0])
	if w == 0 {
		return
	}

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	// rows
	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		if forward {
			rowFFT.Coefficients(tmp, tmp)
		} else {
			rowFFT.Sequence(tmp, tmp)
		}
		copy(a[y], tmp)
	}

	// cols
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}

// fftshift2D moves index 0 of each axis to index N/2.
func fftshift2D(a [][]complex128) [][]complex128 {
	return roll2D(a, false)
}

// ifftshift2D moves index N/2 of each axis to index 0. For even sizes it is
// the same permutation as fftshift2D.
func ifftshift2D(a [][]complex128) [][]complex128 {
	return roll2D(a, true)
}

func roll2D(a [][]complex128, inverse bool) [][]complex128 {
	h := len(a)
	if h == 0 {
		return nil
	}
	w := len(a[0])
	out := MakeComplex2D(h, w)
	shY := h / 2
	shX := w / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if inverse {
				out[y][x] = a[(y+shY)%h][(x+shX)%w]
			} else {
				out[(y+shY)%h][(x+shX)%w] = a[y][x]
			}
		}
	}
	return out
}
