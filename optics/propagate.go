package optics

import (
	"math"
	"math/cmplx"
)

// TrialField forms amplitude*exp(i*phase) sample by sample. A nil phase is
// treated as the zero field.
func TrialField(amplitude, phase [][]float64) [][]complex128 {
	out := make([][]complex128, len(amplitude))
	for y := range amplitude {
		out[y] = make([]complex128, len(amplitude[y]))
		for x, a := range amplitude[y] {
			if phase == nil {
				out[y][x] = complex(a, 0)
				continue
			}
			out[y][x] = complex(a, 0) * cmplx.Exp(complex(0, phase[y][x]))
		}
	}
	return out
}

// Propagate applies one angular-spectrum propagation step: the centred
// spectrum of field is multiplied by kernel and transformed back. field and
// kernel must have the same shape; field is not modified.
func Propagate(field, kernel [][]complex128) [][]complex128 {
	spectrum := CenteredFFT2(field)
	for y := range spectrum {
		for x := range spectrum[y] {
			spectrum[y][x] *= kernel[y][x]
		}
	}
	return CenteredIFFT2(spectrum)
}

// Amplitude returns |t|.
func Amplitude(t [][]complex128) [][]float64 {
	out := make([][]float64, len(t))
	for y := range t {
		out[y] = make([]float64, len(t[y]))
		for x, v := range t[y] {
			out[y][x] = cmplx.Abs(v)
		}
	}
	return out
}

// WrappedPhase returns -arg(t). Values lie in [-π, π]; a zero sample gives 0
// whatever the signs of its zero parts.
func WrappedPhase(t [][]complex128) [][]float64 {
	out := make([][]float64, len(t))
	for y := range t {
		out[y] = make([]float64, len(t[y]))
		for x, v := range t[y] {
			out[y][x] = -arg(v)
		}
	}
	return out
}

// arg is cmplx.Phase with 0 for every signed zero; cmplx.Phase(-0+0i) is π.
func arg(v complex128) float64 {
	if v == 0 {
		return 0
	}
	return cmplx.Phase(v)
}

// Absorption returns -ln(amplitude). Zero amplitude yields +Inf and is left
// for the caller to mask.
func Absorption(amplitude [][]float64) [][]float64 {
	out := make([][]float64, len(amplitude))
	for y := range amplitude {
		out[y] = make([]float64, len(amplitude[y]))
		for x, a := range amplitude[y] {
			out[y][x] = -math.Log(a)
		}
	}
	return out
}

// DetectorPhase returns arg(u), the phase of a detector-plane field used as
// the next phase guess.
func DetectorPhase(u [][]complex128) [][]float64 {
	out := make([][]float64, len(u))
	for y := range u {
		out[y] = make([]float64, len(u[y]))
		for x, v := range u[y] {
			out[y][x] = arg(v)
		}
	}
	return out
}
