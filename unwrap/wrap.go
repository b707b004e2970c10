package unwrap

import "math"

// Unwrapper turns a wrapped phase map into a continuous one of the same shape.
type Unwrapper interface {
	Unwrap(wrapped [][]float64) [][]float64
}

// Wrapper maps phase values onto the principal interval.
type Wrapper interface {
	Wrap(phase [][]float64) [][]float64
}

// WrapFunc adapts an ordinary function to the Wrapper interface.
type WrapFunc func(phase [][]float64) [][]float64

// Wrap calls f(phase).
func (f WrapFunc) Wrap(phase [][]float64) [][]float64 { return f(phase) }

// Principal wraps every sample into (-π, π] in closed form. Applying it to
// an already wrapped array returns the array unchanged.
type Principal struct{}

// Wrap implements Wrapper.
func (Principal) Wrap(phase [][]float64) [][]float64 {
	out := make([][]float64, len(phase))
	for y := range phase {
		out[y] = make([]float64, len(phase[y]))
		for x, v := range phase[y] {
			out[y][x] = WrapToPi(v)
		}
	}
	return out
}

// WrapToPi maps v onto (-π, π]. Values already in that interval are
// returned unchanged; -π maps to π.
func WrapToPi(v float64) float64 {
	k := math.Ceil((v - math.Pi) / (2 * math.Pi))
	if k == 0 {
		return v
	}
	return v - 2*math.Pi*k
}

// UnwrapperWrap uses an Unwrapper as the wrap primitive, the way the first
// TIE implementations delegated wrapToPi to a quality-guided unwrapper.
type UnwrapperWrap struct {
	Unwrapper Unwrapper
}

// Wrap implements Wrapper.
func (w UnwrapperWrap) Wrap(phase [][]float64) [][]float64 {
	return w.Unwrapper.Unwrap(phase)
}
