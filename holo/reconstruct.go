// Package holo reconstructs the object field of a digitally recorded in-line
// hologram by angular-spectrum back-propagation, and unwraps its phase twice:
// with a reference unwrapper and with the iterative TIE/DCT unwrapper.
package holo

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bob-anderson-ok/holoreconstruct/optics"
	"github.com/bob-anderson-ok/holoreconstruct/unwrap"
)

// Result holds everything one reconstruction produces. All maps have the
// shape of the input hologram.
type Result struct {
	Field      [][]complex128 // reconstructed object field t
	Amplitude  [][]float64    // |t|
	Phase      [][]float64    // wrapped phase, -arg(t)
	Absorption [][]float64    // -ln|t|, +Inf where |t| == 0

	ReferencePhase [][]float64 // Phase unwrapped by Params.Reference
	TIEPhase       [][]float64 // Phase unwrapped by the TIE refiner

	// RefinementSteps is the number of refinement steps the TIE refiner
	// performed; see Refinement for convergence details.
	RefinementSteps int
	Refinement      unwrap.Refinement
}

// Reconstruct back-propagates hologram over p.Distance and unwraps the
// resulting phase. The hologram's mean is removed first; the caller's slices
// are not modified.
//
// Each of the p.Iterations passes forms the trial field
// hologram*exp(i*guess), starting from a zero guess, and propagates it. The
// guess for the next pass is chosen by p.PhaseUpdate. Only the last pass is
// kept.
func Reconstruct(hologram [][]float64, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ny, nx, err := optics.RectSize(hologram)
	if err != nil {
		return nil, &optics.ConfigurationError{Param: "hologram", Reason: err.Error()}
	}
	g, err := optics.NewGrid(ny, nx, p.Dx, p.Dy)
	if err != nil {
		return nil, err
	}

	imgH := removeMean(hologram)
	kernel := optics.Kernel(p.Wavelength, p.Distance, g)
	var back [][]complex128
	if p.PhaseUpdate == PhaseUpdateGerchbergSaxton && p.Iterations > 1 {
		back = optics.ConjugateKernel(p.Wavelength, p.Distance, g)
	}

	var t [][]complex128
	var guess [][]float64
	for i := 0; i < p.Iterations; i++ {
		if p.Verbose {
			fmt.Printf("Iteration %d\n", i)
		}
		t = optics.Propagate(optics.TrialField(imgH, guess), kernel)

		if back != nil && i < p.Iterations-1 {
			guess = optics.DetectorPhase(optics.Propagate(phaseObject(t), back))
		}
	}

	return analyze(t, p), nil
}

// ReconstructField propagates an already complex detector-plane field once
// over p.Distance and analyses it like Reconstruct. It serves fields that
// were demodulated or simulated elsewhere; p.Iterations and p.PhaseUpdate
// are not used.
func ReconstructField(detector [][]complex128, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ny, nx, err := optics.ComplexRectSize(detector)
	if err != nil {
		return nil, &optics.ConfigurationError{Param: "detector field", Reason: err.Error()}
	}
	g, err := optics.NewGrid(ny, nx, p.Dx, p.Dy)
	if err != nil {
		return nil, err
	}
	if p.Verbose {
		fmt.Println("Propagating detector field")
	}
	t := optics.Propagate(detector, optics.Kernel(p.Wavelength, p.Distance, g))
	return analyze(t, p), nil
}

func analyze(t [][]complex128, p Params) *Result {
	res := &Result{Field: t}
	res.Amplitude = optics.Amplitude(t)
	res.Phase = optics.WrappedPhase(t)
	res.Absorption = optics.Absorption(res.Amplitude)

	res.ReferencePhase = p.reference().Unwrap(res.Phase)
	res.Refinement = p.refiner().Refine(res.Phase)
	res.TIEPhase = res.Refinement.Phase
	res.RefinementSteps = res.Refinement.Steps
	return res
}

// removeMean returns a copy of m with its mean subtracted. A constant m gives
// exact zeros; its floating-point mean can miss the constant by an ulp.
func removeMean(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for y := range m {
		out[y] = make([]float64, len(m[y]))
	}
	if isConstant(m) {
		return out
	}
	mu := mean2D(m)
	for y := range m {
		for x, v := range m[y] {
			out[y][x] = v - mu
		}
	}
	return out
}

func isConstant(m [][]float64) bool {
	c := m[0][0]
	for _, row := range m {
		if floats.Min(row) != c || floats.Max(row) != c {
			return false
		}
	}
	return true
}

// phaseObject keeps the phase of t and replaces its amplitude by the mean
// amplitude.
func phaseObject(t [][]complex128) [][]complex128 {
	amp := optics.Amplitude(t)
	a := mean2D(amp)
	out := optics.MakeComplex2D(len(t), len(t[0]))
	for y := range t {
		for x, v := range t[y] {
			out[y][x] = cmplx.Rect(a, cmplx.Phase(v))
		}
	}
	return out
}

func mean2D(m [][]float64) float64 {
	flat := make([]float64, 0, len(m)*len(m[0]))
	for _, row := range m {
		flat = append(flat, row...)
	}
	return stat.Mean(flat, nil)
}
