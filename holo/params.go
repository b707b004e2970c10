package holo

import (
	"fmt"
	"math"

	"github.com/bob-anderson-ok/holoreconstruct/optics"
	"github.com/bob-anderson-ok/holoreconstruct/unwrap"
)

// PhaseUpdate selects how the detector-plane phase guess evolves between
// propagation iterations.
type PhaseUpdate int

const (
	// PhaseUpdateGerchbergSaxton constrains the object estimate to a pure
	// phase object, propagates it back to the detector and uses the phase
	// found there as the next guess.
	PhaseUpdateGerchbergSaxton PhaseUpdate = iota

	// PhaseUpdateNone keeps the zero phase guess for every iteration, so all
	// iterations repeat the first one.
	PhaseUpdateNone
)

func (p PhaseUpdate) String() string {
	switch p {
	case PhaseUpdateGerchbergSaxton:
		return "gerchberg_saxton"
	case PhaseUpdateNone:
		return "none"
	default:
		return fmt.Sprintf("PhaseUpdate(%d)", int(p))
	}
}

// ParsePhaseUpdate accepts the names returned by PhaseUpdate.String.
func ParsePhaseUpdate(s string) (PhaseUpdate, error) {
	switch s {
	case "gerchberg_saxton", "":
		return PhaseUpdateGerchbergSaxton, nil
	case "none":
		return PhaseUpdateNone, nil
	}
	return 0, &optics.ConfigurationError{Param: "phase_update", Reason: fmt.Sprintf("%q is not gerchberg_saxton or none", s)}
}

// Params holds the physical and numerical reconstruction parameters.
type Params struct {
	// Wavelength is the illumination wavelength (m).
	Wavelength float64

	// Dx, Dy are the detector pixel pitches (m).
	Dx, Dy float64

	// Distance is the propagation distance fed to the kernel (m). Its sign
	// selects the direction.
	Distance float64

	// RecordingDistance is the nominal source-to-detector distance (m). It
	// is reported but takes no part in the computation.
	RecordingDistance float64

	// Iterations is the number of propagation iterations, at least 1.
	Iterations int

	PhaseUpdate PhaseUpdate

	// MaxRefinementSteps caps the wrap-count refinement loop.
	MaxRefinementSteps int

	// Verbose prints a progress marker per iteration.
	Verbose bool

	// Reference is the unwrapper whose output is returned as
	// Result.ReferencePhase. Nil means unwrap.QualityGuided.
	Reference unwrap.Unwrapper

	// Wrapper is the wrap primitive used inside the TIE unwrapper. Nil
	// means unwrap.Principal.
	Wrapper unwrap.Wrapper
}

// DefaultParams returns the parameters of the reference setup: 488 nm
// illumination, 1.12 µm pixels, 7 mm propagation, one iteration.
func DefaultParams() Params {
	return Params{
		Wavelength:         488e-9,
		Dx:                 1.12e-6,
		Dy:                 1.12e-6,
		Distance:           7e-3,
		RecordingDistance:  4e-2,
		Iterations:         1,
		PhaseUpdate:        PhaseUpdateGerchbergSaxton,
		MaxRefinementSteps: unwrap.DefaultMaxSteps,
	}
}

// Validate reports the first parameter that cannot be used, as an
// *optics.ConfigurationError.
func (p Params) Validate() error {
	if err := optics.RequirePositive("wavelength", p.Wavelength); err != nil {
		return err
	}
	if err := optics.RequirePositive("dx", p.Dx); err != nil {
		return err
	}
	if err := optics.RequirePositive("dy", p.Dy); err != nil {
		return err
	}
	if math.IsNaN(p.Distance) || math.IsInf(p.Distance, 0) {
		return &optics.ConfigurationError{Param: "distance", Reason: fmt.Sprintf("%v is not finite", p.Distance)}
	}
	if p.Iterations < 1 {
		return &optics.ConfigurationError{Param: "iterations", Reason: fmt.Sprintf("%d must be >= 1", p.Iterations)}
	}
	if p.MaxRefinementSteps < 0 {
		return &optics.ConfigurationError{Param: "max refinement steps", Reason: fmt.Sprintf("%d must be >= 0", p.MaxRefinementSteps)}
	}
	switch p.PhaseUpdate {
	case PhaseUpdateGerchbergSaxton, PhaseUpdateNone:
	default:
		return &optics.ConfigurationError{Param: "phase update", Reason: p.PhaseUpdate.String() + " is unknown"}
	}
	return nil
}

func (p Params) reference() unwrap.Unwrapper {
	if p.Reference == nil {
		return unwrap.QualityGuided{}
	}
	return p.Reference
}

func (p Params) refiner() unwrap.Refiner {
	w := p.Wrapper
	if w == nil {
		w = unwrap.Principal{}
	}
	return unwrap.Refiner{TIE: unwrap.TIE{Wrapper: w}, MaxSteps: p.MaxRefinementSteps}
}
