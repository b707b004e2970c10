package holo

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/bob-anderson-ok/holoreconstruct/optics"
)

// bumpObject returns a unit-amplitude phase object whose wrapped phase
// (-arg) is a Gaussian bump of the given peak, plus the bump itself.
func bumpObject(n int, peak, sigma float64) ([][]complex128, [][]float64) {
	field := optics.MakeComplex2D(n, n)
	phase := optics.MakeReal2D(n, n)
	c := float64(n) / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx := float64(x) - c
			dy := float64(y) - c
			phase[y][x] = peak * math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma))
			field[y][x] = cmplx.Exp(complex(0, -phase[y][x]))
		}
	}
	return field, phase
}

// detectorField propagates an object field to the detector, the reverse of
// what Reconstruct does.
func detectorField(t *testing.T, object [][]complex128, p Params) [][]complex128 {
	t.Helper()
	g, err := optics.NewGrid(len(object), len(object[0]), p.Dx, p.Dy)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return optics.Propagate(object, optics.ConjugateKernel(p.Wavelength, p.Distance, g))
}

func maxOf(m [][]float64) float64 {
	v := math.Inf(-1)
	for _, row := range m {
		for _, x := range row {
			v = math.Max(v, x)
		}
	}
	return v
}

func TestReconstructConstantHologram(t *testing.T) {
	tests := []struct {
		n     int
		value float64
	}{
		{32, 7},
		{128, 7},
		{100, 0.1},
		{128, 0.1},
		{100, 0.3},
		{128, 0.3},
	}
	for _, tt := range tests {
		holo := optics.MakeReal2D(tt.n, tt.n)
		for y := range holo {
			for x := range holo[y] {
				holo[y][x] = tt.value
			}
		}
		res, err := Reconstruct(holo, DefaultParams())
		if err != nil {
			t.Fatalf("%dx%d of %g: Reconstruct failed: %v", tt.n, tt.n, tt.value, err)
		}
		for y := range holo {
			for x := range holo[y] {
				if res.Amplitude[y][x] != 0 {
					t.Fatalf("%dx%d of %g: amplitude (%d,%d) = %g, want 0", tt.n, tt.n, tt.value, y, x, res.Amplitude[y][x])
				}
				if res.Phase[y][x] != 0 || res.TIEPhase[y][x] != 0 || res.ReferencePhase[y][x] != 0 {
					t.Fatalf("%dx%d of %g: phase (%d,%d) not zero: %g %g %g", tt.n, tt.n, tt.value, y, x,
						res.Phase[y][x], res.TIEPhase[y][x], res.ReferencePhase[y][x])
				}
				if !math.IsInf(res.Absorption[y][x], 1) {
					t.Fatalf("%dx%d of %g: absorption (%d,%d) = %g, want +Inf", tt.n, tt.n, tt.value, y, x, res.Absorption[y][x])
				}
			}
		}
		if res.RefinementSteps != 0 {
			t.Errorf("%dx%d of %g: refinement steps = %d, want 0", tt.n, tt.n, tt.value, res.RefinementSteps)
		}
		if holo[3][3] != tt.value {
			t.Errorf("%dx%d of %g: Reconstruct modified its input", tt.n, tt.n, tt.value)
		}
	}
}

func TestReconstructFieldRecoversGaussianBump(t *testing.T) {
	const peak = 3.0
	p := DefaultParams()
	object, truth := bumpObject(128, peak, 12)

	res, err := ReconstructField(detectorField(t, object, p), p)
	if err != nil {
		t.Fatalf("ReconstructField failed: %v", err)
	}

	got := maxOf(res.TIEPhase)
	if math.Abs(got-peak)/peak > 0.05 {
		t.Errorf("TIE peak phase %g, want %g within 5%%", got, peak)
	}
	ref := maxOf(res.ReferencePhase)
	if math.Abs(ref-peak)/peak > 0.05 {
		t.Errorf("reference peak phase %g, want %g within 5%%", ref, peak)
	}
	for y := range truth {
		for x := range truth[y] {
			if math.Abs(res.Phase[y][x]-truth[y][x]) > 1e-8 {
				t.Fatalf("wrapped phase (%d,%d) = %g, want %g", y, x, res.Phase[y][x], truth[y][x])
			}
			if math.Abs(res.Amplitude[y][x]-1) > 1e-8 {
				t.Fatalf("amplitude (%d,%d) = %g, want 1", y, x, res.Amplitude[y][x])
			}
		}
	}
	if !res.Refinement.Converged() {
		t.Errorf("refinement did not converge: %v", res.Refinement.KChanges)
	}
}

// intensityHologram records |u|² of the bump object propagated to the
// detector.
func intensityHologram(t *testing.T, n int, p Params) [][]float64 {
	t.Helper()
	object, _ := bumpObject(n, 3, float64(n)/10)
	det := detectorField(t, object, p)
	holo := optics.MakeReal2D(n, n)
	for y := range det {
		for x := range det[y] {
			a := cmplx.Abs(det[y][x])
			holo[y][x] = a * a
		}
	}
	return holo
}

func checkFinite(t *testing.T, res *Result) {
	t.Helper()
	for y := range res.Phase {
		for x := range res.Phase[y] {
			if cmplx.IsNaN(res.Field[y][x]) || cmplx.IsInf(res.Field[y][x]) {
				t.Fatalf("field (%d,%d) = %v is not finite", y, x, res.Field[y][x])
			}
			if v := res.Phase[y][x]; math.IsNaN(v) || v < -math.Pi || v > math.Pi {
				t.Fatalf("wrapped phase (%d,%d) = %g out of range", y, x, v)
			}
			if math.IsNaN(res.TIEPhase[y][x]) || math.IsNaN(res.ReferencePhase[y][x]) {
				t.Fatalf("unwrapped phase (%d,%d) is NaN", y, x)
			}
		}
	}
}

func TestReconstructRecordedHologram(t *testing.T) {
	p := DefaultParams()
	p.Iterations = 3
	holo := intensityHologram(t, 64, p)

	res, err := Reconstruct(holo, p)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if len(res.Field) != 64 || len(res.Field[0]) != 64 {
		t.Fatalf("unexpected field shape %dx%d", len(res.Field), len(res.Field[0]))
	}
	checkFinite(t, res)
	if res.RefinementSteps > p.MaxRefinementSteps {
		t.Errorf("refinement steps %d exceed cap %d", res.RefinementSteps, p.MaxRefinementSteps)
	}
}

func TestGerchbergSaxtonCarriesPhaseGuessForward(t *testing.T) {
	p := DefaultParams()
	holo := intensityHologram(t, 64, p)

	one, err := Reconstruct(holo, p)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	p.Iterations = 3
	three, err := Reconstruct(holo, p)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	diff := 0.0
	for y := range one.Field {
		for x := range one.Field[y] {
			diff = math.Max(diff, cmplx.Abs(three.Field[y][x]-one.Field[y][x]))
		}
	}
	if diff < 1e-3 {
		t.Errorf("three Gerchberg–Saxton iterations left the field unchanged (max diff %g)", diff)
	}
}

func TestGerchbergSaxtonWithEvanescentFrequencies(t *testing.T) {
	// A pitch below λ/2 puts the outer frequencies beyond 1/λ.
	p := DefaultParams()
	p.Dx, p.Dy = 0.2e-6, 0.2e-6
	holo := intensityHologram(t, 64, p)

	for _, iterations := range []int{1, 2, 3} {
		p.Iterations = iterations
		res, err := Reconstruct(holo, p)
		if err != nil {
			t.Fatalf("%d iterations: Reconstruct failed: %v", iterations, err)
		}
		checkFinite(t, res)
	}
}

func TestPhaseUpdateNoneRepeatsFirstIteration(t *testing.T) {
	object, _ := bumpObject(32, 2, 4)
	p := DefaultParams()
	det := detectorField(t, object, p)
	holo := optics.MakeReal2D(32, 32)
	for y := range det {
		for x := range det[y] {
			holo[y][x] = real(det[y][x] * cmplx.Conj(det[y][x]))
		}
	}

	one, err := Reconstruct(holo, p)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	p.Iterations = 4
	p.PhaseUpdate = PhaseUpdateNone
	four, err := Reconstruct(holo, p)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	for y := range one.Field {
		for x := range one.Field[y] {
			if one.Field[y][x] != four.Field[y][x] {
				t.Fatalf("field (%d,%d) differs: %v vs %v", y, x, one.Field[y][x], four.Field[y][x])
			}
		}
	}

	// A single Gerchberg–Saxton iteration is the plain back-propagation.
	p.Iterations = 1
	p.PhaseUpdate = PhaseUpdateGerchbergSaxton
	gs, err := Reconstruct(holo, p)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if gs.Field[5][7] != one.Field[5][7] {
		t.Errorf("one GS iteration changed the field: %v vs %v", gs.Field[5][7], one.Field[5][7])
	}
}

func TestReconstructRejectsBadConfiguration(t *testing.T) {
	good := [][]float64{{1, 2}, {3, 4}}
	tests := []struct {
		name   string
		holo   [][]float64
		modify func(*Params)
	}{
		{"zero wavelength", good, func(p *Params) { p.Wavelength = 0 }},
		{"negative dx", good, func(p *Params) { p.Dx = -1e-6 }},
		{"NaN dy", good, func(p *Params) { p.Dy = math.NaN() }},
		{"infinite distance", good, func(p *Params) { p.Distance = math.Inf(1) }},
		{"no iterations", good, func(p *Params) { p.Iterations = 0 }},
		{"negative refinement cap", good, func(p *Params) { p.MaxRefinementSteps = -1 }},
		{"unknown phase update", good, func(p *Params) { p.PhaseUpdate = PhaseUpdate(9) }},
		{"empty hologram", nil, func(*Params) {}},
		{"ragged hologram", [][]float64{{1, 2}, {3}}, func(*Params) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			_, err := Reconstruct(tt.holo, p)
			var cfgErr *optics.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestParsePhaseUpdate(t *testing.T) {
	for _, pu := range []PhaseUpdate{PhaseUpdateGerchbergSaxton, PhaseUpdateNone} {
		got, err := ParsePhaseUpdate(pu.String())
		if err != nil || got != pu {
			t.Errorf("ParsePhaseUpdate(%q) = %v, %v", pu.String(), got, err)
		}
	}
	if _, err := ParsePhaseUpdate("fienup"); err == nil {
		t.Error("expected an error for an unknown phase update")
	}
}
