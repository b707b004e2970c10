package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/bob-anderson-ok/holoreconstruct/holo"
	"github.com/bob-anderson-ok/holoreconstruct/optics"
	"github.com/bob-anderson-ok/holoreconstruct/unwrap"
)

const version = "1_0_0"

// Wrap primitives for the TIE increments. The increment modulus is kept, so
// both give the same TIE phase up to rounding; quality_guided is slower.
const (
	wrapPrincipal     = "principal"
	wrapQualityGuided = "quality_guided"
)

// phaseCountsPerRadian is the fixed scale of the 16-bit phase images.
const phaseCountsPerRadian = 1000

type HoloRun struct {
	PathToHologram        string
	OutputFolder          string
	Title                 string
	ShowInput             bool
	Verbose               bool
	WavelengthNm          float64
	PixelPitchXUm         float64
	PixelPitchYUm         float64
	PropagationDistanceMm float64
	RecordingDistanceMm   float64
	Iterations            int
	PhaseUpdate           holo.PhaseUpdate
	MaxRefinementSteps    int
	WrapPrimitive         string
	HologramScale         float64
	BackgroundSigmaPx     float64
	ProfileRow            int // negative selects the centre row
}

func defaultHoloRun() HoloRun {
	p := holo.DefaultParams()
	return HoloRun{
		OutputFolder:          ".",
		Title:                 "Phase profile",
		WavelengthNm:          p.Wavelength * 1e9,
		PixelPitchXUm:         p.Dx * 1e6,
		PixelPitchYUm:         p.Dy * 1e6,
		PropagationDistanceMm: p.Distance * 1e3,
		RecordingDistanceMm:   p.RecordingDistance * 1e3,
		Iterations:            p.Iterations,
		PhaseUpdate:           p.PhaseUpdate,
		MaxRefinementSteps:    p.MaxRefinementSteps,
		WrapPrimitive:         wrapPrincipal,
		HologramScale:         1,
		ProfileRow:            -1,
	}
}

// params converts the parameter file units to the SI units of holo.Params.
func (r HoloRun) params() holo.Params {
	p := holo.DefaultParams()
	p.Wavelength = r.WavelengthNm * 1e-9
	p.Dx = r.PixelPitchXUm * 1e-6
	p.Dy = r.PixelPitchYUm * 1e-6
	p.Distance = r.PropagationDistanceMm * 1e-3
	p.RecordingDistance = r.RecordingDistanceMm * 1e-3
	p.Iterations = r.Iterations
	p.PhaseUpdate = r.PhaseUpdate
	p.MaxRefinementSteps = r.MaxRefinementSteps
	p.Verbose = r.Verbose
	if r.WrapPrimitive == wrapQualityGuided {
		p.Wrapper = unwrap.UnwrapperWrap{Unwrapper: unwrap.QualityGuided{}}
	}
	return p
}

func main() {

	programStart := time.Now()

	args := os.Args

	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: holoreconstruct <parameter-file>")
		os.Exit(1)
	}

	path := args[1]

	// Read the json5 (or json, or yaml) parameter file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w\n", path, err))
		os.Exit(2)
	}

	jsonTable, err := parseParameterFile(path, data)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tFormat error in file %q: %w\n", path, err))
		os.Exit(3)
	}

	var run HoloRun
	msg, ok := validateParameterTableAndFillRun(jsonTable, &run)
	if !ok {
		fmt.Println(msg)
		os.Exit(4)
	}

	// Check for user wanting printout of complete parameter file
	if run.ShowInput {
		fmt.Printf("%s", "\nPrintout of complete parameter file contents...\n")
		fmt.Println(string(data))
	}

	fmt.Printf("\nVersion %s\n\n", version)

	params := run.params()
	if err := params.Validate(); err != nil {
		fmt.Println(fmt.Errorf("\n\tParameter check failed: %w", err))
		os.Exit(4)
	}

	start := time.Now()
	hologram, err := LoadHologram(run.PathToHologram, run.HologramScale)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to load hologram %q failed: %w\n", run.PathToHologram, err))
		os.Exit(5)
	}
	ny, nx := len(hologram), len(hologram[0])
	fmt.Printf("Loading of the %dx%d hologram took %s\n", nx, ny, time.Since(start))

	fmt.Printf("Field of view is %0.1f x %0.1f um\n", float64(nx)*run.PixelPitchXUm, float64(ny)*run.PixelPitchYUm)
	fmt.Printf("Fresnel number at the propagation distance is %0.2f\n",
		FresnelNumber(float64(min(nx, ny))*math.Min(params.Dx, params.Dy), params.Wavelength, params.Distance))
	fmt.Printf("Recording distance is %0.2f mm (reported only)\n\n", run.RecordingDistanceMm)

	if run.BackgroundSigmaPx > 0 {
		start = time.Now()
		hologram, err = optics.FlattenBackground(hologram, run.BackgroundSigmaPx)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tBackground flattening failed: %w", err))
			os.Exit(6)
		}
		fmt.Printf("Background flattening took %s\n", time.Since(start))
	}

	start = time.Now()
	res, err := holo.Reconstruct(hologram, params)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tReconstruction failed: %w", err))
		os.Exit(6)
	}
	fmt.Printf("Reconstruction (%d iteration(s), %s) took %s\n", params.Iterations, params.PhaseUpdate, time.Since(start))
	fmt.Printf("TIE refinement steps: %d, wrap count changes per step: %v\n", res.RefinementSteps, res.Refinement.KChanges)
	if !res.Refinement.Converged() {
		fmt.Println(fmt.Errorf("refinement stopped at the step cap of %d before the wrap counts settled", params.MaxRefinementSteps))
	}

	if err := os.MkdirAll(run.OutputFolder, 0o755); err != nil {
		fmt.Println(fmt.Errorf("\n\tCreation of output folder %q failed: %w", run.OutputFolder, err))
		os.Exit(7)
	}
	out := func(name string) string { return filepath.Join(run.OutputFolder, name) }

	start = time.Now()
	views := []struct {
		name        string
		m           [][]float64
		pLow, pHigh float64
	}{
		{"amplitude8bit.png", res.Amplitude, 0, 100},
		{"wrappedPhase8bit.png", res.Phase, 0, 100},
		{"referencePhase8bit.png", res.ReferencePhase, 0, 100},
		{"tiePhase8bit.png", res.TIEPhase, 0, 100},
		{"absorption8bit.png", res.Absorption, 1, 99},
	}
	for _, v := range views {
		imgForDisplay, err := MatrixToGrayViewPercentile(v.m, v.pLow, v.pHigh)
		if err != nil {
			fmt.Println(fmt.Errorf("creation of the display image %q failed: %w", v.name, err))
			os.Exit(8)
		}
		if err := SaveGrayPNG(out(v.name), imgForDisplay); err != nil {
			fmt.Println(fmt.Errorf("writing of %q failed: %w", v.name, err))
			os.Exit(9)
		}
	}

	// Make the scientific (well-defined scaling) versions of the unwrapped phases
	scientific := []struct {
		name string
		m    [][]float64
	}{
		{"referencePhase16bit.png", res.ReferencePhase},
		{"tiePhase16bit.png", res.TIEPhase},
	}
	for _, s := range scientific {
		phaseImage, offset, err := PhaseToGray16(s.m)
		if err != nil {
			fmt.Println(fmt.Errorf("creation of %q failed: %w", s.name, err))
			os.Exit(8)
		}
		if err := SaveGray16PNG(out(s.name), phaseImage); err != nil {
			fmt.Println(fmt.Errorf("writing of %q failed: %w", s.name, err))
			os.Exit(9)
		}
		fmt.Printf("%s: phase = count/%d %+0.4f rad\n", s.name, phaseCountsPerRadian, offset)
	}
	fmt.Printf("Writing of the reconstruction images took %s\n", time.Since(start))

	start = time.Now()
	row := run.ProfileRow
	if row < 0 || row >= ny {
		row = ny / 2
	}
	err = makeProfileOutputs(res, row, run, out("phaseProfile.png"),
		out("wrappedPhase8bit.png"), out("wrappedPhaseAnnotated.png"))
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tCreation of the phase profile failed: %w", err))
		os.Exit(10)
	}
	fmt.Printf("Phase profile of row %d took %s\n", row, time.Since(start))

	fmt.Printf("\nTotal program run time is %s\n", time.Since(programStart))
}

// FresnelNumber returns a²/(λz) for a field of width fieldWidth (a is half of
// it). Large values mean near-field propagation.
func FresnelNumber(fieldWidth, wavelength, distance float64) float64 {
	a := fieldWidth / 2
	return a * a / (wavelength * math.Abs(distance))
}
