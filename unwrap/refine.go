package unwrap

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultMaxSteps is the number of extra refinement steps Refiner allows
// after its two mandatory TIE passes.
const DefaultMaxSteps = 2

// Refiner corrects the integer wrap-count errors of a TIE estimate.
//
// After a first TIE pass it rounds (estimate - wrapped)/2π to an integer
// wrap count K, rebuilds a congruent phase wrapped + 2πK, and feeds the
// sequentially unwrapped difference back through TIE. This repeats until K
// stops changing or MaxSteps extra steps have run.
//
// The sum of wrap-count changes usually falls from step to step on clean
// input, but it is not guaranteed to: noisy or under-sampled phases can make
// it grow before the cap stops the loop.
type Refiner struct {
	// TIE estimates the phase and each residue correction, normally a TIE.
	// A nil TIE uses TIE{}.
	TIE Unwrapper

	// MaxSteps caps the loop. Zero means no loop at all; use
	// NewRefiner for the default cap.
	MaxSteps int
}

// NewRefiner returns a Refiner with a principal-value TIE and the default cap.
func NewRefiner() Refiner {
	return Refiner{TIE: TIE{Wrapper: Principal{}}, MaxSteps: DefaultMaxSteps}
}

// Refinement is the outcome of Refiner.Unwrap.
type Refinement struct {
	// Phase equals wrapped + 2πK for the final wrap count K.
	Phase [][]float64

	// Steps is the number of loop refinements actually performed (0..MaxSteps).
	Steps int

	// Solves counts TIE invocations, always 2 + Steps.
	Solves int

	// KChanges holds sum|K2 - K1| at every comparison, in order. The loop
	// ran to convergence iff the last entry is zero.
	KChanges []float64
}

// Converged reports whether the wrap count stabilised before the cap.
func (r Refinement) Converged() bool {
	return len(r.KChanges) > 0 && r.KChanges[len(r.KChanges)-1] == 0
}

// Unwrap implements Unwrapper, discarding the refinement statistics.
func (r Refiner) Unwrap(wrapped [][]float64) [][]float64 {
	return r.Refine(wrapped).Phase
}

// Refine runs the refinement loop on wrapped and reports how it went.
func (r Refiner) Refine(wrapped [][]float64) Refinement {
	if len(wrapped) == 0 {
		return Refinement{}
	}
	tie := r.TIE
	if tie == nil {
		tie = TIE{}
	}
	var res Refinement
	wrappedMean := mean(wrapped)

	phi := tie.Unwrap(wrapped)
	res.Solves++
	adjustPiston(phi, wrappedMean)
	k1 := wrapCount(phi, wrapped)
	residue := UnwrapRows(subtract(congruent(wrapped, k1), phi))

	addInPlace(phi, tie.Unwrap(residue))
	res.Solves++
	adjustPiston(phi, wrappedMean)
	k2 := wrapCount(phi, wrapped)
	phase := congruent(wrapped, k2)
	residue = UnwrapRows(subtract(phase, phi))

	change := countChange(k1, k2)
	res.KChanges = append(res.KChanges, change)
	for change > 0 && res.Steps < r.MaxSteps {
		k1 = k2
		addInPlace(phi, tie.Unwrap(residue))
		res.Solves++
		adjustPiston(phi, wrappedMean)
		k2 = wrapCount(phi, wrapped)
		phase = congruent(wrapped, k2)
		residue = UnwrapRows(subtract(phase, phi))
		res.Steps++

		change = countChange(k1, k2)
		res.KChanges = append(res.KChanges, change)
	}

	res.Phase = phase
	return res
}

// wrapCount returns round((estimate - wrapped)/2π), halves rounded to even.
func wrapCount(estimate, wrapped [][]float64) [][]float64 {
	k := make([][]float64, len(wrapped))
	for y := range wrapped {
		k[y] = make([]float64, len(wrapped[y]))
		for x := range wrapped[y] {
			k[y][x] = math.RoundToEven((estimate[y][x] - wrapped[y][x]) / (2 * math.Pi))
		}
	}
	return k
}

// congruent returns wrapped + 2πK.
func congruent(wrapped, k [][]float64) [][]float64 {
	out := make([][]float64, len(wrapped))
	for y := range wrapped {
		out[y] = make([]float64, len(wrapped[y]))
		for x := range wrapped[y] {
			out[y][x] = wrapped[y][x] + 2*math.Pi*k[y][x]
		}
	}
	return out
}

// adjustPiston shifts phi so that its mean equals target.
func adjustPiston(phi [][]float64, target float64) {
	shift := target - mean(phi)
	for y := range phi {
		floats.AddConst(shift, phi[y])
	}
}

func countChange(k1, k2 [][]float64) float64 {
	var s float64
	for y := range k1 {
		s += floats.Distance(k1[y], k2[y], 1)
	}
	return s
}

func mean(a [][]float64) float64 {
	var sum float64
	var n int
	for _, row := range a {
		sum += floats.Sum(row)
		n += len(row)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func subtract(a, b [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for y := range a {
		out[y] = make([]float64, len(a[y]))
		floats.SubTo(out[y], a[y], b[y])
	}
	return out
}

func addInPlace(dst, s [][]float64) {
	for y := range dst {
		floats.Add(dst[y], s[y])
	}
}
