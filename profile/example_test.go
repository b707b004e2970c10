package profile_test

import (
	"fmt"
	"log"
	"math"

	"github.com/bob-anderson-ok/holoreconstruct/profile"
)

// Example extracts the phase profile across the centre row of a phase map
// and reports its extent and peak.
func Example() {
	const n = 64
	phase := make([][]float64, n)
	for y := range phase {
		phase[y] = make([]float64, n)
		for x := range phase[y] {
			dx := float64(x - n/2)
			dy := float64(y - n/2)
			phase[y][x] = 3 * math.Exp(-(dx*dx+dy*dy)/(2*8*8))
		}
	}

	// 1.12 µm detector pixels
	line := profile.HorizontalLine(n/2, n, 1.12)
	samples, err := profile.Extract(phase, line)
	if err != nil {
		log.Fatalf("Failed to extract profile: %v", err)
	}

	peak := samples[0]
	for _, s := range samples {
		if s.Value > peak.Value {
			peak = s
		}
	}
	fmt.Printf("Samples: %d over %.2f µm\n", len(samples), line.Length())
	fmt.Printf("Peak: %.2f rad at %.2f µm\n", peak.Value, peak.Distance)

	// Output:
	// Samples: 64 over 70.56 µm
	// Peak: 3.00 rad at 35.84 µm
}
