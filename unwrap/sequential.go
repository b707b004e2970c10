package unwrap

import "math"

// UnwrapRows unwraps each row of p independently by walking it left to
// right: whenever two neighbours differ by more than π, the rest of the row
// is shifted by the multiple of 2π that brings the step back into [-π, π].
// The first sample of every row is kept.
func UnwrapRows(p [][]float64) [][]float64 {
	out := make([][]float64, len(p))
	for y, row := range p {
		out[y] = unwrap1D(row)
	}
	return out
}

func unwrap1D(row []float64) []float64 {
	out := make([]float64, len(row))
	if len(row) == 0 {
		return out
	}
	out[0] = row[0]
	correction := 0.0
	for i := 1; i < len(row); i++ {
		d := row[i] - row[i-1]
		if math.Abs(d) >= math.Pi {
			dm := mod2Pi(d+math.Pi) - math.Pi
			if dm == -math.Pi && d > 0 {
				dm = math.Pi
			}
			correction += dm - d
		}
		out[i] = row[i] + correction
	}
	return out
}

// mod2Pi returns v modulo 2π with the sign of the divisor, in [0, 2π).
func mod2Pi(v float64) float64 {
	r := math.Mod(v, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}
