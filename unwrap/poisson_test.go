package unwrap

import (
	"math"
	"testing"
)

// smoothPhase is a test surface with structure on both axes.
func smoothPhase(n, m int) [][]float64 {
	phi := make([][]float64, n)
	for y := 0; y < n; y++ {
		phi[y] = make([]float64, m)
		for x := 0; x < m; x++ {
			fx := float64(x) / float64(m)
			fy := float64(y) / float64(n)
			phi[y][x] = 3*math.Sin(2*math.Pi*fx)*math.Cos(math.Pi*fy) + 2*fx*fy + 0.5*fy*fy
		}
	}
	return phi
}

func TestCosineTransformMatchesDirectSum(t *testing.T) {
	for _, n := range []int{1, 2, 5, 8, 13} {
		src := make([]float64, n)
		for j := range src {
			src[j] = math.Sin(float64(j)*0.7) + float64(j%3)
		}
		got := make([]float64, n)
		newCosineTransform(n).forward(got, src)

		for k := 0; k < n; k++ {
			s := math.Sqrt(2 / float64(n))
			if k == 0 {
				s = math.Sqrt(1 / float64(n))
			}
			var want float64
			for j := 0; j < n; j++ {
				want += src[j] * math.Cos(math.Pi*float64(k)*float64(2*j+1)/float64(2*n))
			}
			want *= s
			if math.Abs(got[k]-want) > 1e-12 {
				t.Errorf("n=%d: coefficient %d = %g, want %g", n, k, got[k], want)
			}
		}
	}
}

func TestDCT2RoundTrip(t *testing.T) {
	a := smoothPhase(7, 12)
	back := idct2(dct2(a))
	for y := range a {
		for x := range a[y] {
			if math.Abs(back[y][x]-a[y][x]) > 1e-12 {
				t.Fatalf("round trip at (%d,%d) = %g, want %g", y, x, back[y][x], a[y][x])
			}
		}
	}
}

func TestSolvePoissonRecoversPhase(t *testing.T) {
	for _, size := range [][2]int{{32, 32}, {24, 40}, {1, 16}} {
		n, m := size[0], size[1]
		phi := smoothPhase(n, m)
		sol := SolvePoisson(Laplacian(phi))

		// Remove the unknown constant before comparing.
		offset := mean(phi) - mean(sol)
		var sq float64
		for y := range phi {
			for x := range phi[y] {
				d := sol[y][x] + offset - phi[y][x]
				sq += d * d
			}
		}
		rms := math.Sqrt(sq / float64(n*m))
		if rms > 1e-9 {
			t.Errorf("%dx%d: residual RMS %g", n, m, rms)
		}
		if math.Abs(mean(sol)) > 1e-12 {
			t.Errorf("%dx%d: solution mean %g, want 0", n, m, mean(sol))
		}
	}
}

func TestPoissonSpectrumPistonIsZero(t *testing.T) {
	rho := smoothPhase(16, 16)
	for y := range rho {
		for x := range rho[y] {
			rho[y][x] += 5 // a large mean must not leak into the DC term
		}
	}
	spec := poissonSpectrum(rho)
	if spec[0][0] != 0 {
		t.Errorf("DC coefficient = %g, want exactly 0", spec[0][0])
	}
	for y := range spec {
		for x := range spec[y] {
			if math.IsNaN(spec[y][x]) || math.IsInf(spec[y][x], 0) {
				t.Fatalf("spectrum (%d,%d) is not finite", y, x)
			}
		}
	}
}

func TestSolvePoissonZeroSource(t *testing.T) {
	rho := make([][]float64, 8)
	for y := range rho {
		rho[y] = make([]float64, 6)
	}
	sol := SolvePoisson(rho)
	for y := range sol {
		for x := range sol[y] {
			if sol[y][x] != 0 {
				t.Fatalf("solution (%d,%d) = %g, want 0", y, x, sol[y][x])
			}
		}
	}
	if SolvePoisson(nil) != nil {
		t.Error("expected nil for an empty source")
	}
}
