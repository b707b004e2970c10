package unwrap

import (
	"math"
	"sort"
)

// QualityGuided is a reliability-sorting phase unwrapper (Herráez et al.,
// Applied Optics 41(35), 2002). Pixels whose wrapped neighbourhood is
// smoothest are joined first, so noisy areas and branch points are unwrapped
// last and cannot spread errors into clean regions.
//
// The output differs from the input by an integer multiple of 2π at every
// pixel.
type QualityGuided struct{}

type qgEdge struct {
	a, b        int // pixel indices, b is the right or lower neighbour of a
	reliability float64
}

// Unwrap implements Unwrapper.
func (QualityGuided) Unwrap(wrapped [][]float64) [][]float64 {
	n := len(wrapped)
	if n == 0 {
		return nil
	}
	m := len(wrapped[0])
	size := n * m

	phase := make([]float64, size)
	for y := 0; y < n; y++ {
		copy(phase[y*m:(y+1)*m], wrapped[y])
	}

	reliability := pixelReliability(wrapped)

	edges := make([]qgEdge, 0, 2*size)
	for y := 0; y < n; y++ {
		for x := 0; x < m; x++ {
			i := y*m + x
			if x < m-1 {
				edges = append(edges, qgEdge{a: i, b: i + 1, reliability: reliability[i] + reliability[i+1]})
			}
			if y < n-1 {
				edges = append(edges, qgEdge{a: i, b: i + m, reliability: reliability[i] + reliability[i+m]})
			}
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].reliability > edges[j].reliability
	})

	// Every pixel starts as its own group. members[g] lists the pixels of
	// group g while g is a root.
	group := make([]int, size)
	members := make([][]int, size)
	for i := range group {
		group[i] = i
		members[i] = []int{i}
	}

	for _, e := range edges {
		ga, gb := group[e.a], group[e.b]
		if ga == gb {
			continue
		}
		// Number of cycles that make b continuous with a.
		k := math.RoundToEven((phase[e.a] - phase[e.b]) / (2 * math.Pi))

		// Shift and relabel the smaller group.
		src, dst := gb, ga
		shift := 2 * math.Pi * k
		if len(members[gb]) > len(members[ga]) {
			src, dst = ga, gb
			shift = -shift
		}
		for _, p := range members[src] {
			phase[p] += shift
			group[p] = dst
		}
		members[dst] = append(members[dst], members[src]...)
		members[src] = nil
	}

	out := make([][]float64, n)
	for y := 0; y < n; y++ {
		out[y] = make([]float64, m)
		copy(out[y], phase[y*m:(y+1)*m])
	}
	return out
}

// pixelReliability returns 1/D per pixel, where D combines the wrapped
// second differences in the horizontal, vertical and both diagonal
// directions. Border pixels, which lack a full neighbourhood, get 0.
func pixelReliability(w [][]float64) []float64 {
	n := len(w)
	m := len(w[0])
	r := make([]float64, n*m)
	for y := 1; y < n-1; y++ {
		for x := 1; x < m-1; x++ {
			c := w[y][x]
			h := WrapToPi(w[y][x-1]-c) - WrapToPi(c-w[y][x+1])
			v := WrapToPi(w[y-1][x]-c) - WrapToPi(c-w[y+1][x])
			d1 := WrapToPi(w[y-1][x-1]-c) - WrapToPi(c-w[y+1][x+1])
			d2 := WrapToPi(w[y-1][x+1]-c) - WrapToPi(c-w[y+1][x-1])
			d := math.Sqrt(h*h + v*v + d1*d1 + d2*d2)
			if d == 0 {
				r[y*m+x] = math.MaxFloat64 / 16
				continue
			}
			r[y*m+x] = 1 / d
		}
	}
	return r
}
