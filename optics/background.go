package optics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// PaddingMode selects how an image is extended beyond its edges during
// convolution.
type PaddingMode int

const (
	PadZeros PaddingMode = iota
	PadReflect
	PadReplicate
	PadCircular
)

// GaussianPSF returns a normalised, centred Gaussian kernel of standard
// deviation sigma pixels, truncated at 3 sigma. Its size is always odd.
func GaussianPSF(sigma float64) ([][]float64, error) {
	if err := RequirePositive("psf sigma", sigma); err != nil {
		return nil, err
	}
	half := int(math.Ceil(3 * sigma))
	n := 2*half + 1
	psf := MakeReal2D(n, n)
	sum := 0.0
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			dy := float64(row - half)
			dx := float64(col - half)
			psf[row][col] = math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			sum += psf[row][col]
		}
	}
	for row := range psf {
		floats.Scale(1/sum, psf[row])
	}
	return psf, nil
}

// Convolve returns the same-size convolution of image with a centred psf,
// computed with 2D FFTs. The psf is normalised by the sum of its weights
// (unless that sum is zero); pad chooses the boundary handling.
func Convolve(image, psf [][]float64, pad PaddingMode) ([][]float64, error) {
	H, W, err := RectSize(image)
	if err != nil {
		return nil, err
	}
	Ph, Pw, err := RectSize(psf)
	if err != nil {
		return nil, err
	}
	if H == 0 || W == 0 || Ph == 0 || Pw == 0 {
		return nil, errors.New("empty image or psf")
	}

	weights := 0.0
	for _, row := range psf {
		weights += floats.Sum(row)
	}
	if weights == 0 {
		weights = 1
	}

	// FFT grid for linear convolution: at least full size.
	FH := nextPow2(H + Ph - 1)
	FW := nextPow2(W + Pw - 1)

	// The image sits at (offY, offX) inside the padded grid so that the
	// border is extended on all four sides.
	offY := Ph / 2
	offX := Pw / 2

	A := MakeComplex2D(FH, FW)
	B := MakeComplex2D(FH, FW)
	for y := 0; y < FH; y++ {
		for x := 0; x < FW; x++ {
			A[y][x] = complex(sample2D(image, y-offY, x-offX, pad), 0)
		}
	}
	for y := 0; y < Ph; y++ {
		for x := 0; x < Pw; x++ {
			B[y][x] = complex(psf[y][x], 0)
		}
	}

	fft2InPlace(A, true)
	fft2InPlace(B, true)
	for y := 0; y < FH; y++ {
		for x := 0; x < FW; x++ {
			A[y][x] *= B[y][x]
		}
	}
	fft2InPlace(A, false)

	// Gonum transforms are unnormalized: divide by FH*FW.
	scale := float64(FH*FW) * weights
	out := MakeReal2D(H, W)
	for y := 0; y < H; y++ {
		for x := 0; x < W; x++ {
			out[y][x] = real(A[y+2*offY][x+2*offX]) / scale
		}
	}
	return out, nil
}

// FlattenBackground divides hologram by its Gaussian-smoothed background
// (sigma in pixels), removing slow illumination variation. Pixels whose
// background is not positive become 0.
func FlattenBackground(hologram [][]float64, sigma float64) ([][]float64, error) {
	psf, err := GaussianPSF(sigma)
	if err != nil {
		return nil, err
	}
	bg, err := Convolve(hologram, psf, PadReflect)
	if err != nil {
		return nil, &ConfigurationError{Param: "hologram", Reason: err.Error()}
	}
	out := MakeReal2D(len(hologram), len(hologram[0]))
	for y := range hologram {
		for x, v := range hologram[y] {
			if bg[y][x] > 0 {
				out[y][x] = v / bg[y][x]
			}
		}
	}
	return out, nil
}

func sample2D(img [][]float64, y, x int, mode PaddingMode) float64 {
	H := len(img)
	W := len(img[0])

	if 0 <= y && y < H && 0 <= x && x < W {
		return img[y][x]
	}

	switch mode {
	case PadReplicate:
		return img[clampIndex(y, H)][clampIndex(x, W)]
	case PadReflect:
		return img[reflectIndex(y, H)][reflectIndex(x, W)]
	case PadCircular:
		return img[mod(y, H)][mod(x, W)]
	}
	return 0
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

func mod(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// reflectIndex implements "reflect" padding without repeating edge pixels.
// Example for n=5 indices: ... 2 1 0 1 2 3 4 3 2 1 0 1 ...
func reflectIndex(i, n int) int {
	if n <= 1 {
		return 0
	}
	period := 2*n - 2
	i = mod(i, period)
	if i >= n {
		i = period - i
	}
	return i
}
