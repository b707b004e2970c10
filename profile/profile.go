// Package profile samples reconstructed maps (phase, amplitude) along a
// straight line, plots one or more such profiles, and marks the sampling line
// on a display image.
package profile

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	_ "gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PathPoint is a point along a sampling line.
type PathPoint struct {
	X                 float64 // X coordinate in image pixels
	Y                 float64 // Y coordinate in image pixels
	DistanceFromStart float64 // Distance from line start in pixels
}

// Sample is a single value of an extracted profile.
type Sample struct {
	Distance float64 // Distance from line start (µm, or pixels when the pitch is 0)
	Value    float64
}

// Line is the straight path along which a profile is extracted.
type Line struct {
	StartX, StartY float64
	EndX, EndY     float64

	// PixelPitchUm converts pixel distances to µm. Zero keeps pixels.
	PixelPitchUm float64

	SamplePoints []PathPoint
}

// ErrEmptyMatrix is returned when there is nothing to sample.
var ErrEmptyMatrix = errors.New("profile: empty matrix")

// HorizontalLine returns the line across row of an image width pixels wide.
func HorizontalLine(row, width int, pixelPitchUm float64) *Line {
	return &Line{
		StartX:       0,
		StartY:       float64(row),
		EndX:         float64(width - 1),
		EndY:         float64(row),
		PixelPitchUm: pixelPitchUm,
	}
}

// ComputeSamplePoints samples the line at 1-pixel intervals, both ends
// included.
func (l *Line) ComputeSamplePoints() {
	xLength := l.EndX - l.StartX
	yLength := l.EndY - l.StartY
	lineLength := math.Hypot(xLength, yLength)

	l.SamplePoints = nil
	if lineLength == 0 {
		l.SamplePoints = append(l.SamplePoints, PathPoint{X: l.StartX, Y: l.StartY})
		return
	}

	dXPerStep := xLength / lineLength
	dYPerStep := yLength / lineLength
	n := int(math.Round(lineLength))
	for i := 0; i <= n; i++ {
		k := math.Min(float64(i), lineLength)
		l.SamplePoints = append(l.SamplePoints, PathPoint{
			X:                 l.StartX + k*dXPerStep,
			Y:                 l.StartY + k*dYPerStep,
			DistanceFromStart: k,
		})
	}
}

func (l *Line) unitsPerPixel() float64 {
	if l.PixelPitchUm > 0 {
		return l.PixelPitchUm
	}
	return 1
}

// Length returns the line length in the units of Sample.Distance.
func (l *Line) Length() float64 {
	return math.Hypot(l.EndX-l.StartX, l.EndY-l.StartY) * l.unitsPerPixel()
}

// interpolate performs bilinear interpolation on matrix at (x, y), clamping
// to the matrix edges.
func interpolate(matrix [][]float64, x, y float64) float64 {
	h := len(matrix)
	w := len(matrix[0])

	x = clamp(x, 0, float64(w-1))
	y = clamp(y, 0, float64(h-1))

	x0 := int(x)
	y0 := int(y)
	x1 := min(x0+1, w-1)
	y1 := min(y0+1, h-1)

	xFrac := x - float64(x0)
	yFrac := y - float64(y0)

	v00 := matrix[y0][x0]
	v01 := matrix[y0][x1]
	v10 := matrix[y1][x0]
	v11 := matrix[y1][x1]

	v0 := v00*(1-xFrac) + v01*xFrac
	v1 := v10*(1-xFrac) + v11*xFrac

	return v0*(1-yFrac) + v1*yFrac
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Extract samples matrix along line.
func Extract(matrix [][]float64, line *Line) ([]Sample, error) {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return nil, ErrEmptyMatrix
	}
	if len(line.SamplePoints) == 0 {
		line.ComputeSamplePoints()
	}

	scale := line.unitsPerPixel()
	samples := make([]Sample, len(line.SamplePoints))
	for i, pt := range line.SamplePoints {
		samples[i] = Sample{
			Distance: pt.DistanceFromStart * scale,
			Value:    interpolate(matrix, pt.X, pt.Y),
		}
	}
	return samples, nil
}

// Stats returns the mean and the standard deviation of the sample values.
func Stats(samples []Sample) (mean, std float64) {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return stat.MeanStdDev(values, nil)
}

// Series is one named profile in a plot.
type Series struct {
	Name    string
	Samples []Sample
	Color   color.Color
	Dashed  bool
}

// StepTicks is a tick marker with a fixed step.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	if t.Step <= 0 {
		return plot.DefaultTicks{}.Ticks(min, max)
	}
	var ticks []plot.Tick
	start := math.Ceil(min/t.Step) * t.Step
	for v := start; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

// Labels holds the texts of a profile plot.
type Labels struct {
	Title, X, Y string
}

func setFonts(p *plot.Plot) {
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Y.Tick.Label.Font.Typeface = "Liberation"
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	p.Legend.TextStyle.Font.Typeface = "Liberation"
	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.TextStyle.Font.Size = vg.Points(10)
}

// PlotProfiles draws every series into one plot of wPx x hPx pixels.
func PlotProfiles(series []Series, labels Labels, wPx, hPx float64) (image.Image, error) {
	if len(series) == 0 {
		return nil, errors.New("profile: no series to plot")
	}

	p := plot.New()
	setFonts(p)

	p.Title.Text = labels.Title
	p.X.Label.Text = labels.X
	p.Y.Label.Text = labels.Y
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	span := 0.0
	for _, s := range series {
		if len(s.Samples) == 0 {
			return nil, fmt.Errorf("profile: series %q is empty", s.Name)
		}
		pts := make(plotter.XYs, len(s.Samples))
		for i, sample := range s.Samples {
			pts[i].X = sample.Distance
			pts[i].Y = sample.Value
		}
		span = math.Max(span, s.Samples[len(s.Samples)-1].Distance)

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = s.Color
		if line.Color == nil {
			line.Color = color.RGBA{B: 255, A: 255}
		}
		if s.Dashed {
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.X.Tick.Marker = StepTicks{Step: span / 10, Format: "%.1f"}

	// Zero line
	hline, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: span, Y: 0}})
	if err != nil {
		return nil, err
	}
	hline.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	hline.Color = color.RGBA{A: 255}
	p.Add(hline)

	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := vgdraw.New(c)
	p.Draw(dc)

	return c.Image(), nil
}

// SaveProfilePlot renders the plot and writes it to filename as PNG.
func SaveProfilePlot(filename string, series []Series, labels Labels, wPx, hPx float64) error {
	img, err := PlotProfiles(series, labels, wPx, hPx)
	if err != nil {
		return err
	}
	return SaveImage(filename, img)
}

// DrawLineOnImage returns a copy of sourceImage with line drawn in red, a red
// dot at its start and a green dot at its end.
func DrawLineOnImage(sourceImage image.Image, line *Line) *image.RGBA {
	bounds := sourceImage.Bounds()

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, sourceImage, bounds.Min, draw.Src)

	red := color.RGBA{R: 255, A: 255}
	drawLine(result, line.StartX, line.StartY, line.EndX, line.EndY, red)
	drawDot(result, line.StartX, line.StartY, 3, red)
	drawDot(result, line.EndX, line.EndY, 3, color.RGBA{G: 255, A: 255})

	return result
}

// drawLine draws a 1-pixel line with Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 float64, col color.Color) {
	dx := math.Abs(x2 - x1)
	dy := math.Abs(y2 - y1)
	sx := -1.0
	if x1 < x2 {
		sx = 1.0
	}
	sy := -1.0
	if y1 < y2 {
		sy = 1.0
	}
	err := dx - dy

	b := img.Bounds()
	for {
		pt := image.Pt(b.Min.X+int(x1), b.Min.Y+int(y1))
		if pt.In(b) {
			img.Set(pt.X, pt.Y, col)
		}

		if math.Abs(x1-x2) < 1 && math.Abs(y1-y2) < 1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func drawDot(img *image.RGBA, cx, cy float64, radius int, col color.Color) {
	b := img.Bounds()
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > radius*radius {
				continue
			}
			pt := image.Pt(b.Min.X+int(cx)+x, b.Min.Y+int(cy)+y)
			if pt.In(b) {
				img.Set(pt.X, pt.Y, col)
			}
		}
	}
}

// LoadImage reads a PNG image.
func LoadImage(filename string) (img image.Image, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	img, err = png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return img, nil
}

// SaveImage writes img to filename as PNG.
func SaveImage(filename string, img image.Image) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}
