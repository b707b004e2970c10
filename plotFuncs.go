package main

import (
	"fmt"
	"image/color"

	"github.com/bob-anderson-ok/holoreconstruct/holo"
	"github.com/bob-anderson-ok/holoreconstruct/profile"
)

// makeProfileOutputs plots the wrapped, reference and TIE phases along one
// hologram row, and marks that row on the wrapped-phase display image.
func makeProfileOutputs(res *holo.Result, row int, run HoloRun, plotFile, viewFile, annotatedFile string) error {
	width := len(res.Phase[0])
	line := profile.HorizontalLine(row, width, run.PixelPitchXUm)

	maps := []struct {
		name   string
		m      [][]float64
		col    color.Color
		dashed bool
	}{
		{"wrapped", res.Phase, color.RGBA{R: 128, G: 128, B: 128, A: 255}, true},
		{"reference", res.ReferencePhase, color.RGBA{B: 255, A: 255}, false},
		{"TIE", res.TIEPhase, color.RGBA{R: 255, A: 255}, false},
	}

	var series []profile.Series
	for _, m := range maps {
		samples, err := profile.Extract(m.m, line)
		if err != nil {
			return fmt.Errorf("extracting the %s profile: %w", m.name, err)
		}
		mean, std := profile.Stats(samples)
		fmt.Printf("  %-9s phase along row %d: mean %0.3f rad, std %0.3f rad\n", m.name, row, mean, std)
		series = append(series, profile.Series{Name: m.name, Samples: samples, Color: m.col, Dashed: m.dashed})
	}

	labels := profile.Labels{
		Title: fmt.Sprintf("%s (row %d)", run.Title, row),
		X:     "um from left edge",
		Y:     "phase (rad)",
	}
	if err := profile.SaveProfilePlot(plotFile, series, labels, 1200, 500); err != nil {
		return fmt.Errorf("writing of %q failed: %w", plotFile, err)
	}

	view, err := profile.LoadImage(viewFile)
	if err != nil {
		return err
	}
	return profile.SaveImage(annotatedFile, profile.DrawLineOnImage(view, line))
}
