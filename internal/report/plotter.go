package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/groundshift-data/terrain.report/internal/transect"
)

var (
	olderColor  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	newerColor  = color.RGBA{R: 205, G: 92, B: 92, A: 255}
	changeColor = color.RGBA{R: 60, G: 140, B: 60, A: 255}
)

// SaveProfilePlots writes two PNG plots for a sampled cross-section: the
// older/newer elevation profiles, and the change profile. Invalid samples
// break the line into separate runs so gaps stay visible.
func SaveProfilePlots(elevPath, changePath, name string, p transect.Profile) error {
	pe := plot.New()
	pe.Title.Text = fmt.Sprintf("%s - Elevation", name)
	pe.X.Label.Text = "Station (m)"
	pe.Y.Label.Text = "Elevation (m)"
	pe.Legend.Top = true

	for _, run := range validRuns(p, surfaceOlder) {
		l, err := plotter.NewLine(run)
		if err != nil {
			return fmt.Errorf("older line: %w", err)
		}
		l.Color = olderColor
		pe.Add(l)
	}
	for _, run := range validRuns(p, surfaceNewer) {
		l, err := plotter.NewLine(run)
		if err != nil {
			return fmt.Errorf("newer line: %w", err)
		}
		l.Color = newerColor
		pe.Add(l)
	}
	// Legend entries once per surface, not per run.
	pe.Legend.Add("older", lineSwatch(olderColor))
	pe.Legend.Add("newer", lineSwatch(newerColor))
	if err := pe.Save(8*vg.Inch, 4*vg.Inch, elevPath); err != nil {
		return fmt.Errorf("saving %s: %w", elevPath, err)
	}

	pc := plot.New()
	pc.Title.Text = fmt.Sprintf("%s - Elevation Change", name)
	pc.X.Label.Text = "Station (m)"
	pc.Y.Label.Text = "Change (m)"

	for _, run := range validRuns(p, surfaceChange) {
		l, err := plotter.NewLine(run)
		if err != nil {
			return fmt.Errorf("change line: %w", err)
		}
		l.Color = changeColor
		pc.Add(l)
	}
	if err := pc.Save(8*vg.Inch, 4*vg.Inch, changePath); err != nil {
		return fmt.Errorf("saving %s: %w", changePath, err)
	}
	return nil
}

type surface int

const (
	surfaceOlder surface = iota
	surfaceNewer
	surfaceChange
)

// validRuns splits a profile into maximal runs of consecutive valid samples
// for the given surface.
func validRuns(p transect.Profile, s surface) []plotter.XYs {
	var runs []plotter.XYs
	var cur plotter.XYs
	flush := func() {
		if len(cur) > 1 {
			runs = append(runs, cur)
		}
		cur = nil
	}
	for _, smp := range p {
		var v float64
		var ok bool
		switch s {
		case surfaceOlder:
			v, ok = smp.ElevationOlder, smp.OlderValid
		case surfaceNewer:
			v, ok = smp.ElevationNewer, smp.NewerValid
		case surfaceChange:
			v, ok = smp.Change, smp.ChangeValid
		}
		if !ok {
			flush()
			continue
		}
		cur = append(cur, plotter.XY{X: smp.Station, Y: v})
	}
	flush()
	return runs
}

// lineSwatch builds a thumbnail-only line for legend entries.
func lineSwatch(c color.Color) *plotter.Line {
	l, _ := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 0}})
	l.Color = c
	return l
}
