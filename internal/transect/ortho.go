package transect

import (
	"fmt"
	"math"
)

// OrthoSections generates cross-sections perpendicular to a centerline:
// one two-vertex transect of total length width, centred on the centerline,
// at every arc-length multiple of step (including chainage 0 and, when the
// centerline length is a multiple of step, its far end). Each section
// carries the given sampling interval. The section normal is taken from the
// centerline segment the chainage falls on.
func OrthoSections(centerline []Vertex, step, width, interval float64) ([]*Transect, error) {
	if step <= 0 || math.IsNaN(step) {
		return nil, fmt.Errorf("%w: step %g must be positive", ErrInvalidParameter, step)
	}
	if width <= 0 || math.IsNaN(width) {
		return nil, fmt.Errorf("%w: width %g must be positive", ErrInvalidParameter, width)
	}
	// Reuse transect validation for the centerline itself; the interval is
	// validated there as well.
	center, err := New(centerline, interval)
	if err != nil {
		return nil, err
	}

	half := width / 2
	var sections []*Transect
	total := center.Length()
	verts := center.Vertices()

	var cum float64
	seg := 1
	for n := 0; ; n++ {
		d := float64(n) * step
		if d > total+stationEps {
			break
		}
		if d > total {
			d = total
		}

		// Advance to the segment containing chainage d.
		for seg < len(verts)-1 && cum+dist(verts[seg-1], verts[seg]) < d {
			cum += dist(verts[seg-1], verts[seg])
			seg++
		}
		a, b := verts[seg-1], verts[seg]
		segLen := dist(a, b)
		f := (d - cum) / segLen
		px := a.X + f*(b.X-a.X)
		py := a.Y + f*(b.Y-a.Y)

		// Unit normal of the carrying segment.
		nx := -(b.Y - a.Y) / segLen
		ny := (b.X - a.X) / segLen

		sec, err := New([]Vertex{
			{X: px - half*nx, Y: py - half*ny},
			{X: px + half*nx, Y: py + half*ny},
		}, interval)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, nil
}
