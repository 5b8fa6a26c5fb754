package transect

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for transect geometry. Callers match with errors.Is.
var (
	// ErrDegenerateTransect indicates a polyline on which arc-length
	// parameterisation is undefined: fewer than two vertices or a
	// zero-length segment between consecutive duplicates.
	ErrDegenerateTransect = errors.New("transect: degenerate polyline")

	// ErrInvalidParameter indicates a non-positive sampling interval,
	// step, or width.
	ErrInvalidParameter = errors.New("transect: invalid parameter")
)

// stationEps is the absolute tolerance used to merge stations that land on
// top of each other, e.g. an interval multiple coinciding with a vertex.
const stationEps = 1e-9

// Vertex is a polyline vertex in the grid's world coordinate space.
type Vertex struct {
	X float64
	Y float64
}

// Transect is a polyline of at least two distinct consecutive vertices plus
// the arc-length sampling interval. Immutable once constructed.
type Transect struct {
	vertices []Vertex
	interval float64
	length   float64
}

// New validates and builds a transect. The vertex slice is copied. Returns
// ErrDegenerateTransect for fewer than two vertices or consecutive duplicate
// vertices, ErrInvalidParameter for a non-positive interval.
func New(vertices []Vertex, interval float64) (*Transect, error) {
	if interval <= 0 || math.IsNaN(interval) {
		return nil, fmt.Errorf("%w: sampling interval %g must be positive", ErrInvalidParameter, interval)
	}
	if len(vertices) < 2 {
		return nil, fmt.Errorf("%w: %d vertices, need at least 2", ErrDegenerateTransect, len(vertices))
	}
	var length float64
	for k := 1; k < len(vertices); k++ {
		d := dist(vertices[k-1], vertices[k])
		if d == 0 {
			return nil, fmt.Errorf("%w: consecutive duplicate vertex at index %d", ErrDegenerateTransect, k)
		}
		length += d
	}
	return &Transect{
		vertices: append([]Vertex(nil), vertices...),
		interval: interval,
		length:   length,
	}, nil
}

// Vertices returns a copy of the polyline vertices.
func (t *Transect) Vertices() []Vertex {
	return append([]Vertex(nil), t.vertices...)
}

// Interval returns the arc-length sampling interval.
func (t *Transect) Interval() float64 { return t.interval }

// Length returns the total polyline length.
func (t *Transect) Length() float64 { return t.length }

// station is a resolved sampling location along the transect.
type station struct {
	dist float64
	x, y float64
}

// stations walks the polyline at fixed arc-length increments and adds every
// segment endpoint, so sharp bends are sampled even when the interval is
// larger than a segment. Output distances are strictly increasing; stations
// closer than stationEps collapse into one. The first station is at
// distance 0 and the last at the full polyline length.
func (t *Transect) stations() []station {
	out := make([]station, 0, int(t.length/t.interval)+len(t.vertices)+1)
	emit := func(d, x, y float64) {
		if len(out) > 0 && d-out[len(out)-1].dist < stationEps {
			return
		}
		out = append(out, station{dist: d, x: x, y: y})
	}

	var cum float64
	emit(0, t.vertices[0].X, t.vertices[0].Y)
	for k := 1; k < len(t.vertices); k++ {
		a, b := t.vertices[k-1], t.vertices[k]
		segLen := dist(a, b)
		segEnd := cum + segLen

		// Interval stations strictly inside this segment, on the global
		// chainage so spacing carries across vertices.
		for n := math.Floor(cum/t.interval) + 1; ; n++ {
			d := n * t.interval
			if d >= segEnd-stationEps {
				break
			}
			if d <= cum+stationEps {
				continue
			}
			f := (d - cum) / segLen
			emit(d, a.X+f*(b.X-a.X), a.Y+f*(b.Y-a.Y))
		}

		cum = segEnd
		emit(cum, b.X, b.Y)
	}
	return out
}

func dist(a, b Vertex) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
