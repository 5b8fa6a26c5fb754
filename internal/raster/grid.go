package raster

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for the raster layer. Callers match with errors.Is.
var (
	// ErrInvalidParameter indicates a non-positive cell size or dimension,
	// or a value buffer whose length does not match width*height.
	ErrInvalidParameter = errors.New("raster: invalid parameter")

	// ErrNoOverlap indicates two grid footprints with a zero-area
	// intersection; there is nothing to align.
	ErrNoOverlap = errors.New("raster: grid footprints do not overlap")

	// ErrShapeMismatch indicates two grids that were expected to share a
	// lattice (origin, cell size, dimensions) but do not. Seeing it means a
	// caller bypassed the aligner.
	ErrShapeMismatch = errors.New("raster: grids are not on a common lattice")
)

// Grid is an immutable regular raster: a flat row-major value buffer plus a
// parallel validity mask. Cell (i,j) covers the half-open rectangle
// [X0+i*SX, X0+(i+1)*SX) x [Y0+j*SY, Y0+(j+1)*SY) with its value registered
// at the cell centre. Row j=0 is the southernmost (lowest-Y) row.
//
// Nodata is tracked only in the mask; the value buffer is never compared
// against a floating-point sentinel after construction. Grids are never
// mutated once built, so they may be shared freely across goroutines.
type Grid struct {
	x0, y0 float64
	sx, sy float64

	width, height int

	vals  []float64
	valid []bool
}

// NewGrid builds a grid over the supplied buffers and takes ownership of
// them; the caller must not modify vals or valid afterwards. A nil valid
// mask marks every cell valid. Returns ErrInvalidParameter for non-positive
// cell sizes or dimensions, or buffers of the wrong length.
func NewGrid(x0, y0, sx, sy float64, width, height int, vals []float64, valid []bool) (*Grid, error) {
	if sx <= 0 || sy <= 0 || math.IsNaN(sx) || math.IsNaN(sy) {
		return nil, fmt.Errorf("%w: cell size %gx%g must be positive", ErrInvalidParameter, sx, sy)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidParameter, width, height)
	}
	if len(vals) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d grid", ErrInvalidParameter, len(vals), width, height)
	}
	if valid != nil && len(valid) != width*height {
		return nil, fmt.Errorf("%w: %d mask entries for %dx%d grid", ErrInvalidParameter, len(valid), width, height)
	}
	if valid == nil {
		valid = make([]bool, width*height)
		for i := range valid {
			valid[i] = true
		}
	}
	return &Grid{
		x0: x0, y0: y0,
		sx: sx, sy: sy,
		width: width, height: height,
		vals: vals, valid: valid,
	}, nil
}

// NewGridNoData builds a grid from a buffer that marks missing cells with
// the declared sentinel value. The sentinel comparison happens exactly once,
// here at ingest; afterwards only the validity mask is consulted. NaN values
// are treated as nodata regardless of the sentinel.
func NewGridNoData(x0, y0, sx, sy float64, width, height int, vals []float64, nodata float64) (*Grid, error) {
	valid := make([]bool, len(vals))
	for i, v := range vals {
		valid[i] = v != nodata && !math.IsNaN(v)
	}
	return NewGrid(x0, y0, sx, sy, width, height, vals, valid)
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Origin returns the world coordinate of the grid's south-west corner.
func (g *Grid) Origin() (x0, y0 float64) { return g.x0, g.y0 }

// CellSize returns the cell dimensions in world units.
func (g *Grid) CellSize() (sx, sy float64) { return g.sx, g.sy }

// Bounds returns the grid footprint as min/max world coordinates.
func (g *Grid) Bounds() (minX, minY, maxX, maxY float64) {
	return g.x0, g.y0,
		g.x0 + float64(g.width)*g.sx,
		g.y0 + float64(g.height)*g.sy
}

// Index converts a cell coordinate to a flat buffer index. The caller is
// responsible for bounds; use InBounds or IsValid for queries.
func (g *Grid) Index(i, j int) int { return j*g.width + i }

// InBounds reports whether (i,j) addresses a cell of the grid.
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.width && j >= 0 && j < g.height
}

// IsValid reports whether cell (i,j) holds a measurement. Out-of-bounds
// cells are invalid, not an error, so edge handling is uniform downstream.
func (g *Grid) IsValid(i, j int) bool {
	return g.InBounds(i, j) && g.valid[g.Index(i, j)]
}

// Value returns the measurement at cell (i,j) and whether it is valid.
func (g *Grid) Value(i, j int) (float64, bool) {
	if !g.IsValid(i, j) {
		return 0, false
	}
	return g.vals[g.Index(i, j)], true
}

// CellAt locates the cell enclosing the world coordinate (x,y) and the
// fractional offset of the point within that cell, each in [0,1). ok is
// false when the point lies outside the grid footprint.
func (g *Grid) CellAt(x, y float64) (i, j int, fx, fy float64, ok bool) {
	gx := (x - g.x0) / g.sx
	gy := (y - g.y0) / g.sy
	i = int(math.Floor(gx))
	j = int(math.Floor(gy))
	if !g.InBounds(i, j) {
		return 0, 0, 0, 0, false
	}
	return i, j, gx - float64(i), gy - float64(j), true
}

// CellCenter returns the world coordinate of cell (i,j)'s centre.
func (g *Grid) CellCenter(i, j int) (x, y float64) {
	return g.x0 + (float64(i)+0.5)*g.sx, g.y0 + (float64(j)+0.5)*g.sy
}

// Bilinear samples the surface at world coordinate (x,y) by bilinear
// interpolation over the enclosing cell centres. Only neighbours carrying
// positive interpolation weight participate: a point lying exactly on a
// centre row or column reads nothing from the far row or column, so a
// nodata cell there cannot poison the sample. ok is false when any
// contributing cell is invalid or off-grid.
func (g *Grid) Bilinear(x, y float64) (v float64, ok bool) {
	gx := (x-g.x0)/g.sx - 0.5
	gy := (y-g.y0)/g.sy - 0.5
	i0 := int(math.Floor(gx))
	j0 := int(math.Floor(gy))
	fx := gx - float64(i0)
	fy := gy - float64(j0)

	cols := [2]int{i0, i0 + 1}
	rows := [2]int{j0, j0 + 1}
	wx := [2]float64{1 - fx, fx}
	wy := [2]float64{1 - fy, fy}

	var sum float64
	for a := 0; a < 2; a++ {
		if wx[a] == 0 {
			continue
		}
		for b := 0; b < 2; b++ {
			if wy[b] == 0 {
				continue
			}
			i, j := cols[a], rows[b]
			if !g.IsValid(i, j) {
				return 0, false
			}
			sum += wx[a] * wy[b] * g.vals[g.Index(i, j)]
		}
	}
	return sum, true
}

// SameLattice reports whether o shares this grid's origin, cell size, and
// dimensions, i.e. whether cell (i,j) addresses the same patch of ground in
// both grids.
func (g *Grid) SameLattice(o *Grid) bool {
	return g.x0 == o.x0 && g.y0 == o.y0 &&
		g.sx == o.sx && g.sy == o.sy &&
		g.width == o.width && g.height == o.height
}

// ValidCount returns the number of cells holding a measurement.
func (g *Grid) ValidCount() int {
	n := 0
	for _, ok := range g.valid {
		if ok {
			n++
		}
	}
	return n
}
