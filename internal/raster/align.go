package raster

import (
	"fmt"
	"math"
)

// latticeEps is the relative tolerance used when deciding whether two
// lattices share a phase, guarding against drift from origin arithmetic.
const latticeEps = 1e-9

// AlignedPair holds two grids guaranteed to share an identical lattice, the
// only shape the DoD engine accepts. Construct one through Align, never by
// hand.
type AlignedPair struct {
	Older *Grid
	Newer *Grid
}

// Validate re-checks the AlignedPair invariant. A failure means the pair was
// assembled without the aligner.
func (p AlignedPair) Validate() error {
	if p.Older == nil || p.Newer == nil {
		return fmt.Errorf("%w: nil grid in pair", ErrShapeMismatch)
	}
	if !p.Older.SameLattice(p.Newer) {
		return fmt.Errorf("%w: older %dx%d vs newer %dx%d", ErrShapeMismatch,
			p.Older.Width(), p.Older.Height(), p.Newer.Width(), p.Newer.Height())
	}
	return nil
}

// AlignOptions tunes the target lattice. The zero value resamples onto the
// coarser of the two inputs, which is the recommended default: pushing the
// coarse grid onto a fine lattice invents detail that is not there.
type AlignOptions struct {
	// CellSizeX/CellSizeY override the target resolution when positive.
	CellSizeX float64
	CellSizeY float64
}

// Align resamples two grids onto a common lattice covering the intersection
// of their footprints. The target lattice takes the coarser cell size per
// axis (or the override from opts) and is phase-locked to the coarser grid,
// so aligning a grid with itself reproduces its own lattice exactly. Cells
// the target needs that fall outside either source footprint come out
// nodata; nothing is ever extrapolated. Resampling is bilinear. Returns
// ErrNoOverlap when the footprints share no area.
func Align(older, newer *Grid, opts AlignOptions) (AlignedPair, error) {
	if older == nil || newer == nil {
		return AlignedPair{}, fmt.Errorf("%w: nil input grid", ErrInvalidParameter)
	}

	aMinX, aMinY, aMaxX, aMaxY := older.Bounds()
	bMinX, bMinY, bMaxX, bMaxY := newer.Bounds()
	minX := math.Max(aMinX, bMinX)
	minY := math.Max(aMinY, bMinY)
	maxX := math.Min(aMaxX, bMaxX)
	maxY := math.Min(aMaxY, bMaxY)
	if maxX <= minX || maxY <= minY {
		return AlignedPair{}, fmt.Errorf("%w: x [%g,%g] y [%g,%g]", ErrNoOverlap, minX, maxX, minY, maxY)
	}

	// Target resolution: explicit override, else the coarser input per axis.
	sx, sy := opts.CellSizeX, opts.CellSizeY
	if sx < 0 || sy < 0 || math.IsNaN(sx) || math.IsNaN(sy) {
		return AlignedPair{}, fmt.Errorf("%w: target cell size %gx%g", ErrInvalidParameter, sx, sy)
	}
	asx, asy := older.CellSize()
	bsx, bsy := newer.CellSize()
	if sx == 0 {
		sx = math.Max(asx, bsx)
	}
	if sy == 0 {
		sy = math.Max(asy, bsy)
	}

	// Phase-lock the target origin to whichever input is coarser on each
	// axis (ties go to the older grid) by snapping the intersection corner
	// onto that grid's lattice.
	phaseX, phaseY := aMinX, aMinY
	if bsx > asx {
		phaseX = bMinX
	}
	if bsy > asy {
		phaseY = bMinY
	}
	x0 := phaseX + math.Ceil((minX-phaseX)/sx-latticeEps)*sx
	y0 := phaseY + math.Ceil((minY-phaseY)/sy-latticeEps)*sy

	width := int(math.Floor((maxX-x0)/sx + latticeEps))
	height := int(math.Floor((maxY-y0)/sy + latticeEps))
	if width < 1 || height < 1 {
		return AlignedPair{}, fmt.Errorf("%w: intersection narrower than one target cell", ErrNoOverlap)
	}

	ra, err := resample(older, x0, y0, sx, sy, width, height)
	if err != nil {
		return AlignedPair{}, err
	}
	rb, err := resample(newer, x0, y0, sx, sy, width, height)
	if err != nil {
		return AlignedPair{}, err
	}
	return AlignedPair{Older: ra, Newer: rb}, nil
}

// resample projects src onto the given target lattice. When the source is
// already on the target lattice (same cell size, same phase) cells are
// copied straight across with no interpolation, so aligning identical grids
// introduces no drift.
func resample(src *Grid, x0, y0, sx, sy float64, width, height int) (*Grid, error) {
	ssx, ssy := src.CellSize()
	sx0, sy0 := src.Origin()

	if sameStep(ssx, sx) && sameStep(ssy, sy) {
		offX := (x0 - sx0) / sx
		offY := (y0 - sy0) / sy
		oi := int(math.Round(offX))
		oj := int(math.Round(offY))
		if math.Abs(offX-float64(oi)) < latticeEps && math.Abs(offY-float64(oj)) < latticeEps {
			return crop(src, oi, oj, x0, y0, sx, sy, width, height)
		}
	}

	vals := make([]float64, width*height)
	valid := make([]bool, width*height)
	for j := 0; j < height; j++ {
		cy := y0 + (float64(j)+0.5)*sy
		for i := 0; i < width; i++ {
			cx := x0 + (float64(i)+0.5)*sx
			if v, ok := src.Bilinear(cx, cy); ok {
				vals[j*width+i] = v
				valid[j*width+i] = true
			}
		}
	}
	return NewGrid(x0, y0, sx, sy, width, height, vals, valid)
}

// crop copies a window of src starting at source cell (oi,oj) onto the
// target lattice. Target cells outside the source footprint are nodata.
func crop(src *Grid, oi, oj int, x0, y0, sx, sy float64, width, height int) (*Grid, error) {
	vals := make([]float64, width*height)
	valid := make([]bool, width*height)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			if v, ok := src.Value(oi+i, oj+j); ok {
				vals[j*width+i] = v
				valid[j*width+i] = true
			}
		}
	}
	return NewGrid(x0, y0, sx, sy, width, height, vals, valid)
}

func sameStep(a, b float64) bool {
	return math.Abs(a-b) <= latticeEps*math.Max(a, b)
}
