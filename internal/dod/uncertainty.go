package dod

import (
	"fmt"
	"math"

	"github.com/groundshift-data/terrain.report/internal/raster"
)

// UncertaintyModel describes the vertical measurement error of one DEM,
// either as a single scalar broadcast to every cell or as a grid of per-cell
// estimates on the same lattice as the aligned pair.
type UncertaintyModel struct {
	scalar float64
	grid   *raster.Grid
}

// Uniform returns a model applying the same vertical error to every cell.
func Uniform(err float64) *UncertaintyModel {
	return &UncertaintyModel{scalar: err}
}

// PerCell returns a model reading the vertical error per cell from g.
func PerCell(g *raster.Grid) *UncertaintyModel {
	return &UncertaintyModel{grid: g}
}

// at returns the error estimate for cell (i,j). ok is false when a per-cell
// model has no measurement there.
func (m *UncertaintyModel) at(i, j int) (float64, bool) {
	if m == nil {
		return 0, true
	}
	if m.grid != nil {
		return m.grid.Value(i, j)
	}
	return m.scalar, true
}

// validate checks a model against the pair shape it will be read with.
func (m *UncertaintyModel) validate(ref *raster.Grid, which string) error {
	if m == nil {
		return nil
	}
	if m.grid != nil {
		if !m.grid.SameLattice(ref) {
			return fmt.Errorf("%w: %s uncertainty grid %dx%d vs pair %dx%d",
				raster.ErrShapeMismatch, which,
				m.grid.Width(), m.grid.Height(), ref.Width(), ref.Height())
		}
		return nil
	}
	if m.scalar < 0 || math.IsNaN(m.scalar) {
		return fmt.Errorf("%w: %s uncertainty %g must be >= 0", raster.ErrInvalidParameter, which, m.scalar)
	}
	return nil
}

// propagated combines two per-source error estimates by root-sum-of-squares.
func propagated(uOlder, uNewer float64) float64 {
	return math.Sqrt(uOlder*uOlder + uNewer*uNewer)
}
