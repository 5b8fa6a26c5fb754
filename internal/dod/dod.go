package dod

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/groundshift-data/terrain.report/internal/raster"
)

// Options configures a DoD computation.
type Options struct {
	// Older and Newer supply per-source vertical uncertainty. When either
	// is set, the per-cell significance threshold is the root-sum-of-squares
	// of the two estimates (a missing model contributes zero).
	Older *UncertaintyModel
	Newer *UncertaintyModel

	// MinLoD is a fixed minimum level of detection. It is the whole
	// threshold when no uncertainty models are given, and a floor under the
	// propagated per-cell threshold when they are. Zero with no models
	// means no filtering: every valid difference is kept.
	MinLoD float64

	// Workers bounds the number of goroutines differencing rows.
	// Non-positive means GOMAXPROCS.
	Workers int
}

// ChangeGrid is the result of a DoD computation: the newer-minus-older
// change surface with insignificant cells masked to nodata, the propagated
// uncertainty surface when models were supplied (nil otherwise), and the
// fixed threshold component that was applied (0 when unfiltered).
//
// A nodata cell in Change means "indeterminate"; a retained 0 means
// "measured no change". The two are never conflated.
type ChangeGrid struct {
	Change      *raster.Grid
	Uncertainty *raster.Grid
	Threshold   float64
}

// Compute differences an aligned pair cell-wise (newer minus older) and
// masks cells whose |change| falls below the significance threshold. A cell
// is retained only when both sources hold a measurement there and, for
// per-cell models, the uncertainty estimate itself is available; anything
// else is nodata. Work is row-partitioned across opts.Workers goroutines.
func Compute(pair raster.AlignedPair, opts Options) (*ChangeGrid, error) {
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	if opts.MinLoD < 0 || math.IsNaN(opts.MinLoD) {
		return nil, fmt.Errorf("%w: minimum level of detection %g must be >= 0", raster.ErrInvalidParameter, opts.MinLoD)
	}
	if err := opts.Older.validate(pair.Older, "older"); err != nil {
		return nil, err
	}
	if err := opts.Newer.validate(pair.Newer, "newer"); err != nil {
		return nil, err
	}

	older, newer := pair.Older, pair.Newer
	width, height := older.Width(), older.Height()
	hasModels := opts.Older != nil || opts.Newer != nil

	vals := make([]float64, width*height)
	valid := make([]bool, width*height)
	var uVals []float64
	var uValid []bool
	if hasModels {
		uVals = make([]float64, width*height)
		uValid = make([]bool, width*height)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > height {
		workers = height
	}
	rowsPer := (height + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		jLo, jHi := w*rowsPer, (w+1)*rowsPer
		if jHi > height {
			jHi = height
		}
		if jLo >= jHi {
			break
		}
		wg.Add(1)
		go func(jLo, jHi int) {
			defer wg.Done()
			for j := jLo; j < jHi; j++ {
				for i := 0; i < width; i++ {
					idx := j*width + i
					vo, okO := older.Value(i, j)
					vn, okN := newer.Value(i, j)
					if !okO || !okN {
						continue
					}
					change := vn - vo

					threshold := opts.MinLoD
					if hasModels {
						uo, okUO := opts.Older.at(i, j)
						un, okUN := opts.Newer.at(i, j)
						if !okUO || !okUN {
							// No error estimate here: significance is
							// undecidable, so the cell is indeterminate.
							continue
						}
						u := propagated(uo, un)
						uVals[idx] = u
						uValid[idx] = true
						if u > threshold {
							threshold = u
						}
					}

					if math.Abs(change) >= threshold {
						vals[idx] = change
						valid[idx] = true
					}
				}
			}
		}(jLo, jHi)
	}
	wg.Wait()

	x0, y0 := older.Origin()
	sx, sy := older.CellSize()
	change, err := raster.NewGrid(x0, y0, sx, sy, width, height, vals, valid)
	if err != nil {
		return nil, err
	}
	out := &ChangeGrid{Change: change, Threshold: opts.MinLoD}
	if hasModels {
		out.Uncertainty, err = raster.NewGrid(x0, y0, sx, sy, width, height, uVals, uValid)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
