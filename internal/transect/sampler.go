package transect

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/groundshift-data/terrain.report/internal/dod"
	"github.com/groundshift-data/terrain.report/internal/raster"
)

// ProfileSample is one station of a cross-section. Each surface carries its
// own validity flag: a station can hold valid elevations but an
// indeterminate change (or the reverse) when the underlying cells differ.
type ProfileSample struct {
	// Station is the cumulative distance along the transect.
	Station float64
	// X, Y is the world coordinate of the station.
	X float64
	Y float64

	ElevationOlder float64
	ElevationNewer float64
	Change         float64

	OlderValid bool
	NewerValid bool
	ChangeValid bool
}

// Profile is an ordered cross-section: station distances are non-decreasing
// by construction and consumers never re-sort. Produced fresh per call.
type Profile []ProfileSample

// SampleOptions tunes profile extraction.
type SampleOptions struct {
	// Workers bounds the goroutines sampling stations. Non-positive means
	// GOMAXPROCS. Stations are computed independently and reassembled in
	// station order before return.
	Workers int
}

// Sample walks the transect across an aligned pair and its change surface,
// producing one sample per station via bilinear interpolation of each
// surface. A surface's value at a station is invalid when any contributing
// cell is nodata or off-grid for that surface. The change grid must be on
// the pair's lattice.
func Sample(tr *Transect, pair raster.AlignedPair, change *dod.ChangeGrid, opts SampleOptions) (Profile, error) {
	if tr == nil {
		return nil, fmt.Errorf("%w: nil transect", ErrInvalidParameter)
	}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	if change == nil || change.Change == nil {
		return nil, fmt.Errorf("%w: nil change surface", ErrInvalidParameter)
	}
	if !change.Change.SameLattice(pair.Older) {
		return nil, fmt.Errorf("%w: change surface is not on the pair's lattice", raster.ErrShapeMismatch)
	}

	sts := tr.stations()
	profile := make(Profile, len(sts))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(sts) {
		workers = len(sts)
	}
	per := (len(sts) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := w*per, (w+1)*per
		if hi > len(sts) {
			hi = len(sts)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for k := lo; k < hi; k++ {
				st := sts[k]
				s := ProfileSample{Station: st.dist, X: st.x, Y: st.y}
				s.ElevationOlder, s.OlderValid = pair.Older.Bilinear(st.x, st.y)
				s.ElevationNewer, s.NewerValid = pair.Newer.Bilinear(st.x, st.y)
				s.Change, s.ChangeValid = change.Change.Bilinear(st.x, st.y)
				profile[k] = s
			}
		}(lo, hi)
	}
	wg.Wait()

	return profile, nil
}
