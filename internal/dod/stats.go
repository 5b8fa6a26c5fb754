package dod

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DirectionStats summarises the significant cells of one change direction.
//
// Volume is the exact cell-sum of |change| times cell area. VolumeMedian is
// plan area times the median |change|, the convention used by the zonal
// statistics step of the original field workflow; it is robust to a few
// extreme cells but coarser than the sum.
type DirectionStats struct {
	Cells        int
	Area         float64
	MeanChange   float64
	MedianChange float64
	Volume       float64
	VolumeMedian float64
}

// ChangeStats reduces a ChangeGrid into per-direction zonal statistics.
// Erosion collects cells with negative change, deposition positive change;
// retained zero-change cells count toward neither. NetVolume is deposition
// minus erosion volume (positive when the surface gained material).
type ChangeStats struct {
	CellArea   float64
	Erosion    DirectionStats
	Deposition DirectionStats
	NetVolume  float64
}

// Stats computes zonal change statistics over the significant cells of cg.
func Stats(cg *ChangeGrid) ChangeStats {
	g := cg.Change
	sx, sy := g.CellSize()
	cellArea := sx * sy

	var ero, dep []float64
	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			v, ok := g.Value(i, j)
			if !ok {
				continue
			}
			switch {
			case v < 0:
				ero = append(ero, -v)
			case v > 0:
				dep = append(dep, v)
			}
		}
	}

	cs := ChangeStats{
		CellArea:   cellArea,
		Erosion:    directionStats(ero, cellArea),
		Deposition: directionStats(dep, cellArea),
	}
	cs.NetVolume = cs.Deposition.Volume - cs.Erosion.Volume
	return cs
}

// directionStats reduces the magnitudes of one direction's cells. The slice
// is sorted in place for the quantile.
func directionStats(mags []float64, cellArea float64) DirectionStats {
	if len(mags) == 0 {
		return DirectionStats{}
	}
	var sum float64
	for _, m := range mags {
		sum += m
	}
	sort.Float64s(mags)
	median := stat.Quantile(0.5, stat.Empirical, mags, nil)
	area := float64(len(mags)) * cellArea
	return DirectionStats{
		Cells:        len(mags),
		Area:         area,
		MeanChange:   stat.Mean(mags, nil),
		MedianChange: median,
		Volume:       sum * cellArea,
		VolumeMedian: area * median,
	}
}
