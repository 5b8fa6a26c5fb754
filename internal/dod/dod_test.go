package dod

import (
	"errors"
	"math"
	"testing"

	"github.com/groundshift-data/terrain.report/internal/raster"
)

// pair3x3 builds the canonical scenario: older all zeros, newer all 1.0
// except nodata at (1,1), both 3x3 with unit cells at the origin.
func pair3x3(t *testing.T) raster.AlignedPair {
	t.Helper()
	older, err := raster.NewGrid(0, 0, 1, 1, 3, 3, make([]float64, 9), nil)
	if err != nil {
		t.Fatalf("older: %v", err)
	}
	nv := []float64{1, 1, 1, 1, -9999, 1, 1, 1, 1}
	newer, err := raster.NewGridNoData(0, 0, 1, 1, 3, 3, nv, -9999)
	if err != nil {
		t.Fatalf("newer: %v", err)
	}
	return raster.AlignedPair{Older: older, Newer: newer}
}

func TestComputeUnfiltered(t *testing.T) {
	cg, err := Compute(pair3x3(t), Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if cg.Threshold != 0 {
		t.Errorf("Threshold = %g, want 0", cg.Threshold)
	}
	if cg.Uncertainty != nil {
		t.Errorf("Uncertainty grid should be nil without models")
	}

	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			v, ok := cg.Change.Value(i, j)
			if i == 1 && j == 1 {
				if ok {
					t.Errorf("cell (1,1) should be nodata, got %g", v)
				}
				continue
			}
			if !ok || v != 1.0 {
				t.Errorf("cell (%d,%d) = %v, %v; want 1.0, true", i, j, v, ok)
			}
		}
	}
}

func TestComputeZeroChangeIsValidNotNodata(t *testing.T) {
	older, _ := raster.NewGrid(0, 0, 1, 1, 2, 1, []float64{5, 5}, nil)
	newer, _ := raster.NewGrid(0, 0, 1, 1, 2, 1, []float64{5, 5}, nil)
	cg, err := Compute(raster.AlignedPair{Older: older, Newer: newer}, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if v, ok := cg.Change.Value(0, 0); !ok || v != 0 {
		t.Errorf("measured no-change must be a valid zero, got %v, %v", v, ok)
	}
}

func TestComputeAntisymmetry(t *testing.T) {
	ov := []float64{1, 2, 3, 4, -9999, 6, 7, 8, 9}
	nv := []float64{2, 1, 5, 3, 7, -9999, 9, 8, 4}
	older, _ := raster.NewGridNoData(0, 0, 1, 1, 3, 3, ov, -9999)
	newer, _ := raster.NewGridNoData(0, 0, 1, 1, 3, 3, nv, -9999)

	fwd, err := Compute(raster.AlignedPair{Older: older, Newer: newer}, Options{})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	rev, err := Compute(raster.AlignedPair{Older: newer, Newer: older}, Options{})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			f, okF := fwd.Change.Value(i, j)
			r, okR := rev.Change.Value(i, j)
			if okF != okR {
				t.Errorf("cell (%d,%d): validity differs between directions", i, j)
				continue
			}
			if okF && f != -r {
				t.Errorf("cell (%d,%d): %g != -(%g)", i, j, f, r)
			}
		}
	}
}

func TestComputeThresholdMonotonicity(t *testing.T) {
	ov := make([]float64, 25)
	nv := make([]float64, 25)
	for i := range nv {
		// Changes spread over [-1.2, 1.2].
		nv[i] = float64(i%7)*0.4 - 1.2
	}
	older, _ := raster.NewGrid(0, 0, 1, 1, 5, 5, ov, nil)
	newer, _ := raster.NewGrid(0, 0, 1, 1, 5, 5, nv, nil)
	pair := raster.AlignedPair{Older: older, Newer: newer}

	prev := math.MaxInt
	for _, lod := range []float64{0, 0.2, 0.5, 0.9, 1.3} {
		cg, err := Compute(pair, Options{MinLoD: lod})
		if err != nil {
			t.Fatalf("MinLoD %g: %v", lod, err)
		}
		n := cg.Change.ValidCount()
		if n > prev {
			t.Errorf("MinLoD %g retained %d cells, more than the smaller threshold's %d", lod, n, prev)
		}
		prev = n
	}
}

func TestComputeFixedMinLoD(t *testing.T) {
	older, _ := raster.NewGrid(0, 0, 1, 1, 3, 1, []float64{0, 0, 0}, nil)
	newer, _ := raster.NewGrid(0, 0, 1, 1, 3, 1, []float64{0.1, -0.2, 0.3}, nil)
	cg, err := Compute(raster.AlignedPair{Older: older, Newer: newer}, Options{MinLoD: 0.2})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if cg.Threshold != 0.2 {
		t.Errorf("Threshold = %g, want 0.2", cg.Threshold)
	}

	if _, ok := cg.Change.Value(0, 0); ok {
		t.Errorf("|0.1| < 0.2 should be masked")
	}
	// |change| equal to the threshold is retained.
	if v, ok := cg.Change.Value(1, 0); !ok || v != -0.2 {
		t.Errorf("cell (1,0) = %v, %v; want -0.2, true", v, ok)
	}
	if v, ok := cg.Change.Value(2, 0); !ok || math.Abs(v-0.3) > 1e-12 {
		t.Errorf("cell (2,0) = %v, %v; want 0.3, true", v, ok)
	}
}

func TestComputePropagatedUncertainty(t *testing.T) {
	older, _ := raster.NewGrid(0, 0, 1, 1, 2, 1, []float64{0, 0}, nil)
	newer, _ := raster.NewGrid(0, 0, 1, 1, 2, 1, []float64{0.6, 0.4}, nil)
	pair := raster.AlignedPair{Older: older, Newer: newer}

	// RSS of 0.3 and 0.4 is 0.5: the 0.6 change survives, the 0.4 does not.
	cg, err := Compute(pair, Options{Older: Uniform(0.3), Newer: Uniform(0.4)})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if cg.Uncertainty == nil {
		t.Fatalf("expected a propagated uncertainty grid")
	}
	if u, ok := cg.Uncertainty.Value(0, 0); !ok || math.Abs(u-0.5) > 1e-12 {
		t.Errorf("propagated uncertainty = %v, %v; want 0.5", u, ok)
	}
	if v, ok := cg.Change.Value(0, 0); !ok || math.Abs(v-0.6) > 1e-12 {
		t.Errorf("cell (0,0) = %v, %v; want 0.6 retained", v, ok)
	}
	if _, ok := cg.Change.Value(1, 0); ok {
		t.Errorf("cell (1,0) change 0.4 < RSS 0.5 should be masked")
	}
}

func TestComputePerCellUncertaintyGaps(t *testing.T) {
	older, _ := raster.NewGrid(0, 0, 1, 1, 2, 1, []float64{0, 0}, nil)
	newer, _ := raster.NewGrid(0, 0, 1, 1, 2, 1, []float64{1, 1}, nil)
	pair := raster.AlignedPair{Older: older, Newer: newer}

	// The per-cell error surface has no estimate at (1,0): significance is
	// undecidable there and the cell must come out indeterminate.
	uv, _ := raster.NewGridNoData(0, 0, 1, 1, 2, 1, []float64{0.2, -9999}, -9999)
	cg, err := Compute(pair, Options{Newer: PerCell(uv)})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if v, ok := cg.Change.Value(0, 0); !ok || v != 1 {
		t.Errorf("cell (0,0) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := cg.Change.Value(1, 0); ok {
		t.Errorf("cell (1,0) has no uncertainty estimate and should be nodata")
	}
}

func TestComputeRejectsBadInputs(t *testing.T) {
	older, _ := raster.NewGrid(0, 0, 1, 1, 3, 3, make([]float64, 9), nil)
	wide, _ := raster.NewGrid(0, 0, 1, 1, 4, 3, make([]float64, 12), nil)

	if _, err := Compute(raster.AlignedPair{Older: older, Newer: wide}, Options{}); !errors.Is(err, raster.ErrShapeMismatch) {
		t.Errorf("mismatched pair: expected ErrShapeMismatch, got %v", err)
	}

	pair := raster.AlignedPair{Older: older, Newer: older}
	if _, err := Compute(pair, Options{MinLoD: -0.1}); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("negative MinLoD: expected ErrInvalidParameter, got %v", err)
	}
	if _, err := Compute(pair, Options{Older: Uniform(-1)}); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("negative uncertainty: expected ErrInvalidParameter, got %v", err)
	}
	if _, err := Compute(pair, Options{Newer: PerCell(wide)}); !errors.Is(err, raster.ErrShapeMismatch) {
		t.Errorf("mis-shaped uncertainty grid: expected ErrShapeMismatch, got %v", err)
	}
}

func TestComputeWorkerCountsAgree(t *testing.T) {
	// Row partitioning must not change the result.
	const w, h = 17, 23
	ov := make([]float64, w*h)
	nv := make([]float64, w*h)
	for i := range nv {
		ov[i] = float64(i % 5)
		nv[i] = float64(i%9) * 0.5
	}
	older, _ := raster.NewGrid(0, 0, 1, 1, w, h, ov, nil)
	newer, _ := raster.NewGrid(0, 0, 1, 1, w, h, nv, nil)
	pair := raster.AlignedPair{Older: older, Newer: newer}

	serial, err := Compute(pair, Options{MinLoD: 1.0, Workers: 1})
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := Compute(pair, Options{MinLoD: 1.0, Workers: 7})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			sv, sok := serial.Change.Value(i, j)
			pv, pok := parallel.Change.Value(i, j)
			if sok != pok || (sok && sv != pv) {
				t.Fatalf("cell (%d,%d): serial %v,%v vs parallel %v,%v", i, j, sv, sok, pv, pok)
			}
		}
	}
}
