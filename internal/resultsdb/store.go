package resultsdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/groundshift-data/terrain.report/internal/dod"
	"github.com/groundshift-data/terrain.report/internal/transect"
)

// AnalysisRun records one DoD computation: its inputs, the threshold that
// was applied, and the zonal change statistics of the result.
type AnalysisRun struct {
	RunID            string
	OlderDEM         string
	NewerDEM         string
	Threshold        float64
	Width            int
	Height           int
	CellSizeX        float64
	CellSizeY        float64
	SignificantCells int
	CreatedUnixNanos int64
}

// InsertRun persists a run record. An empty RunID is filled with a fresh
// UUID; a zero CreatedUnixNanos with the current time. Both are written
// back to the struct.
func (db *DB) InsertRun(run *AnalysisRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedUnixNanos == 0 {
		run.CreatedUnixNanos = time.Now().UnixNano()
	}

	_, err := db.Exec(`
		INSERT INTO analysis_runs (
			run_id, older_dem, newer_dem, threshold,
			width, height, cell_size_x, cell_size_y,
			significant_cells, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.OlderDEM, run.NewerDEM, run.Threshold,
		run.Width, run.Height, run.CellSizeX, run.CellSizeY,
		run.SignificantCells, run.CreatedUnixNanos)
	if err != nil {
		return fmt.Errorf("inserting analysis run: %w", err)
	}
	return nil
}

// InsertChangeStats persists the zonal change statistics of a run.
func (db *DB) InsertChangeStats(runID string, cs dod.ChangeStats) error {
	_, err := db.Exec(`
		INSERT INTO change_stats (
			run_id, cell_area,
			erosion_cells, erosion_area, erosion_mean, erosion_median,
			erosion_volume, erosion_volume_median,
			deposition_cells, deposition_area, deposition_mean, deposition_median,
			deposition_volume, deposition_volume_median,
			net_volume
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, cs.CellArea,
		cs.Erosion.Cells, cs.Erosion.Area, cs.Erosion.MeanChange, cs.Erosion.MedianChange,
		cs.Erosion.Volume, cs.Erosion.VolumeMedian,
		cs.Deposition.Cells, cs.Deposition.Area, cs.Deposition.MeanChange, cs.Deposition.MedianChange,
		cs.Deposition.Volume, cs.Deposition.VolumeMedian,
		cs.NetVolume)
	if err != nil {
		return fmt.Errorf("inserting change stats: %w", err)
	}
	return nil
}

// InsertProfileSummary persists one transect's summary under a run.
func (db *DB) InsertProfileSummary(runID, name string, s transect.ProfileSummary) error {
	_, err := db.Exec(`
		INSERT INTO profile_summaries (
			run_id, transect_name, net_area, cut_area, fill_area,
			max_change, min_change, valid_samples, crossings
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, name, s.NetArea, s.CutArea, s.FillArea,
		s.MaxChange, s.MinChange, s.ValidSampleCount, len(s.Crossings))
	if err != nil {
		return fmt.Errorf("inserting profile summary for %s: %w", name, err)
	}
	return nil
}

// ProfileSummaryRow is a stored transect summary.
type ProfileSummaryRow struct {
	RunID        string
	TransectName string
	NetArea      float64
	CutArea      float64
	FillArea     float64
	MaxChange    float64
	MinChange    float64
	ValidSamples int
	Crossings    int
}

// ListRuns returns all runs, newest first.
func (db *DB) ListRuns() ([]AnalysisRun, error) {
	rows, err := db.Query(`
		SELECT run_id, older_dem, newer_dem, threshold,
		       width, height, cell_size_x, cell_size_y,
		       significant_cells, created_unix_nanos
		FROM analysis_runs ORDER BY created_unix_nanos DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var r AnalysisRun
		if err := rows.Scan(&r.RunID, &r.OlderDEM, &r.NewerDEM, &r.Threshold,
			&r.Width, &r.Height, &r.CellSizeX, &r.CellSizeY,
			&r.SignificantCells, &r.CreatedUnixNanos); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListProfileSummaries returns the stored summaries for a run in insertion
// order.
func (db *DB) ListProfileSummaries(runID string) ([]ProfileSummaryRow, error) {
	rows, err := db.Query(`
		SELECT run_id, transect_name, net_area, cut_area, fill_area,
		       max_change, min_change, valid_samples, crossings
		FROM profile_summaries WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing summaries for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []ProfileSummaryRow
	for rows.Next() {
		var r ProfileSummaryRow
		if err := rows.Scan(&r.RunID, &r.TransectName, &r.NetArea, &r.CutArea, &r.FillArea,
			&r.MaxChange, &r.MinChange, &r.ValidSamples, &r.Crossings); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
