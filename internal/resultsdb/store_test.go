package resultsdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groundshift-data/terrain.report/internal/dod"
	"github.com/groundshift-data/terrain.report/internal/transect"
)

// openTestDB creates a migrated throwaway database.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.MigrateUp(filepath.Join("..", "..", "db", "migrations")))
	return db
}

func TestInsertAndListRuns(t *testing.T) {
	db := openTestDB(t)

	run := &AnalysisRun{
		OlderDEM:         "may_2019.asc",
		NewerDEM:         "aug_2019.asc",
		Threshold:        0.2,
		Width:            120,
		Height:           80,
		CellSizeX:        1,
		CellSizeY:        1,
		SignificantCells: 4312,
	}
	require.NoError(t, db.InsertRun(run))
	require.NotEmpty(t, run.RunID, "InsertRun should assign a run id")
	require.NotZero(t, run.CreatedUnixNanos)

	runs, err := db.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, *run, runs[0])
}

func TestInsertProfileSummaries(t *testing.T) {
	db := openTestDB(t)

	run := &AnalysisRun{OlderDEM: "a", NewerDEM: "b"}
	require.NoError(t, db.InsertRun(run))

	s := transect.ProfileSummary{
		NetArea:          1.5,
		CutArea:          0.5,
		FillArea:         2.0,
		MaxChange:        0.9,
		MinChange:        -0.3,
		ValidSampleCount: 55,
		Crossings:        []float64{12.5, 30.0},
	}
	require.NoError(t, db.InsertProfileSummary(run.RunID, "xs-01", s))
	require.NoError(t, db.InsertProfileSummary(run.RunID, "xs-02", transect.ProfileSummary{}))

	rows, err := db.ListProfileSummaries(run.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "xs-01", rows[0].TransectName)
	require.Equal(t, 1.5, rows[0].NetArea)
	require.Equal(t, 2, rows[0].Crossings)
	require.Equal(t, 55, rows[0].ValidSamples)
	require.Equal(t, "xs-02", rows[1].TransectName)
}

func TestInsertChangeStats(t *testing.T) {
	db := openTestDB(t)

	run := &AnalysisRun{OlderDEM: "a", NewerDEM: "b"}
	require.NoError(t, db.InsertRun(run))

	cs := dod.ChangeStats{
		CellArea: 1,
		Erosion: dod.DirectionStats{
			Cells: 3, Area: 3, MeanChange: 1, MedianChange: 1, Volume: 3, VolumeMedian: 3,
		},
		NetVolume: -3,
	}
	require.NoError(t, db.InsertChangeStats(run.RunID, cs))

	var netVolume float64
	var cells int
	err := db.QueryRow(`SELECT net_volume, erosion_cells FROM change_stats WHERE run_id = ?`, run.RunID).
		Scan(&netVolume, &cells)
	require.NoError(t, err)
	require.Equal(t, -3.0, netVolume)
	require.Equal(t, 3, cells)
}

func TestMigrateVersion(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion(filepath.Join("..", "..", "db", "migrations"))
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}
