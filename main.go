// Command terrain-report computes a thresholded DEM of difference between
// two elevation grids and extracts cross-section profiles along digitised
// transects. It is glue only: file decoding, rendering, and persistence
// happen here, around the pure core packages.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/groundshift-data/terrain.report/internal/dod"
	"github.com/groundshift-data/terrain.report/internal/geoio"
	"github.com/groundshift-data/terrain.report/internal/raster"
	"github.com/groundshift-data/terrain.report/internal/report"
	"github.com/groundshift-data/terrain.report/internal/resultsdb"
	"github.com/groundshift-data/terrain.report/internal/transect"
	"github.com/groundshift-data/terrain.report/internal/version"
)

var (
	olderPath = flag.String("older", "", "Earlier DEM (ESRI ASCII grid)")
	newerPath = flag.String("newer", "", "Later DEM (ESRI ASCII grid)")

	minLoD     = flag.Float64("min-lod", 0, "Fixed minimum level of detection; 0 keeps every difference")
	uncerOlder = flag.Float64("uncertainty-older", 0, "Scalar vertical uncertainty of the earlier DEM (0 = none)")
	uncerNewer = flag.Float64("uncertainty-newer", 0, "Scalar vertical uncertainty of the later DEM (0 = none)")
	cellSize   = flag.Float64("cell-size", 0, "Target cell size override; 0 uses the coarser input")
	workers    = flag.Int("workers", 0, "Worker goroutines for differencing and sampling; 0 = GOMAXPROCS")

	transectsPath = flag.String("transects", "", "Transect vertex CSV (name,x,y); optional")
	interval      = flag.Float64("interval", 1.0, "Arc-length sampling interval along transects")
	orthoStep     = flag.Float64("ortho-step", 0, "When positive, treat each transect as a centerline and generate perpendicular sections at this spacing")
	orthoWidth    = flag.Float64("ortho-width", 0, "Total width of generated perpendicular sections")

	outDir    = flag.String("out", "out", "Output directory")
	dbPath    = flag.String("db", "", "Optional sqlite results database")
	migDir    = flag.String("migrations", "db/migrations", "Migrations directory for the results database")
	plotsFlag = flag.Bool("plots", false, "Write PNG profile plots")
	htmlFlag  = flag.Bool("html", false, "Write HTML charts")
	showVer   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVer {
		fmt.Printf("terrain-report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *olderPath == "" || *newerPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(); err != nil {
		log.Fatalf("terrain-report: %v", err)
	}
}

func run() error {
	older, err := loadDEM(*olderPath)
	if err != nil {
		return err
	}
	newer, err := loadDEM(*newerPath)
	if err != nil {
		return err
	}
	log.Printf("loaded DEMs: older %dx%d, newer %dx%d", older.Width(), older.Height(), newer.Width(), newer.Height())

	pair, err := raster.Align(older, newer, raster.AlignOptions{CellSizeX: *cellSize, CellSizeY: *cellSize})
	if err != nil {
		return fmt.Errorf("aligning grids: %w", err)
	}
	log.Printf("aligned onto common lattice %dx%d", pair.Older.Width(), pair.Older.Height())

	opts := dod.Options{MinLoD: *minLoD, Workers: *workers}
	if *uncerOlder > 0 {
		opts.Older = dod.Uniform(*uncerOlder)
	}
	if *uncerNewer > 0 {
		opts.Newer = dod.Uniform(*uncerNewer)
	}
	cg, err := dod.Compute(pair, opts)
	if err != nil {
		return fmt.Errorf("computing DoD: %w", err)
	}
	cs := dod.Stats(cg)
	log.Printf("DoD: %d significant cells; erosion %.2f m3 over %.1f m2, deposition %.2f m3 over %.1f m2, net %.2f m3",
		cg.Change.ValidCount(), cs.Erosion.Volume, cs.Erosion.Area, cs.Deposition.Volume, cs.Deposition.Area, cs.NetVolume)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := writeGrid(filepath.Join(*outDir, "dod.asc"), cg.Change); err != nil {
		return err
	}
	if *htmlFlag {
		if err := writeChangeHTML(filepath.Join(*outDir, "dod.html"), cg); err != nil {
			return err
		}
	}

	var summaries []report.NamedSummary
	if *transectsPath != "" {
		summaries, err = processTransects(pair, cg)
		if err != nil {
			return err
		}
	}

	if *dbPath != "" {
		if err := record(pair, cg, cs, summaries); err != nil {
			return err
		}
	}
	return nil
}

// processTransects samples every digitised line (or its generated ortho
// sections) and writes per-profile CSVs plus one summary CSV.
func processTransects(pair raster.AlignedPair, cg *dod.ChangeGrid) ([]report.NamedSummary, error) {
	f, err := os.Open(*transectsPath)
	if err != nil {
		return nil, fmt.Errorf("opening transects: %w", err)
	}
	defer f.Close()
	lines, err := geoio.ReadTransectCSV(f)
	if err != nil {
		return nil, err
	}

	type namedTransect struct {
		name string
		tr   *transect.Transect
	}
	var work []namedTransect
	for _, line := range lines {
		if *orthoStep > 0 {
			secs, err := transect.OrthoSections(line.Vertices, *orthoStep, *orthoWidth, *interval)
			if err != nil {
				return nil, fmt.Errorf("ortho sections for %s: %w", line.Name, err)
			}
			for k, sec := range secs {
				work = append(work, namedTransect{fmt.Sprintf("%s_ortho_%03d", line.Name, k), sec})
			}
			continue
		}
		tr, err := transect.New(line.Vertices, *interval)
		if err != nil {
			return nil, fmt.Errorf("transect %s: %w", line.Name, err)
		}
		work = append(work, namedTransect{line.Name, tr})
	}

	var summaries []report.NamedSummary
	for _, w := range work {
		profile, err := transect.Sample(w.tr, pair, cg, transect.SampleOptions{Workers: *workers})
		if err != nil {
			return nil, fmt.Errorf("sampling %s: %w", w.name, err)
		}
		summary := transect.Summarize(profile)
		summaries = append(summaries, report.NamedSummary{Name: w.name, Summary: summary})
		log.Printf("%s: %d stations (%d valid), net %.3f, cut %.3f, fill %.3f",
			w.name, len(profile), summary.ValidSampleCount, summary.NetArea, summary.CutArea, summary.FillArea)

		if err := writeProfileCSV(filepath.Join(*outDir, w.name+".csv"), profile); err != nil {
			return nil, err
		}
		if *plotsFlag {
			err := report.SaveProfilePlots(
				filepath.Join(*outDir, w.name+"_elevation.png"),
				filepath.Join(*outDir, w.name+"_change.png"),
				w.name, profile)
			if err != nil {
				return nil, fmt.Errorf("plotting %s: %w", w.name, err)
			}
		}
		if *htmlFlag {
			if err := writeProfileHTML(filepath.Join(*outDir, w.name+".html"), w.name, profile); err != nil {
				return nil, err
			}
		}
	}

	if err := writeSummaryCSV(filepath.Join(*outDir, "summary.csv"), summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// record persists the run and its outputs to the results database.
func record(pair raster.AlignedPair, cg *dod.ChangeGrid, cs dod.ChangeStats, summaries []report.NamedSummary) error {
	db, err := resultsdb.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.MigrateUp(*migDir); err != nil {
		return err
	}

	sx, sy := pair.Older.CellSize()
	run := &resultsdb.AnalysisRun{
		OlderDEM:         filepath.Base(*olderPath),
		NewerDEM:         filepath.Base(*newerPath),
		Threshold:        cg.Threshold,
		Width:            pair.Older.Width(),
		Height:           pair.Older.Height(),
		CellSizeX:        sx,
		CellSizeY:        sy,
		SignificantCells: cg.Change.ValidCount(),
	}
	if err := db.InsertRun(run); err != nil {
		return err
	}
	if err := db.InsertChangeStats(run.RunID, cs); err != nil {
		return err
	}
	for _, ns := range summaries {
		if err := db.InsertProfileSummary(run.RunID, ns.Name, ns.Summary); err != nil {
			return err
		}
	}
	log.Printf("recorded run %s in %s", run.RunID, *dbPath)
	return nil
}

func loadDEM(path string) (*raster.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening DEM: %w", err)
	}
	defer f.Close()
	g, err := geoio.ReadASCIIGrid(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func writeGrid(path string, g *raster.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return geoio.WriteASCIIGrid(f, g, geoio.DefaultNoData)
}

func writeProfileCSV(path string, p transect.Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return report.WriteProfileCSV(f, p)
}

func writeSummaryCSV(path string, summaries []report.NamedSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return report.WriteSummaryCSV(f, summaries)
}

func writeChangeHTML(path string, cg *dod.ChangeGrid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return report.RenderChangeScatterHTML(f, "DEM of Difference", cg)
}

func writeProfileHTML(path, name string, p transect.Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return report.RenderProfileHTML(f, name, p)
}
