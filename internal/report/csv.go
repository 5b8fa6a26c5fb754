package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/groundshift-data/terrain.report/internal/transect"
)

// WriteProfileCSV writes one cross-section as CSV with a header record.
// Invalid surface values are written as empty fields rather than sentinels,
// so spreadsheet tools chart the gaps correctly.
func WriteProfileCSV(w io.Writer, p transect.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"station", "x", "y", "elev_older", "elev_newer", "change"}); err != nil {
		return fmt.Errorf("profile csv: %w", err)
	}
	for _, s := range p {
		rec := []string{
			formatF(s.Station),
			formatF(s.X),
			formatF(s.Y),
			"", "", "",
		}
		if s.OlderValid {
			rec[3] = formatF(s.ElevationOlder)
		}
		if s.NewerValid {
			rec[4] = formatF(s.ElevationNewer)
		}
		if s.ChangeValid {
			rec[5] = formatF(s.Change)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("profile csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// NamedSummary pairs a transect name with its profile summary for export.
type NamedSummary struct {
	Name    string
	Summary transect.ProfileSummary
}

// WriteSummaryCSV writes one record per transect summary.
func WriteSummaryCSV(w io.Writer, summaries []NamedSummary) error {
	cw := csv.NewWriter(w)
	header := []string{"name", "net_area", "cut_area", "fill_area", "max_change", "min_change", "valid_samples", "crossings"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("summary csv: %w", err)
	}
	for _, ns := range summaries {
		s := ns.Summary
		if err := cw.Write([]string{
			ns.Name,
			formatF(s.NetArea),
			formatF(s.CutArea),
			formatF(s.FillArea),
			formatF(s.MaxChange),
			formatF(s.MinChange),
			strconv.Itoa(s.ValidSampleCount),
			strconv.Itoa(len(s.Crossings)),
		}); err != nil {
			return fmt.Errorf("summary csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
