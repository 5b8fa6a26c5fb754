package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/groundshift-data/terrain.report/internal/transect"
)

func TestWriteProfileCSV(t *testing.T) {
	p := transect.Profile{
		{Station: 0, X: 0.5, Y: 0.5, ElevationOlder: 10, ElevationNewer: 11, Change: 1, OlderValid: true, NewerValid: true, ChangeValid: true},
		{Station: 1, X: 1.5, Y: 0.5, ElevationOlder: 10, OlderValid: true},
	}

	var buf bytes.Buffer
	if err := WriteProfileCSV(&buf, p); err != nil {
		t.Fatalf("WriteProfileCSV: %v", err)
	}

	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("%d records, want header + 2", len(recs))
	}
	if recs[0][0] != "station" || recs[0][5] != "change" {
		t.Errorf("header = %v", recs[0])
	}
	if recs[1][5] != "1" {
		t.Errorf("valid change = %q, want \"1\"", recs[1][5])
	}
	// Invalid surfaces come out as empty fields, not sentinels.
	if recs[2][4] != "" || recs[2][5] != "" {
		t.Errorf("invalid fields = %q, %q; want empty", recs[2][4], recs[2][5])
	}
	if recs[2][3] != "10" {
		t.Errorf("older remains valid at the gap, got %q", recs[2][3])
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	sums := []NamedSummary{
		{Name: "xs-01", Summary: transect.ProfileSummary{NetArea: 2.5, FillArea: 3, CutArea: 0.5, MaxChange: 1, MinChange: -0.25, ValidSampleCount: 40, Crossings: []float64{3.25}}},
		{Name: "xs-02", Summary: transect.ProfileSummary{}},
	}

	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, sums); err != nil {
		t.Fatalf("WriteSummaryCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("%d lines, want header + 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "xs-01,2.5,0.5,3,1,-0.25,40,1") {
		t.Errorf("summary record = %q", lines[1])
	}
}
