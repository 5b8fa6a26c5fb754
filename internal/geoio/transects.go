package geoio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/groundshift-data/terrain.report/internal/transect"
)

// NamedLine is one digitised polyline from a transect vertex file.
type NamedLine struct {
	Name     string
	Vertices []transect.Vertex
}

// ReadTransectCSV parses transect geometry from CSV records of the form
// name,x,y. Consecutive records sharing a name form one polyline, in file
// order. A header record whose x field is not numeric is skipped. Geometry
// validation (vertex count, duplicates) is left to transect.New so the
// error surface stays in one place.
func ReadTransectCSV(r io.Reader) ([]NamedLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var lines []NamedLine
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transect csv: %w", err)
		}
		row++

		x, errX := strconv.ParseFloat(rec[1], 64)
		y, errY := strconv.ParseFloat(rec[2], 64)
		if errX != nil || errY != nil {
			if row == 1 {
				continue // header
			}
			return nil, fmt.Errorf("transect csv: row %d: bad coordinates %q,%q", row, rec[1], rec[2])
		}

		name := rec[0]
		if len(lines) == 0 || lines[len(lines)-1].Name != name {
			lines = append(lines, NamedLine{Name: name})
		}
		last := &lines[len(lines)-1]
		last.Vertices = append(last.Vertices, transect.Vertex{X: x, Y: y})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("transect csv: no vertex records")
	}
	return lines, nil
}
