package geoio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/groundshift-data/terrain.report/internal/raster"
)

// DefaultNoData is the sentinel written for invalid cells when a grid is
// exported; it matches the ESRI convention.
const DefaultNoData = -9999.0

// ReadASCIIGrid parses an ESRI ASCII grid (.asc). The header declares
// ncols/nrows, the lower-left corner (xllcorner/yllcorner or the cell-centre
// variants), a square cellsize, and optionally nodata_value. Data rows run
// north to south; they are flipped into the raster convention of row 0 at
// the south edge.
func ReadASCIIGrid(r io.Reader) (*raster.Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	sc.Split(bufio.ScanWords)
	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	var (
		ncols, nrows       int
		xll, yll, cellsize float64
		centered           bool
		nodata             = DefaultNoData
		seen               = map[string]bool{}
	)

	// Header: keyword/value pairs until the first purely numeric token,
	// which starts the data block.
	var firstValue string
	for {
		tok, err := next()
		if err != nil {
			return nil, fmt.Errorf("asciigrid: reading header: %w", err)
		}
		if _, numErr := strconv.ParseFloat(tok, 64); numErr == nil {
			firstValue = tok
			break
		}
		key := strings.ToLower(tok)
		val, err := next()
		if err != nil {
			return nil, fmt.Errorf("asciigrid: value for %q: %w", key, err)
		}
		switch key {
		case "ncols":
			ncols, err = strconv.Atoi(val)
		case "nrows":
			nrows, err = strconv.Atoi(val)
		case "xllcorner":
			xll, err = strconv.ParseFloat(val, 64)
		case "yllcorner":
			yll, err = strconv.ParseFloat(val, 64)
		case "xllcenter":
			xll, err = strconv.ParseFloat(val, 64)
			centered = true
		case "yllcenter":
			yll, err = strconv.ParseFloat(val, 64)
			centered = true
		case "cellsize":
			cellsize, err = strconv.ParseFloat(val, 64)
		case "nodata_value":
			nodata, err = strconv.ParseFloat(val, 64)
		default:
			return nil, fmt.Errorf("asciigrid: unknown header keyword %q", key)
		}
		if err != nil {
			return nil, fmt.Errorf("asciigrid: parsing %s %q: %v", key, val, err)
		}
		seen[key] = true
	}

	for _, req := range []string{"ncols", "nrows", "cellsize"} {
		if !seen[req] {
			return nil, fmt.Errorf("asciigrid: missing required header %q", req)
		}
	}
	if ncols <= 0 || nrows <= 0 || cellsize <= 0 {
		return nil, fmt.Errorf("asciigrid: bad dimensions %dx%d cellsize %g", ncols, nrows, cellsize)
	}
	if centered {
		// Centre registration shifts the corner by half a cell.
		xll -= cellsize / 2
		yll -= cellsize / 2
	}

	vals := make([]float64, ncols*nrows)
	idx := 0
	store := func(tok string) error {
		if idx >= len(vals) {
			return fmt.Errorf("asciigrid: more than %d data values", len(vals))
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("asciigrid: data value %d %q: %v", idx, tok, err)
		}
		// File rows run north to south; flip to south-first rows.
		row := idx / ncols
		col := idx % ncols
		vals[(nrows-1-row)*ncols+col] = v
		idx++
		return nil
	}
	if err := store(firstValue); err != nil {
		return nil, err
	}
	for sc.Scan() {
		if err := store(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("asciigrid: reading data: %w", err)
	}
	if idx != len(vals) {
		return nil, fmt.Errorf("asciigrid: %d data values for %dx%d grid", idx, ncols, nrows)
	}

	return raster.NewGridNoData(xll, yll, cellsize, cellsize, ncols, nrows, vals, nodata)
}

// WriteASCIIGrid writes g as an ESRI ASCII grid using the given nodata
// sentinel for invalid cells. Grids with non-square cells cannot be
// represented by the format and are rejected.
func WriteASCIIGrid(w io.Writer, g *raster.Grid, nodata float64) error {
	sx, sy := g.CellSize()
	if sx != sy {
		return fmt.Errorf("asciigrid: non-square cells %gx%g not representable", sx, sy)
	}
	x0, y0 := g.Origin()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.Width())
	fmt.Fprintf(bw, "nrows %d\n", g.Height())
	fmt.Fprintf(bw, "xllcorner %g\n", x0)
	fmt.Fprintf(bw, "yllcorner %g\n", y0)
	fmt.Fprintf(bw, "cellsize %g\n", sx)
	fmt.Fprintf(bw, "nodata_value %g\n", nodata)

	for j := g.Height() - 1; j >= 0; j-- {
		for i := 0; i < g.Width(); i++ {
			if i > 0 {
				bw.WriteByte(' ')
			}
			if v, ok := g.Value(i, j); ok {
				fmt.Fprintf(bw, "%g", v)
			} else {
				fmt.Fprintf(bw, "%g", nodata)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
