// Package sheet decodes uploaded spreadsheet files into an [ingest.Sheet].
//
// Workbooks (.xlsx, .xlsm) are read with excelize: only the first worksheet
// is used, its first non-blank row is the header row and every later
// non-blank row becomes one [ingest.RawRow]. Numeric cells formatted as dates
// are returned as date cells. CSV files are accepted as a plain-text
// alternative.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/salesboard/internal/ingest"
)

// ErrFileFormat is returned when a file is not a decodable spreadsheet.
var ErrFileFormat = errors.New("failed to parse spreadsheet")

// Format identifies a supported upload format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Extensions lists the accepted file extensions, lowercase.
var Extensions = []string{".xlsx", ".xlsm", ".csv"}

// DetectFormat picks the decoder from the file extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q (expected %s)",
			ErrFileFormat, filepath.Ext(fileName), strings.Join(Extensions, ", "))
	}
}

// Read decodes r according to the extension of fileName.
func Read(r io.Reader, fileName string) (*ingest.Sheet, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	default:
		return ReadXLSX(r)
	}
}

// build turns a grid of decoded cells into a Sheet. The first row holding a
// non-empty cell is the header row; fully blank rows are dropped.
func build(name string, grid [][]ingest.Cell) *ingest.Sheet {
	s := &ingest.Sheet{Name: name}

	start := 0
	for start < len(grid) && blank(grid[start]) {
		start++
	}
	if start == len(grid) {
		return s
	}

	width := 0
	for _, row := range grid[start:] {
		width = max(width, len(row))
	}

	raw := make([]string, width)
	for i, c := range grid[start] {
		raw[i] = strings.TrimSpace(c.String())
	}
	s.Headers = uniqueHeaders(raw)

	for _, row := range grid[start+1:] {
		if blank(row) {
			continue
		}
		rr := make(ingest.RawRow, len(row))
		for i, c := range row {
			if c.Kind == ingest.CellEmpty {
				continue
			}
			rr[s.Headers[i]] = c
		}
		s.Rows = append(s.Rows, rr)
	}
	return s
}

func blank(row []ingest.Cell) bool {
	for _, c := range row {
		if c.Kind != ingest.CellEmpty {
			return false
		}
	}
	return true
}

// emptyHeader names a column whose header cell is blank.
const emptyHeader = "__EMPTY"

// uniqueHeaders names blank header cells and suffixes repeats with _1, _2...
// so every column has a distinct key.
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		if h == "" {
			h = emptyHeader
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
