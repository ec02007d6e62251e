package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/salesboard/internal/ingest"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var plainNumber = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// ReadCSV decodes a comma-separated file. Cells that parse as plain numbers
// become numeric cells; everything else is text.
func ReadCSV(r io.Reader) (*ingest.Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}

	grid := make([][]ingest.Cell, len(records))
	for i, rec := range records {
		cells := make([]ingest.Cell, len(rec))
		for j, v := range rec {
			cells[j] = csvCell(v)
		}
		grid[i] = cells
	}
	return build("csv", grid), nil
}

func csvCell(v string) ingest.Cell {
	s := strings.TrimSpace(v)
	if s == "" {
		return ingest.Cell{}
	}
	if plainNumber.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ingest.NumberCell(f)
		}
	}
	return ingest.TextCell(v)
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
