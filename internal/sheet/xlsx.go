package sheet

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/salesboard/internal/ingest"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX decodes the first worksheet of an Office Open XML workbook.
func ReadXLSX(r io.Reader) (*ingest.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrFileFormat)
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrFileFormat, name, err)
	}

	d := &cellDecoder{
		file:       f,
		sheet:      name,
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}

	grid := make([][]ingest.Cell, len(rows))
	for i, row := range rows {
		cells := make([]ingest.Cell, len(row))
		for j, raw := range row {
			cells[j] = d.decode(j+1, i+1, raw)
		}
		grid[i] = cells
	}
	return build(name, grid), nil
}

// cellDecoder types raw cell values using the workbook's cell types and
// number formats.
type cellDecoder struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool // style index -> has a date number format
}

func (d *cellDecoder) decode(col, row int, raw string) ingest.Cell {
	if strings.TrimSpace(raw) == "" {
		return ingest.Cell{}
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ingest.TextCell(raw)
	}
	typ, err := d.file.GetCellType(d.sheet, ref)
	if err != nil {
		return ingest.TextCell(raw)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ingest.TextCell(raw)
		}
		if d.isDate(ref) {
			if t, err := excelize.ExcelDateToTime(v, d.date1904); err == nil {
				return ingest.DateCell(t)
			}
		}
		return ingest.NumberCell(v)
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return ingest.DateCell(t)
			}
		}
		return ingest.TextCell(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return ingest.TextCell("TRUE")
		}
		return ingest.TextCell("FALSE")
	default:
		return ingest.TextCell(raw)
	}
}

func (d *cellDecoder) isDate(ref string) bool {
	idx, err := d.file.GetCellStyle(d.sheet, ref)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := d.dateStyles[idx]; ok {
		return v
	}

	style, err := d.file.GetStyle(idx)
	v := err == nil && isDateFormat(style)
	d.dateStyles[idx] = v
	return v
}

// Built-in number format IDs that render dates, including the East Asian
// locale variants.
var builtinDateFormats = [][2]int{{14, 22}, {27, 36}, {45, 47}, {50, 58}}

var formatLiterals = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDateFormat(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	for _, r := range builtinDateFormats {
		if style.NumFmt >= r[0] && style.NumFmt <= r[1] {
			return true
		}
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains a day or
// year token once quoted literals and bracketed sections are removed.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(formatLiterals.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "yd")
}
