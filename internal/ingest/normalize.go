package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const isoDate = "2006-01-02"

// letterFolds collapses Arabic letter variants that users type
// interchangeably to one representative letter each.
var letterFolds = strings.NewReplacer(
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ة", "ه",
	"ى", "ي",
	"ـ", "", // tatweel
)

// NormalizeText folds s into a form used only for comparisons: lowercased,
// trimmed, combining marks removed, letter variants folded and every
// whitespace, underscore and hyphen dropped.
func NormalizeText(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = letterFolds.Replace(s)

	// The chain is stateful, so build one per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return r
	}, s)
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// NormalizeNumber returns numeric cells unchanged. Anything else is reduced
// to its digits, dots and minus signs and parsed; 0 is returned when that
// fails. It never reports an error.
func NormalizeNumber(c Cell) float64 {
	switch c.Kind {
	case CellNumber:
		return c.Number
	case CellEmpty:
		return 0
	}

	clean := nonNumeric.ReplaceAllString(c.String(), "")
	if clean == "" {
		return 0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return f
}

var dateSeparators = regexp.MustCompile(`[/\-.]`)

// Serial day range of the 1900 date system: 1900-01-01 to 9999-12-31.
const (
	minSerialDay = 1
	maxSerialDay = 2958465
)

// calendarLayouts are tried after the three-component forms fail.
var calendarLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	time.RFC1123,
	time.RFC1123Z,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Mon Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"20060102",
}

// NormalizeDate converts a cell to a YYYY-MM-DD string. In order:
//
//  1. date cells are formatted directly;
//  2. numeric cells from 1 up to 9999-12-31 are spreadsheet serial day
//     counts (1900 date system); other numbers are read as text, so a
//     compact 20260124 still parses;
//  3. text with exactly three numeric components separated by '/', '-' or
//     '.' is read as year-month-day when the first component has four
//     digits, otherwise as day-month-year when the last one does;
//  4. a fixed list of calendar layouts is tried;
//  5. the trimmed text is returned unchanged.
//
// Callers decide whether the result is usable; see [UsableDate].
func NormalizeDate(c Cell) string {
	switch c.Kind {
	case CellDate:
		return c.Time.Format(isoDate)
	case CellNumber:
		if c.Number < minSerialDay || c.Number >= maxSerialDay+1 {
			return normalizeDateText(c.String())
		}
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return normalizeDateText(c.String())
		}
		return t.Format(isoDate)
	case CellText:
		return normalizeDateText(c.Text)
	default:
		return ""
	}
}

func normalizeDateText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	parts := dateSeparators.Split(s, -1)
	if len(parts) == 3 && allDigits(parts) {
		switch {
		case len(parts[0]) == 4:
			return parts[0] + "-" + pad2(parts[1]) + "-" + pad2(parts[2])
		case len(parts[2]) == 4:
			// Day first: uploads come from a day-month-year locale.
			return parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0])
		}
	}

	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}

	return s
}

// UsableDate reports whether a normalized date may be stored.
func UsableDate(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "undefined":
		return false
	}
	return true
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
