package ingest

import (
	"strconv"
	"time"
)

// CellKind is the decoded type of a spreadsheet cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one decoded cell value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// TextCell, NumberCell and DateCell build cells of the corresponding kind.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

// String returns the cell as the text a user would have typed.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format(isoDate)
	default:
		return ""
	}
}

// RawRow maps a header to the cell under it. Missing keys read as empty.
type RawRow map[string]Cell

// Sheet is the decoded first worksheet of an upload.
type Sheet struct {
	Name    string
	Headers []string // column order, left to right
	Rows    []RawRow
}

// Field is one of the six semantic columns of a sales sheet.
type Field string

const (
	FieldDate    Field = "date"
	FieldBranch  Field = "branch"
	FieldChannel Field = "channel"
	FieldSales   Field = "sales"
	FieldOrders  Field = "orders"
	FieldTarget  Field = "target"
)

// Fields lists every field in resolution order.
var Fields = []Field{FieldDate, FieldBranch, FieldChannel, FieldSales, FieldOrders, FieldTarget}

// MandatoryFields must each resolve to a header or the whole file is rejected.
var MandatoryFields = []Field{FieldDate, FieldBranch, FieldChannel}

// FieldMap binds each resolved field to the original header text.
type FieldMap map[Field]string

// Header returns the header bound to f, if any.
func (m FieldMap) Header(f Field) (string, bool) {
	h, ok := m[f]
	return h, ok
}

// Record is one validated sales row.
type Record struct {
	Date        string  `json:"date"`
	Branch      string  `json:"branch"`
	Channel     string  `json:"channel"`
	SalesValue  float64 `json:"salesValue"`
	OrdersCount int64   `json:"ordersCount"`
	TargetValue float64 `json:"targetValue"`
}

// SkipReason classifies why a row was dropped.
type SkipReason string

const (
	SkipInvalidDate    SkipReason = "invalid_date"
	SkipUnknownBranch  SkipReason = "unknown_branch"
	SkipUnknownChannel SkipReason = "unknown_channel"
)

// Result is a successful ingestion: the accepted records in input order.
type Result struct {
	Records     []Record
	Rows        int // rows scanned
	Skipped     int
	SkipReasons map[SkipReason]int
}

// Count returns the number of accepted records.
func (r *Result) Count() int {
	return len(r.Records)
}
