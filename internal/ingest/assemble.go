package ingest

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/JonMunkholm/salesboard/internal/catalog"
)

// DefaultPreviewRows is how many accepted records are echoed to the log.
const DefaultPreviewRows = 3

// Assembler runs header resolution and per-row validation against one
// catalog. An Assembler holds no per-upload state and may be shared.
type Assembler struct {
	branches    *Matcher
	channels    *Matcher
	synonyms    Synonyms
	logger      *slog.Logger
	previewRows int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for skip diagnostics and the record preview.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPreviewRows bounds the number of records included in the success log line.
func WithPreviewRows(n int) Option {
	return func(a *Assembler) {
		if n >= 0 {
			a.previewRows = n
		}
	}
}

// NewAssembler builds an Assembler for the given catalog.
func NewAssembler(cat catalog.Catalog, opts ...Option) *Assembler {
	a := &Assembler{
		branches:    NewMatcher(cat.Branches),
		channels:    NewMatcher(cat.Channels),
		synonyms:    DefaultSynonyms().WithOverrides(cat.Headers),
		logger:      slog.Default(),
		previewRows: DefaultPreviewRows,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// With returns a copy of the assembler that logs to l. The copy shares the
// matchers and synonyms of a.
func (a *Assembler) With(l *slog.Logger) *Assembler {
	c := *a
	if l != nil {
		c.logger = l
	}
	return &c
}

// Branches returns the branch matcher.
func (a *Assembler) Branches() *Matcher { return a.branches }

// Channels returns the channel matcher.
func (a *Assembler) Channels() *Matcher { return a.channels }

// ResolveHeaders resolves headers with the assembler's synonyms.
func (a *Assembler) ResolveHeaders(headers []string) (FieldMap, error) {
	fm, err := ResolveHeaders(headers, a.synonyms)
	if err != nil {
		a.logger.Warn("required columns not found", "headers", headers, "error", err)
	}
	return fm, err
}

// Ingest resolves the sheet's headers and assembles its rows. The field map
// is returned even on failure so callers can report what was found.
func (a *Assembler) Ingest(s *Sheet) (*Result, FieldMap, error) {
	fm, err := a.ResolveHeaders(s.Headers)
	if err != nil {
		return nil, fm, err
	}
	res, err := a.Assemble(s.Rows, fm)
	return res, fm, err
}

// Assemble validates rows in input order and returns the accepted records.
//
// A row is dropped when its date is unusable or its branch or channel does
// not match the catalog. Sales, orders and target fall back to 0 when their
// column is unbound or the cell cannot be parsed. The result is an error
// when fm lacks a mandatory field (no row is read) or when no row survives.
func (a *Assembler) Assemble(rows []RawRow, fm FieldMap) (*Result, error) {
	var missing []Field
	for _, f := range MandatoryFields {
		if _, ok := fm[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Fields: missing}
	}

	dateKey, branchKey, channelKey := fm[FieldDate], fm[FieldBranch], fm[FieldChannel]

	res := &Result{
		Records:     make([]Record, 0, len(rows)),
		Rows:        len(rows),
		SkipReasons: make(map[SkipReason]int),
	}

	for i, row := range rows {
		date := NormalizeDate(row[dateKey])
		if !UsableDate(date) {
			a.skip(res, i, SkipInvalidDate, row[dateKey])
			continue
		}

		branch, ok := a.branches.Match(row[branchKey].String())
		if !ok {
			a.skip(res, i, SkipUnknownBranch, row[branchKey])
			continue
		}

		channel, ok := a.channels.Match(row[channelKey].String())
		if !ok {
			a.skip(res, i, SkipUnknownChannel, row[channelKey])
			continue
		}

		res.Records = append(res.Records, Record{
			Date:        date,
			Branch:      branch.Member,
			Channel:     channel.Member,
			SalesValue:  amount(row, fm, FieldSales),
			OrdersCount: count(row, fm, FieldOrders),
			TargetValue: amount(row, fm, FieldTarget),
		})
	}

	if len(res.Records) == 0 {
		a.logger.Warn("no valid records in file",
			"rows", res.Rows,
			"skipped", res.Skipped,
			"reasons", res.SkipReasons,
		)
		return nil, fmt.Errorf("%w (%d rows checked)", ErrNoValidRows, res.Rows)
	}

	preview := res.Records
	if len(preview) > a.previewRows {
		preview = preview[:a.previewRows]
	}
	a.logger.Info("parsed records",
		"count", len(res.Records),
		"skipped", res.Skipped,
		"preview", preview,
	)

	return res, nil
}

func (a *Assembler) skip(res *Result, idx int, reason SkipReason, c Cell) {
	res.Skipped++
	res.SkipReasons[reason]++
	a.logger.Debug("row skipped", "row", idx+1, "reason", reason, "value", c.String())
}

// amount reads a non-negative real from the column bound to f.
func amount(row RawRow, fm FieldMap, f Field) float64 {
	key, ok := fm[f]
	if !ok {
		return 0
	}
	v := NormalizeNumber(row[key])
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// count reads a non-negative integer from the column bound to f,
// rounding to the nearest whole number.
func count(row RawRow, fm FieldMap, f Field) int64 {
	v := math.Round(amount(row, fm, f))
	if v >= math.MaxInt64 {
		return 0
	}
	return int64(v)
}
