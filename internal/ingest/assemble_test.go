package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/JonMunkholm/salesboard/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salesHeaders = []string{"Date", "Branch", "Channel", "Sales", "Orders", "Target"}

func newTestAssembler(t *testing.T, opts ...Option) (*Assembler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewAssembler(catalog.Default(), opts...), &buf
}

func salesRow(date, branch, channel Cell, sales, orders, target Cell) RawRow {
	return RawRow{
		"Date": date, "Branch": branch, "Channel": channel,
		"Sales": sales, "Orders": orders, "Target": target,
	}
}

func TestAssemble_SingleRow(t *testing.T) {
	a, _ := newTestAssembler(t)
	sheet := &Sheet{
		Headers: salesHeaders,
		Rows: []RawRow{
			salesRow(TextCell("24/01/2026"), TextCell("Maadi"), TextCell("Talabat"),
				TextCell("35,000"), NumberCell(95), NumberCell(45000)),
		},
	}

	res, fm, err := a.Ingest(sheet)
	require.NoError(t, err)
	assert.Equal(t, "Sales", fm[FieldSales])

	require.Equal(t, 1, res.Count())
	assert.Equal(t, Record{
		Date:        "2026-01-24",
		Branch:      "Maadi",
		Channel:     "Talabat",
		SalesValue:  35000,
		OrdersCount: 95,
		TargetValue: 45000,
	}, res.Records[0])
	assert.Equal(t, 1, res.Rows)
	assert.Zero(t, res.Skipped)
}

func TestAssemble_UnknownBranchOnlyRowFails(t *testing.T) {
	a, _ := newTestAssembler(t)
	sheet := &Sheet{
		Headers: salesHeaders,
		Rows: []RawRow{
			salesRow(TextCell("24/01/2026"), TextCell("Heliopolis"), TextCell("Talabat"),
				NumberCell(100), NumberCell(1), NumberCell(1)),
		},
	}

	res, _, err := a.Ingest(sheet)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrNoValidRows))
	assert.False(t, errors.Is(err, ErrMissingColumn))
}

func TestAssemble_MissingMandatoryHeaderFailsBeforeRows(t *testing.T) {
	a, logs := newTestAssembler(t)
	rows := []RawRow{
		{"Date": TextCell("24/01/2026"), "Sales": NumberCell(10)},
		{"Date": TextCell("not a row"), "Sales": TextCell("x")},
	}

	res, _, err := a.Ingest(&Sheet{Headers: []string{"Date", "Sales"}, Rows: rows})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.False(t, errors.Is(err, ErrNoValidRows))

	// Assemble with an incomplete map must not look at any row either.
	res, err = a.Assemble(rows, FieldMap{FieldDate: "Date", FieldSales: "Sales"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.NotContains(t, logs.String(), "row skipped")
}

func TestAssemble_AllRowsUnmatchedFails(t *testing.T) {
	a, _ := newTestAssembler(t)
	rows := []RawRow{
		salesRow(TextCell("2026-01-24"), TextCell("Zamalek"), TextCell("Talabat"), Cell{}, Cell{}, Cell{}),
		salesRow(TextCell("2026-01-24"), TextCell("Maadi"), TextCell("Uber Eats"), Cell{}, Cell{}, Cell{}),
		salesRow(TextCell("null"), TextCell("Maadi"), TextCell("Talabat"), Cell{}, Cell{}, Cell{}),
	}

	fm, err := a.ResolveHeaders(salesHeaders)
	require.NoError(t, err)

	_, err = a.Assemble(rows, fm)
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestAssemble_NoRowsFails(t *testing.T) {
	a, _ := newTestAssembler(t)

	_, _, err := a.Ingest(&Sheet{Headers: salesHeaders})
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestAssemble_KeepsInputOrderAndCountsSkips(t *testing.T) {
	a, _ := newTestAssembler(t)
	rows := []RawRow{
		salesRow(TextCell("24/01/2026"), TextCell("Tagamo3"), TextCell("Instashop"), NumberCell(1), NumberCell(1), NumberCell(1)),
		salesRow(Cell{}, TextCell("Maadi"), TextCell("Talabat"), NumberCell(2), NumberCell(2), NumberCell(2)),
		salesRow(NumberCell(46046), TextCell("دارك ستور"), TextCell("كول سنتر"), NumberCell(3), NumberCell(3), NumberCell(3)),
		salesRow(TextCell("25/01/2026"), TextCell("Nowhere"), TextCell("Talabat"), NumberCell(4), NumberCell(4), NumberCell(4)),
		salesRow(DateCell(time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)), TextCell("Maadi"), TextCell("Fax"), NumberCell(5), NumberCell(5), NumberCell(5)),
		salesRow(TextCell("2026-01-27"), TextCell("masr el gededa"), TextCell("website"), NumberCell(6), NumberCell(6), NumberCell(6)),
		salesRow(TextCell("undefined"), TextCell("Maadi"), TextCell("Talabat"), NumberCell(7), NumberCell(7), NumberCell(7)),
	}

	fm, err := a.ResolveHeaders(salesHeaders)
	require.NoError(t, err)

	res, err := a.Assemble(rows, fm)
	require.NoError(t, err)

	require.Equal(t, 3, res.Count())
	assert.Equal(t, Record{Date: "2026-01-24", Branch: "Tagamo3", Channel: "Instashop", SalesValue: 1, OrdersCount: 1, TargetValue: 1}, res.Records[0])
	assert.Equal(t, Record{Date: "2026-01-24", Branch: "Dark Store", Channel: "Call Center", SalesValue: 3, OrdersCount: 3, TargetValue: 3}, res.Records[1])
	assert.Equal(t, Record{Date: "2026-01-27", Branch: "Masr El Gededa", Channel: "Website & App", SalesValue: 6, OrdersCount: 6, TargetValue: 6}, res.Records[2])

	assert.Equal(t, 7, res.Rows)
	assert.Equal(t, 4, res.Skipped)
	assert.Equal(t, map[SkipReason]int{
		SkipInvalidDate:    2,
		SkipUnknownBranch:  1,
		SkipUnknownChannel: 1,
	}, res.SkipReasons)
}

func TestAssemble_NumericDefectsDefaultToZero(t *testing.T) {
	a, _ := newTestAssembler(t)
	rows := []RawRow{
		salesRow(TextCell("2026-01-24"), TextCell("Maadi"), TextCell("Talabat"),
			TextCell("n/a"), TextCell("about 12.6 orders"), NumberCell(-500)),
	}

	fm, err := a.ResolveHeaders(salesHeaders)
	require.NoError(t, err)

	res, err := a.Assemble(rows, fm)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count())

	rec := res.Records[0]
	assert.Zero(t, rec.SalesValue)
	assert.Equal(t, int64(13), rec.OrdersCount)
	assert.Zero(t, rec.TargetValue, "negative values clamp to zero")
}

func TestAssemble_UnboundOptionalColumnsDefaultToZero(t *testing.T) {
	a, _ := newTestAssembler(t)
	sheet := &Sheet{
		Headers: []string{"تاريخ البيع", "الفرع", "القناة"},
		Rows: []RawRow{
			{"تاريخ البيع": TextCell("1/2/2026"), "الفرع": TextCell("المعادى"), "القناة": TextCell("طلبات")},
		},
	}

	res, fm, err := a.Ingest(sheet)
	require.NoError(t, err)
	assert.Len(t, fm, 3)

	require.Equal(t, 1, res.Count())
	assert.Equal(t, Record{Date: "2026-02-01", Branch: "Maadi", Channel: "Talabat"}, res.Records[0])
}

func TestAssemble_CatalogOverridesHeaders(t *testing.T) {
	cat := catalog.Default()
	cat.Headers = map[string][]string{"sales": {"revenue"}}
	a := NewAssembler(cat, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	res, _, err := a.Ingest(&Sheet{
		Headers: []string{"Date", "Branch", "Channel", "Revenue"},
		Rows: []RawRow{
			{"Date": TextCell("2026-01-24"), "Branch": TextCell("Maadi"), "Channel": TextCell("Talabat"), "Revenue": TextCell("1,500")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, res.Records[0].SalesValue)
}

func TestAssemble_PreviewIsBounded(t *testing.T) {
	a, logs := newTestAssembler(t, WithPreviewRows(2))

	var rows []RawRow
	for i := 0; i < 5; i++ {
		rows = append(rows, salesRow(TextCell("2026-01-24"), TextCell("Maadi"), TextCell("Talabat"), NumberCell(float64(i)), Cell{}, Cell{}))
	}

	fm, err := a.ResolveHeaders(salesHeaders)
	require.NoError(t, err)
	_, err = a.Assemble(rows, fm)
	require.NoError(t, err)

	var found bool
	sc := bufio.NewScanner(logs)
	for sc.Scan() {
		var entry struct {
			Msg     string   `json:"msg"`
			Count   int      `json:"count"`
			Preview []Record `json:"preview"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if entry.Msg != "parsed records" {
			continue
		}
		found = true
		assert.Equal(t, 5, entry.Count)
		assert.Len(t, entry.Preview, 2)
	}
	assert.True(t, found, "expected a parsed records log line")
}

func TestAssemble_LogsSkipReasons(t *testing.T) {
	a, logs := newTestAssembler(t)
	rows := []RawRow{
		salesRow(TextCell("2026-01-24"), TextCell("Atlantis"), TextCell("Talabat"), Cell{}, Cell{}, Cell{}),
		salesRow(TextCell("2026-01-24"), TextCell("Maadi"), TextCell("Talabat"), Cell{}, Cell{}, Cell{}),
	}

	fm, err := a.ResolveHeaders(salesHeaders)
	require.NoError(t, err)
	_, err = a.Assemble(rows, fm)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"msg":"row skipped"`)
	assert.Contains(t, logs.String(), `"reason":"unknown_branch"`)
	assert.Contains(t, logs.String(), `"value":"Atlantis"`)
}
