package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHeaders_English(t *testing.T) {
	fm, err := ResolveHeaders([]string{"Date", "Branch", "Channel", "Sales", "Orders", "Target"}, DefaultSynonyms())
	require.NoError(t, err)

	assert.Equal(t, FieldMap{
		FieldDate:    "Date",
		FieldBranch:  "Branch",
		FieldChannel: "Channel",
		FieldSales:   "Sales",
		FieldOrders:  "Orders",
		FieldTarget:  "Target",
	}, fm)
}

func TestResolveHeaders_ArabicAnyOrder(t *testing.T) {
	headers := []string{"المستهدف", "عدد الطلبات", "القناة", "التاريخ", "المبيعات", "الفرع"}

	fm, err := ResolveHeaders(headers, DefaultSynonyms())
	require.NoError(t, err)

	assert.Equal(t, "التاريخ", fm[FieldDate])
	assert.Equal(t, "الفرع", fm[FieldBranch])
	assert.Equal(t, "القناة", fm[FieldChannel])
	assert.Equal(t, "المبيعات", fm[FieldSales])
	assert.Equal(t, "عدد الطلبات", fm[FieldOrders])
	assert.Equal(t, "المستهدف", fm[FieldTarget])
}

func TestResolveHeaders_LeftmostWins(t *testing.T) {
	headers := []string{" sale_date ", "BRANCH-NAME", "Sales Channel", "Total Value", "Order Date"}

	fm, err := ResolveHeaders(headers, DefaultSynonyms())
	require.NoError(t, err)

	assert.Equal(t, " sale_date ", fm[FieldDate])
	assert.Equal(t, "BRANCH-NAME", fm[FieldBranch])
	assert.Equal(t, "Sales Channel", fm[FieldChannel])
	// "Sales Channel" is left of "Total Value" and also contains "sales".
	assert.Equal(t, "Sales Channel", fm[FieldSales])
	assert.Equal(t, "Order Date", fm[FieldOrders])
	_, ok := fm.Header(FieldTarget)
	assert.False(t, ok)
}

func TestResolveHeaders_OptionalFieldsMayBeMissing(t *testing.T) {
	fm, err := ResolveHeaders([]string{"date", "branch", "channel"}, DefaultSynonyms())
	require.NoError(t, err)
	assert.Len(t, fm, 3)
}

func TestResolveHeaders_MissingMandatory(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		missing []Field
	}{
		{name: "only date and sales", headers: []string{"Date", "Sales"}, missing: []Field{FieldBranch, FieldChannel}},
		{name: "no date", headers: []string{"Branch", "Channel", "Sales"}, missing: []Field{FieldDate}},
		{name: "no headers", headers: nil, missing: []Field{FieldDate, FieldBranch, FieldChannel}},
		{name: "blank headers", headers: []string{"", "  "}, missing: []Field{FieldDate, FieldBranch, FieldChannel}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveHeaders(tt.headers, DefaultSynonyms())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumn))
			assert.False(t, errors.Is(err, ErrNoValidRows))

			var mce *MissingColumnError
			require.True(t, errors.As(err, &mce))
			assert.Equal(t, tt.missing, mce.Fields)
		})
	}
}

func TestSynonyms_WithOverrides(t *testing.T) {
	syn := DefaultSynonyms().WithOverrides(map[string][]string{"sales": {"revenue", "ايراد"}, "target": nil})

	fm, err := ResolveHeaders([]string{"Date", "Branch", "Channel", "Revenue", "Target"}, syn)
	require.NoError(t, err)
	assert.Equal(t, "Revenue", fm[FieldSales])
	assert.Equal(t, "Target", fm[FieldTarget], "empty override keeps defaults")

	assert.Equal(t, []string{"sales", "مبيعات", "value", "قيمة"}, DefaultSynonyms()[FieldSales], "defaults are not mutated")
}
