package ingest

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims and lowercases", input: "  Maadi  ", want: "maadi"},
		{name: "drops inner spaces", input: "Masr El Gededa", want: "masrelgededa"},
		{name: "drops hyphens and underscores", input: "masr_el-gededa", want: "masrelgededa"},
		{name: "drops tabs and newlines", input: "Call\tCenter\n", want: "callcenter"},
		{name: "keeps other punctuation", input: "Website & App", want: "website&app"},
		{name: "strips latin accents", input: "Café", want: "cafe"},
		{name: "folds hamza alef", input: "أحمد", want: "احمد"},
		{name: "folds alef below", input: "إسلام", want: "اسلام"},
		{name: "folds madda alef", input: "آخر", want: "اخر"},
		{name: "folds teh marbuta", input: "مصر الجديدة", want: "مصرالجديده"},
		{name: "folds alef maksura", input: "المعادى", want: "المعادي"},
		{name: "strips tashkeel", input: "مُسْتَهْدَف", want: "مستهدف"},
		{name: "strips tatweel", input: "فـــرع", want: "فرع"},
		{name: "empty", input: "", want: ""},
		{name: "only separators", input: " _-_ ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestNormalizeText_VariantsCompareEqual(t *testing.T) {
	assert.Equal(t, NormalizeText("مصر الجديدة"), NormalizeText("مصر الجديده"))
	assert.Equal(t, NormalizeText("أسيوط"), NormalizeText("اسيوط"))
	assert.Equal(t, NormalizeText("TAGAMO 3"), NormalizeText("tagamo3"))
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want float64
	}{
		{name: "number unchanged", cell: NumberCell(95), want: 95},
		{name: "negative number unchanged", cell: NumberCell(-3.5), want: -3.5},
		{name: "thousands separator", cell: TextCell("35,000"), want: 35000},
		{name: "currency prefix", cell: TextCell("EGP 1,250.50"), want: 1250.5},
		{name: "currency suffix", cell: TextCell("900 ج.م"), want: 900},
		{name: "negative text", cell: TextCell("-15"), want: -15},
		{name: "plain text", cell: TextCell("abc"), want: 0},
		{name: "empty text", cell: TextCell(""), want: 0},
		{name: "empty cell", cell: Cell{}, want: 0},
		{name: "two dots", cell: TextCell("1.2.3"), want: 0},
		{name: "inner minus", cell: TextCell("12-3"), want: 0},
		{name: "lone minus", cell: TextCell("-"), want: 0},
		{name: "date cell", cell: DateCell(time.Date(2026, 1, 24, 0, 0, 0, 0, time.UTC)), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNumber(tt.cell))
		})
	}
}

func TestNormalizeNumber_Idempotent(t *testing.T) {
	inputs := []Cell{
		NumberCell(0), NumberCell(42), NumberCell(-7.25),
		TextCell("35,000"), TextCell("$1,234.56"), TextCell("abc"),
		TextCell("1.2.3"), TextCell("--5"), TextCell(" 12 "), Cell{},
	}

	for _, in := range inputs {
		once := NormalizeNumber(in)
		assert.Equal(t, once, NormalizeNumber(NumberCell(once)), "input %q", in.String())
		assert.Equal(t, once, NormalizeNumber(TextCell(strconv.FormatFloat(once, 'f', -1, 64))), "input %q", in.String())
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{name: "date cell", cell: DateCell(time.Date(2026, 1, 24, 15, 30, 0, 0, time.UTC)), want: "2026-01-24"},
		{name: "serial day count", cell: NumberCell(46046), want: "2026-01-24"},
		{name: "serial with time fraction", cell: NumberCell(46046.75), want: "2026-01-24"},
		{name: "compact number is yyyymmdd", cell: NumberCell(20260124), want: "2026-01-24"},
		{name: "huge number kept raw", cell: NumberCell(1e15), want: "1000000000000000"},
		{name: "zero kept raw", cell: NumberCell(0), want: "0"},
		{name: "negative kept raw", cell: NumberCell(-5), want: "-5"},
		{name: "day first slash", cell: TextCell("24/01/2026"), want: "2026-01-24"},
		{name: "day first unpadded", cell: TextCell("5/1/2026"), want: "2026-01-05"},
		{name: "day first ambiguous", cell: TextCell("01/02/2026"), want: "2026-02-01"},
		{name: "day first dots", cell: TextCell("24.01.2026"), want: "2026-01-24"},
		{name: "day first hyphens", cell: TextCell("24-1-2026"), want: "2026-01-24"},
		{name: "year first", cell: TextCell("2026-01-24"), want: "2026-01-24"},
		{name: "year first unpadded", cell: TextCell("2026/1/5"), want: "2026-01-05"},
		{name: "surrounding spaces", cell: TextCell(" 24/01/2026 "), want: "2026-01-24"},
		{name: "rfc3339", cell: TextCell("2026-01-24T10:00:00Z"), want: "2026-01-24"},
		{name: "month name", cell: TextCell("Jan 24, 2026"), want: "2026-01-24"},
		{name: "day month name", cell: TextCell("24 January 2026"), want: "2026-01-24"},
		{name: "two digit year kept raw", cell: TextCell("24/01/26"), want: "24/01/26"},
		{name: "free text kept raw", cell: TextCell("yesterday"), want: "yesterday"},
		{name: "empty text", cell: TextCell("   "), want: ""},
		{name: "empty cell", cell: Cell{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.cell))
		})
	}
}

func TestNormalizeDate_YearFirstKeepsComponents(t *testing.T) {
	for _, sep := range []string{"/", "-", "."} {
		for _, in := range [][3]string{{"2026", "01", "24"}, {"1999", "12", "31"}, {"2024", "02", "30"}, {"2030", "07", "09"}} {
			got := NormalizeDate(TextCell(in[0] + sep + in[1] + sep + in[2]))
			assert.Equal(t, in[0]+"-"+in[1]+"-"+in[2], got)
		}
	}
}

func TestNormalizeDate_LastYearMeansDayFirst(t *testing.T) {
	for day := 1; day <= 12; day++ {
		for _, month := range []int{1, 6, 12} {
			in := strconv.Itoa(day) + "/" + strconv.Itoa(month) + "/2026"
			want := time.Date(2026, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(isoDate)
			assert.Equal(t, want, NormalizeDate(TextCell(in)), "input %s", in)
		}
	}
}

func TestUsableDate(t *testing.T) {
	assert.True(t, UsableDate("2026-01-24"))
	assert.True(t, UsableDate("24/01/26"))
	assert.False(t, UsableDate(""))
	assert.False(t, UsableDate("null"))
	assert.False(t, UsableDate("undefined"))
	assert.False(t, UsableDate(" NULL "))
}
