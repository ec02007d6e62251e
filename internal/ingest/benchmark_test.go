package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/JonMunkholm/salesboard/internal/catalog"
)

// ============================================================================
// Normalization Benchmarks
// ============================================================================

// BenchmarkNormalizeNumber runs once per numeric cell.
func BenchmarkNormalizeNumber(b *testing.B) {
	cells := []Cell{
		NumberCell(1200),
		TextCell("35,000"),
		TextCell("EGP 1,250.50"),
		TextCell("١٢٣٤"),
		TextCell(""),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cells {
			NormalizeNumber(c)
		}
	}
}

// BenchmarkNormalizeDate covers every branch of the date cascade.
func BenchmarkNormalizeDate(b *testing.B) {
	cells := []Cell{
		NumberCell(46046),
		TextCell("2026-01-24"),
		TextCell("24/01/2026"),
		TextCell("Jan 24, 2026"),
		TextCell("not a date"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cells {
			NormalizeDate(c)
		}
	}
}

// ============================================================================
// Matching Benchmarks
// ============================================================================

// BenchmarkMatcher_Tiers measures one lookup per tier, plus a miss.
func BenchmarkMatcher_Tiers(b *testing.B) {
	m := NewMatcher(catalog.Default().Branches)
	inputs := []string{"Maadi", "المعادي", "maadi branch", "nowhere"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			m.Match(in)
		}
	}
}

// ============================================================================
// End-to-end Assembly Benchmarks
// ============================================================================

func benchmarkRows(n int) []RawRow {
	branches := []string{"Maadi", "المعادي", "maadi branch", "Nowhere"}
	rows := make([]RawRow, n)
	for i := range rows {
		rows[i] = RawRow{
			"Date":    TextCell(fmt.Sprintf("%02d/01/2026", i%28+1)),
			"Branch":  TextCell(branches[i%len(branches)]),
			"Channel": TextCell("Talabat"),
			"Sales":   TextCell("1,250.50"),
			"Orders":  NumberCell(float64(i % 100)),
		}
	}
	return rows
}

func BenchmarkAssemble(b *testing.B) {
	for _, n := range []int{100, 10000} {
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			a := NewAssembler(catalog.Default(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
			rows := benchmarkRows(n)
			fm, err := a.ResolveHeaders([]string{"Date", "Branch", "Channel", "Sales", "Orders"})
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := a.Assemble(rows, fm); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
