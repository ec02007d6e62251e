package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/salesboard/internal/catalog"
	"github.com/JonMunkholm/salesboard/internal/core"
	"github.com/JonMunkholm/salesboard/internal/ingest"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestUploadPage_ListsCatalog(t *testing.T) {
	cat := catalog.Catalog{
		Branches: []catalog.Member{{Name: "Maadi", Label: "المعادي"}, {Name: "Zamalek"}},
		Channels: []catalog.Member{{Name: "Talabat"}},
	}
	html := render(t, UploadPage(cat))

	assert.Contains(t, html, `hx-post="/api/preview"`)
	assert.Contains(t, html, `<li>Maadi <span class="muted">المعادي</span></li>`)
	assert.Contains(t, html, "<li>Zamalek </li>")
	assert.Contains(t, html, "<h2>Channels</h2><ul><li>Talabat </li></ul>")
}

func TestUploadResult(t *testing.T) {
	tests := []struct {
		name string
		res  *core.UploadResult
		want []string
		skip []string
	}{
		{
			name: "stored upload",
			res:  &core.UploadResult{UploadID: "u-1", FileName: "jan.xlsx", Rows: 3, Inserted: 3},
			want: []string{"stored 3 of 3 rows (upload u-1)."},
			skip: []string{"Skipped", "<table>"},
		},
		{
			name: "dry run with skips",
			res: &core.UploadResult{
				FileName: "jan.csv", Rows: 4, Inserted: 1, Skipped: 3,
				SkipReasons: map[ingest.SkipReason]int{
					ingest.SkipUnknownChannel: 1,
					ingest.SkipInvalidDate:    2,
				},
			},
			want: []string{
				"1 of 4 rows would be stored.",
				"Skipped 3 rows (invalid_date: 2, unknown_channel: 1).",
			},
			skip: []string{"upload "},
		},
		{
			name: "preview rows",
			res: &core.UploadResult{
				FileName: "jan.csv", Rows: 1, Inserted: 1,
				Preview: []ingest.Record{{
					Date: "2026-01-24", Branch: "Maadi", Channel: "Talabat",
					SalesValue: 1250.5, OrdersCount: 12, TargetValue: 1000,
				}},
			},
			want: []string{"<td>2026-01-24</td><td>Maadi</td><td>Talabat</td><td>1250.50</td><td>12</td><td>1000.00</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, UploadResult(tt.res))
			for _, w := range tt.want {
				assert.Contains(t, html, w)
			}
			for _, s := range tt.skip {
				assert.NotContains(t, html, s)
			}
		})
	}
}

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert("File is <empty>", "", "FILE004"))

	assert.Contains(t, html, `<div class="alert" role="alert"><p>File is &lt;empty&gt;</p>`)
	assert.Contains(t, html, "Code: FILE004")
	assert.Equal(t, 2, bytes.Count([]byte(html), []byte("<p")), "empty action renders no paragraph")

	html = render(t, ErrorAlert("Bad date", "Use yyyy-mm-dd", "VAL007"))
	assert.Contains(t, html, "<p>Use yyyy-mm-dd</p>")
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := ErrorAlert("x", "", "E").Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}
