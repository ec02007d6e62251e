// Package templates holds the HTML components served by the web package.
package templates

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/salesboard/internal/core"
)

func storedLine(res *core.UploadResult) string {
	if res.UploadID != "" {
		return fmt.Sprintf("stored %d of %d rows (upload %s).", res.Inserted, res.Rows, res.UploadID)
	}
	return fmt.Sprintf("%d of %d rows would be stored.", res.Inserted, res.Rows)
}

// skippedLine lists skip reasons alphabetically so the fragment is stable.
func skippedLine(res *core.UploadResult) string {
	reasons := make([]string, 0, len(res.SkipReasons))
	for reason, n := range res.SkipReasons {
		reasons = append(reasons, fmt.Sprintf("%s: %d", reason, n))
	}
	sort.Strings(reasons)
	return fmt.Sprintf("Skipped %d rows (%s).", res.Skipped, strings.Join(reasons, ", "))
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
