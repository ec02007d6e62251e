package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/JonMunkholm/salesboard/internal/ingest"
	"github.com/JonMunkholm/salesboard/internal/sheet"
	"github.com/spf13/cobra"
)

type checkReport struct {
	File        string                    `json:"file"`
	Sheet       string                    `json:"sheet"`
	Columns     ingest.FieldMap           `json:"columns"`
	Rows        int                       `json:"rows"`
	Accepted    int                       `json:"accepted"`
	Skipped     int                       `json:"skipped"`
	SkipReasons map[ingest.SkipReason]int `json:"skipReasons,omitempty"`
	Preview     []ingest.Record           `json:"preview"`
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON  bool
		preview int
	)

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Show how a spreadsheet would be read without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := root.loadIngest()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("preview") {
				cfg.PreviewRows = preview
			}
			if cfg.PreviewRows < 0 {
				return fmt.Errorf("preview rows must be non-negative, got %d", cfg.PreviewRows)
			}

			report, err := runCheck(args[0], ingest.NewAssembler(cat,
				ingest.WithLogger(slog.Default()),
				ingest.WithPreviewRows(cfg.PreviewRows),
			), cfg.PreviewRows)
			if report != nil {
				if perr := printReport(cmd.OutOrStdout(), report, asJSON); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().IntVar(&preview, "preview", ingest.DefaultPreviewRows, "Number of records to show")
	return cmd
}

// runCheck reads and assembles path. The report is returned whenever the
// headers were read, so a failed check still shows the column binding.
func runCheck(path string, a *ingest.Assembler, previewRows int) (*checkReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sh, err := sheet.Read(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	res, fm, err := a.Ingest(sh)
	report := &checkReport{
		File:    filepath.Base(path),
		Sheet:   sh.Name,
		Columns: fm,
		Rows:    len(sh.Rows),
	}
	if err != nil {
		return report, err
	}

	report.Accepted = res.Count()
	report.Skipped = res.Skipped
	report.SkipReasons = res.SkipReasons
	report.Preview = res.Records
	if len(report.Preview) > previewRows {
		report.Preview = report.Preview[:previewRows]
	}
	return report, nil
}

func printReport(w io.Writer, r *checkReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "file\t%s\n", r.File)
	fmt.Fprintf(tw, "sheet\t%s\n", r.Sheet)
	for _, f := range ingest.Fields {
		header, ok := r.Columns[f]
		if !ok {
			header = "-"
		}
		fmt.Fprintf(tw, "column %s\t%s\n", f, header)
	}
	fmt.Fprintf(tw, "rows\t%d\n", r.Rows)
	fmt.Fprintf(tw, "accepted\t%d\n", r.Accepted)
	fmt.Fprintf(tw, "skipped\t%d\n", r.Skipped)

	reasons := make([]string, 0, len(r.SkipReasons))
	for reason := range r.SkipReasons {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(tw, "  %s\t%d\n", reason, r.SkipReasons[ingest.SkipReason(reason)])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Preview) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tBRANCH\tCHANNEL\tSALES\tORDERS\tTARGET")
	for _, rec := range r.Preview {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%.2f\n",
			rec.Date, rec.Branch, rec.Channel, rec.SalesValue, rec.OrdersCount, rec.TargetValue)
	}
	return tw.Flush()
}
