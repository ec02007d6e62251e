// Package ingest turns decoded spreadsheet rows into canonical sales records.
//
// The pipeline has four pieces, leaves first:
//
//   - Value normalization: text folding for matching, lenient number parsing
//     and date coercion to YYYY-MM-DD ([NormalizeText], [NormalizeNumber],
//     [NormalizeDate]).
//   - Canonical matching: free text to a fixed catalog member through the
//     exact, translated and fuzzy tiers ([Matcher]).
//   - Header resolution: arbitrary column headers to the six semantic fields
//     ([ResolveHeaders]).
//   - Record assembly: one pass over the rows in input order ([Assembler]).
//
// # Failures
//
// File-level failures are returned as errors: [ErrMissingColumn] when the
// date, branch or channel column cannot be found, and [ErrNoValidRows] when
// every row was dropped. Row-level defects (unusable date, unknown branch or
// channel) only drop the row; they show up in [Result.Skipped] and in debug
// logs. Unparseable numbers never drop a row, they become 0.
package ingest
