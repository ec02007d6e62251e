// Package core wires spreadsheet ingestion to storage and exposes the
// operations used by the web server and the salesctl command.
//
// # Upload flow
//
//  1. [Service.Upload] takes a slot from the [UploadLimiter]
//  2. the file is read up to Config.Upload.MaxFileSize and decoded by the
//     sheet package (.xlsx, .xlsm or .csv)
//  3. the ingest assembler binds headers to fields and validates each row
//     against the branch and channel catalog
//  4. accepted records are stored as one upload; a file with no accepted
//     rows, or with a missing date, branch or channel column, is stored
//     as a failed upload and nothing else is written
//
// [Service.Preview] runs steps 1 to 3 only.
//
// # Errors
//
// Operations return wrapped sentinel errors. [MapError] turns any of them
// into a [UserMessage] with a support code; see error_messages.go for the
// full code list.
//
// # Maintenance
//
// [Service.StartRetentionScheduler] purges failed and rolled back uploads
// older than RetentionConfig.FailedUploadDays.
package core
