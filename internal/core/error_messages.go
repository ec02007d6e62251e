package core

// error_messages.go maps technical errors to user-facing messages with a
// support code. Users quote the code; support staff look it up here.
//
// # Validation Errors (VAL)
//
//	VAL004 - Missing column: date, branch or channel header not found
//	VAL007 - No valid rows: every row was dropped during validation
//	VAL008 - Unknown branch: name does not match the branch catalog
//	VAL009 - Invalid target: target value is negative or not a number
//	VAL010 - Unknown channel: name does not match the channel catalog
//
// # File Errors (FILE)
//
//	FILE001 - File too large
//	FILE002 - Invalid spreadsheet: not a readable .xlsx/.xlsm/.csv file
//	FILE004 - No file selected
//	FILE005 - Empty file
//
// # Upload Errors (UPL)
//
//	UPL002 - System busy: all upload slots taken
//	UPL003 - Upload not found: unknown upload ID
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//	UPL006 - Already rolled back
//	UPL007 - Invalid upload ID
//	UPL008 - Upload not completed: failed uploads have nothing to roll back
//
// # Database Errors (DB)
//
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//
// # Rate Limiting (RATE)
//
//	RATE001 - Too many requests
//
// # Default (ERR000)
//
// Returned when nothing matches; check the logs for the technical error.
//
// Sentinel errors are matched with errors.Is first. Remaining errors are
// matched by case-insensitive substring, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/salesboard/internal/ingest"
	"github.com/JonMunkholm/salesboard/internal/sheet"
	"github.com/JonMunkholm/salesboard/internal/store"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMissingColumn = UserMessage{
		Message: "Required column is missing from the spreadsheet",
		Action:  "Make sure the first row has date, branch and channel headers",
		Code:    "VAL004",
	}
	msgNoValidRows = UserMessage{
		Message: "No valid records found",
		Action:  "Check the dates and the branch and channel names in your file",
		Code:    "VAL007",
	}
	msgUnknownBranch = UserMessage{
		Message: "Branch name not recognised",
		Action:  "Use one of the branch names listed in the catalog",
		Code:    "VAL008",
	}
	msgUnknownChannel = UserMessage{
		Message: "Channel name not recognised",
		Action:  "Use one of the channel names listed in the catalog",
		Code:    "VAL010",
	}
	msgInvalidTarget = UserMessage{
		Message: "Target value must be a non-negative number",
		Action:  "Enter the target as a plain number",
		Code:    "VAL009",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgInvalidSpreadsheet = UserMessage{
		Message: "Failed to parse Excel file",
		Action:  "Upload an .xlsx, .xlsm or .csv file",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a spreadsheet to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a spreadsheet with data rows",
		Code:    "FILE005",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgUploadNotFound = UserMessage{
		Message: "Upload not found",
		Action:  "Check the upload ID in the upload history",
		Code:    "UPL003",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgDeadline = UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgRolledBack = UserMessage{
		Message: "Upload was already rolled back",
		Action:  "No further action is needed",
		Code:    "UPL006",
	}
	msgInvalidUploadID = UserMessage{
		Message: "Invalid upload ID",
		Action:  "Copy the ID from the upload history",
		Code:    "UPL007",
	}
	msgNotCompleted = UserMessage{
		Message: "Upload did not complete, so it has no records to roll back",
		Action:  "Check the upload history for the error and upload the file again",
		Code:    "UPL008",
	}
)

// errorSentinels is checked with errors.Is before any pattern.
var errorSentinels = []struct {
	target error
	msg    UserMessage
}{
	{ingest.ErrMissingColumn, msgMissingColumn},
	{ingest.ErrNoValidRows, msgNoValidRows},
	{sheet.ErrFileFormat, msgInvalidSpreadsheet},
	{ErrUnknownBranch, msgUnknownBranch},
	{ErrUnknownChannel, msgUnknownChannel},
	{ErrInvalidTarget, msgInvalidTarget},
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrNoFile, msgNoFile},
	{ErrEmptyFile, msgEmptyFile},
	{ErrInvalidUploadID, msgInvalidUploadID},
	{ErrTooManyUploads, msgBusy},
	{store.ErrUploadNotFound, msgUploadNotFound},
	{store.ErrAlreadyRolledBack, msgRolledBack},
	{store.ErrUploadNotCompleted, msgNotCompleted},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgDeadline},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors that arrive without a sentinel, mostly from
// the database driver and the network.
var errorPatterns = []errorPattern{
	{"missing required column", msgMissingColumn},
	{"no valid records", msgNoValidRows},
	{"failed to parse spreadsheet", msgInvalidSpreadsheet},
	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("ingest: %w", ingest.ErrNoValidRows))
//	// msg.Code == "VAL007"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range errorSentinels {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
