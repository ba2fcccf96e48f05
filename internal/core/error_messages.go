package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Warnings returned from a batch carry the same codes, so a user
// can quote either to support staff.
//
// # PDF Errors (PDF001-PDF099)
//
//	PDF001 - Unreadable PDF: The file could not be opened as a PDF
//	         Action: Re-export the cut list from the nesting software
//	         Patterns: "unreadable pdf"
//
//	PDF002 - Not a PDF: Only .pdf files are accepted
//	         Action: Upload the cut list as a PDF
//	         Patterns: "not a pdf"
//
//	PDF003 - No tables: No usable part tables were found
//	         Action: Check that the PDF is a cut list with a parts table
//	         Patterns: "no usable part tables"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Schema mismatch: A table did not have 7 or 8 columns
//	         Action: The table was skipped; other tables were processed
//	         Patterns: "schema mismatch"
//
//	TBL002 - Page unreadable: Tables on a page could not be read
//	         Action: The page was skipped; other pages were processed
//	         Patterns: "could not read tables"
//
// # Batch Errors (BATCH001-BATCH099)
//
//	BATCH001 - No valid data: No usable part rows in any uploaded file
//	           Action: Check the warnings for each file
//	           Patterns: "no valid data"
//
//	BATCH002 - Too many files: The batch exceeds the file limit
//	           Action: Split the upload into smaller batches
//	           Patterns: "too many files"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	FILE004 - No file: No file was selected
//	FILE005 - Empty file: The uploaded file is empty
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	UPL004 - Request cancelled: Request was cancelled
//	UPL005 - Request timeout: Request timed out
//
// # Rate Limiting (RATE001) and Default (ERR000)
//
//	RATE001 - Rate limited: Too many requests
//	ERR000  - Unknown error: check application logs for the technical error
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// PDF Errors (PDF001-PDF003)
	// =========================================================================
	{
		pattern: "not a pdf",
		msg: UserMessage{
			Message: "Only .pdf files are accepted",
			Action:  "Upload the cut list as a PDF",
			Code:    CodeNotPDF,
		},
	},
	{
		pattern: "unreadable pdf",
		msg: UserMessage{
			Message: "The file could not be opened as a PDF",
			Action:  "Re-export the cut list from the nesting software",
			Code:    CodeUnreadablePDF,
		},
	},
	{
		pattern: "no usable part tables",
		msg: UserMessage{
			Message: "No usable part tables were found",
			Action:  "Check that the PDF is a cut list with a parts table",
			Code:    CodeNoTables,
		},
	},

	// =========================================================================
	// Table Errors (TBL001-TBL002)
	// =========================================================================
	{
		pattern: "schema mismatch",
		msg: UserMessage{
			Message: "A table did not have 7 or 8 columns",
			Action:  "The table was skipped; other tables were processed",
			Code:    CodeSchemaMismatch,
		},
	},
	{
		pattern: "could not read tables",
		msg: UserMessage{
			Message: "Tables on a page could not be read",
			Action:  "The page was skipped; other pages were processed",
			Code:    CodePageTables,
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// "no file provided" is listed before "no valid data" because an empty
	// batch error carries both.
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the cut list into smaller PDFs",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Upload exceeds maximum size limit",
			Action:  "Upload fewer or smaller PDFs at once",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select one or more PDF files to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a PDF cut list",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Batch Errors (BATCH001-BATCH002)
	// =========================================================================
	{
		pattern: "no valid data",
		msg: UserMessage{
			Message: "No valid data found in the uploaded files",
			Action:  "Check the warnings for each file",
			Code:    "BATCH001",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many files in one upload",
			Action:  "Split the upload into smaller batches",
			Code:    "BATCH002",
		},
	},

	// =========================================================================
	// Upload Errors (UPL002-UPL005)
	// =========================================================================
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading fewer files or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
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
// If no pattern matches, a generic fallback with code ERR000 is returned.
//
// Example:
//
//	msg := MapError(&SchemaMismatchError{Observed: 5})
//	// msg.Code == "TBL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern, i.e. maps to
// something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The wrapped error is kept for logging.
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

// NewUserError maps a technical error to a UserError.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
