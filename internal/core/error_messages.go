// Package core provides the CSV to PREMIS conversion logic.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Archivists can quote the code when reporting a failed conversion.
//
// # Identifier Errors (ID001-ID099)
//
//	ID001 - Malformed identifier: objectIdentifier is not "[type, value]"
//	        Action: Write the identifier as [type, value], e.g. [UUID, 1234]
//	        Match: errors.Is(err, ErrMalformedIdentifier)
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: Required column or cell is missing
//	         Action: Check that all required columns are present in your file
//	         Match: errors.Is(err, ErrMissingField), pattern "missing required column"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Upload exceeds the configured size limit
//	FILE002 - Invalid CSV: File is not a valid CSV
//	FILE003 - Encoding error: File is not valid UTF-8
//	          Match: errors.Is(err, encoding.ErrInvalidUTF8), pattern "encoding error"
//	FILE004 - No file: An objects or events table was not supplied
//	FILE006 - Cannot read input: A table could not be opened or read
//	FILE007 - Cannot write output: The XML file could not be written
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Ledger unavailable: The conversion could not be recorded
//	RUN002 - Request cancelled
//	RUN003 - Request timeout
//	RUN004 - Busy: Every conversion slot is taken
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// # Matching
//
// Typed errors are checked first with errors.Is/As. Remaining errors are
// matched case-insensitively on their text; the first pattern wins.
//
// # Input Errors
//
// ID001, VAL004, FILE001, FILE002, FILE003 and FILE004 are caused by the
// submitted tables. IsInputError reports them; every other code is a failure
// of the converter or its environment.
package core

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMalformedIdentifier = UserMessage{
		Message: "Object identifier is malformed",
		Action:  "Write the identifier as [type, value], e.g. [UUID, 1234]",
		Code:    "ID001",
	}
	msgMissingField = UserMessage{
		Message: "Required column is missing from CSV",
		Action:  "Check that all required columns are present in your file",
		Code:    "VAL004",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}
	msgReadInput = UserMessage{
		Message: "Input table could not be read",
		Action:  "Check the path and file permissions",
		Code:    "FILE006",
	}
	msgWriteOutput = UserMessage{
		Message: "Output file could not be written",
		Action:  "Check that the output directory exists and is writable",
		Code:    "FILE007",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "missing required column",
		msg:     msgMissingField,
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the table into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the table into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg:     msgEncoding,
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "An objects or events table was not supplied",
			Action:  "Select both CSV files before converting",
			Code:    "FILE004",
		},
	},
	{
		pattern: "record run",
		msg: UserMessage{
			Message: "The conversion could not be recorded",
			Action:  "Check the database connection or unset DATABASE_URL",
			Code:    "RUN001",
		},
	},
	{
		pattern: "too many concurrent conversions",
		msg: UserMessage{
			Message: "The converter is busy",
			Action:  "Wait a moment and try again",
			Code:    "RUN004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller table or check your connection",
			Code:    "RUN003",
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
// Example:
//
//	_, _, err := ParseObjectIdentifier("[onlyonepart]")
//	msg := MapError(err)
//	// msg.Code == "ID001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrMalformedIdentifier):
		return msgMalformedIdentifier
	case errors.Is(err, ErrMissingField):
		return msgMissingField
	case errors.Is(err, encoding.ErrInvalidUTF8):
		return msgEncoding
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		if ioErr.Op == "write" {
			return msgWriteOutput
		}
		return msgReadInput
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// inputCodes are the codes a caller can fix by changing the submitted tables.
var inputCodes = map[string]bool{
	"ID001":   true,
	"VAL004":  true,
	"FILE001": true,
	"FILE002": true,
	"FILE003": true,
	"FILE004": true,
}

// IsInputError reports whether err was caused by the submitted tables.
// Ledger, I/O, cancellation and unknown failures are not input errors.
func IsInputError(err error) bool {
	if err == nil {
		return false
	}
	return inputCodes[MapError(err).Code]
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

// Summary formats the message for display: "Message (Code: XXX). Action"
func (e *UserError) Summary() string {
	return fmt.Sprintf("%s (Code: %s). %s", e.User.Message, e.User.Code, e.User.Action)
}

// NewUserError wraps err with its mapped message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
