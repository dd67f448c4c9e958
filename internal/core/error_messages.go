package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: Grid session not found
//	         Action: Reopen the table to start a new session
//	         Patterns: "grid session not found"
//
//	SES002 - Too many sessions: Session capacity reached
//	         Action: Close unused grids or try again later
//	         Patterns: "too many grid sessions"
//
// # Grid Errors (GRID001-GRID099)
//
//	GRID001 - Invalid event: The grid did not recognize the interaction
//	          Action: Refresh the page and try again
//	          Patterns: "invalid grid event"
//
//	GRID002 - Edit rejected: The cell cannot be edited
//	          Action: Check that the grid is editable and the row still exists
//	          Patterns: "cell edit rejected"
//
//	GRID003 - Unknown action: The requested row action does not exist
//	          Action: Refresh the page to load the current actions
//	          Patterns: "grid action not found"
//
//	GRID004 - Action disabled: The action needs selected rows
//	          Action: Select one or more rows first
//	          Patterns: "grid action disabled"
//
//	GRID005 - Invalid request: The request body could not be read
//	          Action: Check the request format
//	          Patterns: "invalid request body"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Unknown table: Table is not configured
//	         Action: Verify the table name is correct
//	         Patterns: "unknown table"
//
//	TBL002 - Table missing: Table does not exist in the database
//	         Action: Run the database migrations
//	         Patterns: "does not exist"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Action: Narrow the filters or try again later
//	         Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB003 - Timeout: Operation timed out
//	        Action: Narrow the filters or try again later
//	        Patterns: "timeout"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
//	RATE002 - System busy: Too many table loads in progress
//	          Action: Please wait a moment and try again
//	          Patterns: "too many concurrent table loads"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated patterns to understand what triggered it
//  3. If ERR000, check application logs for the original technical error

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the service.
var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrSessionNotFound = errors.New("grid session not found")
	ErrTooManySessions = errors.New("too many grid sessions")
	ErrInvalidEvent    = errors.New("invalid grid event")
	ErrEditRejected    = errors.New("cell edit rejected")
	ErrActionNotFound  = errors.New("grid action not found")
	ErrActionDisabled  = errors.New("grid action disabled")
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

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Session Errors (SES001-SES002)
	// =========================================================================
	{
		pattern: "grid session not found",
		msg: UserMessage{
			Message: "Grid session not found",
			Action:  "The session may have expired. Reopen the table to start a new one",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many grid sessions",
		msg: UserMessage{
			Message: "Too many open grids",
			Action:  "Close unused grids or try again later",
			Code:    "SES002",
		},
	},

	// =========================================================================
	// Grid Errors (GRID001-GRID005)
	// =========================================================================
	{
		pattern: "invalid grid event",
		msg: UserMessage{
			Message: "The grid did not recognize this interaction",
			Action:  "Refresh the page and try again",
			Code:    "GRID001",
		},
	},
	{
		pattern: "cell edit rejected",
		msg: UserMessage{
			Message: "This cell cannot be edited",
			Action:  "Check that the grid is editable and the row still exists",
			Code:    "GRID002",
		},
	},
	{
		pattern: "grid action not found",
		msg: UserMessage{
			Message: "Unknown row action",
			Action:  "Refresh the page to load the current actions",
			Code:    "GRID003",
		},
	},
	{
		pattern: "grid action disabled",
		msg: UserMessage{
			Message: "This action needs selected rows",
			Action:  "Select one or more rows first",
			Code:    "GRID004",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the request format",
			Code:    "GRID005",
		},
	},

	// =========================================================================
	// Table Errors (TBL001-TBL002)
	// =========================================================================
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Unknown table",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Table data is not available",
			Action:  "Run the database migrations",
			Code:    "TBL002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001-RATE002)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "too many concurrent table loads",
		msg: UserMessage{
			Message: "System is busy loading other tables",
			Action:  "Please wait a moment and try again",
			Code:    "RATE002",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// Checked before database timeouts so deadlines map to REQ002.
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Narrow the filters or try again later",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Narrow the filters or try again later",
			Code:    "DB003",
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
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
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

// IsUserFacing reports whether an error matches a known pattern and should
// be shown to users instead of the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
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

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
