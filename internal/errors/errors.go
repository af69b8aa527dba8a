// Package errors defines stable error codes and the CreError type used
// across the reasoning engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// MalformedQuery indicates the exploration goal is empty or unparseable.
	// This is the only code that crosses the engine boundary as an error.
	MalformedQuery ErrorCode = "MALFORMED_QUERY"
	// ExternalToolFailure indicates a code-index call failed or timed out.
	// Non-fatal: the call is treated as having returned zero results.
	ExternalToolFailure ErrorCode = "EXTERNAL_TOOL_FAILURE"
	// BudgetExceeded indicates the frontier scheduler hit a depth, node, or
	// time budget. This is the expected stopping condition, not a failure.
	BudgetExceeded ErrorCode = "BUDGET_EXCEEDED"
	// GraphInconsistency indicates an edge referenced a node id never
	// inserted into the store. Treated as a non-fatal skip.
	GraphInconsistency ErrorCode = "GRAPH_INCONSISTENCY"
	// IndexMissing indicates no code index backend could be found
	IndexMissing ErrorCode = "INDEX_MISSING"
	// IndexUnavailable indicates a configured backend is not reachable
	IndexUnavailable ErrorCode = "INDEX_UNAVAILABLE"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests editing the config file
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// CreError represents a CRE error with a stable code and optional cause
type CreError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a new CreError
func New(code ErrorCode, message string) *CreError {
	return &CreError{Code: code, Message: message, SuggestedFixes: GetSuggestedFixes(code)}
}

// Wrap creates a new CreError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *CreError {
	return &CreError{Code: code, Message: message, cause: cause, SuggestedFixes: GetSuggestedFixes(code)}
}

// Error implements the error interface
func (e *CreError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CreError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CreError) WithDetails(details interface{}) *CreError {
	e.Details = details
	return e
}

// HasCode reports whether err is (or wraps) a CreError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ce *CreError
	if stderrors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	IndexMissing: {
		{
			Type:        RunCommand,
			Command:     "cre doctor",
			Safe:        true,
			Description: "Check which code index backends are available",
		},
		{
			Type:        EditConfig,
			Description: "Set index.scip.indexPath or index.tool.command in .cre/config.json",
		},
	},
	IndexUnavailable: {
		{
			Type:        RunCommand,
			Command:     "cre doctor",
			Safe:        true,
			Description: "Verify the configured index backend is reachable",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
