package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes reconciliation errors.
type ErrorCode string

const (
	// CodeShapeMismatch indicates a node does not have the syntactic shape
	// its view expects.
	CodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"

	// CodeNameNotFound indicates a lookup name (top-level or nested) does not
	// resolve.
	CodeNameNotFound ErrorCode = "NAME_NOT_FOUND"

	// CodeAmbiguousReconciliation indicates a patch would silently discard
	// either an independent body or a conflicting doc block.
	CodeAmbiguousReconciliation ErrorCode = "AMBIGUOUS_RECONCILIATION"

	// CodeUnsupportedLiteralShape indicates a default or choice expression
	// outside the closed literal grammar.
	CodeUnsupportedLiteralShape ErrorCode = "UNSUPPORTED_LITERAL_SHAPE"
)

// Error is a fatal parse or reconciliation error. None of these are retried;
// the caller decides whether to abort the run or skip the representation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Name is the lookup name or param involved, if any.
	Name string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Name != "" {
		msg = fmt.Sprintf("%s (name=%s)", msg, e.Name)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewShapeMismatch creates an Error for an unexpected node shape.
func NewShapeMismatch(name, expected, got string) *Error {
	return &Error{
		Code:    CodeShapeMismatch,
		Name:    name,
		Message: fmt.Sprintf("expected %s, got %s", expected, got),
	}
}

// NewNameNotFound creates an Error for an unresolved lookup name.
func NewNameNotFound(name, within string) *Error {
	msg := "name not found"
	if within != "" {
		msg = fmt.Sprintf("name not found in %s", within)
	}
	return &Error{Code: CodeNameNotFound, Name: name, Message: msg}
}

// NewAmbiguousReconciliation creates an Error refusing a lossy patch.
func NewAmbiguousReconciliation(name, reason string) *Error {
	return &Error{Code: CodeAmbiguousReconciliation, Name: name, Message: reason}
}

// NewUnsupportedLiteralShape creates an Error for an expression outside the
// literal grammar. shape is the offending node kind.
func NewUnsupportedLiteralShape(name, shape string) *Error {
	return &Error{
		Code:    CodeUnsupportedLiteralShape,
		Name:    name,
		Message: fmt.Sprintf("unsupported literal shape %s", shape),
	}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsShapeMismatch returns true if err is (or wraps) a shape mismatch.
func IsShapeMismatch(err error) bool { return hasCode(err, CodeShapeMismatch) }

// IsNameNotFound returns true if err is (or wraps) an unresolved name.
func IsNameNotFound(err error) bool { return hasCode(err, CodeNameNotFound) }

// IsAmbiguousReconciliation returns true if err is (or wraps) a refused patch.
func IsAmbiguousReconciliation(err error) bool {
	return hasCode(err, CodeAmbiguousReconciliation)
}

// IsUnsupportedLiteralShape returns true if err is (or wraps) an unsupported
// literal shape.
func IsUnsupportedLiteralShape(err error) bool {
	return hasCode(err, CodeUnsupportedLiteralShape)
}

// IsReconciliationError returns true for every error kind that refuses a
// reconciliation: unresolved names and ambiguous patches.
func IsReconciliationError(err error) bool {
	return IsNameNotFound(err) || IsAmbiguousReconciliation(err)
}
