package btor2

import "fmt"

// Reason enumerates the parse failure kinds spec.md §4.1 requires.
type Reason string

const (
	ReasonUnknownOp     Reason = "UnknownOp"
	ReasonUndefinedRef  Reason = "UndefinedRef"
	ReasonSortMismatch  Reason = "SortMismatch"
	ReasonWidthMismatch Reason = "WidthMismatch"
	ReasonDuplicateInit Reason = "DuplicateInit"
	ReasonDanglingState Reason = "DanglingState"
)

// ParseError is BTOR2ParseError from spec.md §4.1: a fatal parse failure
// reported with its source line number and reason.
type ParseError struct {
	Line   int
	Reason Reason
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("btor2:%d: %s: %s", e.Line, e.Reason, e.Msg)
}

func errAt(line int, reason Reason, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: reason, Msg: fmt.Sprintf(format, args...)}
}
