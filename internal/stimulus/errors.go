// Package stimulus parses the clock/property/drive-segment scripting
// language described in spec.md §4.2 into a StimulusIR.
package stimulus

import "fmt"

// Reason enumerates the parse failure kinds spec.md §4.2 names for the
// script parser itself. UnknownIdentifier is deliberately absent: spec.md
// defers it to BMC binding time, where a script signal name is checked
// against the loaded ModelIR.
type Reason string

const (
	ReasonUnknownSection        Reason = "UnknownSection"
	ReasonDuplicatePropertyLine Reason = "DuplicatePropertyLine"
	ReasonBadClockPeriod        Reason = "BadClockPeriod"
	ReasonOverflowLiteral       Reason = "OverflowLiteral"
)

// ParseError is ScriptParseError from spec.md §4.2.
type ParseError struct {
	Line   int
	Reason Reason
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("stimulus:%d: %s: %s", e.Line, e.Reason, e.Msg)
}

func errAt(line int, reason Reason, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: reason, Msg: fmt.Sprintf(format, args...)}
}
