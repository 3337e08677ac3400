package bmc

import "github.com/cnfjlhj/btormc/internal/trace"

// RunOutcome is the closed sum type a Run terminates with (spec.md §4.3's
// state machine: Reporting / K_max reached / UNKNOWN / Cancelled). The
// unexported marker method closes the set to the four variants below.
type RunOutcome interface {
	runOutcome()
}

// PropertyHit means the property held at Step; Trace is the extracted
// counter-example.
type PropertyHit struct {
	Step  int
	Trace *trace.Trace
}

func (PropertyHit) runOutcome() {}

// BoundExhausted means no hit was found through KMax-1 steps.
type BoundExhausted struct {
	KMax int
}

func (BoundExhausted) runOutcome() {}

// Inconclusive means the backend returned Unknown at Step.
type Inconclusive struct {
	Step int
}

func (Inconclusive) runOutcome() {}

// Cancelled means the caller's cancellation signal fired before Step.
type Cancelled struct {
	Step int
}

func (Cancelled) runOutcome() {}
