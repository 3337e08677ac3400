// Package smt defines the narrow SMT capability interface the BMC engine
// talks to (spec.md §4.5): declare constants, assert formulas, push/pop,
// check-sat, and read back a model. The engine never names a concrete
// solver; internal/smt/ginisat is the one adapter that does.
package smt

import (
	"context"
	"errors"
	"fmt"

	"github.com/cnfjlhj/btormc/internal/ir"
)

// Verdict is the three-valued result of CheckSat.
type Verdict int

const (
	Unknown Verdict = iota
	Sat
	Unsat
)

func (v Verdict) String() string {
	switch v {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

var (
	// ErrNotDeclared is the error a Backend may return from
	// Assert/GetValue when a referenced Var node was never passed to
	// DeclareConst. ginisat does not return it: it creates the constant
	// on first use.
	ErrNotDeclared = errors.New("smt: constant not declared")
	// ErrNoModel is the error a Backend may return from GetValue outside
	// of a Sat check-sat result. ginisat does not return it and does not
	// check for a model before reading values.
	ErrNoModel = errors.New("smt: no model available")
	// ErrUnsupportedOp is returned by Assert when it encounters an Expr
	// node kind the backend cannot translate (array ops on a backend
	// without array support, for instance).
	ErrUnsupportedOp = errors.New("smt: unsupported expression")
)

// BackendError wraps a solver-level failure (spec.md §6: ResourceExhausted,
// Crash) as a fatal, non-recoverable condition.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("smt: %s: %v", e.Op, e.Err) }
func (e *BackendError) Unwrap() error { return e.Err }

// Backend is the capability set spec.md §4.5 requires. Construction
// helpers for every Expr node kind live inside the concrete
// implementation's Assert/GetValue, translating from the shared ir.Arena
// representation rather than a backend-private AST, so the engine never
// needs to duplicate expression-building logic per backend.
type Backend interface {
	// DeclareConst registers a fresh symbolic constant for the OpVar node
	// id. It is idempotent: declaring the same id twice is a no-op.
	DeclareConst(arena *ir.Arena, id ir.ExprID) error

	// Assert adds a formula to the current scope. At depth 0 (outside any
	// Push) the formula holds for the remainder of the session; inside a
	// Push/Pop bracket it holds only while that bracket is open.
	Assert(arena *ir.Arena, id ir.ExprID) error

	Push() error
	Pop() error

	// CheckSat queries satisfiability of everything currently asserted.
	// It honors ctx cancellation and any backend-configured timeout by
	// returning Unknown rather than blocking indefinitely.
	CheckSat(ctx context.Context) (Verdict, error)

	// GetValue reads back the model value of id after a Sat result.
	GetValue(arena *ir.Arena, id ir.ExprID) (uint64, error)

	Close() error
}
