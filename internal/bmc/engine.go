// Package bmc implements the bounded model checking engine: iterative
// unrolling of a ModelIR's transition relation against a StimulusIR's
// drives and property, per spec.md §4.3/§5.
package bmc

import (
	"context"
	"fmt"

	"github.com/cnfjlhj/btormc/internal/ir"
	"github.com/cnfjlhj/btormc/internal/smt"
	"github.com/cnfjlhj/btormc/internal/trace"
)

// DefaultKMax is spec.md §4.3's default bound.
const DefaultKMax = 20

// Engine owns the backend connection exclusively for the duration of a
// run (spec.md §5), unrolling model against stim up to KMax steps.
type Engine struct {
	model *ir.ModelIR
	stim  *ir.StimulusIR
	kMax  int

	backend smt.Backend

	substCache map[int]map[ir.ExprID]ir.ExprID
}

// New constructs an Engine. kMax <= 0 selects DefaultKMax.
func New(model *ir.ModelIR, stim *ir.StimulusIR, backend smt.Backend, kMax int) *Engine {
	if kMax <= 0 {
		kMax = DefaultKMax
	}
	return &Engine{
		model:      model,
		stim:       stim,
		kMax:       kMax,
		backend:    backend,
		substCache: make(map[int]map[ir.ExprID]ir.ExprID),
	}
}

func (e *Engine) arena() *ir.Arena { return e.model.Arena }

func (e *Engine) stateFrameVar(s ir.StateVar, k int) ir.ExprID {
	return e.arena().Var(fmt.Sprintf("%s@%d", s.Name, k), s.Sort, ir.RoleState)
}

func (e *Engine) inputFrameVar(inp ir.InputVar, k int) ir.ExprID {
	return e.arena().Var(fmt.Sprintf("%s@%d", inp.Name, k), inp.Sort, ir.RoleInput)
}

func (e *Engine) origStateVar(s ir.StateVar) ir.ExprID {
	return e.arena().Var(s.Name, s.Sort, ir.RoleState)
}

func (e *Engine) origInputVar(inp ir.InputVar) ir.ExprID {
	return e.arena().Var(inp.Name, inp.Sort, ir.RoleInput)
}

// substMapAt returns (and caches) the substitution homomorphism mapping
// every original state/input var to its step-k symbolic copy (spec.md
// §4.3 step 2).
func (e *Engine) substMapAt(k int) map[ir.ExprID]ir.ExprID {
	if m, ok := e.substCache[k]; ok {
		return m
	}
	m := make(map[ir.ExprID]ir.ExprID, len(e.model.States)+len(e.model.Inputs))
	for _, s := range e.model.States {
		m[e.origStateVar(s)] = e.stateFrameVar(s, k)
	}
	for _, inp := range e.model.Inputs {
		m[e.origInputVar(inp)] = e.inputFrameVar(inp, k)
	}
	e.substCache[k] = m
	return m
}

// materializeFrame creates fresh per-step constants for every state and
// input (spec.md §4.3 step 1) and registers them with the backend.
func (e *Engine) materializeFrame(k int) error {
	for _, s := range e.model.States {
		id := e.stateFrameVar(s, k)
		if err := e.backend.DeclareConst(e.arena(), id); err != nil {
			return &smt.BackendError{Op: "declare_const", Err: err}
		}
	}
	for _, inp := range e.model.Inputs {
		id := e.inputFrameVar(inp, k)
		if err := e.backend.DeclareConst(e.arena(), id); err != nil {
			return &smt.BackendError{Op: "declare_const", Err: err}
		}
	}
	return nil
}

func (e *Engine) assertEq(x, y ir.ExprID) error {
	eq, err := e.arena().Eq(x, y)
	if err != nil {
		return err
	}
	if err := e.backend.Assert(e.arena(), eq); err != nil {
		return &smt.BackendError{Op: "assert", Err: err}
	}
	return nil
}

// assertInitOrTransition implements spec.md §4.3 step 2.
func (e *Engine) assertInitOrTransition(k int) error {
	if k == 0 {
		subst0 := e.substMapAt(0)
		for _, s := range e.model.States {
			if s.Init == ir.InvalidExprID {
				continue
			}
			initAt0 := e.arena().Substitute(s.Init, subst0)
			if err := e.assertEq(e.stateFrameVar(s, 0), initAt0); err != nil {
				return err
			}
		}
		return nil
	}
	substPrev := e.substMapAt(k - 1)
	for _, s := range e.model.States {
		if s.Next == ir.InvalidExprID {
			continue
		}
		nextAtPrev := e.arena().Substitute(s.Next, substPrev)
		if err := e.assertEq(e.stateFrameVar(s, k), nextAtPrev); err != nil {
			return err
		}
	}
	return nil
}

// assertConstraints asserts every `constraint` sink at step k, globally
// (spec.md §9 Open Question decision), before stimulus drives so a
// contradictory drive is reported rather than masked.
func (e *Engine) assertConstraints(k int) error {
	subst := e.substMapAt(k)
	for _, c := range e.model.ConstraintExprs() {
		ck := e.arena().Substitute(c, subst)
		if err := e.backend.Assert(e.arena(), ck); err != nil {
			return &smt.BackendError{Op: "assert", Err: err}
		}
	}
	return nil
}

// applyStimulus implements spec.md §4.3 step 3: drives and clock values.
func (e *Engine) applyStimulus(k int) error {
	drives := e.stim.DrivesAt(k)
	for name := range drives {
		if _, err := e.resolveAssignableAt(name, k); err != nil {
			return err
		}
	}
	for _, inp := range e.model.Inputs {
		val, ok := drives[inp.Name]
		if !ok {
			continue
		}
		lit := e.arena().ConstBV(val, inp.Sort.BitWidth())
		if err := e.assertEq(e.inputFrameVar(inp, k), lit); err != nil {
			return err
		}
	}
	for name, period := range e.stim.Clock {
		target, err := e.resolveAssignableAt(name, k)
		if err != nil {
			return err
		}
		width := e.arena().Get(target).Sort.BitWidth()
		lit := e.arena().ConstBV(ir.ClockValueAt(period, k), width)
		if err := e.assertEq(target, lit); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the per-step unrolling loop (spec.md §4.3's algorithm and
// state machine) until a property hit, the bound is exhausted, the
// backend reports Unknown, or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) (RunOutcome, error) {
	for k := 0; k < e.kMax; k++ {
		select {
		case <-ctx.Done():
			return Cancelled{Step: k}, nil
		default:
		}

		if err := e.materializeFrame(k); err != nil {
			return nil, err
		}
		if err := e.assertInitOrTransition(k); err != nil {
			return nil, err
		}
		if err := e.assertConstraints(k); err != nil {
			return nil, err
		}
		if err := e.applyStimulus(k); err != nil {
			return nil, err
		}

		propID, err := e.ResolveProperty(k)
		if err != nil {
			return nil, err
		}

		if err := e.backend.Push(); err != nil {
			return nil, &smt.BackendError{Op: "push", Err: err}
		}
		if err := e.backend.Assert(e.arena(), propID); err != nil {
			return nil, &smt.BackendError{Op: "assert", Err: err}
		}
		verdict, err := e.backend.CheckSat(ctx)
		if err != nil {
			return nil, &smt.BackendError{Op: "check_sat", Err: err}
		}

		switch verdict {
		case smt.Sat:
			tr, err := e.extractTrace(k)
			if err != nil {
				return nil, err
			}
			return PropertyHit{Step: k, Trace: tr}, nil
		case smt.Unsat:
			if err := e.backend.Pop(); err != nil {
				return nil, &smt.BackendError{Op: "pop", Err: err}
			}
		default:
			return Inconclusive{Step: k}, nil
		}
	}
	return BoundExhausted{KMax: e.kMax}, nil
}

// extractTrace builds the counter-example trace covering steps 0..k
// (spec.md §4.4): every input, every state, and, when the property names
// a BTOR2 output rather than a state/input, that output's value too.
func (e *Engine) extractTrace(k int) (*trace.Trace, error) {
	outputSignal := ""
	if !e.stim.Property.IsZero() && !e.stim.Property.IsTrue {
		name := e.stim.Property.Signal
		if e.model.StateByName(name) < 0 && e.model.InputByName(name) < 0 {
			if _, ok := e.model.OutputByName(name); ok {
				outputSignal = name
			}
		}
	}

	steps := make([]trace.Step, k+1)
	for j := 0; j <= k; j++ {
		var signals []trace.NamedValue
		for _, inp := range e.model.Inputs {
			v, err := e.extractValue(e.inputFrameVar(inp, j), inp.Sort)
			if err != nil {
				return nil, err
			}
			signals = append(signals, trace.NamedValue{Name: inp.Name, Value: v})
		}
		for _, s := range e.model.States {
			v, err := e.extractValue(e.stateFrameVar(s, j), s.Sort)
			if err != nil {
				return nil, err
			}
			signals = append(signals, trace.NamedValue{Name: s.Name, Value: v})
		}
		if outputSignal != "" {
			exprID, _ := e.model.OutputByName(outputSignal)
			valAtJ := e.arena().Substitute(exprID, e.substMapAt(j))
			v, err := e.extractValue(valAtJ, e.arena().Get(exprID).Sort)
			if err != nil {
				return nil, err
			}
			signals = append(signals, trace.NamedValue{Name: outputSignal, Value: v})
		}
		steps[j] = trace.Step{Signals: signals}
	}

	return &trace.Trace{
		PropertyExpr: e.stim.Property.String(),
		Step:         k,
		Steps:        steps,
	}, nil
}

func (e *Engine) extractValue(id ir.ExprID, sort ir.Sort) (trace.Value, error) {
	switch sort.Kind {
	case ir.SortBool:
		bits, err := e.backend.GetValue(e.arena(), id)
		if err != nil {
			return trace.Value{}, &smt.BackendError{Op: "get_value", Err: err}
		}
		return trace.BoolValue(bits != 0), nil
	case ir.SortArray:
		// spec.md §4.5's capability interface exposes only a scalar
		// get_value(handle) -> literal, with no array-valued read-back, so
		// a full sparse model of an array signal cannot be recovered
		// through this interface. Rendered as an empty map with a zero
		// default; see DESIGN.md.
		return trace.ArrayValue(nil, 0), nil
	default:
		bits, err := e.backend.GetValue(e.arena(), id)
		if err != nil {
			return trace.Value{}, &smt.BackendError{Op: "get_value", Err: err}
		}
		return trace.BitVecValue(bits, sort.Width), nil
	}
}
