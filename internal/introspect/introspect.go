// Package introspect provides the -ctl-query diagnostic: it loads an
// already-computed, bounded counter-example trace as Prolog facts and
// evaluates a CTL-style formula over it using the teacher's own CTL
// predicate library (ported verbatim from pkg/prolog/engine.go's
// loadCore). Because the graph is one finite path already produced by
// BMC rather than a symbolic fixpoint computation, this never performs
// unbounded verification — it is a read-only query tool over one trace.
package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/ichiban/prolog"

	"github.com/cnfjlhj/btormc/internal/trace"
)

// ctlCore is the CTL fragment of the teacher's loadCore Prolog source,
// kept essentially as-is: it is itself the reusable artifact (a small
// CTL interpreter written in Prolog). The state-machine authoring
// predicates (state/2, transition_guard/4, ...) and every
// visualization-only predicate the teacher defined alongside it
// (sequence diagrams, pie/line charts, CSP channels) are not carried
// over — nothing in this repo consumes them.
const ctlCore = `
ctl_ex(State, Phi) :-
    transition(State, _, Next),
    ctl_sat(Next, Phi).

ctl_ax(State, Phi) :-
    findall(Next, transition(State, _, Next), Nexts),
    Nexts \= [],
    forall(member(N, Nexts), ctl_sat(N, Phi)).

ctl_ef(State, Phi) :-
    ctl_ef(State, Phi, []).
ctl_ef(State, Phi, _Visited) :-
    ctl_sat(State, Phi).
ctl_ef(State, Phi, Visited) :-
    \+ member(State, Visited),
    transition(State, _, Next),
    ctl_ef(Next, Phi, [State|Visited]).

ctl_af(State, Phi) :-
    ctl_af(State, Phi, []).
ctl_af(State, Phi, _Visited) :-
    ctl_sat(State, Phi).
ctl_af(State, Phi, Visited) :-
    \+ member(State, Visited),
    findall(Next, transition(State, _, Next), Nexts),
    Nexts \= [],
    forall(member(N, Nexts), ctl_af(N, Phi, [State|Visited])).

ctl_eg(State, Phi) :-
    ctl_eg(State, Phi, []).
ctl_eg(State, Phi, Visited) :-
    ctl_sat(State, Phi),
    (member(State, Visited) -> true ;
     (transition(State, _, Next),
      ctl_eg(Next, Phi, [State|Visited]))).

ctl_ag(State, Phi) :-
    ctl_ag(State, Phi, []).
ctl_ag(State, Phi, Visited) :-
    ctl_sat(State, Phi),
    (member(State, Visited) -> true ;
     (findall(Next, transition(State, _, Next), Nexts),
      forall(member(N, Nexts), ctl_ag(N, Phi, [State|Visited])))).

ctl_eu(State, _Phi, Psi, _Visited) :-
    ctl_sat(State, Psi).
ctl_eu(State, Phi, Psi, Visited) :-
    \+ member(State, Visited),
    ctl_sat(State, Phi),
    transition(State, _, Next),
    ctl_eu(Next, Phi, Psi, [State|Visited]).

ctl_au(State, _Phi, Psi, _Visited) :-
    ctl_sat(State, Psi).
ctl_au(State, Phi, Psi, Visited) :-
    \+ member(State, Visited),
    ctl_sat(State, Phi),
    findall(Next, transition(State, _, Next), Nexts),
    Nexts \= [],
    forall(member(N, Nexts), ctl_au(N, Phi, Psi, [State|Visited])).

ctl_sat(State, atom(P)) :- prop(State, P).
ctl_sat(State, not(Phi)) :- \+ ctl_sat(State, Phi).
ctl_sat(State, and(Phi, Psi)) :- ctl_sat(State, Phi), ctl_sat(State, Psi).
ctl_sat(State, or(Phi, Psi)) :- (ctl_sat(State, Phi) ; ctl_sat(State, Psi)).
ctl_sat(State, ex(Phi)) :- ctl_ex(State, Phi).
ctl_sat(State, ax(Phi)) :- ctl_ax(State, Phi).
ctl_sat(State, ef(Phi)) :- ctl_ef(State, Phi).
ctl_sat(State, af(Phi)) :- ctl_af(State, Phi).
ctl_sat(State, eg(Phi)) :- ctl_eg(State, Phi).
ctl_sat(State, ag(Phi)) :- ctl_ag(State, Phi).
ctl_sat(State, eu(Phi, Psi)) :- ctl_eu(State, Phi, Psi, []).
ctl_sat(State, au(Phi, Psi)) :- ctl_au(State, Phi, Psi, []).

check_ctl(Phi) :-
    initial(S),
    ctl_sat(S, Phi).
`

// Engine evaluates CTL formulas against one loaded trace. Unlike the
// teacher's Engine, which exposed the interpreter for general spec
// authoring, this one only ever ingests the fixed transition/prop shape
// LoadTrace produces.
type Engine struct {
	interpreter *prolog.Interpreter
}

// New returns an Engine with the CTL predicate library loaded.
func New() (*Engine, error) {
	interp := prolog.New(nil, nil)
	if err := interp.Exec(ctlCore); err != nil {
		return nil, fmt.Errorf("introspect: loading CTL core: %w", err)
	}
	return &Engine{interpreter: interp}, nil
}

// LoadTrace asserts tr as a linear Kripke structure: one state per step,
// a transition between consecutive steps, and one prop/2 fact per
// boolean-valued signal that holds at that step.
func (e *Engine) LoadTrace(tr *trace.Trace) error {
	var sb strings.Builder
	n := len(tr.Steps)
	for k := 0; k < n; k++ {
		name := stepAtom(k)
		fmt.Fprintf(&sb, "state(%s).\n", name)
		if k == 0 {
			fmt.Fprintf(&sb, "initial(%s).\n", name)
		}
		if k+1 < n {
			fmt.Fprintf(&sb, "transition(%s, step, %s).\n", name, stepAtom(k+1))
		}
		for _, nv := range tr.Steps[k].Signals {
			if nv.Value.Kind != trace.KindBool || nv.Value.Bits == 0 {
				continue
			}
			fmt.Fprintf(&sb, "prop(%s, %s).\n", name, quoteAtom(nv.Name))
		}
	}
	if err := e.interpreter.Exec(sb.String()); err != nil {
		return fmt.Errorf("introspect: loading trace facts: %w", err)
	}
	return nil
}

// Query evaluates a CTL formula (e.g. "ag(atom(rst_n))") against the
// loaded trace's initial state and reports whether it holds.
func (e *Engine) Query(ctx context.Context, formula string) (bool, error) {
	sols, err := e.interpreter.QueryContext(ctx, fmt.Sprintf("check_ctl(%s).", formula))
	if err != nil {
		return false, fmt.Errorf("introspect: query: %w", err)
	}
	defer sols.Close()
	ok := sols.Next()
	if err := sols.Err(); err != nil {
		return false, fmt.Errorf("introspect: query: %w", err)
	}
	return ok, nil
}

func stepAtom(k int) string { return fmt.Sprintf("step%d", k) }

// quoteAtom renders name as a single-quoted Prolog atom so signal names
// containing characters Prolog's bare-atom lexer rejects (uppercase
// leads, underscores in odd positions) are always well-formed.
func quoteAtom(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "\\'") + "'"
}
