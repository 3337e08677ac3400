package bmc

import "github.com/cnfjlhj/btormc/internal/ir"

// resolveAssignableAt resolves a driveable signal name (state or input
// only — an output expression cannot be driven) to its frame-k symbolic
// copy.
func (e *Engine) resolveAssignableAt(name string, k int) (ir.ExprID, error) {
	if idx := e.model.StateByName(name); idx >= 0 {
		return e.stateFrameVar(e.model.States[idx], k), nil
	}
	if idx := e.model.InputByName(name); idx >= 0 {
		return e.inputFrameVar(e.model.Inputs[idx], k), nil
	}
	return ir.InvalidExprID, &BindingError{Signal: name}
}

// resolveSignalAt implements spec.md §4.3 step 4's three-tier resolution
// order for a property signal reference: state variable, input variable,
// then the BTOR2 output expression of that name, substituted at step k.
func (e *Engine) resolveSignalAt(name string, k int) (ir.ExprID, error) {
	if idx := e.model.StateByName(name); idx >= 0 {
		return e.stateFrameVar(e.model.States[idx], k), nil
	}
	if idx := e.model.InputByName(name); idx >= 0 {
		return e.inputFrameVar(e.model.Inputs[idx], k), nil
	}
	if exprID, ok := e.model.OutputByName(name); ok {
		return e.arena().Substitute(exprID, e.substMapAt(k)), nil
	}
	return ir.InvalidExprID, &BindingError{Signal: name}
}

// buildCompare constructs the Expr for one stimulus script comparison,
// per spec.md §4.3's tie-break: unsigned unless signed is set.
func buildCompare(a *ir.Arena, op ir.CompareOp, signed bool, x, y ir.ExprID) (ir.ExprID, error) {
	switch op {
	case ir.CmpEQ:
		return a.Eq(x, y)
	case ir.CmpNE:
		return a.Neq(x, y)
	case ir.CmpLT:
		if signed {
			return a.BvSlt(x, y)
		}
		return a.BvUlt(x, y)
	case ir.CmpLE:
		if signed {
			return a.BvSlte(x, y)
		}
		return a.BvUlte(x, y)
	case ir.CmpGT:
		if signed {
			return a.BvSgt(x, y)
		}
		return a.BvUgt(x, y)
	case ir.CmpGE:
		if signed {
			return a.BvSgte(x, y)
		}
		return a.BvUgte(x, y)
	default:
		return a.Eq(x, y)
	}
}

// ResolveProperty builds P_k, the property expression at step k (spec.md
// §4.3 step 4), honoring the Open Question decision that a script
// [PROPERTY] supersedes any `bad` sinks, falling back to Or(bad...) and
// finally to literal false when neither is present (spec.md §4.1).
func (e *Engine) ResolveProperty(k int) (ir.ExprID, error) {
	if e.stim.Property.IsZero() {
		return e.propertyFromBadSinks(k)
	}
	if e.stim.Property.IsTrue {
		return e.arena().ConstBool(true), nil
	}
	prop := e.stim.Property
	sigID, err := e.resolveSignalAt(prop.Signal, k)
	if err != nil {
		return ir.InvalidExprID, err
	}
	sort := e.arena().Get(sigID).Sort
	var litID ir.ExprID
	if sort.Kind == ir.SortBool {
		litID = e.arena().ConstBool(prop.Literal != 0)
	} else {
		litID = e.arena().ConstBV(prop.Literal, sort.BitWidth())
	}
	signed := e.stim.Signed[prop.Signal]
	return buildCompare(e.arena(), prop.Op, signed, sigID, litID)
}

func (e *Engine) propertyFromBadSinks(k int) (ir.ExprID, error) {
	bads := e.model.BadExprs()
	if len(bads) == 0 {
		return e.arena().ConstBool(false), nil
	}
	subst := e.substMapAt(k)
	acc := e.arena().Substitute(bads[0], subst)
	for _, b := range bads[1:] {
		bk := e.arena().Substitute(b, subst)
		var err error
		acc, err = e.arena().Or(acc, bk)
		if err != nil {
			return ir.InvalidExprID, err
		}
	}
	return acc, nil
}
