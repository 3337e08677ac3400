package ir

// Substitute rewrites id, replacing every leaf reachable from it that
// appears as a key in subst with its mapped value, and rebuilding every
// ancestor through the arena so sharing is preserved. This is the
// "substitution homomorphism mapping every state/input var to its
// step-k symbolic copy" spec.md §4.3 describes — used by internal/bmc to
// instantiate a BTOR2 expression (init/next/property) at a concrete
// unroll step.
func (a *Arena) Substitute(id ExprID, subst map[ExprID]ExprID) ExprID {
	return a.substRec(id, subst, make(map[ExprID]ExprID))
}

func (a *Arena) substRec(id ExprID, subst map[ExprID]ExprID, memo map[ExprID]ExprID) ExprID {
	if v, ok := memo[id]; ok {
		return v
	}
	if v, ok := subst[id]; ok {
		memo[id] = v
		return v
	}
	e := a.Get(id)
	if len(e.Operands) == 0 {
		memo[id] = id
		return id
	}
	newOperands := make([]ExprID, len(e.Operands))
	changed := false
	for i, op := range e.Operands {
		no := a.substRec(op, subst, memo)
		newOperands[i] = no
		if no != op {
			changed = true
		}
	}
	if !changed {
		memo[id] = id
		return id
	}
	result := a.intern(Expr{
		Op:       e.Op,
		Sort:     e.Sort,
		Operands: newOperands,
		Params:   e.Params,
		Name:     e.Name,
		Role:     e.Role,
	})
	memo[id] = result
	return result
}
