package ginisat

import (
	"context"
	"fmt"
	"time"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/logic"
	"github.com/irifrance/gini/z"

	"github.com/cnfjlhj/btormc/internal/ir"
	"github.com/cnfjlhj/btormc/internal/smt"
)

// Backend bit-blasts ir.Expr formulas into a gini circuit and discharges
// them to a gini SAT solver. It is the one place in the module that
// names a concrete solver (spec.md §4.5: "The adapter is the only place
// that names a specific solver").
type Backend struct {
	c   *logic.C
	sat *gini.Gini
	mark []int8

	bitsCache      map[ir.ExprID]bits
	arrayCache     map[ir.ExprID]arrayVal
	baseConstReads map[baseConstKey]bits

	// scopeStack holds one activation literal per open Push. Assertions
	// made while a scope is open are guarded by "Implies(activation,
	// formula)" so Pop can simply stop assuming that activation literal
	// instead of retracting clauses the underlying solver cannot forget.
	scopeStack []z.Lit

	timeout time.Duration
}

var _ smt.Backend = (*Backend)(nil)

// New returns a Backend with a fresh circuit and solver.
func New() *Backend {
	return &Backend{
		c:              logic.NewC(),
		sat:            gini.New(),
		bitsCache:      make(map[ir.ExprID]bits),
		arrayCache:     make(map[ir.ExprID]arrayVal),
		baseConstReads: make(map[baseConstKey]bits),
	}
}

// SetTimeout bounds how long CheckSat will wait for the solver before
// surfacing Unknown (spec.md §4.3: "a backend-level timeout is configured
// once at start via the adapter and surfaces as Unknown").
func (b *Backend) SetTimeout(d time.Duration) { b.timeout = d }

func (b *Backend) DeclareConst(arena *ir.Arena, id ir.ExprID) error {
	e := arena.Get(id)
	if e.Op != ir.OpVar {
		return fmt.Errorf("%w: DeclareConst requires a Var node", smt.ErrUnsupportedOp)
	}
	if e.Sort.Kind == ir.SortArray {
		_, err := b.translateArray(arena, id)
		return err
	}
	_, err := b.translateScalar(arena, id)
	return err
}

func (b *Backend) Assert(arena *ir.Arena, id ir.ExprID) error {
	f, err := b.translateScalar(arena, id)
	if err != nil {
		return err
	}
	if len(f) != 1 {
		return fmt.Errorf("%w: Assert requires a bool/1-bit formula, got width %d", smt.ErrUnsupportedOp, len(f))
	}
	lit := f[0]
	if len(b.scopeStack) > 0 {
		lit = b.c.Implies(b.scopeStack[len(b.scopeStack)-1], lit)
	}
	b.addUnit(lit)
	return nil
}

func (b *Backend) addUnit(lit z.Lit) {
	b.mark, _ = b.c.CnfSince(b.sat, b.mark, lit)
	b.sat.Add(lit)
	b.sat.Add(0)
}

func (b *Backend) Push() error {
	b.scopeStack = append(b.scopeStack, b.c.Lit())
	return nil
}

func (b *Backend) Pop() error {
	if len(b.scopeStack) == 0 {
		return fmt.Errorf("ginisat: Pop with no matching Push")
	}
	b.scopeStack = b.scopeStack[:len(b.scopeStack)-1]
	return nil
}

func (b *Backend) CheckSat(ctx context.Context) (smt.Verdict, error) {
	if ctx.Err() != nil {
		return smt.Unknown, nil
	}
	b.sat.Assume(b.scopeStack...)

	resCh := make(chan int, 1)
	go func() { resCh <- b.sat.Solve() }()

	var timeoutCh <-chan time.Time
	if b.timeout > 0 {
		timeoutCh = time.After(b.timeout)
	}

	select {
	case res := <-resCh:
		switch {
		case res > 0:
			return smt.Sat, nil
		case res < 0:
			return smt.Unsat, nil
		default:
			return smt.Unknown, nil
		}
	case <-ctx.Done():
		return smt.Unknown, nil
	case <-timeoutCh:
		return smt.Unknown, nil
	}
}

func (b *Backend) GetValue(arena *ir.Arena, id ir.ExprID) (uint64, error) {
	f, err := b.translateScalar(arena, id)
	if err != nil {
		return 0, err
	}
	var val uint64
	for i, l := range f {
		if i >= 64 {
			break
		}
		if b.sat.Value(l) {
			val |= 1 << uint(i)
		}
	}
	return val, nil
}

func (b *Backend) Close() error { return nil }

func (b *Backend) translateScalar(arena *ir.Arena, id ir.ExprID) (bits, error) {
	if cached, ok := b.bitsCache[id]; ok {
		return cached, nil
	}
	e := arena.Get(id)
	width := e.Sort.BitWidth()

	operand := func(i int) (bits, error) { return b.translateScalar(arena, e.Operands[i]) }

	var result bits
	var err error

	switch e.Op {
	case ir.OpVar:
		result = freshBits(b.c, width)
	case ir.OpConstBV, ir.OpConstBool:
		result = constBits(b.c, uint64(e.Params[0]), width)

	case ir.OpNot:
		var x bits
		if x, err = operand(0); err == nil {
			result = notBits(x)
		}
	case ir.OpAnd:
		result, err = zip2(operand, andBits, b.c)
	case ir.OpOr:
		result, err = zip2(operand, orBits, b.c)
	case ir.OpXor:
		result, err = zip2(operand, xorBits, b.c)
	case ir.OpImplies:
		var x, y bits
		if x, err = operand(0); err == nil {
			if y, err = operand(1); err == nil {
				result = bits{b.c.Implies(x[0], y[0])}
			}
		}
	case ir.OpIff:
		var x, y bits
		if x, err = operand(0); err == nil {
			if y, err = operand(1); err == nil {
				result = bits{eqBits(b.c, x, y)}
			}
		}

	case ir.OpBvAdd:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { s, _ := rippleAdd(c, x, y); return s }, b.c)
	case ir.OpBvSub:
		result, err = zip2(operand, subBits, b.c)
	case ir.OpBvMul:
		result, err = zip2(operand, mulBits, b.c)
	case ir.OpBvUdiv:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { q, _ := udivmod(c, x, y); return q }, b.c)
	case ir.OpBvUrem:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { _, r := udivmod(c, x, y); return r }, b.c)
	case ir.OpBvSdiv:
		result, err = b.signedDivRem(operand, true)
	case ir.OpBvSrem:
		result, err = b.signedDivRem(operand, false)
	case ir.OpBvSmod:
		result, err = b.signedMod(operand)

	case ir.OpBvAnd:
		result, err = zip2(operand, andBits, b.c)
	case ir.OpBvOr:
		result, err = zip2(operand, orBits, b.c)
	case ir.OpBvXor:
		result, err = zip2(operand, xorBits, b.c)
	case ir.OpBvNot:
		var x bits
		if x, err = operand(0); err == nil {
			result = notBits(x)
		}
	case ir.OpBvNeg:
		var x bits
		if x, err = operand(0); err == nil {
			result = negBits(b.c, x)
		}
	case ir.OpInc:
		var x bits
		if x, err = operand(0); err == nil {
			result, _ = rippleAdd(b.c, x, constBits(b.c, 1, width))
		}
	case ir.OpDec:
		var x bits
		if x, err = operand(0); err == nil {
			result = subBits(b.c, x, constBits(b.c, 1, width))
		}

	case ir.OpBvShl:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { return shiftBarrel(c, x, y, 1, false) }, b.c)
	case ir.OpBvLshr:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { return shiftBarrel(c, x, y, -1, false) }, b.c)
	case ir.OpBvAshr:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { return shiftBarrel(c, x, y, -1, true) }, b.c)
	case ir.OpBvRol:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { return rotateBarrel(c, x, y, 1) }, b.c)
	case ir.OpBvRor:
		result, err = zip2(operand, func(c *logic.C, x, y bits) bits { return rotateBarrel(c, x, y, -1) }, b.c)

	case ir.OpBvUlt:
		result, err = cmp1(operand, ultBits, b.c)
	case ir.OpBvUlte:
		result, err = cmp1(operand, func(c *logic.C, x, y bits) z.Lit { return ultBits(c, y, x).Not() }, b.c)
	case ir.OpBvUgt:
		result, err = cmp1(operand, func(c *logic.C, x, y bits) z.Lit { return ultBits(c, y, x) }, b.c)
	case ir.OpBvUgte:
		result, err = cmp1(operand, func(c *logic.C, x, y bits) z.Lit { return ultBits(c, x, y).Not() }, b.c)
	case ir.OpBvSlt:
		result, err = cmp1(operand, sltBits, b.c)
	case ir.OpBvSlte:
		result, err = cmp1(operand, func(c *logic.C, x, y bits) z.Lit { return sltBits(c, y, x).Not() }, b.c)
	case ir.OpBvSgt:
		result, err = cmp1(operand, func(c *logic.C, x, y bits) z.Lit { return sltBits(c, y, x) }, b.c)
	case ir.OpBvSgte:
		result, err = cmp1(operand, func(c *logic.C, x, y bits) z.Lit { return sltBits(c, x, y).Not() }, b.c)

	case ir.OpBvConcat:
		var x, y bits
		if x, err = operand(0); err == nil {
			if y, err = operand(1); err == nil {
				result = append(append(bits{}, y...), x...)
			}
		}
	case ir.OpBvExtract:
		var x bits
		if x, err = operand(0); err == nil {
			hi, lo := e.Params[0], e.Params[1]
			result = append(bits{}, x[lo:hi+1]...)
		}
	case ir.OpBvZext:
		var x bits
		if x, err = operand(0); err == nil {
			result = zextBits(b.c, x, width)
		}
	case ir.OpBvSext:
		var x bits
		if x, err = operand(0); err == nil {
			result = sextBits(b.c, x, width)
		}

	case ir.OpEq:
		result, err = cmp1(operand, eqBits, b.c)
	case ir.OpNeq:
		result, err = cmp1(operand, func(c *logic.C, x, y bits) z.Lit { return eqBits(c, x, y).Not() }, b.c)

	case ir.OpIte:
		var cond, then, els bits
		if cond, err = operand(0); err == nil {
			if then, err = operand(1); err == nil {
				if els, err = operand(2); err == nil {
					result = muxBits(b.c, cond[0], then, els)
				}
			}
		}

	case ir.OpRedAnd:
		var x bits
		if x, err = operand(0); err == nil {
			result = bits{redAnd(b.c, x)}
		}
	case ir.OpRedOr:
		var x bits
		if x, err = operand(0); err == nil {
			result = bits{redOr(b.c, x)}
		}
	case ir.OpRedXor:
		var x bits
		if x, err = operand(0); err == nil {
			result = bits{redXor(b.c, x)}
		}

	case ir.OpArrayRead:
		var av arrayVal
		var idx bits
		if av, err = b.translateArray(arena, e.Operands[0]); err == nil {
			if idx, err = operand(1); err == nil {
				result = b.readArray(av, len(av.writes), idx, width)
			}
		}

	default:
		return nil, fmt.Errorf("%w: op %s", smt.ErrUnsupportedOp, e.Op)
	}

	if err != nil {
		return nil, err
	}
	b.bitsCache[id] = result
	return result, nil
}

func (b *Backend) signedDivRem(operand func(int) (bits, error), wantQuotient bool) (bits, error) {
	x, err := operand(0)
	if err != nil {
		return nil, err
	}
	y, err := operand(1)
	if err != nil {
		return nil, err
	}
	width := uint32(len(x))
	xNeg := x[width-1]
	yNeg := y[width-1]
	ax := muxBits(b.c, xNeg, negBits(b.c, x), x)
	ay := muxBits(b.c, yNeg, negBits(b.c, y), y)
	q, r := udivmod(b.c, ax, ay)
	if wantQuotient {
		qNeg := b.c.Xor(xNeg, yNeg)
		return muxBits(b.c, qNeg, negBits(b.c, q), q), nil
	}
	return muxBits(b.c, xNeg, negBits(b.c, r), r), nil
}

func (b *Backend) signedMod(operand func(int) (bits, error)) (bits, error) {
	x, err := operand(0)
	if err != nil {
		return nil, err
	}
	y, err := operand(1)
	if err != nil {
		return nil, err
	}
	width := uint32(len(x))
	xNeg := x[width-1]
	yNeg := y[width-1]
	ax := muxBits(b.c, xNeg, negBits(b.c, x), x)
	ay := muxBits(b.c, yNeg, negBits(b.c, y), y)
	_, r := udivmod(b.c, ax, ay)
	rIsZero := eqBits(b.c, r, constBits(b.c, 0, width))
	negR := negBits(b.c, r)
	// smod follows the sign of the divisor y (when the remainder is
	// nonzero), per the usual two's-complement modulo convention.
	negRPlusY, _ := rippleAdd(b.c, negR, y)
	rPlusY, _ := rippleAdd(b.c, r, y)
	whenXNeg := muxBits(b.c, yNeg, negR, negRPlusY)
	whenXPos := muxBits(b.c, yNeg, rPlusY, r)
	adjusted := muxBits(b.c, xNeg, whenXNeg, whenXPos)
	return muxBits(b.c, rIsZero, r, adjusted), nil
}

func (b *Backend) translateArray(arena *ir.Arena, id ir.ExprID) (arrayVal, error) {
	if cached, ok := b.arrayCache[id]; ok {
		return cached, nil
	}
	e := arena.Get(id)
	var av arrayVal
	switch e.Op {
	case ir.OpVar:
		av = arrayVal{baseID: id}
	case ir.OpArrayWrite:
		base, err := b.translateArray(arena, e.Operands[0])
		if err != nil {
			return arrayVal{}, err
		}
		idx, err := b.translateScalar(arena, e.Operands[1])
		if err != nil {
			return arrayVal{}, err
		}
		val, err := b.translateScalar(arena, e.Operands[2])
		if err != nil {
			return arrayVal{}, err
		}
		av = writeArray(base, idx, val)
	default:
		return arrayVal{}, fmt.Errorf("%w: op %s is not an array expression", smt.ErrUnsupportedOp, e.Op)
	}
	b.arrayCache[id] = av
	return av, nil
}

func zip2(operand func(int) (bits, error), f func(*logic.C, bits, bits) bits, c *logic.C) (bits, error) {
	x, err := operand(0)
	if err != nil {
		return nil, err
	}
	y, err := operand(1)
	if err != nil {
		return nil, err
	}
	return f(c, x, y), nil
}

func cmp1(operand func(int) (bits, error), f func(*logic.C, bits, bits) z.Lit, c *logic.C) (bits, error) {
	x, err := operand(0)
	if err != nil {
		return nil, err
	}
	y, err := operand(1)
	if err != nil {
		return nil, err
	}
	return bits{f(c, x, y)}, nil
}
