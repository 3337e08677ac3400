package ir

import "fmt"

// Arena owns every Expr node reachable from a ModelIR. Two structurally
// equal subexpressions intern to the same ExprID (spec.md §3: "Nodes are
// content-addressed... an arena+index design is recommended").
type Arena struct {
	nodes []Expr
	index map[string]ExprID
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{index: make(map[string]ExprID)}
}

// Get resolves a handle to its node. It panics on an out-of-range id,
// which indicates a bug in the caller (ids are only ever handed out by
// this arena).
func (a *Arena) Get(id ExprID) Expr {
	return a.nodes[id]
}

// Len reports how many distinct nodes the arena holds.
func (a *Arena) Len() int { return len(a.nodes) }

func canonicalKey(e Expr) string {
	s := fmt.Sprintf("%d|%s|%v|%v|%s|%d", e.Op, e.Sort, e.Operands, e.Params, e.Name, e.Role)
	return s
}

func (a *Arena) intern(e Expr) ExprID {
	// Var nodes are never shared across roles/names by construction (the
	// key includes Name+Role), so two Vars with the same name/sort/role
	// do intern to one node — that's intentional: the same state/input
	// variable referenced twice in a BTOR2 file must resolve to one leaf.
	key := canonicalKey(e)
	if id, ok := a.index[key]; ok {
		return id
	}
	id := ExprID(len(a.nodes))
	a.nodes = append(a.nodes, e)
	a.index[key] = id
	return id
}

// ConstBV interns a bit-vector literal. The caller is responsible for
// ensuring value fits in width; BTOR2 overflow checking happens in the
// btor2 package where the literal's textual form (binary/decimal/hex) is
// known.
func (a *Arena) ConstBV(value uint64, width uint32) ExprID {
	if width < 64 {
		value &= (uint64(1) << width) - 1
	}
	return a.intern(Expr{Op: OpConstBV, Sort: BitVec(width), Params: []int64{int64(value)}})
}

// ConstBool interns a boolean literal.
func (a *Arena) ConstBool(b bool) ExprID {
	v := int64(0)
	if b {
		v = 1
	}
	return a.intern(Expr{Op: OpConstBool, Sort: Bool(), Params: []int64{v}})
}

// Var interns a symbolic leaf. role and name together form the lookup
// key so state/input/aux namespaces never collide (spec.md §9).
func (a *Arena) Var(name string, sort Sort, role Role) ExprID {
	return a.intern(Expr{Op: OpVar, Sort: sort, Name: name, Role: role})
}

// Not constructs propositional negation. x must be Bool or 1-bit BitVec.
func (a *Arena) Not(x ExprID) (ExprID, error) {
	xs := a.Get(x).Sort
	if xs.Kind == SortBool {
		return a.intern(Expr{Op: OpNot, Sort: Bool(), Operands: []ExprID{x}}), nil
	}
	if xs.Kind == SortBitVec && xs.Width == 1 {
		return a.intern(Expr{Op: OpNot, Sort: BitVec(1), Operands: []ExprID{x}}), nil
	}
	return InvalidExprID, fmt.Errorf("%w: Not requires bool/1-bit operand, got %s", ErrSortMismatch, xs)
}

func (a *Arena) binaryProp(op Op, x, y ExprID) (ExprID, error) {
	xs, ys := a.Get(x).Sort, a.Get(y).Sort
	if !xs.Equal(ys) {
		return InvalidExprID, fmt.Errorf("%w: %s operands %s vs %s", ErrSortMismatch, op, xs, ys)
	}
	if xs.Kind == SortBool {
		return a.intern(Expr{Op: op, Sort: Bool(), Operands: []ExprID{x, y}}), nil
	}
	if xs.Kind == SortBitVec && xs.Width == 1 {
		return a.intern(Expr{Op: op, Sort: BitVec(1), Operands: []ExprID{x, y}}), nil
	}
	return InvalidExprID, fmt.Errorf("%w: %s requires bool/1-bit operands, got %s", ErrSortMismatch, op, xs)
}

func (a *Arena) And(x, y ExprID) (ExprID, error)     { return a.binaryProp(OpAnd, x, y) }
func (a *Arena) Or(x, y ExprID) (ExprID, error)      { return a.binaryProp(OpOr, x, y) }
func (a *Arena) Xor(x, y ExprID) (ExprID, error)     { return a.binaryProp(OpXor, x, y) }
func (a *Arena) Implies(x, y ExprID) (ExprID, error) { return a.binaryProp(OpImplies, x, y) }
func (a *Arena) Iff(x, y ExprID) (ExprID, error)     { return a.binaryProp(OpIff, x, y) }

func (a *Arena) binaryBV(op Op, x, y ExprID) (ExprID, error) {
	xs, ys := a.Get(x).Sort, a.Get(y).Sort
	if xs.Kind != SortBitVec || !xs.Equal(ys) {
		return InvalidExprID, fmt.Errorf("%w: %s operands %s vs %s", ErrWidthMismatch, op, xs, ys)
	}
	return a.intern(Expr{Op: op, Sort: xs, Operands: []ExprID{x, y}}), nil
}

func (a *Arena) BvAdd(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvAdd, x, y) }
func (a *Arena) BvSub(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvSub, x, y) }
func (a *Arena) BvMul(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvMul, x, y) }
func (a *Arena) BvUdiv(x, y ExprID) (ExprID, error) { return a.binaryBV(OpBvUdiv, x, y) }
func (a *Arena) BvSdiv(x, y ExprID) (ExprID, error) { return a.binaryBV(OpBvSdiv, x, y) }
func (a *Arena) BvUrem(x, y ExprID) (ExprID, error) { return a.binaryBV(OpBvUrem, x, y) }
func (a *Arena) BvSrem(x, y ExprID) (ExprID, error) { return a.binaryBV(OpBvSrem, x, y) }
func (a *Arena) BvSmod(x, y ExprID) (ExprID, error) { return a.binaryBV(OpBvSmod, x, y) }
func (a *Arena) BvAnd(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvAnd, x, y) }
func (a *Arena) BvOr(x, y ExprID) (ExprID, error)   { return a.binaryBV(OpBvOr, x, y) }
func (a *Arena) BvXor(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvXor, x, y) }
func (a *Arena) BvShl(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvShl, x, y) }
func (a *Arena) BvLshr(x, y ExprID) (ExprID, error) { return a.binaryBV(OpBvLshr, x, y) }
func (a *Arena) BvAshr(x, y ExprID) (ExprID, error) { return a.binaryBV(OpBvAshr, x, y) }
func (a *Arena) BvRol(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvRol, x, y) }
func (a *Arena) BvRor(x, y ExprID) (ExprID, error)  { return a.binaryBV(OpBvRor, x, y) }

func (a *Arena) unaryBV(op Op, x ExprID) (ExprID, error) {
	xs := a.Get(x).Sort
	if xs.Kind != SortBitVec {
		return InvalidExprID, fmt.Errorf("%w: %s requires bit-vector operand, got %s", ErrSortMismatch, op, xs)
	}
	return a.intern(Expr{Op: op, Sort: xs, Operands: []ExprID{x}}), nil
}

func (a *Arena) BvNot(x ExprID) (ExprID, error) { return a.unaryBV(OpBvNot, x) }
func (a *Arena) BvNeg(x ExprID) (ExprID, error) { return a.unaryBV(OpBvNeg, x) }
func (a *Arena) Inc(x ExprID) (ExprID, error)   { return a.unaryBV(OpInc, x) }
func (a *Arena) Dec(x ExprID) (ExprID, error)   { return a.unaryBV(OpDec, x) }

func (a *Arena) reduce(op Op, x ExprID) (ExprID, error) {
	xs := a.Get(x).Sort
	if xs.Kind != SortBitVec {
		return InvalidExprID, fmt.Errorf("%w: %s requires bit-vector operand, got %s", ErrSortMismatch, op, xs)
	}
	return a.intern(Expr{Op: op, Sort: BitVec(1), Operands: []ExprID{x}}), nil
}

func (a *Arena) RedAnd(x ExprID) (ExprID, error) { return a.reduce(OpRedAnd, x) }
func (a *Arena) RedOr(x ExprID) (ExprID, error)  { return a.reduce(OpRedOr, x) }
func (a *Arena) RedXor(x ExprID) (ExprID, error) { return a.reduce(OpRedXor, x) }

func (a *Arena) compare(op Op, x, y ExprID) (ExprID, error) {
	xs, ys := a.Get(x).Sort, a.Get(y).Sort
	if xs.Kind != SortBitVec || !xs.Equal(ys) {
		return InvalidExprID, fmt.Errorf("%w: %s operands %s vs %s", ErrWidthMismatch, op, xs, ys)
	}
	return a.intern(Expr{Op: op, Sort: BitVec(1), Operands: []ExprID{x, y}}), nil
}

func (a *Arena) BvUlt(x, y ExprID) (ExprID, error)  { return a.compare(OpBvUlt, x, y) }
func (a *Arena) BvUlte(x, y ExprID) (ExprID, error) { return a.compare(OpBvUlte, x, y) }
func (a *Arena) BvUgt(x, y ExprID) (ExprID, error)  { return a.compare(OpBvUgt, x, y) }
func (a *Arena) BvUgte(x, y ExprID) (ExprID, error) { return a.compare(OpBvUgte, x, y) }
func (a *Arena) BvSlt(x, y ExprID) (ExprID, error)  { return a.compare(OpBvSlt, x, y) }
func (a *Arena) BvSlte(x, y ExprID) (ExprID, error) { return a.compare(OpBvSlte, x, y) }
func (a *Arena) BvSgt(x, y ExprID) (ExprID, error)  { return a.compare(OpBvSgt, x, y) }
func (a *Arena) BvSgte(x, y ExprID) (ExprID, error) { return a.compare(OpBvSgte, x, y) }

// BvConcat produces a bit-vector whose width is the sum of the operand
// widths, high operand first (BTOR2 convention).
func (a *Arena) BvConcat(x, y ExprID) (ExprID, error) {
	xs, ys := a.Get(x).Sort, a.Get(y).Sort
	if xs.Kind != SortBitVec || ys.Kind != SortBitVec {
		return InvalidExprID, fmt.Errorf("%w: concat requires bit-vector operands", ErrSortMismatch)
	}
	return a.intern(Expr{Op: OpBvConcat, Sort: BitVec(xs.Width + ys.Width), Operands: []ExprID{x, y}}), nil
}

// BvExtract slices bits [hi:lo] inclusive, producing width hi-lo+1.
func (a *Arena) BvExtract(x ExprID, hi, lo uint32) (ExprID, error) {
	xs := a.Get(x).Sort
	if xs.Kind != SortBitVec {
		return InvalidExprID, fmt.Errorf("%w: slice requires bit-vector operand, got %s", ErrSortMismatch, xs)
	}
	if hi < lo || hi >= xs.Width {
		return InvalidExprID, fmt.Errorf("%w: slice [%d:%d] out of range for width %d", ErrWidthMismatch, hi, lo, xs.Width)
	}
	width := hi - lo + 1
	return a.intern(Expr{
		Op: OpBvExtract, Sort: BitVec(width),
		Operands: []ExprID{x}, Params: []int64{int64(hi), int64(lo)},
	}), nil
}

// BvZext zero-extends x by n bits.
func (a *Arena) BvZext(x ExprID, n uint32) (ExprID, error) {
	xs := a.Get(x).Sort
	if !xs.IsBitVecLike() {
		return InvalidExprID, fmt.Errorf("%w: uext requires bit-vector operand, got %s", ErrSortMismatch, xs)
	}
	return a.intern(Expr{Op: OpBvZext, Sort: BitVec(xs.BitWidth() + n), Operands: []ExprID{x}, Params: []int64{int64(n)}}), nil
}

// BvSext sign-extends x by n bits.
func (a *Arena) BvSext(x ExprID, n uint32) (ExprID, error) {
	xs := a.Get(x).Sort
	if !xs.IsBitVecLike() {
		return InvalidExprID, fmt.Errorf("%w: sext requires bit-vector operand, got %s", ErrSortMismatch, xs)
	}
	return a.intern(Expr{Op: OpBvSext, Sort: BitVec(xs.BitWidth() + n), Operands: []ExprID{x}, Params: []int64{int64(n)}}), nil
}

// Eq/Neq accept any pair of same-sort operands. Per BTOR2 convention
// (spec.md §3: "result Bool (or 1-bit)") the result is always a 1-bit
// bit-vector, which the binaryProp/Not family above also accepts as a
// truth value. binaryProp still requires both operands to share one
// representation: a Bool and a 1-bit operand together are rejected.
func (a *Arena) Eq(x, y ExprID) (ExprID, error)  { return a.eqNeq(OpEq, x, y) }
func (a *Arena) Neq(x, y ExprID) (ExprID, error) { return a.eqNeq(OpNeq, x, y) }

func (a *Arena) eqNeq(op Op, x, y ExprID) (ExprID, error) {
	xs, ys := a.Get(x).Sort, a.Get(y).Sort
	if !xs.Equal(ys) {
		return InvalidExprID, fmt.Errorf("%w: %s operands %s vs %s", ErrSortMismatch, op, xs, ys)
	}
	return a.intern(Expr{Op: op, Sort: BitVec(1), Operands: []ExprID{x, y}}), nil
}

// Ite requires a Bool/1-bit condition and same-sort branches.
func (a *Arena) Ite(cond, then, els ExprID) (ExprID, error) {
	cs := a.Get(cond).Sort
	if cs.Kind != SortBool && !(cs.Kind == SortBitVec && cs.Width == 1) {
		return InvalidExprID, fmt.Errorf("%w: ite condition must be bool/1-bit, got %s", ErrSortMismatch, cs)
	}
	ts, es := a.Get(then).Sort, a.Get(els).Sort
	if !ts.Equal(es) {
		return InvalidExprID, fmt.Errorf("%w: ite branches %s vs %s", ErrSortMismatch, ts, es)
	}
	return a.intern(Expr{Op: OpIte, Sort: ts, Operands: []ExprID{cond, then, els}}), nil
}

// ArrayRead reads the element at idx from arr.
func (a *Arena) ArrayRead(arr, idx ExprID) (ExprID, error) {
	as := a.Get(arr).Sort
	if as.Kind != SortArray {
		return InvalidExprID, fmt.Errorf("%w: read requires array operand, got %s", ErrSortMismatch, as)
	}
	is := a.Get(idx).Sort
	if !is.Equal(*as.Index) {
		return InvalidExprID, fmt.Errorf("%w: read index sort %s, want %s", ErrSortMismatch, is, as.Index)
	}
	return a.intern(Expr{Op: OpArrayRead, Sort: *as.Elem, Operands: []ExprID{arr, idx}}), nil
}

// ArrayWrite produces an updated array with idx mapped to val.
func (a *Arena) ArrayWrite(arr, idx, val ExprID) (ExprID, error) {
	as := a.Get(arr).Sort
	if as.Kind != SortArray {
		return InvalidExprID, fmt.Errorf("%w: write requires array operand, got %s", ErrSortMismatch, as)
	}
	is, vs := a.Get(idx).Sort, a.Get(val).Sort
	if !is.Equal(*as.Index) {
		return InvalidExprID, fmt.Errorf("%w: write index sort %s, want %s", ErrSortMismatch, is, as.Index)
	}
	if !vs.Equal(*as.Elem) {
		return InvalidExprID, fmt.Errorf("%w: write value sort %s, want %s", ErrSortMismatch, vs, as.Elem)
	}
	return a.intern(Expr{Op: OpArrayWrite, Sort: as, Operands: []ExprID{arr, idx, val}}), nil
}
