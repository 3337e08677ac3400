package btor2

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cnfjlhj/btormc/internal/ir"
)

type fillKind int

const (
	fillZero fillKind = iota
	fillOne
	fillOnes
)

func (p *parser) wrapArenaErr(err error) error {
	reason := ReasonSortMismatch
	if errors.Is(err, ir.ErrWidthMismatch) {
		reason = ReasonWidthMismatch
	}
	return errAt(p.line, reason, "%s", err)
}

// checkAndStore verifies the computed node's sort matches the sort the
// BTOR2 line declared for it, then records nid -> id.
func (p *parser) checkAndStore(nid int64, id ir.ExprID, declared ir.Sort) error {
	got := p.arena.Get(id).Sort
	if !got.Equal(declared) {
		return errAt(p.line, ReasonSortMismatch, "result sort %s does not match declared sort %s", got, declared)
	}
	p.exprs[nid] = id
	return nil
}

func (p *parser) parseSort(nid int64, rest []string) error {
	if len(rest) < 1 {
		return errAt(p.line, ReasonUnknownOp, "sort line missing kind")
	}
	switch rest[0] {
	case "bitvec":
		if len(rest) < 2 {
			return errAt(p.line, ReasonUnknownOp, "bitvec sort missing width")
		}
		w, err := strconv.ParseUint(rest[1], 10, 32)
		if err != nil || w == 0 {
			return errAt(p.line, ReasonWidthMismatch, "bad bitvec width %q", rest[1])
		}
		p.sorts[nid] = ir.BitVec(uint32(w))
	case "array":
		if len(rest) < 3 {
			return errAt(p.line, ReasonUnknownOp, "array sort missing index/element sorts")
		}
		idxSort, ok := p.resolveSort(rest[1])
		if !ok {
			return errAt(p.line, ReasonUndefinedRef, "undefined index sort %s", rest[1])
		}
		elemSort, ok := p.resolveSort(rest[2])
		if !ok {
			return errAt(p.line, ReasonUndefinedRef, "undefined element sort %s", rest[2])
		}
		p.sorts[nid] = ir.Array(idxSort, elemSort)
	default:
		return errAt(p.line, ReasonUnknownOp, "unknown sort kind %q", rest[0])
	}
	return nil
}

func (p *parser) parseInput(nid int64, rest []string) error {
	if len(rest) < 1 {
		return errAt(p.line, ReasonUnknownOp, "input missing sort")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	name := symbolOf(rest, 1)
	if name == "" {
		name = fmt.Sprintf("input%d", nid)
	}
	id := p.arena.Var(name, sort, ir.RoleInput)
	p.exprs[nid] = id
	p.model.Inputs = append(p.model.Inputs, ir.InputVar{Name: name, Sort: sort})
	return nil
}

func (p *parser) parseState(nid int64, rest []string) error {
	if len(rest) < 1 {
		return errAt(p.line, ReasonUnknownOp, "state missing sort")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	name := symbolOf(rest, 1)
	if name == "" {
		name = fmt.Sprintf("state%d", nid)
	}
	id := p.arena.Var(name, sort, ir.RoleState)
	p.exprs[nid] = id
	p.stateIdx[nid] = len(p.model.States)
	p.model.States = append(p.model.States, ir.StateVar{
		Name: name, Sort: sort, Init: ir.InvalidExprID, Next: ir.InvalidExprID,
	})
	return nil
}

func (p *parser) lookupState(tok string) (int, bool) {
	nid, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, false
	}
	idx, ok := p.stateIdx[nid]
	return idx, ok
}

func (p *parser) parseInit(nid int64, rest []string) error {
	if len(rest) < 3 {
		return errAt(p.line, ReasonUnknownOp, "init missing operands")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	idx, ok := p.lookupState(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "init references undefined state %s", rest[1])
	}
	val, ok := p.resolveExpr(rest[2])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "init references undefined value %s", rest[2])
	}
	st := &p.model.States[idx]
	if st.Init != ir.InvalidExprID {
		return errAt(p.line, ReasonDuplicateInit, "state %q already has an init line", st.Name)
	}
	valSort := p.arena.Get(val).Sort
	if !valSort.Equal(sort) || !valSort.Equal(st.Sort) {
		return errAt(p.line, ReasonSortMismatch, "init value sort %s does not match state sort %s", valSort, st.Sort)
	}
	st.Init = val
	return nil
}

func (p *parser) parseNext(nid int64, rest []string) error {
	if len(rest) < 3 {
		return errAt(p.line, ReasonUnknownOp, "next missing operands")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	idx, ok := p.lookupState(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "next references undefined state %s", rest[1])
	}
	val, ok := p.resolveExpr(rest[2])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "next references undefined value %s", rest[2])
	}
	st := &p.model.States[idx]
	if st.Next != ir.InvalidExprID {
		return errAt(p.line, ReasonDuplicateInit, "state %q already has a next line", st.Name)
	}
	valSort := p.arena.Get(val).Sort
	if !valSort.Equal(sort) || !valSort.Equal(st.Sort) {
		return errAt(p.line, ReasonSortMismatch, "next value sort %s does not match state sort %s", valSort, st.Sort)
	}
	st.Next = val
	return nil
}

func (p *parser) parseLiteral(nid int64, rest []string, base int) error {
	if len(rest) < 2 {
		return errAt(p.line, ReasonUnknownOp, "const op missing operands")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	if sort.Kind != ir.SortBitVec {
		return errAt(p.line, ReasonSortMismatch, "const requires a bitvec sort, got %s", sort)
	}

	lit := rest[1]
	var value uint64
	switch base {
	case 10:
		sv, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			uv, uerr := strconv.ParseUint(lit, 10, 64)
			if uerr != nil {
				return errAt(p.line, ReasonUnknownOp, "bad decimal literal %q", lit)
			}
			value = uv
		} else if sv < 0 {
			mask := ^uint64(0)
			if sort.Width < 64 {
				mask = (uint64(1) << sort.Width) - 1
			}
			value = uint64(sv) & mask
		} else {
			value = uint64(sv)
		}
	default:
		uv, err := strconv.ParseUint(lit, base, 64)
		if err != nil {
			return errAt(p.line, ReasonUnknownOp, "bad literal %q (base %d)", lit, base)
		}
		value = uv
	}

	if sort.Width < 64 && value > (uint64(1)<<sort.Width)-1 {
		return errAt(p.line, ReasonWidthMismatch, "literal %s does not fit in width %d", lit, sort.Width)
	}

	p.exprs[nid] = p.arena.ConstBV(value, sort.Width)
	return nil
}

func (p *parser) parseFill(nid int64, rest []string, kind fillKind) error {
	if len(rest) < 1 {
		return errAt(p.line, ReasonUnknownOp, "fill op missing sort")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	if sort.Kind != ir.SortBitVec {
		return errAt(p.line, ReasonSortMismatch, "fill op requires a bitvec sort, got %s", sort)
	}
	var v uint64
	switch kind {
	case fillOne:
		v = 1
	case fillOnes:
		v = ^uint64(0)
	}
	p.exprs[nid] = p.arena.ConstBV(v, sort.Width)
	return nil
}

func (p *parser) parseUnary(nid int64, op string, rest []string) error {
	if len(rest) < 2 {
		return errAt(p.line, ReasonUnknownOp, "%s missing operands", op)
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	x, ok := p.resolveExpr(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "%s references undefined nid %s", op, rest[1])
	}

	var (
		id  ir.ExprID
		err error
	)
	switch op {
	case "not":
		id, err = p.arena.BvNot(x)
	case "neg":
		id, err = p.arena.BvNeg(x)
	case "redand":
		id, err = p.arena.RedAnd(x)
	case "redor":
		id, err = p.arena.RedOr(x)
	case "redxor":
		id, err = p.arena.RedXor(x)
	case "inc":
		id, err = p.arena.Inc(x)
	case "dec":
		id, err = p.arena.Dec(x)
	}
	if err != nil {
		return p.wrapArenaErr(err)
	}
	return p.checkAndStore(nid, id, sort)
}

func (p *parser) parseBinary(nid int64, op string, rest []string) error {
	if len(rest) < 3 {
		return errAt(p.line, ReasonUnknownOp, "%s missing operands", op)
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	x, ok := p.resolveExpr(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "%s references undefined nid %s", op, rest[1])
	}
	y, ok := p.resolveExpr(rest[2])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "%s references undefined nid %s", op, rest[2])
	}

	var (
		id  ir.ExprID
		err error
	)
	switch op {
	case "and":
		id, err = p.arena.BvAnd(x, y)
	case "or":
		id, err = p.arena.BvOr(x, y)
	case "xor":
		id, err = p.arena.BvXor(x, y)
	case "nand":
		id, err = p.arena.BvAnd(x, y)
		if err == nil {
			id, err = p.arena.BvNot(id)
		}
	case "nor":
		id, err = p.arena.BvOr(x, y)
		if err == nil {
			id, err = p.arena.BvNot(id)
		}
	case "xnor":
		id, err = p.arena.BvXor(x, y)
		if err == nil {
			id, err = p.arena.BvNot(id)
		}
	case "implies":
		id, err = p.arena.Implies(x, y)
	case "iff":
		id, err = p.arena.Iff(x, y)
	case "add":
		id, err = p.arena.BvAdd(x, y)
	case "sub":
		id, err = p.arena.BvSub(x, y)
	case "mul":
		id, err = p.arena.BvMul(x, y)
	case "udiv":
		id, err = p.arena.BvUdiv(x, y)
	case "sdiv":
		id, err = p.arena.BvSdiv(x, y)
	case "urem":
		id, err = p.arena.BvUrem(x, y)
	case "srem":
		id, err = p.arena.BvSrem(x, y)
	case "smod":
		id, err = p.arena.BvSmod(x, y)
	case "sll":
		id, err = p.arena.BvShl(x, y)
	case "srl":
		id, err = p.arena.BvLshr(x, y)
	case "sra":
		id, err = p.arena.BvAshr(x, y)
	case "rol":
		id, err = p.arena.BvRol(x, y)
	case "ror":
		id, err = p.arena.BvRor(x, y)
	case "eq":
		id, err = p.arena.Eq(x, y)
	case "neq":
		id, err = p.arena.Neq(x, y)
	case "ult":
		id, err = p.arena.BvUlt(x, y)
	case "ulte":
		id, err = p.arena.BvUlte(x, y)
	case "ugt":
		id, err = p.arena.BvUgt(x, y)
	case "ugte":
		id, err = p.arena.BvUgte(x, y)
	case "slt":
		id, err = p.arena.BvSlt(x, y)
	case "slte":
		id, err = p.arena.BvSlte(x, y)
	case "sgt":
		id, err = p.arena.BvSgt(x, y)
	case "sgte":
		id, err = p.arena.BvSgte(x, y)
	case "concat":
		id, err = p.arena.BvConcat(x, y)
	}
	if err != nil {
		return p.wrapArenaErr(err)
	}
	return p.checkAndStore(nid, id, sort)
}

func (p *parser) parseSlice(nid int64, rest []string) error {
	if len(rest) < 4 {
		return errAt(p.line, ReasonUnknownOp, "slice missing operands")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	x, ok := p.resolveExpr(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "slice references undefined nid %s", rest[1])
	}
	hi, err1 := strconv.ParseUint(rest[2], 10, 32)
	lo, err2 := strconv.ParseUint(rest[3], 10, 32)
	if err1 != nil || err2 != nil {
		return errAt(p.line, ReasonUnknownOp, "bad slice bounds %s:%s", rest[2], rest[3])
	}
	id, err := p.arena.BvExtract(x, uint32(hi), uint32(lo))
	if err != nil {
		return p.wrapArenaErr(err)
	}
	return p.checkAndStore(nid, id, sort)
}

func (p *parser) parseExtend(nid int64, op string, rest []string) error {
	if len(rest) < 3 {
		return errAt(p.line, ReasonUnknownOp, "%s missing operands", op)
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	x, ok := p.resolveExpr(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "%s references undefined nid %s", op, rest[1])
	}
	n, err := strconv.ParseUint(rest[2], 10, 32)
	if err != nil {
		return errAt(p.line, ReasonUnknownOp, "bad extension width %q", rest[2])
	}
	var id ir.ExprID
	if op == "uext" {
		id, err = p.arena.BvZext(x, uint32(n))
	} else {
		id, err = p.arena.BvSext(x, uint32(n))
	}
	if err != nil {
		return p.wrapArenaErr(err)
	}
	return p.checkAndStore(nid, id, sort)
}

func (p *parser) parseIte(nid int64, rest []string) error {
	if len(rest) < 4 {
		return errAt(p.line, ReasonUnknownOp, "ite missing operands")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	cond, ok := p.resolveExpr(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "ite references undefined nid %s", rest[1])
	}
	then, ok := p.resolveExpr(rest[2])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "ite references undefined nid %s", rest[2])
	}
	els, ok := p.resolveExpr(rest[3])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "ite references undefined nid %s", rest[3])
	}
	id, err := p.arena.Ite(cond, then, els)
	if err != nil {
		return p.wrapArenaErr(err)
	}
	return p.checkAndStore(nid, id, sort)
}

func (p *parser) parseRead(nid int64, rest []string) error {
	if len(rest) < 3 {
		return errAt(p.line, ReasonUnknownOp, "read missing operands")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	arr, ok := p.resolveExpr(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "read references undefined nid %s", rest[1])
	}
	idx, ok := p.resolveExpr(rest[2])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "read references undefined nid %s", rest[2])
	}
	id, err := p.arena.ArrayRead(arr, idx)
	if err != nil {
		return p.wrapArenaErr(err)
	}
	return p.checkAndStore(nid, id, sort)
}

func (p *parser) parseWrite(nid int64, rest []string) error {
	if len(rest) < 4 {
		return errAt(p.line, ReasonUnknownOp, "write missing operands")
	}
	sort, ok := p.resolveSort(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "undefined sort %s", rest[0])
	}
	arr, ok := p.resolveExpr(rest[1])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "write references undefined nid %s", rest[1])
	}
	idx, ok := p.resolveExpr(rest[2])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "write references undefined nid %s", rest[2])
	}
	val, ok := p.resolveExpr(rest[3])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "write references undefined nid %s", rest[3])
	}
	id, err := p.arena.ArrayWrite(arr, idx, val)
	if err != nil {
		return p.wrapArenaErr(err)
	}
	return p.checkAndStore(nid, id, sort)
}

func (p *parser) parseSink(_ int64, op string, rest []string) error {
	if len(rest) < 1 {
		return errAt(p.line, ReasonUnknownOp, "%s missing operand", op)
	}
	arg, ok := p.resolveExpr(rest[0])
	if !ok {
		return errAt(p.line, ReasonUndefinedRef, "%s references undefined nid %s", op, rest[0])
	}
	name := symbolOf(rest, 1)
	var kind ir.SinkKind
	switch op {
	case "output":
		kind = ir.SinkOutput
	case "bad":
		kind = ir.SinkBad
	case "constraint":
		kind = ir.SinkConstraint
	}
	p.model.Sinks = append(p.model.Sinks, ir.Sink{Kind: kind, Name: name, Expr: arg})
	return nil
}
