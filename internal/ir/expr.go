package ir

import (
	"errors"
	"fmt"
)

// Op identifies an Expr node's operation. The set is exhaustive with
// respect to spec.md's table of node kinds plus the BTOR2 ops that map
// onto them one-to-one (redand/redor/redxor/inc/dec, rol/ror, sgt/sgte
// which are the operand-swapped form of slt/slte).
type Op int

const (
	OpConstBV Op = iota
	OpConstBool
	OpVar

	OpNot
	OpAnd
	OpOr
	OpXor
	OpImplies
	OpIff

	OpBvAdd
	OpBvSub
	OpBvMul
	OpBvUdiv
	OpBvSdiv
	OpBvUrem
	OpBvSrem
	OpBvSmod

	OpBvAnd
	OpBvOr
	OpBvXor
	OpBvNot
	OpBvNeg

	OpBvShl
	OpBvLshr
	OpBvAshr
	OpBvRol
	OpBvRor

	OpBvUlt
	OpBvUlte
	OpBvUgt
	OpBvUgte
	OpBvSlt
	OpBvSlte
	OpBvSgt
	OpBvSgte

	OpBvConcat
	OpBvExtract
	OpBvZext
	OpBvSext

	OpEq
	OpNeq
	OpIte

	OpArrayRead
	OpArrayWrite

	OpRedAnd
	OpRedOr
	OpRedXor
	OpInc
	OpDec
)

var opNames = map[Op]string{
	OpConstBV: "const", OpConstBool: "constbool", OpVar: "var",
	OpNot: "not", OpAnd: "and", OpOr: "or", OpXor: "xor", OpImplies: "implies", OpIff: "iff",
	OpBvAdd: "add", OpBvSub: "sub", OpBvMul: "mul", OpBvUdiv: "udiv", OpBvSdiv: "sdiv",
	OpBvUrem: "urem", OpBvSrem: "srem", OpBvSmod: "smod",
	OpBvAnd: "bvand", OpBvOr: "bvor", OpBvXor: "bvxor", OpBvNot: "bvnot", OpBvNeg: "neg",
	OpBvShl: "sll", OpBvLshr: "srl", OpBvAshr: "sra", OpBvRol: "rol", OpBvRor: "ror",
	OpBvUlt: "ult", OpBvUlte: "ulte", OpBvUgt: "ugt", OpBvUgte: "ugte",
	OpBvSlt: "slt", OpBvSlte: "slte", OpBvSgt: "sgt", OpBvSgte: "sgte",
	OpBvConcat: "concat", OpBvExtract: "slice", OpBvZext: "uext", OpBvSext: "sext",
	OpEq: "eq", OpNeq: "neq", OpIte: "ite",
	OpArrayRead: "read", OpArrayWrite: "write",
	OpRedAnd: "redand", OpRedOr: "redor", OpRedXor: "redxor", OpInc: "inc", OpDec: "dec",
}

func (op Op) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Role tags a Var leaf's namespace so state, input, and aux variables can
// never collide even if they share a name (spec.md §9's redesign note:
// "ad-hoc string-keyed symbol maps become typed identifier tables keyed
// by a role-tagged enum").
type Role int

const (
	RoleState Role = iota
	RoleInput
	RoleAux
)

func (r Role) String() string {
	switch r {
	case RoleState:
		return "state"
	case RoleInput:
		return "input"
	case RoleAux:
		return "aux"
	default:
		return "?role"
	}
}

// ExprID is a handle into an Arena. InvalidExprID never denotes a real
// node.
type ExprID int32

const InvalidExprID ExprID = -1

// Expr is one node of a referentially transparent expression tree.
// Operands are handles into the owning Arena, not pointers, so that
// structurally equal subtrees can share a single node (content
// addressing, see Arena).
type Expr struct {
	Op       Op
	Sort     Sort
	Operands []ExprID

	// Params carries node-specific integer parameters: the literal value
	// for ConstBV/ConstBool, (hi, lo) for BvExtract, n for BvZext/BvSext.
	Params []int64

	// Name and Role are meaningful only for OpVar.
	Name string
	Role Role
}

var (
	ErrSortMismatch  = errors.New("ir: sort mismatch")
	ErrWidthMismatch = errors.New("ir: width mismatch")
	ErrBadArity      = errors.New("ir: wrong operand count")
)

// String renders a shallow, debug-oriented description of the node
// (operand ids, not recursively resolved values) — the same spirit as
// the teacher's termToString helper, minus Prolog term quirks.
func (e Expr) String() string {
	switch e.Op {
	case OpVar:
		return fmt.Sprintf("%s:%s<%s>", e.Name, e.Role, e.Sort)
	case OpConstBV, OpConstBool:
		return fmt.Sprintf("%s(%d):%s", e.Op, e.Params[0], e.Sort)
	case OpBvExtract:
		return fmt.Sprintf("slice(%d,%d)[%d]:%s", e.Params[0], e.Params[1], e.Operands[0], e.Sort)
	default:
		return fmt.Sprintf("%s%v:%s", e.Op, e.Operands, e.Sort)
	}
}
