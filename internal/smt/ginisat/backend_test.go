package ginisat

import (
	"context"
	"testing"

	"github.com/cnfjlhj/btormc/internal/ir"
)

func TestAddAndCompare(t *testing.T) {
	arena := ir.NewArena()
	b := New()
	defer b.Close()

	x := arena.Var("x", ir.BitVec(4), ir.RoleAux)
	y := arena.Var("y", ir.BitVec(4), ir.RoleAux)
	if err := b.DeclareConst(arena, x); err != nil {
		t.Fatalf("declare x: %v", err)
	}
	if err := b.DeclareConst(arena, y); err != nil {
		t.Fatalf("declare y: %v", err)
	}

	three := arena.ConstBV(3, 4)
	five := arena.ConstBV(5, 4)

	eqX, err := arena.Eq(x, three)
	if err != nil {
		t.Fatalf("eq x: %v", err)
	}
	eqY, err := arena.Eq(y, five)
	if err != nil {
		t.Fatalf("eq y: %v", err)
	}
	if err := b.Assert(arena, eqX); err != nil {
		t.Fatalf("assert eqX: %v", err)
	}
	if err := b.Assert(arena, eqY); err != nil {
		t.Fatalf("assert eqY: %v", err)
	}

	sum, err := arena.BvAdd(x, y)
	if err != nil {
		t.Fatalf("bvadd: %v", err)
	}
	eight := arena.ConstBV(8, 4)
	sumIsEight, err := arena.Eq(sum, eight)
	if err != nil {
		t.Fatalf("eq sum: %v", err)
	}
	if err := b.Assert(arena, sumIsEight); err != nil {
		t.Fatalf("assert sumIsEight: %v", err)
	}

	verdict, err := b.CheckSat(context.Background())
	if err != nil {
		t.Fatalf("check-sat: %v", err)
	}
	if verdict.String() != "sat" {
		t.Fatalf("want sat, got %s", verdict)
	}

	val, err := b.GetValue(arena, x)
	if err != nil {
		t.Fatalf("get-value: %v", err)
	}
	if val != 3 {
		t.Fatalf("x = %d, want 3", val)
	}
}

func TestPushPopIsolatesAssertions(t *testing.T) {
	arena := ir.NewArena()
	b := New()
	defer b.Close()

	x := arena.Var("x", ir.BitVec(4), ir.RoleAux)
	b.DeclareConst(arena, x)

	three := arena.ConstBV(3, 4)
	four := arena.ConstBV(4, 4)
	eqThree, _ := arena.Eq(x, three)
	eqFour, _ := arena.Eq(x, four)

	if err := b.Assert(arena, eqThree); err != nil {
		t.Fatalf("assert: %v", err)
	}

	if err := b.Push(); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := b.Assert(arena, eqFour); err != nil {
		t.Fatalf("assert: %v", err)
	}
	v, err := b.CheckSat(context.Background())
	if err != nil {
		t.Fatalf("check-sat: %v", err)
	}
	if v.String() != "unsat" {
		t.Fatalf("x==3 and x==4 together should be unsat, got %s", v)
	}
	if err := b.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}

	v, err = b.CheckSat(context.Background())
	if err != nil {
		t.Fatalf("check-sat after pop: %v", err)
	}
	if v.String() != "sat" {
		t.Fatalf("x==3 alone should be sat again after pop, got %s", v)
	}
}

func TestArrayReadAfterWrite(t *testing.T) {
	arena := ir.NewArena()
	b := New()
	defer b.Close()

	arrSort := ir.Array(ir.BitVec(4), ir.BitVec(8))
	arr := arena.Var("mem", arrSort, ir.RoleAux)
	idx := arena.ConstBV(2, 4)
	val := arena.ConstBV(0xAB, 8)

	written, err := arena.ArrayWrite(arr, idx, val)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	read, err := arena.ArrayRead(written, idx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	readVar := arena.Var("readout", ir.BitVec(8), ir.RoleAux)
	b.DeclareConst(arena, readVar)
	eqRead, err := arena.Eq(readVar, read)
	if err != nil {
		t.Fatalf("eq: %v", err)
	}
	if err := b.Assert(arena, eqRead); err != nil {
		t.Fatalf("assert: %v", err)
	}

	v, err := b.CheckSat(context.Background())
	if err != nil {
		t.Fatalf("check-sat: %v", err)
	}
	if v.String() != "sat" {
		t.Fatalf("want sat, got %s", v)
	}
	got, err := b.GetValue(arena, readVar)
	if err != nil {
		t.Fatalf("get-value: %v", err)
	}
	if got != 0xAB {
		t.Fatalf("read-after-write = %#x, want 0xab", got)
	}
}

func TestUnsignedCompare(t *testing.T) {
	arena := ir.NewArena()
	b := New()
	defer b.Close()

	x := arena.Var("x", ir.BitVec(4), ir.RoleAux)
	b.DeclareConst(arena, x)

	two := arena.ConstBV(2, 4)
	ten := arena.ConstBV(10, 4)
	eqTwo, _ := arena.Eq(x, two)
	b.Assert(arena, eqTwo)

	lt, err := arena.BvUlt(x, ten)
	if err != nil {
		t.Fatalf("ult: %v", err)
	}
	if err := b.Assert(arena, lt); err != nil {
		t.Fatalf("assert: %v", err)
	}

	v, err := b.CheckSat(context.Background())
	if err != nil {
		t.Fatalf("check-sat: %v", err)
	}
	if v.String() != "sat" {
		t.Fatalf("2 < 10 should be sat, got %s", v)
	}
}

func TestCheckSatReturnsUnknownWhenCancelled(t *testing.T) {
	arena := ir.NewArena()
	b := New()
	defer b.Close()

	x := arena.Var("x", ir.BitVec(4), ir.RoleAux)
	b.DeclareConst(arena, x)
	two := arena.ConstBV(2, 4)
	eqTwo, _ := arena.Eq(x, two)
	if err := b.Assert(arena, eqTwo); err != nil {
		t.Fatalf("assert: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := b.CheckSat(ctx)
	if err != nil {
		t.Fatalf("check-sat: %v", err)
	}
	if v.String() != "unknown" {
		t.Fatalf("cancelled check-sat should report unknown, got %s", v)
	}
}
