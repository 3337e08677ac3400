package ir

import "testing"

func TestSubstituteReplacesLeaf(t *testing.T) {
	a := NewArena()
	sort := BitVec(4)
	x := a.Var("x", sort, RoleState)
	one := a.ConstBV(1, 4)
	sum, err := a.BvAdd(x, one)
	if err != nil {
		t.Fatalf("bvadd: %v", err)
	}

	y := a.Var("y", sort, RoleAux)
	got := a.Substitute(sum, map[ExprID]ExprID{x: y})

	want, err := a.BvAdd(y, one)
	if err != nil {
		t.Fatalf("bvadd: %v", err)
	}
	if got != want {
		t.Fatalf("substitute(x+1, x->y) = %d, want %d (structural sharing should intern to the same node)", got, want)
	}
}

func TestSubstituteLeavesUnrelatedSubtreeUnchanged(t *testing.T) {
	a := NewArena()
	sort := BitVec(4)
	x := a.Var("x", sort, RoleState)
	z := a.Var("z", sort, RoleState)
	sum, err := a.BvAdd(x, z)
	if err != nil {
		t.Fatalf("bvadd: %v", err)
	}

	y := a.Var("y", sort, RoleAux)
	got := a.Substitute(sum, map[ExprID]ExprID{x: y})
	e := a.Get(got)
	if e.Operands[0] != y {
		t.Fatalf("left operand not substituted: got %d, want %d", e.Operands[0], y)
	}
	if e.Operands[1] != z {
		t.Fatalf("right operand should be unchanged, got %d, want %d", e.Operands[1], z)
	}
}

func TestSubstituteNoopWhenNoMatch(t *testing.T) {
	a := NewArena()
	sort := BitVec(4)
	x := a.Var("x", sort, RoleState)
	one := a.ConstBV(1, 4)
	sum, err := a.BvAdd(x, one)
	if err != nil {
		t.Fatalf("bvadd: %v", err)
	}
	got := a.Substitute(sum, map[ExprID]ExprID{})
	if got != sum {
		t.Fatalf("substitute with empty map should return the same id, got %d want %d", got, sum)
	}
}
