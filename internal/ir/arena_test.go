package ir

import "testing"

func TestSortEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Sort
		want bool
	}{
		{"bool==bool", Bool(), Bool(), true},
		{"bv4==bv4", BitVec(4), BitVec(4), true},
		{"bv4!=bv8", BitVec(4), BitVec(8), false},
		{"bool!=bv1", Bool(), BitVec(1), false},
		{"array==array", Array(BitVec(4), BitVec(8)), Array(BitVec(4), BitVec(8)), true},
		{"array index differs", Array(BitVec(4), BitVec(8)), Array(BitVec(5), BitVec(8)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArenaContentAddressing(t *testing.T) {
	a := NewArena()
	x := a.Var("x", BitVec(4), RoleState)
	y := a.Var("y", BitVec(4), RoleState)

	s1, err := a.BvAdd(x, y)
	if err != nil {
		t.Fatalf("BvAdd: %v", err)
	}
	s2, err := a.BvAdd(x, y)
	if err != nil {
		t.Fatalf("BvAdd: %v", err)
	}
	if s1 != s2 {
		t.Errorf("structurally equal adds did not share a node: %d vs %d", s1, s2)
	}

	s3, err := a.BvAdd(y, x)
	if err != nil {
		t.Fatalf("BvAdd: %v", err)
	}
	if s3 == s1 {
		t.Errorf("operand-order-sensitive add incorrectly shared a node")
	}
}

func TestArenaSortChecking(t *testing.T) {
	a := NewArena()
	b4 := a.Var("b4", BitVec(4), RoleInput)
	b8 := a.Var("b8", BitVec(8), RoleInput)

	if _, err := a.BvAdd(b4, b8); err == nil {
		t.Errorf("expected width mismatch error, got nil")
	}

	cond := a.Var("cond", Bool(), RoleInput)
	ite, err := a.Ite(cond, b4, a.ConstBV(3, 4))
	if err != nil {
		t.Fatalf("Ite: %v", err)
	}
	if got := a.Get(ite).Sort; !got.Equal(BitVec(4)) {
		t.Errorf("Ite sort = %s, want bv4", got)
	}

	if _, err := a.Ite(b4, b4, b4); err == nil {
		t.Errorf("expected sort mismatch for non-bool condition")
	}
}

func TestArenaExtractAndExtend(t *testing.T) {
	a := NewArena()
	x := a.Var("x", BitVec(8), RoleState)

	sl, err := a.BvExtract(x, 3, 0)
	if err != nil {
		t.Fatalf("BvExtract: %v", err)
	}
	if w := a.Get(sl).Sort.Width; w != 4 {
		t.Errorf("slice width = %d, want 4", w)
	}

	if _, err := a.BvExtract(x, 8, 0); err == nil {
		t.Errorf("expected out-of-range slice error")
	}

	z, err := a.BvZext(sl, 4)
	if err != nil {
		t.Fatalf("BvZext: %v", err)
	}
	if w := a.Get(z).Sort.Width; w != 8 {
		t.Errorf("zext width = %d, want 8", w)
	}
}

func TestConstBVMasksToWidth(t *testing.T) {
	a := NewArena()
	c := a.ConstBV(0xFF, 4)
	got := a.Get(c).Params[0]
	if got != 0xF {
		t.Errorf("ConstBV did not mask to width: got %x, want 0xf", got)
	}
}

func TestArrayReadWrite(t *testing.T) {
	a := NewArena()
	arr := a.Var("mem", Array(BitVec(4), BitVec(8)), RoleState)
	idx := a.Var("idx", BitVec(4), RoleInput)
	val := a.Var("val", BitVec(8), RoleInput)

	w, err := a.ArrayWrite(arr, idx, val)
	if err != nil {
		t.Fatalf("ArrayWrite: %v", err)
	}
	if got := a.Get(w).Sort; !got.Equal(Array(BitVec(4), BitVec(8))) {
		t.Errorf("write sort = %s, want array[bv4]bv8", got)
	}

	r, err := a.ArrayRead(w, idx)
	if err != nil {
		t.Fatalf("ArrayRead: %v", err)
	}
	if got := a.Get(r).Sort; !got.Equal(BitVec(8)) {
		t.Errorf("read sort = %s, want bv8", got)
	}
}

func TestStimulusSegmentAt(t *testing.T) {
	s := &StimulusIR{
		Segments: []Segment{
			{Drives: map[string]uint64{"rst_n": 0}, Hold: 5},
			{Drives: map[string]uint64{"rst_n": 1}, Hold: 1},
		},
	}

	for k, wantSeg := range map[int]int{0: 0, 4: 0, 5: 1, 9: 1, 100: 1} {
		if idx, _ := s.SegmentAt(k); idx != wantSeg {
			t.Errorf("SegmentAt(%d) segment = %d, want %d", k, idx, wantSeg)
		}
	}
}

func TestClockValueAt(t *testing.T) {
	for k, want := range map[int]uint64{0: 0, 1: 1, 2: 0, 3: 1} {
		if got := ClockValueAt(1, k); got != want {
			t.Errorf("ClockValueAt(period=1, %d) = %d, want %d", k, got, want)
		}
	}
	for k, want := range map[int]uint64{0: 0, 1: 0, 2: 1, 3: 1, 4: 0} {
		if got := ClockValueAt(2, k); got != want {
			t.Errorf("ClockValueAt(period=2, %d) = %d, want %d", k, got, want)
		}
	}
}
