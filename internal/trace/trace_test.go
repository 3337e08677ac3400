package trace

import "testing"

func TestBitVecValueString(t *testing.T) {
	v := BitVecValue(5, 4)
	if got, want := v.String(), "5_4"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBoolValueString(t *testing.T) {
	if got, want := BoolValue(true).String(), "true"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := BoolValue(false).String(), "false"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestArrayValueString(t *testing.T) {
	v := ArrayValue([]ArrayEntry{{Index: 2, Value: 9}, {Index: 0, Value: 1}}, 0)
	if got, want := v.String(), "{0: 1, 2: 9, default: 0}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderFormat(t *testing.T) {
	tr := &Trace{
		PropertyExpr: "out == 2",
		Step:         1,
		Steps: []Step{
			{Signals: []NamedValue{{Name: "clk", Value: BitVecValue(0, 1)}, {Name: "out", Value: BitVecValue(0, 4)}}},
			{Signals: []NamedValue{{Name: "clk", Value: BitVecValue(1, 1)}, {Name: "out", Value: BitVecValue(2, 4)}}},
		},
	}
	want := "!!! Property 'out == 2' holds at step 1 !!!\n" +
		"--- step 0 ---\n" +
		"  clk: 0_1\n" +
		"  out: 0_4\n" +
		"--- step 1 ---\n" +
		"  clk: 1_1\n" +
		"  out: 2_4\n"
	if got := tr.Render(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
