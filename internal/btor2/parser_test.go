package btor2

import (
	"strings"
	"testing"

	"github.com/cnfjlhj/btormc/internal/ir"
)

const counterBTOR2 = `
; 4-bit counter with low-active reset applied on the next step
1 sort bitvec 4
2 sort bitvec 1
3 input 2 rst_n
4 state 1 out
5 zero 1
6 init 1 4 5
7 one 1
8 add 1 4 7
9 ite 1 3 8 5
10 next 1 4 9
11 const 1 0010
12 eq 2 4 11
13 bad 12
`

func TestParseCounter(t *testing.T) {
	m, err := Parse(strings.NewReader(counterBTOR2))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.States) != 1 || m.States[0].Name != "out" {
		t.Fatalf("states = %+v, want one state named out", m.States)
	}
	out := m.States[0]
	if out.Init == ir.InvalidExprID {
		t.Errorf("out has no init expression")
	}
	if out.Next == ir.InvalidExprID {
		t.Errorf("out has no next expression")
	}
	if !out.Sort.Equal(ir.BitVec(4)) {
		t.Errorf("out sort = %s, want bv4", out.Sort)
	}
	if len(m.Inputs) != 1 || m.Inputs[0].Name != "rst_n" {
		t.Fatalf("inputs = %+v, want one input named rst_n", m.Inputs)
	}
	bads := m.BadExprs()
	if len(bads) != 1 {
		t.Fatalf("bad sinks = %d, want 1", len(bads))
	}
	if got := m.Arena.Get(bads[0]).Op; got != ir.OpEq {
		t.Errorf("bad sink expr op = %s, want eq", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		reason Reason
	}{
		{
			name:   "unknown op",
			src:    "1 frobnicate\n",
			reason: ReasonUnknownOp,
		},
		{
			name: "undefined ref",
			src: "1 sort bitvec 4\n" +
				"2 add 1 99 99\n",
			reason: ReasonUndefinedRef,
		},
		{
			name: "width mismatch",
			src: "1 sort bitvec 4\n" +
				"2 sort bitvec 8\n" +
				"3 input 1 a\n" +
				"4 input 2 b\n" +
				"5 add 1 3 4\n",
			reason: ReasonWidthMismatch,
		},
		{
			name: "duplicate init",
			src: "1 sort bitvec 4\n" +
				"2 state 1 s\n" +
				"3 zero 1\n" +
				"4 init 1 2 3\n" +
				"5 init 1 2 3\n",
			reason: ReasonDuplicateInit,
		},
		{
			name: "dangling state",
			src: "1 sort bitvec 4\n" +
				"2 state 1 s\n",
			reason: ReasonDanglingState,
		},
		{
			name: "sort mismatch on ite condition",
			src: "1 sort bitvec 4\n" +
				"2 input 1 c\n" +
				"3 input 1 t\n" +
				"4 input 1 e\n" +
				"5 ite 1 2 3 4\n",
			reason: ReasonSortMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			pe, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("error is %T, want *ParseError", err)
			}
			if pe.Reason != tt.reason {
				t.Errorf("reason = %s, want %s (%v)", pe.Reason, tt.reason, pe)
			}
		})
	}
}

func TestFairJusticeAreWarningsNotErrors(t *testing.T) {
	src := "1 sort bitvec 4\n" +
		"2 state 1 s\n" +
		"3 zero 1\n" +
		"4 init 1 2 3\n" +
		"5 next 1 2 2\n" +
		"6 fair 2\n"
	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", m.Warnings)
	}
}

func TestConstdNegativeTwosComplement(t *testing.T) {
	src := "1 sort bitvec 4\n" +
		"2 constd 1 -1\n"
	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Arena.Len() != 1 {
		t.Fatalf("arena has %d nodes, want 1", m.Arena.Len())
	}
	node := m.Arena.Get(0)
	if node.Op != ir.OpConstBV || node.Params[0] != 0xF {
		t.Errorf("constd -1 (width 4) = %+v, want ConstBV(15)", node)
	}
}
