package stimulus

import (
	"strings"
	"testing"
)

const counterScript = `
[CLOCK]
clk = 1

[PROPERTY]
out == 2

[PROCESS]
initval = 0
rst_n = 0
#5
rst_n = 1
`

func TestParseCounterScript(t *testing.T) {
	s, err := Parse(strings.NewReader(counterScript))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := s.Clock["clk"]; got != 1 {
		t.Errorf("clk period = %d, want 1", got)
	}
	if s.Property.IsTrue {
		t.Fatalf("property should not be the literal true")
	}
	if s.Property.Signal != "out" || s.Property.Literal != 2 {
		t.Errorf("property = %+v, want out == 2", s.Property)
	}
	if len(s.Segments) != 2 {
		t.Fatalf("segments = %+v, want 2", s.Segments)
	}
	seg0 := s.Segments[0]
	if seg0.Hold != 5 || seg0.Drives["rst_n"] != 0 || seg0.Drives["initval"] != 0 {
		t.Errorf("segment 0 = %+v, want hold=5, rst_n=0, initval=0", seg0)
	}
	seg1 := s.Segments[1]
	if seg1.Hold != 1 || seg1.Drives["rst_n"] != 1 {
		t.Errorf("segment 1 = %+v, want hold=1, rst_n=1", seg1)
	}

	if idx, step := s.SegmentAt(0); idx != 0 || step != 0 {
		t.Errorf("SegmentAt(0) = (%d,%d), want (0,0)", idx, step)
	}
	if idx, step := s.SegmentAt(4); idx != 0 || step != 4 {
		t.Errorf("SegmentAt(4) = (%d,%d), want (0,4)", idx, step)
	}
	if idx, _ := s.SegmentAt(5); idx != 1 {
		t.Errorf("SegmentAt(5) segment = %d, want 1", idx)
	}
	if idx, _ := s.SegmentAt(100); idx != 1 {
		t.Errorf("SegmentAt(100) segment = %d, want 1 (tail persists)", idx)
	}
}

func TestParseTrueProperty(t *testing.T) {
	s, err := Parse(strings.NewReader("[PROPERTY]\ntrue\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !s.Property.IsTrue {
		t.Errorf("property IsTrue = false, want true")
	}
}

func TestParseSignedMarker(t *testing.T) {
	s, err := Parse(strings.NewReader("[PROCESS]\nsigned out\nout = 3\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !s.Signed["out"] {
		t.Errorf("Signed[out] = false, want true")
	}
}

func TestParseHexAndBinLiterals(t *testing.T) {
	s, err := Parse(strings.NewReader("[PROCESS]\nload = 0b0111\naddr = 0xFF\n#1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := s.Segments[0].Drives["load"]; got != 7 {
		t.Errorf("load = %d, want 7", got)
	}
	if got := s.Segments[0].Drives["addr"]; got != 0xFF {
		t.Errorf("addr = %d, want 255", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		reason Reason
	}{
		{
			name:   "unknown section",
			src:    "[BOGUS]\n",
			reason: ReasonUnknownSection,
		},
		{
			name:   "bad clock period zero",
			src:    "[CLOCK]\nclk = 0\n",
			reason: ReasonBadClockPeriod,
		},
		{
			name:   "duplicate property line",
			src:    "[PROPERTY]\ntrue\nout == 1\n",
			reason: ReasonDuplicatePropertyLine,
		},
		{
			name:   "content outside section",
			src:    "out = 1\n",
			reason: ReasonUnknownSection,
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
