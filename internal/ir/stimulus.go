package ir

import "fmt"

// CompareOp is the stimulus script's property comparison operator set
// (spec.md §3/§4.2).
type CompareOp int

const (
	CmpEQ CompareOp = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

func (op CompareOp) String() string {
	switch op {
	case CmpEQ:
		return "=="
	case CmpNE:
		return "!="
	case CmpLT:
		return "<"
	case CmpLE:
		return "<="
	case CmpGT:
		return ">"
	case CmpGE:
		return ">="
	default:
		return "?cmp"
	}
}

// PropExpr is the stimulus script's property: either the literal `true`,
// or a single `signal op literal` comparison (spec.md §3).
type PropExpr struct {
	IsTrue  bool
	Signal  string
	Op      CompareOp
	Literal uint64
}

// IsZero reports whether this PropExpr is the StimulusIR zero value (no
// [PROPERTY] section was present in the script), used by
// internal/bmc.ResolveProperty to decide whether to fall back to the
// BTOR2 model's `bad` sinks (spec.md §9 Open Question: script property
// supersedes bad lines when both are present).
func (p PropExpr) IsZero() bool {
	return !p.IsTrue && p.Signal == "" && p.Op == 0 && p.Literal == 0
}

func (p PropExpr) String() string {
	if p.IsTrue {
		return "true"
	}
	return fmt.Sprintf("%s %s %d", p.Signal, p.Op, p.Literal)
}

// Segment is a contiguous run of steps during which a fixed set of input
// drives holds (spec.md §3).
type Segment struct {
	Drives map[string]uint64
	Hold   uint32
}

// StimulusIR is the immutable result of parsing a stimulus script.
type StimulusIR struct {
	Clock    map[string]uint32 // name -> period, in unroll steps
	Property PropExpr
	Segments []Segment

	// Signed records signals named by a `signed IDENT` line in
	// [PROCESS] (spec.md §4.3 tie-break note): comparisons against these
	// signals use signed semantics instead of the unsigned default.
	Signed map[string]bool
}

// SegmentAt resolves which segment and in-segment step index applies at
// unroll step k, honoring the "tail persists" rule (spec.md §4.3 step 3:
// "After the last segment, subsequent steps use the last segment's
// drives persistently"). It returns (-1, 0) if there are no segments.
func (s *StimulusIR) SegmentAt(k int) (segIndex int, stepInSeg int) {
	if len(s.Segments) == 0 {
		return -1, 0
	}
	remaining := k
	for i, seg := range s.Segments {
		hold := int(seg.Hold)
		if hold <= 0 {
			hold = 1
		}
		if i == len(s.Segments)-1 {
			return i, remaining
		}
		if remaining < hold {
			return i, remaining
		}
		remaining -= hold
	}
	return len(s.Segments) - 1, remaining
}

// DrivesAt returns the drive map in effect at step k, or nil if no
// segment applies (empty stimulus).
func (s *StimulusIR) DrivesAt(k int) map[string]uint64 {
	idx, _ := s.SegmentAt(k)
	if idx < 0 {
		return nil
	}
	return s.Segments[idx].Drives
}

// ClockValueAt returns (k / period) mod 2 for the named clock (spec.md §3).
func ClockValueAt(period uint32, k int) uint64 {
	if period == 0 {
		return 0
	}
	return uint64((k / int(period)) % 2)
}
