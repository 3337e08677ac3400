// Package trace holds and renders the bounded counter-example trace a
// PropertyHit verdict carries (spec.md §4.4/§6). internal/bmc fills a
// Trace from the backend's model; the same Trace value feeds both the
// CLI's stdout renderer and internal/introspect's fact loader.
package trace

import (
	"fmt"
	"sort"
	"strings"
)

// ValueKind distinguishes how a Value renders.
type ValueKind int

const (
	KindBitVec ValueKind = iota
	KindBool
	KindArray
)

// ArrayEntry is one populated index in a sparse array rendering.
type ArrayEntry struct {
	Index uint64
	Value uint64
}

// Value is one signal's value at one step, carrying enough to render
// spec.md §4.4's three formats: "<decimal>_<width>" for bit-vectors,
// "true"/"false" for booleans, and a sparse "{idx0: v0, ..., default: d}"
// for arrays.
type Value struct {
	Kind    ValueKind
	Bits    uint64 // meaningful for KindBitVec/KindBool (0/1)
	Width   uint32 // meaningful for KindBitVec
	Entries []ArrayEntry
	Default uint64
}

func BitVecValue(bits uint64, width uint32) Value {
	return Value{Kind: KindBitVec, Bits: bits, Width: width}
}

func BoolValue(b bool) Value {
	v := uint64(0)
	if b {
		v = 1
	}
	return Value{Kind: KindBool, Bits: v}
}

func ArrayValue(entries []ArrayEntry, def uint64) Value {
	return Value{Kind: KindArray, Entries: entries, Default: def}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bits != 0 {
			return "true"
		}
		return "false"
	case KindArray:
		entries := append([]ArrayEntry{}, v.Entries...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
		var sb strings.Builder
		sb.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%d: %d", e.Index, e.Value)
		}
		if len(entries) > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "default: %d", v.Default)
		sb.WriteByte('}')
		return sb.String()
	default:
		return fmt.Sprintf("%d_%d", v.Bits, v.Width)
	}
}

// Step is one unroll step's signal assignments, in the order signals
// should be rendered: inputs, states, then the designated property
// output expression, per spec.md §4.4's enumeration order.
type Step struct {
	Signals []NamedValue
}

// NamedValue pairs a signal name with its extracted value.
type NamedValue struct {
	Name  string
	Value Value
}

// Trace is the ordered step→signal→value counter-example spec.md §4.4
// describes, produced at a PropertyHit.
type Trace struct {
	PropertyExpr string
	Step         int // the k at which the property held
	Steps        []Step
}

// Render prints the stable, bit-exact format of spec.md §6.
func (t *Trace) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "!!! Property '%s' holds at step %d !!!\n", t.PropertyExpr, t.Step)
	for k, step := range t.Steps {
		fmt.Fprintf(&sb, "--- step %d ---\n", k)
		for _, nv := range step.Signals {
			fmt.Fprintf(&sb, "  %s: %s\n", nv.Name, nv.Value)
		}
	}
	return sb.String()
}
