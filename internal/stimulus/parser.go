package stimulus

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cnfjlhj/btormc/internal/ir"
)

type section int

const (
	secNone section = iota
	secClock
	secProperty
	secProcess
)

// Parse reads a stimulus script and returns its StimulusIR, or the first
// ParseError encountered. Sections may repeat and appear in any order;
// repeated [CLOCK]/[PROCESS] headers simply resume accumulating into the
// same clock map / segment list, mirroring how the BTOR2 parser treats a
// malformed line shape as the closest enumerated reason rather than
// inventing a new one (see DESIGN.md).
func Parse(r io.Reader) (*ir.StimulusIR, error) {
	res := &ir.StimulusIR{
		Clock:  make(map[string]uint32),
		Signed: make(map[string]bool),
	}
	pending := make(map[string]uint64)
	havePropLine := false
	cur := secNone
	lineNo := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, ";") {
			continue
		}
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			switch raw {
			case "[CLOCK]":
				cur = secClock
			case "[PROPERTY]":
				cur = secProperty
			case "[PROCESS]":
				cur = secProcess
			default:
				return nil, errAt(lineNo, ReasonUnknownSection, "unknown section %q", raw)
			}
			continue
		}

		var err error
		switch cur {
		case secClock:
			err = parseClockLine(res, raw, lineNo)
		case secProperty:
			if havePropLine {
				err = errAt(lineNo, ReasonDuplicatePropertyLine, "a property line was already given")
				break
			}
			var prop ir.PropExpr
			prop, err = parsePropLine(raw, lineNo)
			if err == nil {
				res.Property = prop
				havePropLine = true
			}
		case secProcess:
			err = parseProcessLine(res, pending, raw, lineNo)
		default:
			err = errAt(lineNo, ReasonUnknownSection, "content outside any section: %q", raw)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(pending) > 0 {
		res.Segments = append(res.Segments, ir.Segment{Drives: pending, Hold: 1})
	}
	return res, nil
}

func parseClockLine(res *ir.StimulusIR, raw string, lineNo int) error {
	parts := strings.SplitN(raw, "=", 2)
	if len(parts) != 2 {
		return errAt(lineNo, ReasonBadClockPeriod, "malformed clock line %q", raw)
	}
	name := strings.TrimSpace(parts[0])
	period, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil || period == 0 {
		return errAt(lineNo, ReasonBadClockPeriod, "bad clock period in %q", raw)
	}
	res.Clock[name] = uint32(period)
	return nil
}

func parsePropLine(raw string, lineNo int) (ir.PropExpr, error) {
	if raw == "true" {
		return ir.PropExpr{IsTrue: true}, nil
	}
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return ir.PropExpr{}, errAt(lineNo, ReasonUnknownSection, "malformed property line %q", raw)
	}
	op, ok := parseCompareOp(fields[1])
	if !ok {
		return ir.PropExpr{}, errAt(lineNo, ReasonUnknownSection, "bad comparison operator %q", fields[1])
	}
	lit, err := parseLiteralToken(fields[2])
	if err != nil {
		return ir.PropExpr{}, errAt(lineNo, ReasonOverflowLiteral, "bad property literal %q: %s", fields[2], err)
	}
	return ir.PropExpr{Signal: fields[0], Op: op, Literal: lit}, nil
}

func parseCompareOp(tok string) (ir.CompareOp, bool) {
	switch tok {
	case "==":
		return ir.CmpEQ, true
	case "!=":
		return ir.CmpNE, true
	case "<":
		return ir.CmpLT, true
	case "<=":
		return ir.CmpLE, true
	case ">":
		return ir.CmpGT, true
	case ">=":
		return ir.CmpGE, true
	default:
		return 0, false
	}
}

func parseLiteralToken(tok string) (uint64, error) {
	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		return strconv.ParseUint(tok[2:], 16, 64)
	case strings.HasPrefix(tok, "0b"), strings.HasPrefix(tok, "0B"):
		return strconv.ParseUint(tok[2:], 2, 64)
	default:
		return strconv.ParseUint(tok, 10, 64)
	}
}

// parseProcessLine handles one [PROCESS] line: a "signed IDENT" marker, a
// "#N" hold directive that flushes the pending drive set into a segment,
// or an "IDENT = literal" drive assignment that accumulates into it
// (spec.md §4.2: "the parser greedily groups consecutive assignments into
// a single pending drive set").
func parseProcessLine(res *ir.StimulusIR, pending map[string]uint64, raw string, lineNo int) error {
	if strings.HasPrefix(raw, "#") {
		n, err := strconv.ParseUint(strings.TrimSpace(raw[1:]), 10, 32)
		if err != nil {
			return errAt(lineNo, ReasonUnknownSection, "bad hold count %q", raw)
		}
		drives := make(map[string]uint64, len(pending))
		for k, v := range pending {
			drives[k] = v
		}
		res.Segments = append(res.Segments, ir.Segment{Drives: drives, Hold: uint32(n)})
		for k := range pending {
			delete(pending, k)
		}
		return nil
	}

	if fields := strings.Fields(raw); len(fields) == 2 && fields[0] == "signed" {
		res.Signed[fields[1]] = true
		return nil
	}

	parts := strings.SplitN(raw, "=", 2)
	if len(parts) != 2 {
		return errAt(lineNo, ReasonUnknownSection, "malformed process line %q", raw)
	}
	name := strings.TrimSpace(parts[0])
	lit, err := parseLiteralToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return errAt(lineNo, ReasonOverflowLiteral, "bad drive literal in %q: %s", raw, err)
	}
	pending[name] = lit
	return nil
}
