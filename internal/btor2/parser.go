// Package btor2 parses the BTOR2 word-level transition-system format
// into an ir.ModelIR (spec.md §4.1).
package btor2

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cnfjlhj/btormc/internal/ir"
)

type parser struct {
	arena *ir.Arena
	model *ir.ModelIR

	sorts    map[int64]ir.Sort
	exprs    map[int64]ir.ExprID
	stateIdx map[int64]int
	line     int
}

// Parse reads a BTOR2 text stream and returns its ModelIR, or the first
// ParseError encountered (spec.md §7: "Parsers never... return the first
// error encountered").
func Parse(r io.Reader) (*ir.ModelIR, error) {
	p := &parser{
		arena:    ir.NewArena(),
		model:    &ir.ModelIR{},
		sorts:    make(map[int64]ir.Sort),
		exprs:    make(map[int64]ir.ExprID),
		stateIdx: make(map[int64]int),
	}
	p.model.Arena = p.arena

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		p.line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, ";") {
			continue
		}
		if err := p.parseLine(raw); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, s := range p.model.States {
		if s.Next == ir.InvalidExprID {
			return nil, errAt(p.line, ReasonDanglingState, "state %q has no next line", s.Name)
		}
	}

	return p.model, nil
}

func (p *parser) parseLine(raw string) error {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return errAt(p.line, ReasonUnknownOp, "line has fewer than two fields")
	}

	nid, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return errAt(p.line, ReasonUnknownOp, "bad nid %q", fields[0])
	}
	op := fields[1]
	rest := fields[2:]

	switch op {
	case "sort":
		return p.parseSort(nid, rest)
	case "input":
		return p.parseInput(nid, rest)
	case "state":
		return p.parseState(nid, rest)
	case "init":
		return p.parseInit(nid, rest)
	case "next":
		return p.parseNext(nid, rest)
	case "const":
		return p.parseLiteral(nid, rest, 2)
	case "constd":
		return p.parseLiteral(nid, rest, 10)
	case "consth":
		return p.parseLiteral(nid, rest, 16)
	case "zero":
		return p.parseFill(nid, rest, fillZero)
	case "one":
		return p.parseFill(nid, rest, fillOne)
	case "ones":
		return p.parseFill(nid, rest, fillOnes)
	case "not", "neg", "redand", "redor", "redxor", "inc", "dec":
		return p.parseUnary(nid, op, rest)
	case "and", "or", "xor", "nand", "nor", "xnor", "implies", "iff",
		"add", "sub", "mul", "udiv", "sdiv", "urem", "srem", "smod",
		"sll", "srl", "sra", "rol", "ror",
		"eq", "neq", "ult", "ulte", "ugt", "ugte", "slt", "slte", "sgt", "sgte",
		"concat":
		return p.parseBinary(nid, op, rest)
	case "slice":
		return p.parseSlice(nid, rest)
	case "uext", "sext":
		return p.parseExtend(nid, op, rest)
	case "ite":
		return p.parseIte(nid, rest)
	case "read":
		return p.parseRead(nid, rest)
	case "write":
		return p.parseWrite(nid, rest)
	case "output", "bad", "constraint":
		return p.parseSink(nid, op, rest)
	case "fair", "justice":
		p.model.Warnings = append(p.model.Warnings,
			errAt(p.line, ReasonUnknownOp, "%s is recognized but not evaluated", op).Error())
		// Retained but unreferenced: record a Sink for the argument nid
		// (fair/justice take an argument nid just like bad) when it
		// resolves to an expression; an unresolvable argument is skipped
		// without error. The fair/justice line's own nid is not registered,
		// so later lines cannot reference it.
		if len(rest) >= 1 {
			if arg, ok := p.resolveExpr(rest[0]); ok {
				kind := ir.SinkFair
				if op == "justice" {
					kind = ir.SinkJustice
				}
				p.model.Sinks = append(p.model.Sinks, ir.Sink{Kind: kind, Expr: arg})
			}
		}
		return nil
	default:
		return errAt(p.line, ReasonUnknownOp, "unrecognized op %q", op)
	}
}

func (p *parser) resolveSort(tok string) (ir.Sort, bool) {
	id, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return ir.Sort{}, false
	}
	s, ok := p.sorts[id]
	return s, ok
}

func (p *parser) resolveExpr(tok string) (ir.ExprID, bool) {
	neg := false
	if strings.HasPrefix(tok, "-") {
		neg = true
		tok = tok[1:]
	}
	id, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return ir.InvalidExprID, false
	}
	e, ok := p.exprs[id]
	if !ok || !neg {
		return e, ok
	}
	// A leading '-' on an operand nid negates the referenced bit-vector
	// bitwise (BTOR2's inline-negation convention for boolean-ish
	// operands). It is applied whenever the referenced node is a
	// bit-vector; a node of any other sort is returned un-negated.
	sort := p.arena.Get(e).Sort
	if sort.Kind == ir.SortBitVec {
		n, err := p.arena.BvNot(e)
		if err != nil {
			return ir.InvalidExprID, false
		}
		return n, true
	}
	return e, ok
}

func symbolOf(rest []string, consumed int) string {
	if len(rest) > consumed {
		return strings.Join(rest[consumed:], " ")
	}
	return ""
}
