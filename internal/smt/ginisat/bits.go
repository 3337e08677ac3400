// Package ginisat bit-blasts ir.Expr trees into an AIG-style circuit
// (github.com/irifrance/gini/logic) discharged to CNF and solved by
// github.com/irifrance/gini, the one concrete realization of the
// internal/smt.Backend interface spec.md leaves abstract.
package ginisat

import (
	"github.com/irifrance/gini/logic"
	"github.com/irifrance/gini/z"
)

// bits is a fixed-width bit-vector of circuit literals, least-significant
// bit first: bits[0] has weight 2^0.
type bits []z.Lit

func constBits(c *logic.C, value uint64, width uint32) bits {
	b := make(bits, width)
	for i := range b {
		if value&(1<<uint(i)) != 0 {
			b[i] = c.T
		} else {
			b[i] = c.F
		}
	}
	return b
}

func freshBits(c *logic.C, width uint32) bits {
	b := make(bits, width)
	for i := range b {
		b[i] = c.Lit()
	}
	return b
}

func notBits(b bits) bits {
	out := make(bits, len(b))
	for i, l := range b {
		out[i] = l.Not()
	}
	return out
}

func zipBits(c *logic.C, x, y bits, f func(a, b z.Lit) z.Lit) bits {
	out := make(bits, len(x))
	for i := range x {
		out[i] = f(x[i], y[i])
	}
	return out
}

func andBits(c *logic.C, x, y bits) bits { return zipBits(c, x, y, c.And) }
func orBits(c *logic.C, x, y bits) bits  { return zipBits(c, x, y, c.Or) }
func xorBits(c *logic.C, x, y bits) bits { return zipBits(c, x, y, c.Xor) }

func muxBits(c *logic.C, sel z.Lit, t, e bits) bits {
	out := make(bits, len(t))
	for i := range t {
		out[i] = c.Choice(sel, t[i], e[i])
	}
	return out
}

// fullAdder returns (sum, carryOut) for a+b+carryIn.
func fullAdder(c *logic.C, a, b, cin z.Lit) (sum, cout z.Lit) {
	axb := c.Xor(a, b)
	sum = c.Xor(axb, cin)
	cout = c.Or(c.And(a, b), c.And(axb, cin))
	return sum, cout
}

// rippleAdd returns x+y (wrapping, same width) and the final carry-out.
func rippleAdd(c *logic.C, x, y bits) (bits, z.Lit) {
	out := make(bits, len(x))
	carry := c.F
	for i := range x {
		out[i], carry = fullAdder(c, x[i], y[i], carry)
	}
	return out, carry
}

func negBits(c *logic.C, x bits) bits {
	inv := notBits(x)
	one := constBits(c, 1, uint32(len(x)))
	sum, _ := rippleAdd(c, inv, one)
	return sum
}

func subBits(c *logic.C, x, y bits) bits {
	sum, _ := rippleAdd(c, x, negBits(c, y))
	return sum
}

func zextBits(c *logic.C, x bits, newWidth uint32) bits {
	out := make(bits, newWidth)
	copy(out, x)
	for i := len(x); i < int(newWidth); i++ {
		out[i] = c.F
	}
	return out
}

func sextBits(c *logic.C, x bits, newWidth uint32) bits {
	out := make(bits, newWidth)
	copy(out, x)
	sign := x[len(x)-1]
	for i := len(x); i < int(newWidth); i++ {
		out[i] = sign
	}
	return out
}

// eqBits returns a single literal true iff x == y.
func eqBits(c *logic.C, x, y bits) z.Lit {
	acc := c.T
	for i := range x {
		same := c.Xor(x[i], y[i]).Not()
		acc = c.And(acc, same)
	}
	return acc
}

// ultBits returns x < y unsigned, computed MSB-down the standard way so
// it needs no extra adder.
func ultBits(c *logic.C, x, y bits) z.Lit {
	lt := c.F
	eq := c.T
	for i := len(x) - 1; i >= 0; i-- {
		bitLt := c.And(x[i].Not(), y[i])
		bitEq := c.Xor(x[i], y[i]).Not()
		lt = c.Or(lt, c.And(eq, bitLt))
		eq = c.And(eq, bitEq)
	}
	return lt
}

// flipSign xors the top bit only, turning a signed comparison into an
// equivalent unsigned one over the flipped operands.
func flipSign(c *logic.C, x bits) bits {
	out := make(bits, len(x))
	copy(out, x)
	out[len(x)-1] = c.Xor(out[len(x)-1], c.T)
	return out
}

func sltBits(c *logic.C, x, y bits) z.Lit {
	return ultBits(c, flipSign(c, x), flipSign(c, y))
}

// shiftBarrel builds a logical/arithmetic barrel shifter; dir<0 shifts
// right. Bits vacated by a left shift are filled with c.F; bits vacated
// by a right shift are filled with the running sign bit when arithmetic
// is set (ashr) and with c.F otherwise (lshr).
func shiftBarrel(c *logic.C, x, amount bits, dir int, arithmetic bool) bits {
	width := uint32(len(x))
	cur := make(bits, width)
	copy(cur, x)
	for stage := 0; stage < len(amount); stage++ {
		shiftAmt := uint32(1) << uint(stage)
		shifted := make(bits, width)
		for i := uint32(0); i < width; i++ {
			var src int
			if dir >= 0 {
				src = int(i) - int(shiftAmt)
			} else {
				src = int(i) + int(shiftAmt)
			}
			switch {
			case src < 0:
				shifted[i] = c.F
			case src >= int(width):
				if arithmetic {
					shifted[i] = cur[width-1]
				} else {
					shifted[i] = c.F
				}
			default:
				shifted[i] = cur[src]
			}
		}
		if shiftAmt >= width {
			// Shifting by >= width with this stage active always
			// produces the fill value; still gated by amount[stage] below.
		}
		cur = muxBits(c, amount[stage], shifted, cur)
	}
	// Stages with shiftAmt >= width already mux in an all-fill result
	// whenever their amount bit is set, so shift amounts that exceed the
	// operand width are handled without any separate overflow check.
	return cur
}

// rotateBarrel builds a barrel rotator. dir>=0 rotates left. Indexing is
// taken modulo width at every stage, so it is exact for any width
// (not just powers of two) without needing to special-case amount bits
// beyond log2(width): 2^stage mod width already wraps correctly.
func rotateBarrel(c *logic.C, x, amount bits, dir int) bits {
	width := len(x)
	cur := make(bits, width)
	copy(cur, x)
	for stage := 0; stage < len(amount); stage++ {
		shiftAmt := (1 << uint(stage)) % width
		shifted := make(bits, width)
		for i := 0; i < width; i++ {
			var src int
			if dir >= 0 {
				src = ((i-shiftAmt)%width + width) % width
			} else {
				src = (i + shiftAmt) % width
			}
			shifted[i] = cur[src]
		}
		cur = muxBits(c, amount[stage], shifted, cur)
	}
	return cur
}

// mulBits implements shift-add multiplication, same width as the
// operands (BTOR2 mul wraps, like the source language's multiplication).
func mulBits(c *logic.C, x, y bits) bits {
	width := uint32(len(x))
	acc := constBits(c, 0, width)
	for i, yb := range y {
		shifted := make(bits, width)
		for j := range shifted {
			if j < i {
				shifted[j] = c.F
			} else {
				shifted[j] = x[j-i]
			}
		}
		term := muxBits(c, yb, shifted, constBits(c, 0, width))
		acc, _ = rippleAdd(c, acc, term)
	}
	return acc
}

// udivmod implements restoring unsigned division. Division by zero
// follows BTOR2 convention: quotient is all-ones, remainder is the
// dividend.
func udivmod(c *logic.C, x, y bits) (quotient, remainder bits) {
	width := len(x)
	rem := make(bits, width)
	for i := range rem {
		rem[i] = c.F
	}
	quot := make(bits, width)
	yIsZero := eqBits(c, y, constBits(c, 0, uint32(width)))

	for i := width - 1; i >= 0; i-- {
		rem = shiftLeftOneInsert(c, rem, x[i])
		ge := notLt(c, rem, y)
		diff := subBits(c, rem, y)
		rem = muxBits(c, ge, diff, rem)
		quot[i] = ge
	}

	allOnes := constBits(c, ^uint64(0), uint32(width))
	quot = muxBits(c, yIsZero, allOnes, quot)
	remainder = muxBits(c, yIsZero, x, rem)
	return quot, remainder
}

func notLt(c *logic.C, x, y bits) z.Lit { return ultBits(c, x, y).Not() }

func shiftLeftOneInsert(c *logic.C, x bits, msbIn z.Lit) bits {
	out := make(bits, len(x))
	out[0] = msbIn
	copy(out[1:], x[:len(x)-1])
	return out
}

func redAnd(c *logic.C, x bits) z.Lit {
	acc := c.T
	for _, l := range x {
		acc = c.And(acc, l)
	}
	return acc
}

func redOr(c *logic.C, x bits) z.Lit {
	acc := c.F
	for _, l := range x {
		acc = c.Or(acc, l)
	}
	return acc
}

func redXor(c *logic.C, x bits) z.Lit {
	acc := c.F
	for _, l := range x {
		acc = c.Xor(acc, l)
	}
	return acc
}
