// Package expr holds the symbolic numeric expressions used to build stencil
// equations: index variables, constants and arithmetic on them.
//
// Expressions are immutable trees. Grid accesses (defined in the grid
// package) are also NumExprs, which lets an equation's right-hand side mix
// grid points, constants and arithmetic freely.
package expr

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vk/stencilgrid/internal/dims"
)

// NumExpr is any numeric expression node.
type NumExpr interface {
	String() string
}

// Parent is implemented by nodes that have sub-expressions.
type Parent interface {
	Children() []NumExpr
}

// IndexExpr references the current index in a dimension.
type IndexExpr struct {
	dim *dims.Dim
}

// Index returns an expression for the current index of d.
func Index(d *dims.Dim) *IndexExpr {
	if d == nil {
		panic("expr: nil dimension")
	}
	return &IndexExpr{dim: d}
}

// Dim returns the referenced dimension.
func (e *IndexExpr) Dim() *dims.Dim { return e.dim }

func (e *IndexExpr) String() string { return e.dim.Name() }

// ConstExpr is a numeric literal.
type ConstExpr struct {
	Val float64
}

// Const returns a literal expression.
func Const(v float64) *ConstExpr { return &ConstExpr{Val: v} }

func (e *ConstExpr) String() string {
	return strconv.FormatFloat(e.Val, 'g', -1, 64)
}

// Op is a binary arithmetic operator.
type Op byte

const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '*'
	Div Op = '/'
)

// BinaryExpr applies Op to two operands.
type BinaryExpr struct {
	Op       Op
	LHS, RHS NumExpr
}

// Binary returns lhs op rhs.
func Binary(op Op, lhs, rhs NumExpr) *BinaryExpr {
	if lhs == nil || rhs == nil {
		panic("expr: nil operand")
	}
	switch op {
	case Add, Sub, Mul, Div:
	default:
		panic(fmt.Sprintf("expr: unknown operator %q", rune(op)))
	}
	return &BinaryExpr{Op: op, LHS: lhs, RHS: rhs}
}

func (e *BinaryExpr) String() string {
	return "(" + e.LHS.String() + " " + string(rune(e.Op)) + " " + e.RHS.String() + ")"
}

// Children implements Parent.
func (e *BinaryExpr) Children() []NumExpr { return []NumExpr{e.LHS, e.RHS} }

// NegExpr is unary minus.
type NegExpr struct {
	Arg NumExpr
}

// Neg returns -arg.
func Neg(arg NumExpr) *NegExpr {
	if arg == nil {
		panic("expr: nil operand")
	}
	return &NegExpr{Arg: arg}
}

func (e *NegExpr) String() string { return "-" + e.Arg.String() }

// Children implements Parent.
func (e *NegExpr) Children() []NumExpr { return []NumExpr{e.Arg} }

// Offset returns d+n, d-n or d, matching how offsets are written by hand.
func Offset(d *dims.Dim, n int) NumExpr {
	switch {
	case n > 0:
		return Binary(Add, Index(d), Const(float64(n)))
	case n < 0:
		return Binary(Sub, Index(d), Const(float64(-n)))
	default:
		return Index(d)
	}
}

// Walk visits e and its sub-expressions in pre-order. Returning false from
// fn stops descent below the current node.
func Walk(e NumExpr, fn func(NumExpr) bool) {
	if e == nil || !fn(e) {
		return
	}
	if p, ok := e.(Parent); ok {
		for _, c := range p.Children() {
			Walk(c, fn)
		}
	}
}

// linear is coef*dim + c.
type linear struct {
	dim  *dims.Dim
	coef float64
	c    float64
}

// toLinear folds e into coef*dim + c when e is linear in at most one
// dimension.
func toLinear(e NumExpr) (linear, bool) {
	switch v := e.(type) {
	case *ConstExpr:
		return linear{c: v.Val}, true
	case *IndexExpr:
		return linear{dim: v.dim, coef: 1}, true
	case *NegExpr:
		l, ok := toLinear(v.Arg)
		if !ok {
			return linear{}, false
		}
		return linear{dim: l.dim, coef: -l.coef, c: -l.c}, true
	case *BinaryExpr:
		a, ok := toLinear(v.LHS)
		if !ok {
			return linear{}, false
		}
		b, ok := toLinear(v.RHS)
		if !ok {
			return linear{}, false
		}
		switch v.Op {
		case Add, Sub:
			sign := 1.0
			if v.Op == Sub {
				sign = -1
			}
			d := a.dim
			if d == nil {
				d = b.dim
			} else if b.dim != nil && b.dim != d {
				return linear{}, false
			}
			return linear{dim: d, coef: a.coef + sign*b.coef, c: a.c + sign*b.c}, true
		case Mul:
			if a.dim != nil && b.dim != nil {
				return linear{}, false
			}
			if a.dim == nil {
				return linear{dim: b.dim, coef: b.coef * a.c, c: b.c * a.c}, true
			}
			return linear{dim: a.dim, coef: a.coef * b.c, c: a.c * b.c}, true
		case Div:
			if b.dim != nil || b.c == 0 {
				return linear{}, false
			}
			return linear{dim: a.dim, coef: a.coef / b.c, c: a.c / b.c}, true
		}
	}
	return linear{}, false
}

// MaxIndex bounds the magnitude of constant offsets and indices. Larger
// values are not recognised as constants.
const MaxIndex = math.MaxInt32

func asInt(f float64) (int, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > MaxIndex {
		return 0, false
	}
	return int(f), true
}

// ConstPart returns the constant term of e when e is linear in at most one
// dimension, e.g. 5 for x + 5.
func ConstPart(e NumExpr) (float64, bool) {
	l, ok := toLinear(e)
	if !ok {
		return 0, false
	}
	return l.c, true
}

// ConstOffset reports the constant n when e is equivalent to d+n.
func ConstOffset(e NumExpr, d *dims.Dim) (int, bool) {
	l, ok := toLinear(e)
	if !ok || l.coef != 1 || l.dim == nil || !l.dim.IsSame(d) {
		return 0, false
	}
	return asInt(l.c)
}

// ConstValue reports the integer value of e when it does not depend on any
// index.
func ConstValue(e NumExpr) (int, bool) {
	l, ok := toLinear(e)
	if !ok || (l.dim != nil && l.coef != 0) {
		return 0, false
	}
	return asInt(l.c)
}
