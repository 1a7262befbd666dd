package grid

import (
	"fmt"
	"strings"

	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/expr"
	"github.com/vk/stencilgrid/internal/tuple"
)

// Point is a reference to one element of a grid inside an equation. It
// neither reads nor writes memory; it is a node in an expression tree.
type Point struct {
	grid *Grid
	args []expr.NumExpr

	// offsets holds d+n args of step and domain dims as d => n.
	offsets tuple.IntTuple
	// consts holds args that are constant indices.
	consts tuple.IntTuple
}

// At returns a point in g indexed by one expression per dimension, and
// widens the grid's observed min and max indices. Constant indices in step
// and domain dims are tracked apart from offsets. A wrong number of args
// panics.
func (g *Grid) At(args ...expr.NumExpr) *Point {
	if len(args) != len(g.dims) {
		panic(fmt.Sprintf("grid %q: %d indices given for %d dimensions", g.name, len(args), len(g.dims)))
	}
	p := &Point{grid: g, args: make([]expr.NumExpr, len(args))}
	var miscConsts, absConsts tuple.IntTuple
	for i, d := range g.dims {
		a := args[i]
		if a == nil {
			panic(fmt.Sprintf("grid %q: nil index for dimension %q", g.name, d.Name()))
		}
		p.args[i] = a
		if d.Type() != dims.Misc {
			if ofs, ok := expr.ConstOffset(a, d); ok {
				p.offsets.AddDimBack(d.Name(), ofs)
				continue
			}
		}
		if v, ok := expr.ConstValue(a); ok {
			p.consts.AddDimBack(d.Name(), v)
			if d.Type() == dims.Misc {
				miscConsts.AddDimBack(d.Name(), v)
			} else {
				absConsts.AddDimBack(d.Name(), v)
			}
		}
	}
	g.UpdateConstIndices(p.offsets)
	g.UpdateConstIndices(miscConsts)
	g.UpdateAbsIndices(absConsts)
	return p
}

// NewRelativePoint returns a point at the given offset in each dimension.
// Misc dims take the value as a constant index.
func (g *Grid) NewRelativePoint(offsets ...int) *Point {
	if len(offsets) != len(g.dims) {
		panic(fmt.Sprintf("grid %q: %d offsets given for %d dimensions", g.name, len(offsets), len(g.dims)))
	}
	args := make([]expr.NumExpr, len(offsets))
	for i, d := range g.dims {
		if d.Type() == dims.Misc {
			args[i] = expr.Const(float64(offsets[i]))
		} else {
			args[i] = expr.Offset(d, offsets[i])
		}
	}
	return g.At(args...)
}

// Grid returns the grid the point refers to.
func (p *Point) Grid() *Grid { return p.grid }

// Args returns the index expressions.
func (p *Point) Args() []expr.NumExpr {
	out := make([]expr.NumExpr, len(p.args))
	copy(out, p.args)
	return out
}

// Offsets returns the constant offsets in step and domain dims.
func (p *Point) Offsets() tuple.IntTuple { return p.offsets.Clone() }

// Consts returns the constant indices.
func (p *Point) Consts() tuple.IntTuple { return p.consts.Clone() }

// StepOffset returns the offset in the grid's step dim, if it has one and
// the access is relative.
func (p *Point) StepOffset() (int, bool) {
	sd := p.grid.StepDim()
	if sd == nil {
		return 0, false
	}
	return p.offsets.Lookup(sd.Name())
}

// String renders the access like "u(t + 1, x, y - 2)".
func (p *Point) String() string {
	parts := make([]string, len(p.args))
	for i, a := range p.args {
		s := a.String()
		if _, ok := a.(*expr.BinaryExpr); ok {
			s = s[1 : len(s)-1]
		}
		parts[i] = s
	}
	return p.grid.name + "(" + strings.Join(parts, ", ") + ")"
}

// Children implements expr.Parent.
func (p *Point) Children() []expr.NumExpr { return p.Args() }

// Points collects the grid points in e in pre-order. Points nested in the
// indices of other points are included.
func Points(e expr.NumExpr) []*Point {
	var out []*Point
	expr.Walk(e, func(n expr.NumExpr) bool {
		if p, ok := n.(*Point); ok {
			out = append(out, p)
		}
		return true
	})
	return out
}
