// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Grid, the compile-time model of one stencil
// variable.
//
// A Grid knows its dimensions and, as equations are built, accumulates what
// the equations need from it: the smallest and largest constant indices used
// in each dimension and the halo (ghost-region) widths required per pack,
// side and step offset. After every equation of a solution is in place the
// solution runs SetFolding on all grids; only then can code generation ask
// whether a grid is vector-foldable.
//
// All mutation happens while a solution is being built, which is a
// single-threaded phase. A Grid has no locks.
package grid

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/tuple"
)

// Owner is the solution a grid belongs to. The grid only refers to it; the
// owner controls the grid's lifetime.
type Owner interface {
	Name() string
}

// Grid is the descriptor of one multi-dimensional stencil variable.
type Grid struct {
	name      string
	dims      []*dims.Dim
	isScratch bool

	// Step-dim allocation.
	isStepAllocFixed bool
	stepAlloc        int // 0 => computed.

	soln Owner

	// -1 until SetFolding runs.
	numFoldableDims int
	isFoldable      bool

	// Offsets in step and domain dims, constant indices in misc dims.
	minIndices, maxIndices tuple.IntTuple
	// Constant indices in step and domain dims, e.g. u(t, 0).
	minAbsIndices, maxAbsIndices tuple.IntTuple

	halos       haloMap
	stepOffsets map[int]struct{}
}

// New creates a grid over the given dimensions. At most one of them may be
// the step dimension and none may repeat.
func New(name string, isScratch bool, soln Owner, gridDims ...*dims.Dim) *Grid {
	var step *dims.Dim
	for i, d := range gridDims {
		if d == nil {
			panic(fmt.Sprintf("grid %q: dimension %d is nil", name, i))
		}
		if slices.Index(gridDims, d) != i {
			panic(fmt.Sprintf("grid %q: dimension %q used more than once", name, d.Name()))
		}
		if d.Type() == dims.Step {
			if step != nil {
				panic(fmt.Sprintf("grid %q: more than one step dimension (%s, %s)", name, step.Name(), d.Name()))
			}
			step = d
		}
	}
	return &Grid{
		name:             name,
		dims:             slices.Clone(gridDims),
		isScratch:        isScratch,
		isStepAllocFixed: true,
		soln:             soln,
		numFoldableDims:  -1,
		halos:            make(haloMap),
		stepOffsets:      make(map[int]struct{}),
	}
}

// Name returns the grid name.
func (g *Grid) Name() string { return g.name }

// SetName renames the grid.
func (g *Grid) SetName(name string) { g.name = name }

// Descr returns the grid name with its dimensions, e.g. "u(t, x, y)".
func (g *Grid) Descr() string {
	return g.name + "(" + strings.Join(g.DimNames(), ", ") + ")"
}

// Dims returns the grid's dimensions in order.
func (g *Grid) Dims() []*dims.Dim { return slices.Clone(g.dims) }

// NumDims returns the number of dimensions.
func (g *Grid) NumDims() int { return len(g.dims) }

// DimName returns the name of the n-th dimension.
func (g *Grid) DimName(n int) string {
	if n < 0 || n >= len(g.dims) {
		panic(fmt.Sprintf("grid %q: dimension index %d out of range [0, %d)", g.name, n, len(g.dims)))
	}
	return g.dims[n].Name()
}

// DimNames returns all dimension names in order.
func (g *Grid) DimNames() []string {
	out := make([]string, len(g.dims))
	for i, d := range g.dims {
		out[i] = d.Name()
	}
	return out
}

// StepDim returns the grid's step dimension or nil.
func (g *Grid) StepDim() *dims.Dim {
	for _, d := range g.dims {
		if d.Type() == dims.Step {
			return d
		}
	}
	return nil
}

// IsScratch reports whether this is a temporary grid.
func (g *Grid) IsScratch() bool { return g.isScratch }

// Soln returns the owning solution.
func (g *Grid) Soln() Owner { return g.soln }

// SetSoln changes the owning solution.
func (g *Grid) SetSoln(soln Owner) { g.soln = soln }

// NumFoldableDims returns how many of the grid's dims are fold dims.
// It panics if SetFolding has not run.
func (g *Grid) NumFoldableDims() int {
	g.assertFolded()
	return g.numFoldableDims
}

// IsFoldable reports whether the grid can be vector-folded.
// It panics if SetFolding has not run.
func (g *Grid) IsFoldable() bool {
	g.assertFolded()
	return g.isFoldable
}

func (g *Grid) assertFolded() {
	if g.numFoldableDims < 0 {
		panic(fmt.Sprintf("grid %q: fold state queried before SetFolding", g.name))
	}
}

// SetFolding decides fold eligibility from the solution's fold shape. A dim
// is foldable when it is in both the grid and the fold shape; the grid is
// foldable when at least one of its dims is.
func (g *Grid) SetFolding(d *dims.Dimensions) {
	n := 0
	for _, gd := range g.dims {
		if d.IsFoldDim(gd.Name()) {
			n++
		}
	}
	g.numFoldableDims = n
	g.isFoldable = n > 0
}

// MinIndices returns the smallest index seen in each dim: the offset from
// the dim's own index in step and domain dims, the constant index in misc
// dims.
func (g *Grid) MinIndices() tuple.IntTuple { return g.minIndices.Clone() }

// MaxIndices is the counterpart of MinIndices.
func (g *Grid) MaxIndices() tuple.IntTuple { return g.maxIndices.Clone() }

// MinAbsIndices returns the smallest constant index seen in each step or
// domain dim. Accesses relative to the dim's index are not included.
func (g *Grid) MinAbsIndices() tuple.IntTuple { return g.minAbsIndices.Clone() }

// MaxAbsIndices is the counterpart of MinAbsIndices.
func (g *Grid) MaxAbsIndices() tuple.IntTuple { return g.maxAbsIndices.Clone() }

// UpdateConstIndices widens the observed min and max indices.
func (g *Grid) UpdateConstIndices(indices tuple.IntTuple) {
	widenRange(&g.minIndices, &g.maxIndices, indices)
}

// UpdateAbsIndices widens the observed constant indices of step and domain
// dims.
func (g *Grid) UpdateAbsIndices(indices tuple.IntTuple) {
	widenRange(&g.minAbsIndices, &g.maxAbsIndices, indices)
}

func widenRange(lo, hi *tuple.IntTuple, indices tuple.IntTuple) {
	for _, e := range indices.Entries() {
		if v, ok := lo.Lookup(e.Name); !ok || e.Val < v {
			lo.SetVal(e.Name, e.Val)
		}
		if v, ok := hi.Lookup(e.Name); !ok || e.Val > v {
			hi.SetVal(e.Name, e.Val)
		}
	}
}

// AreDimsSame reports whether both grids use the identical dimension
// objects in the same order.
func (g *Grid) AreDimsSame(other *Grid) bool {
	return g.compareDims(other, (*dims.Dim).IsSame)
}

// AreDimsEqual is like AreDimsSame but compares dims by name and type, so
// grids from different solutions can match.
func (g *Grid) AreDimsEqual(other *Grid) bool {
	return g.compareDims(other, (*dims.Dim).Equal)
}

func (g *Grid) compareDims(other *Grid, same func(a, b *dims.Dim) bool) bool {
	if len(g.dims) != len(other.dims) {
		return false
	}
	for i, d := range g.dims {
		if !same(d, other.dims[i]) {
			return false
		}
	}
	return true
}

// StepDimSize returns how many step-dim values must be stored: the span of
// step offsets used by the equations, or the explicit override when set.
// Grids without a step dim need one.
func (g *Grid) StepDimSize() int {
	if g.stepAlloc > 0 {
		return g.stepAlloc
	}
	if g.StepDim() == nil || len(g.stepOffsets) == 0 {
		return 1
	}
	first, last := 0, 0
	n := 0
	for ofs := range g.stepOffsets {
		if n == 0 || ofs < first {
			first = ofs
		}
		if n == 0 || ofs > last {
			last = ofs
		}
		n++
	}
	return last - first + 1
}

// IsDynamicStepAlloc reports whether the step allocation is decided at run time.
func (g *Grid) IsDynamicStepAlloc() bool { return !g.isStepAllocFixed }

// SetDynamicStepAlloc lets the run time change the step allocation.
func (g *Grid) SetDynamicStepAlloc(enable bool) { g.isStepAllocFixed = !enable }

// StepAllocSize returns the step allocation. For dynamic grids this is the
// minimum the run time must provide.
func (g *Grid) StepAllocSize() int { return g.StepDimSize() }

// SetStepAllocSize overrides the computed step allocation; 0 restores it.
func (g *Grid) SetStepAllocSize(size int) {
	if size < 0 {
		panic(fmt.Sprintf("grid %q: negative step allocation %d", g.name, size))
	}
	g.stepAlloc = size
}

// String implements fmt.Stringer.
func (g *Grid) String() string { return g.Descr() }
