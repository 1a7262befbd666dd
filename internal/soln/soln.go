// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package soln models a stencil solution: the dimensions, the grids it owns
// and the equations, grouped into packs, that read and write those grids.
//
// The solution is where the grid analysis is driven from. Every equation
// added to a pack feeds each of its grid points into the owning grid's halo
// accounting. Once every equation is in place, Analyze freezes the fold shape
// and computes fold eligibility for all grids; that is the barrier after
// which code generation may query them.
package soln

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/expr"
	"github.com/vk/stencilgrid/internal/grid"
)

// ErrAnalyzed is returned when a solution is modified after Analyze.
var ErrAnalyzed = errors.New("solution has already been analyzed")

// Equation is one assignment "LHS = RHS" inside a pack.
type Equation struct {
	Name string
	Pack string
	LHS  *grid.Point
	RHS  expr.NumExpr
}

// Points returns every grid point of the equation, LHS first.
func (e *Equation) Points() []*grid.Point {
	return append([]*grid.Point{e.LHS}, grid.Points(e.RHS)...)
}

// String implements fmt.Stringer.
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}

// Pack is a named group of equations scheduled together.
type Pack struct {
	Name      string
	Equations []*Equation
}

// Solution owns a set of grids and the equations over them.
type Solution struct {
	name        string
	description string
	dims        *dims.Dimensions
	grids       *grid.Grids
	packs       []*Pack
	analyzed    bool
}

// New creates an empty solution over d.
func New(name string, d *dims.Dimensions) *Solution {
	if d == nil {
		panic("soln: nil dimensions")
	}
	return &Solution{
		name:  name,
		dims:  d,
		grids: grid.NewGrids(),
	}
}

// Name returns the solution name.
func (s *Solution) Name() string { return s.name }

// Description returns the free-form description.
func (s *Solution) Description() string { return s.description }

// SetDescription sets the free-form description.
func (s *Solution) SetDescription(desc string) { s.description = desc }

// Dims returns the dimension classification.
func (s *Solution) Dims() *dims.Dimensions { return s.dims }

// Grids returns a shallow copy of the grid collection.
func (s *Solution) Grids() *grid.Grids { return s.grids.Clone() }

// Grid finds a grid by name.
func (s *Solution) Grid(name string) (*grid.Grid, bool) { return s.grids.Lookup(name) }

// Packs returns the packs in the order they were first used.
func (s *Solution) Packs() []*Pack {
	out := make([]*Pack, len(s.packs))
	copy(out, s.packs)
	return out
}

// IsAnalyzed reports whether Analyze has run.
func (s *Solution) IsAnalyzed() bool { return s.analyzed }

// NewGrid creates a grid owned by the solution over the named dims.
func (s *Solution) NewGrid(name string, scratch bool, dimNames ...string) (*grid.Grid, error) {
	if s.analyzed {
		return nil, ErrAnalyzed
	}
	if name == "" {
		return nil, errors.New("grid name cannot be empty")
	}
	if _, exists := s.grids.Lookup(name); exists {
		return nil, fmt.Errorf("grid %q already defined", name)
	}
	if _, clash := s.dims.Lookup(name); clash {
		return nil, fmt.Errorf("grid %q has the same name as a dimension", name)
	}

	gridDims := make([]*dims.Dim, 0, len(dimNames))
	seen := make(map[string]struct{}, len(dimNames))
	hasStep := false
	for _, dn := range dimNames {
		d, ok := s.dims.Lookup(dn)
		if !ok {
			return nil, fmt.Errorf("grid %q: unknown dimension %q", name, dn)
		}
		if _, dup := seen[dn]; dup {
			return nil, fmt.Errorf("grid %q: dimension %q listed more than once", name, dn)
		}
		seen[dn] = struct{}{}
		if d.Type() == dims.Step {
			hasStep = true
		}
		gridDims = append(gridDims, d)
	}
	if scratch && hasStep {
		return nil, fmt.Errorf("scratch grid %q cannot use the step dimension", name)
	}

	g := grid.New(name, scratch, s, gridDims...)
	s.grids.Insert(g)
	return g, nil
}

// AddEquation adds "lhs = rhs" to pack, creating the pack on first use, and
// records the halo every grid point in the equation needs in that pack.
func (s *Solution) AddEquation(pack, name string, lhs *grid.Point, rhs expr.NumExpr) (*Equation, error) {
	if s.analyzed {
		return nil, ErrAnalyzed
	}
	if lhs == nil || rhs == nil {
		return nil, fmt.Errorf("equation %q in pack %q: both sides are required", name, pack)
	}
	eq := &Equation{Name: name, Pack: pack, LHS: lhs, RHS: rhs}
	for _, p := range eq.Points() {
		if !s.grids.Contains(p.Grid()) {
			return nil, fmt.Errorf("equation %q: grid %q does not belong to solution %q", name, p.Grid().Name(), s.name)
		}
	}

	pk := s.pack(pack)
	lhsStep, _ := lhs.StepOffset()
	for _, other := range pk.Equations {
		if other.Name == name {
			return nil, fmt.Errorf("pack %q: equation %q already defined", pack, name)
		}
		otherStep, _ := other.LHS.StepOffset()
		if other.LHS.Grid() == lhs.Grid() && otherStep == lhsStep {
			return nil, fmt.Errorf("pack %q: equations %q and %q both write %s at step offset %d",
				pack, other.Name, name, lhs.Grid().Name(), lhsStep)
		}
	}

	for _, p := range eq.Points() {
		p.Grid().UpdateHalo(pack, p.Offsets())
	}
	pk.Equations = append(pk.Equations, eq)
	return eq, nil
}

func (s *Solution) pack(name string) *Pack {
	for _, p := range s.packs {
		if p.Name == name {
			return p
		}
	}
	p := &Pack{Name: name}
	s.packs = append(s.packs, p)
	return p
}

// Analyze freezes the solution: it validates the fold and cluster shapes
// and computes fold eligibility for every grid. No grids or equations may be
// added afterwards.
func (s *Solution) Analyze(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("solution", s.name)
	if s.analyzed {
		return ErrAnalyzed
	}
	if err := s.dims.Validate(); err != nil {
		return fmt.Errorf("invalid dimensions for solution %q: %w", s.name, err)
	}

	s.grids.SetFolding(s.dims)
	s.analyzed = true

	for _, g := range s.grids.All() {
		logger.Debug("Grid analyzed.",
			"grid", g.Descr(),
			"foldable", g.IsFoldable(),
			"foldable_dims", g.NumFoldableDims(),
			"step_alloc", g.StepAllocSize(),
			"halo_packs", g.HaloPacks(),
		)
	}
	logger.Info("Solution analyzed.", "grids", s.grids.Len(), "packs", len(s.packs), "vec_len", s.dims.VecLen())
	return nil
}

// Dim finds a dimension by name. Together with Grid it lets a solution act
// as the name scope for equation translation.
func (s *Solution) Dim(name string) (*dims.Dim, bool) { return s.dims.Lookup(name) }
