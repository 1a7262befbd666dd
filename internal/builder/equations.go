package builder

import (
	"context"
	"fmt"

	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/grid"
	"github.com/vk/stencilgrid/internal/soln"
)

// createGrids adds every grid definition to s.
func createGrids(ctx context.Context, defs []*config.Grid, s *soln.Solution) error {
	logger := ctxlog.FromContext(ctx)
	for _, def := range defs {
		if def.StepAlloc < 0 {
			return fmt.Errorf("grid %q: step_alloc must not be negative, got %d", def.Name, def.StepAlloc)
		}
		g, err := s.NewGrid(def.Name, def.Scratch, def.Dims...)
		if err != nil {
			return err
		}
		g.SetStepAllocSize(def.StepAlloc)
		g.SetDynamicStepAlloc(def.DynamicStepAlloc)
		logger.Debug("Build: Created grid.", "grid", g.Descr(), "scratch", g.IsScratch())
	}
	return nil
}

// addPack translates and adds every equation of pack to s.
func addPack(ctx context.Context, conv config.Converter, pack *config.Pack, s *soln.Solution) error {
	logger := ctxlog.FromContext(ctx).With("pack", pack.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	for _, def := range pack.Equations {
		lhs, err := translateLHS(ctx, conv, def, s)
		if err != nil {
			return fmt.Errorf("pack %q, equation %q: %w", pack.Name, def.Name, err)
		}
		rhs, err := conv.ToNumExpr(ctx, def.RHS, s)
		if err != nil {
			return fmt.Errorf("pack %q, equation %q: %w", pack.Name, def.Name, err)
		}
		eq, err := s.AddEquation(pack.Name, def.Name, lhs, rhs)
		if err != nil {
			return err
		}
		logger.Debug("Build: Added equation.", "equation", eq.Name, "points", len(eq.Points()))
	}
	return nil
}

// translateLHS translates the written side of an equation, which must be a
// single grid point at the current domain index, e.g. u(t + 1, x, y).
func translateLHS(ctx context.Context, conv config.Converter, def *config.Equation, s *soln.Solution) (*grid.Point, error) {
	e, err := conv.ToNumExpr(ctx, def.LHS, s)
	if err != nil {
		return nil, err
	}
	p, ok := e.(*grid.Point)
	if !ok {
		return nil, fmt.Errorf("left-hand side must be a single grid access, got %s", e)
	}

	g := p.Grid()
	offsets := p.Offsets()
	for _, d := range g.Dims() {
		switch d.Type() {
		case dims.Step:
			if !offsets.Has(d.Name()) {
				return nil, fmt.Errorf("left-hand side %s: step index must be %s plus or minus a constant", p, d.Name())
			}
		case dims.Domain:
			if ofs, ok := offsets.Lookup(d.Name()); !ok || ofs != 0 {
				return nil, fmt.Errorf("left-hand side %s: domain index must be exactly %s", p, d.Name())
			}
		}
	}
	return p, nil
}
