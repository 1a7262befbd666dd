package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/grid"
	"github.com/vk/stencilgrid/internal/idx"
	"github.com/vk/stencilgrid/internal/report"
	"github.com/vk/stencilgrid/internal/scan"
	"github.com/vk/stencilgrid/internal/soln"
	"github.com/vk/stencilgrid/internal/tuple"
)

// coverageError reports grids whose walk did not visit every point of the
// padded domain exactly once.
type coverageError struct {
	grids []string
}

func (e *coverageError) Error() string {
	return fmt.Sprintf("coverage check failed for grids %v", e.grids)
}

func isCoverageError(err error) bool {
	var ce *coverageError
	return errors.As(err, &ce)
}

// scanGrids walks the domain of every grid, widened by the grid's halos, and
// adds the result to rep. Coverage failures are collected and returned as a
// *coverageError once all grids are done; any other error stops the scan.
func (a *App) scanGrids(ctx context.Context, def *config.Scan, s *soln.Solution, rep *report.Report) error {
	logger := ctxlog.FromContext(ctx)
	if a.config.Scan == ScanOff {
		logger.Debug("Scan disabled.")
		return nil
	}
	if def == nil {
		logger.Debug("No scan block found, skipping the run-time walk.")
		return nil
	}

	plan, err := newPlan(def, s.Dims())
	if err != nil {
		return err
	}
	logger.Info("Scanning grids.", "mode", a.config.Scan, "range", plan.String(), "levels", plan.NumLevels())

	var failed []string
	for _, g := range s.Grids().All() {
		left, right, ok := domainHalos(g)
		if !ok {
			logger.Debug("Grid has no domain dimensions, not scanned.", "grid", g.Name())
			continue
		}
		p := plan.Extend(left, right)

		res := report.ScanResult{Grid: g.Name(), Range: p.String()}
		var stats scan.Stats
		switch a.config.Scan {
		case ScanVerify:
			stats, err = scan.Coverage(ctx, p)
			if err != nil && ctx.Err() == nil {
				logger.Error("Coverage check failed.", "grid", g.Name(), "error", err)
				failed = append(failed, g.Name())
				err = nil
			} else {
				res.Verified = err == nil
			}
		default:
			stats, err = p.WalkParallel(ctx, a.config.WorkerCount, func(*idx.ScanIndices) error { return nil })
		}
		if err != nil {
			return fmt.Errorf("grid %q: %w", g.Name(), err)
		}

		res.Tiles, res.Points = stats.Tiles, stats.Points
		logger.Info("Grid scanned.", "grid", g.Name(), "range", res.Range, "tiles", res.Tiles, "points", res.Points, "verified", res.Verified)
		rep.AddScan(res)
	}

	if len(failed) > 0 {
		return &coverageError{grids: failed}
	}
	return nil
}

// newPlan lays the scan block out in domain order. Every domain dimension
// must be given a size.
func newPlan(def *config.Scan, d *dims.Dimensions) (*scan.Plan, error) {
	domain := d.DomainDimNames()
	for name := range def.Domain {
		if !slices.Contains(domain, name) {
			return nil, fmt.Errorf("scan domain: %q is not a domain dimension", name)
		}
	}
	for _, name := range domain {
		if _, ok := def.Domain[name]; !ok {
			return nil, fmt.Errorf("scan domain: missing size for dimension %q", name)
		}
	}

	tiles := make([]tuple.IntTuple, len(def.Levels))
	for i, lvl := range def.Levels {
		tiles[i] = tuple.FromMap(domain, lvl)
	}
	groups := make([]tuple.IntTuple, len(def.Groups))
	for i, grp := range def.Groups {
		groups[i] = tuple.FromMap(domain, grp)
	}

	plan, err := scan.NewPlan(tuple.FromMap(domain, def.Domain), tiles, groups)
	if err != nil {
		return nil, fmt.Errorf("invalid scan block: %w", err)
	}
	return plan, nil
}

// domainHalos returns the global halos of g over its domain dimensions. ok is
// false when g has none.
func domainHalos(g *grid.Grid) (left, right tuple.IntTuple, ok bool) {
	for _, d := range g.Dims() {
		if d.Type() != dims.Domain {
			continue
		}
		ok = true
		left.AddDimBack(d.Name(), g.HaloSize(d.Name(), grid.Left))
		right.AddDimBack(d.Name(), g.HaloSize(d.Name(), grid.Right))
	}
	return left, right, ok
}
