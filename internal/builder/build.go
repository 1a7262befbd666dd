package builder

import (
	"context"
	"fmt"

	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/soln"
)

// Build constructs a complete, analysed solution from a definition model.
func Build(ctx context.Context, model *config.Model, conv config.Converter) (*soln.Solution, error) {
	logger := ctxlog.FromContext(ctx)
	if model == nil || model.Solution == nil || model.Dimensions == nil {
		return nil, fmt.Errorf("incomplete definition model: a solution and its dimensions are required")
	}
	logger = logger.With("solution", model.Solution.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Build: Starting solution construction.")

	d, err := buildDimensions(model.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("solution %q: %w", model.Solution.Name, err)
	}
	logger.Debug("Build: Dimensions classified.", "step", d.StepDimName(), "domain", d.DomainDimNames(), "fold", d.Fold.String())

	s := soln.New(model.Solution.Name, d)
	s.SetDescription(model.Solution.Description)

	if err := createGrids(ctx, model.Grids, s); err != nil {
		return nil, err
	}
	logger.Debug("Build: Grid creation complete.", "grid_count", len(model.Grids))

	if len(model.Packs) == 0 {
		logger.Warn("Build: Solution has no equations; every halo will be empty.")
	}
	for _, pack := range model.Packs {
		if err := addPack(ctx, conv, pack, s); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: Equations added.", "pack_count", len(model.Packs))

	if err := s.Analyze(ctx); err != nil {
		return nil, err
	}
	logger.Info("Build: Solution construction successful.")
	return s, nil
}
