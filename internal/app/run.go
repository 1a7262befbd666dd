package app

import (
	"context"
	"fmt"

	"github.com/vk/stencilgrid/internal/builder"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/publish"
	"github.com/vk/stencilgrid/internal/report"
)

// Run loads the solution, analyses it, walks the grids when a scan is
// configured and writes the report. A failed coverage check still writes the
// report before the error is returned.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "grid_path", a.config.GridPath)
	defer a.setPhase("done")

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.stopHealthcheckServer()
	}

	a.setPhase("loading")
	model, conv, err := a.loader.Load(ctx, a.config.GridPath)
	if err != nil {
		return fmt.Errorf("failed to load solution: %w", err)
	}

	a.setPhase("building")
	s, err := builder.Build(ctx, model, conv)
	if err != nil {
		return fmt.Errorf("failed to build solution: %w", err)
	}
	rep := report.New(s, a.now())

	a.setPhase("scanning")
	scanErr := a.scanGrids(ctx, model.Scan, s, rep)
	if scanErr != nil && !isCoverageError(scanErr) {
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	a.setPhase("rendering")
	if err := a.writeReport(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if a.config.Publish.URL != "" {
		a.setPhase("publishing")
		p, err := publish.New(a.config.Publish)
		if err != nil {
			return err
		}
		if err := p.Publish(ctx, rep); err != nil {
			return fmt.Errorf("failed to publish report: %w", err)
		}
	}

	if scanErr != nil {
		return scanErr
	}
	a.logger.Info("🏁 Solution processed.", "solution", s.Name(), "grids", len(rep.Grids), "scans", len(rep.Scans))
	return nil
}
