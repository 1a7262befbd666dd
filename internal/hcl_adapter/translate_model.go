// This file contains the logic for translating HCL schema structs into the
// format-agnostic definition model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/ctxlog"
)

// translateGrid converts the HCL-specific grid schema into the agnostic model.
func (l *Loader) translateGrid(g *GridBlock) *config.Grid {
	return &config.Grid{
		Name:             g.Name,
		Dims:             g.Dims,
		Scratch:          g.Scratch,
		StepAlloc:        g.StepAlloc,
		DynamicStepAlloc: g.DynamicStepAlloc,
	}
}

// mergePack appends the equations of p to the model pack of the same name,
// creating it on first sight.
func (l *Loader) mergePack(ctx context.Context, m *config.Model, p *PackBlock) {
	logger := ctxlog.FromContext(ctx).With("pack", p.Name)

	pk, ok := m.Pack(p.Name)
	if !ok {
		pk = &config.Pack{Name: p.Name}
		m.Packs = append(m.Packs, pk)
	} else {
		logger.Debug("Merging equations into an existing pack.")
	}
	for _, eq := range p.Equations {
		pk.Equations = append(pk.Equations, &config.Equation{
			Name: eq.Name,
			LHS:  eq.LHS,
			RHS:  eq.RHS,
		})
	}
}

// translateDimensions converts the dimensions block, evaluating the fold and
// cluster shapes.
func (l *Loader) translateDimensions(ctx context.Context, d *DimensionsBlock) (*config.Dimensions, error) {
	fold, diags := decodeSizes(ctx, d.Fold, "fold")
	if diags.HasErrors() {
		return nil, fmt.Errorf("in dimensions block: %w", diags)
	}
	cluster, diags := decodeSizes(ctx, d.Cluster, "cluster")
	if diags.HasErrors() {
		return nil, fmt.Errorf("in dimensions block: %w", diags)
	}
	return &config.Dimensions{
		Step:    d.Step,
		Domain:  d.Domain,
		Misc:    d.Misc,
		Fold:    fold,
		Cluster: cluster,
	}, nil
}

// translateScan converts the scan block.
func (l *Loader) translateScan(ctx context.Context, s *ScanBlock) (*config.Scan, error) {
	domain, diags := decodeSizes(ctx, s.Domain, "domain")
	if diags.HasErrors() {
		return nil, fmt.Errorf("in scan block: %w", diags)
	}
	levels, diags := decodeSizeList(ctx, s.Levels, "levels")
	if diags.HasErrors() {
		return nil, fmt.Errorf("in scan block: %w", diags)
	}
	groups, diags := decodeSizeList(ctx, s.Groups, "groups")
	if diags.HasErrors() {
		return nil, fmt.Errorf("in scan block: %w", diags)
	}
	return &config.Scan{Domain: domain, Levels: levels, Groups: groups}, nil
}
