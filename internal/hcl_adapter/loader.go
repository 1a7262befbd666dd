package hcl_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load orchestrates the entire HCL loading process. Blocks may be spread
// over any number of files; packs with the same name are merged in file
// order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindAll(paths, ".hcl")
	if err != nil {
		return nil, nil, err
	}
	if len(hclFiles) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	model := &config.Model{}
	var dimsBlock *DimensionsBlock
	var scanBlock *ScanBlock

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		logger.Debug("Decoded HCL file.", "file", file, "grids", len(root.Grids), "packs", len(root.Packs))

		for _, s := range root.Solutions {
			if model.Solution != nil {
				return nil, nil, fmt.Errorf("%s: solution %q: only one solution block is allowed, %q is already defined", file, s.Name, model.Solution.Name)
			}
			model.Solution = &config.Solution{Name: s.Name, Description: s.Description}
		}
		for _, d := range root.Dimensions {
			if dimsBlock != nil {
				return nil, nil, fmt.Errorf("%s: only one dimensions block is allowed", file)
			}
			dimsBlock = d
		}
		for _, s := range root.Scans {
			if scanBlock != nil {
				return nil, nil, fmt.Errorf("%s: only one scan block is allowed", file)
			}
			scanBlock = s
		}
		for _, g := range root.Grids {
			model.Grids = append(model.Grids, l.translateGrid(g))
		}
		for _, p := range root.Packs {
			l.mergePack(ctx, model, p)
		}
	}

	if model.Solution == nil {
		return nil, nil, errors.New("no solution block found")
	}
	if dimsBlock == nil {
		return nil, nil, fmt.Errorf("solution %q: no dimensions block found", model.Solution.Name)
	}
	if model.Dimensions, err = l.translateDimensions(ctx, dimsBlock); err != nil {
		return nil, nil, err
	}
	if scanBlock != nil {
		if model.Scan, err = l.translateScan(ctx, scanBlock); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("HCL loading complete.", "solution", model.Solution.Name, "grids", len(model.Grids), "packs", len(model.Packs), "scan", model.Scan != nil)
	return model, NewConverter(), nil
}

// diagError builds a single error diagnostic.
func diagError(summary, detail string, subject hcl.Range) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject.Ptr(),
	}}
}
