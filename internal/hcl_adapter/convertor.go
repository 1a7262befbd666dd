package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/expr"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

var _ config.Converter = (*Converter)(nil)

// ToNumExpr translates a native HCL expression into an expression tree.
//
// The expression is walked twice: a dry pass that validates every name,
// operator and grid arity without creating points, then the real pass. Grid
// accesses record their indices on the grid, so nothing is recorded for an
// expression that has any error.
func (c *Converter) ToNumExpr(ctx context.Context, e hcl.Expression, scope config.Scope) (expr.NumExpr, error) {
	logger := ctxlog.FromContext(ctx)

	syn, ok := e.(hclsyntax.Expression)
	if !ok {
		return nil, diagError("Unsupported expression",
			"Equation sides must be written in native HCL syntax.", e.Range())
	}

	if _, diags := (&translator{scope: scope, dry: true}).translate(syn); diags.HasErrors() {
		logger.Debug("Expression rejected.", "range", e.Range().String(), "errors", len(diags.Errs()))
		return nil, diags
	}
	out, diags := (&translator{scope: scope}).translate(syn)
	if diags.HasErrors() {
		return nil, diags
	}
	logger.Debug("Translated expression.", "range", e.Range().String(), "expr", out.String())
	return out, nil
}
