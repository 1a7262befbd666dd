package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/stencilgrid/internal/dims"
	"github.com/vk/stencilgrid/internal/expr"
	"github.com/vk/stencilgrid/internal/grid"
)

// Loader is the interface for a format-specific definition loader.
type Loader interface {
	// Load reads definitions from the given paths, translates them into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Scope resolves the names an equation may refer to.
type Scope interface {
	Dim(name string) (*dims.Dim, bool)
	Grid(name string) (*grid.Grid, bool)
}

// Converter turns raw equation sides into symbolic expressions. It is the
// bridge between the source format and the solution model.
type Converter interface {
	// ToNumExpr translates e into an expression tree. Grid accesses become
	// *grid.Point nodes and are recorded on their grid as a side effect.
	// Every user mistake (unknown names, wrong arity, unsupported syntax)
	// is returned as an error before any grid is touched.
	ToNumExpr(ctx context.Context, e hcl.Expression, scope Scope) (expr.NumExpr, error)
}
