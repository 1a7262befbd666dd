// This file contains the logic for translating native HCL expression trees
// (e.g. `u(t + 1, x, y) * 0.5`) into stencil expressions.

package hcl_adapter

import (
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/stencilgrid/internal/config"
	"github.com/vk/stencilgrid/internal/expr"
	"github.com/zclconf/go-cty/cty"
)

// translator walks one hclsyntax tree. In dry mode grid accesses are
// validated but replaced by a constant placeholder.
type translator struct {
	scope config.Scope
	dry   bool
}

var binaryOps = map[*hclsyntax.Operation]expr.Op{
	hclsyntax.OpAdd:      expr.Add,
	hclsyntax.OpSubtract: expr.Sub,
	hclsyntax.OpMultiply: expr.Mul,
	hclsyntax.OpDivide:   expr.Div,
}

func (t *translator) translate(e hclsyntax.Expression) (expr.NumExpr, hcl.Diagnostics) {
	switch v := e.(type) {
	case *hclsyntax.ParenthesesExpr:
		return t.translate(v.Expression)

	case *hclsyntax.LiteralValueExpr:
		if v.Val.IsNull() || !v.Val.IsKnown() || !v.Val.Type().Equals(cty.Number) {
			return nil, diagError("Invalid literal",
				fmt.Sprintf("Only numbers may appear in an equation, got %s.", v.Val.Type().FriendlyName()), v.Range())
		}
		f, _ := v.Val.AsBigFloat().Float64()
		return expr.Const(f), nil

	case *hclsyntax.ScopeTraversalExpr:
		return t.translateName(v)

	case *hclsyntax.FunctionCallExpr:
		return t.translateAccess(v)

	case *hclsyntax.BinaryOpExpr:
		op, ok := binaryOps[v.Op]
		if !ok {
			return nil, diagError("Unsupported operator",
				"Equations support only the +, -, * and / operators.", v.Range())
		}
		lhs, diags := t.translate(v.LHS)
		rhs, rdiags := t.translate(v.RHS)
		diags = append(diags, rdiags...)
		if diags.HasErrors() {
			return nil, diags
		}
		return expr.Binary(op, lhs, rhs), nil

	case *hclsyntax.UnaryOpExpr:
		if v.Op != hclsyntax.OpNegate {
			return nil, diagError("Unsupported operator",
				"The only unary operator allowed in an equation is negation.", v.Range())
		}
		arg, diags := t.translate(v.Val)
		if diags.HasErrors() {
			return nil, diags
		}
		return expr.Neg(arg), nil

	default:
		return nil, diagError("Unsupported expression",
			fmt.Sprintf("Equations may contain numbers, dimensions, grid accesses and arithmetic, got %T.", v), e.Range())
	}
}

// translateName resolves a bare identifier, which must be a dimension.
func (t *translator) translateName(v *hclsyntax.ScopeTraversalExpr) (expr.NumExpr, hcl.Diagnostics) {
	if len(v.Traversal) != 1 {
		return nil, diagError("Invalid reference",
			"A reference in an equation must be a single dimension name.", v.Range())
	}
	name := v.Traversal.RootName()
	if d, ok := t.scope.Dim(name); ok {
		return expr.Index(d), nil
	}
	if _, ok := t.scope.Grid(name); ok {
		return nil, diagError("Grid used without indices",
			fmt.Sprintf("Grid %q must be accessed like %s(...).", name, name), v.Range())
	}
	return nil, diagError("Unknown name",
		fmt.Sprintf("There is no dimension named %q.", name), v.Range())
}

// translateAccess turns `u(args...)` into a point of grid u.
func (t *translator) translateAccess(v *hclsyntax.FunctionCallExpr) (expr.NumExpr, hcl.Diagnostics) {
	g, ok := t.scope.Grid(v.Name)
	if !ok {
		return nil, diagError("Unknown grid",
			fmt.Sprintf("There is no grid named %q.", v.Name), v.NameRange)
	}
	if v.ExpandFinal {
		return nil, diagError("Invalid grid access",
			"Argument expansion is not supported in grid accesses.", v.Range())
	}
	if len(v.Args) != g.NumDims() {
		return nil, diagError("Wrong number of indices",
			fmt.Sprintf("Grid %q has %d dimensions (%s) but %d indices were given.",
				g.Name(), g.NumDims(), strings.Join(g.DimNames(), ", "), len(v.Args)),
			v.Range())
	}

	var diags hcl.Diagnostics
	args := make([]expr.NumExpr, len(v.Args))
	for i, a := range v.Args {
		arg, adiags := t.translate(a)
		diags = append(diags, adiags...)
		if arg == nil {
			continue
		}
		if c, ok := expr.ConstPart(arg); ok && math.Abs(c) > expr.MaxIndex {
			diags = append(diags, diagError("Offset out of range",
				fmt.Sprintf("Index %d of grid %q has a constant part of %g; the limit is %d.",
					i+1, g.Name(), c, expr.MaxIndex),
				a.Range())...)
		}
		args[i] = arg
	}
	if diags.HasErrors() {
		return nil, diags
	}
	if t.dry {
		return expr.Const(0), nil
	}
	return g.At(args...), nil
}
