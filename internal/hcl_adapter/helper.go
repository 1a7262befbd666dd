package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

var (
	sizesType    = cty.Map(cty.Number)
	sizeListType = cty.List(sizesType)
)

// decodeSizes evaluates a literal `{ x = 4, y = 2 }` into a map of whole
// numbers. An omitted attribute yields nil.
func decodeSizes(ctx context.Context, expr hcl.Expression, attrName string) (map[string]int, hcl.Diagnostics) {
	var out map[string]int
	diags := decodeLiteral(ctx, expr, attrName, sizesType, &out)
	return out, diags
}

// decodeSizeList evaluates a literal list of size maps.
func decodeSizeList(ctx context.Context, expr hcl.Expression, attrName string) ([]map[string]int, hcl.Diagnostics) {
	var out []map[string]int
	diags := decodeLiteral(ctx, expr, attrName, sizeListType, &out)
	return out, diags
}

// decodeLiteral evaluates expr without variables, converts it to want and
// stores it in the Go value target points to.
func decodeLiteral(ctx context.Context, expr hcl.Expression, attrName string, want cty.Type, target any) hcl.Diagnostics {
	if !isExprDefined(ctx, expr, attrName) {
		return nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return diags
	}
	if val.IsNull() {
		return nil
	}

	converted, err := convert.Convert(val, want)
	if err != nil {
		return diagError(
			fmt.Sprintf("Invalid %s", attrName),
			fmt.Sprintf("The %s attribute must be %s: %s.", attrName, describeSizes(want), err),
			expr.Range(),
		)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return diagError(
			fmt.Sprintf("Invalid %s", attrName),
			fmt.Sprintf("The %s attribute must hold whole numbers: %s.", attrName, err),
			expr.Range(),
		)
	}
	return nil
}

func describeSizes(t cty.Type) string {
	if t.IsListType() {
		return "a list of dimension size maps"
	}
	return "a map of dimension sizes"
}
