package report

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Native returns the report as plain maps, slices, strings, float64s and
// bools, the shape event emitters and template engines expect.
func (r *Report) Native() (map[string]any, error) {
	ty, err := gocty.ImpliedType(*r)
	if err != nil {
		return nil, fmt.Errorf("unable to infer cty.Type of report: %w", err)
	}
	val, err := gocty.ToCtyValue(*r, ty)
	if err != nil {
		return nil, fmt.Errorf("failed to convert report: %w", err)
	}
	out, err := ctyToNative(val)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// ctyToNative converts a cty.Value to a Go interface{}.
func ctyToNative(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			nv, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = nv
		}
		return out, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0)
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			nv, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
	}
}
