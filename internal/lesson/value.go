package lesson

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/kangezhang/learngraphics/internal/track"
)

// exprDefined reports whether an optional expression was actually present in
// the source. The decoder fills omitted attributes with non-nil, zero-width
// expression placeholders, so a nil check is insufficient; a real attribute
// occupies bytes in the file.
func exprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}

// evalValue evaluates a property keyframe's value expression into the
// number-or-string track value.
func evalValue(expr hcl.Expression) (track.Value, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return track.Value{}, fmt.Errorf("evaluating value: %w", diags)
	}
	switch {
	case v.Type() == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return track.Value{}, fmt.Errorf("converting numeric value: %w", err)
		}
		return track.NumberValue(f), nil
	case v.Type() == cty.String:
		return track.TextValue(v.AsString()), nil
	}
	return track.Value{}, fmt.Errorf("value must be a number or a string, got %s", v.Type().FriendlyName())
}

// evalObject evaluates a free-form expression (payloads, event params) into a
// plain Go map.
func evalObject(expr hcl.Expression) (map[string]any, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating object: %w", diags)
	}
	native, err := ctyToNative(v)
	if err != nil {
		return nil, err
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())
	}
	return m, nil
}

// bodyAttributes converts a config block's raw attributes into a plain map.
func bodyAttributes(body hcl.Body) (map[string]any, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading config attributes: %w", diags)
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating config attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(v)
		if err != nil {
			return nil, fmt.Errorf("converting config attribute %q: %w", name, err)
		}
		out[name] = native
	}
	return out, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go
// counterpart: float64 for numbers, []any for lists/tuples, map[string]any
// for maps/objects.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, fmt.Errorf("could not convert cty.Bool to bool: %w", err)
		}
		return b, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0)
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			keyStr := key.AsString()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", keyStr, err)
			}
			m[keyStr] = native
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
