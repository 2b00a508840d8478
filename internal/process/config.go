package process

import "fmt"

// Config is the plain structured configuration a process is built from, as
// produced by the lesson loader (HCL attribute values converted to Go). The
// accessors tolerate the loose typing of decoded documents: JSON and HCL
// both deliver numbers as float64, but ints can appear after in-memory
// construction in tests.
type Config map[string]any

// Float reads a numeric field.
func (c Config) Float(key string) (float64, bool) {
	switch v := c[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// FloatOr reads a numeric field with a default.
func (c Config) FloatOr(key string, def float64) float64 {
	if v, ok := c.Float(key); ok {
		return v
	}
	return def
}

// Int reads an integral field.
func (c Config) Int(key string) (int, bool) {
	if v, ok := c.Float(key); ok {
		return int(v), true
	}
	return 0, false
}

// IntOr reads an integral field with a default.
func (c Config) IntOr(key string, def int) int {
	if v, ok := c.Int(key); ok {
		return v
	}
	return def
}

// String reads a string field.
func (c Config) String(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok
}

// Floats reads a fixed-length numeric vector field.
func (c Config) Floats(key string, n int) ([]float64, error) {
	raw, ok := c[key].([]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be a list of %d numbers", key, n)
	}
	if len(raw) != n {
		return nil, fmt.Errorf("field %q must have %d elements, got %d", key, n, len(raw))
	}
	out := make([]float64, n)
	for i, e := range raw {
		switch v := e.(type) {
		case float64:
			out[i] = v
		case int:
			out[i] = float64(v)
		default:
			return nil, fmt.Errorf("field %q element %d is not a number", key, i)
		}
	}
	return out, nil
}

// StringMapOfStrings reads an adjacency-style field: a map from string keys
// to lists of strings.
func (c Config) StringMapOfStrings(key string) (map[string][]string, error) {
	raw, ok := c[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be a map of string lists", key)
	}
	out := make(map[string][]string, len(raw))
	for k, e := range raw {
		list, ok := e.([]any)
		if !ok {
			return nil, fmt.Errorf("field %q entry %q is not a list", key, k)
		}
		strs := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field %q entry %q element %d is not a string", key, k, i)
			}
			strs[i] = s
		}
		out[k] = strs
	}
	return out, nil
}
