package state

import (
	"encoding/json"
	"fmt"
)

// Clone returns a deep copy of a JSON-shaped map. Nested maps and slices are
// copied; scalar values are shared.
func Clone(m Map) Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}

// Validate reports whether m can round-trip through JSON. Functions,
// channels and cyclic structures are rejected.
func Validate(m Map) error {
	if _, err := json.Marshal(m); err != nil {
		return fmt.Errorf("state is not JSON-serializable: %w", err)
	}
	return nil
}
