package record

import (
	"encoding/json"
	"strings"
)

// Clean prunes nil values, blank strings, empty maps and empty lists at any
// depth. Maps and lists emptied by the pruning are removed as well.
func Clean(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			c := Clean(val)
			if isBlank(c) {
				continue
			}
			out[k] = c
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			c := Clean(val)
			if isBlank(c) {
				continue
			}
			out = append(out, c)
		}
		return out
	default:
		return v
	}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// ToMap renders v through its JSON form and cleans the result
func ToMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	cleaned, _ := Clean(m).(map[string]any)
	if cleaned == nil {
		cleaned = map[string]any{}
	}
	return cleaned, nil
}
