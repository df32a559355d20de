package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

type increment struct {
	by float64
}

type deleteField struct{}

// Increment adds n to a numeric field when the write is applied. Missing
// fields count as zero. Concurrent increments never lose an update.
func Increment(n int) any {
	return increment{by: float64(n)}
}

// DeleteField removes the addressed key when used as an update value.
var DeleteField any = deleteField{}

// Encode converts a tagged struct into document data.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode fills out from document data.
func Decode(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyUpdate returns a copy of data with fields merged in. Keys are dotted
// field paths; values may be Increment or DeleteField.
func ApplyUpdate(data map[string]any, fields map[string]any) (map[string]any, error) {
	out := cloneMap(data)
	for key, value := range fields {
		parts := strings.Split(key, ".")
		parent := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := parent[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				parent[p] = next
			}
			parent = next
		}
		leaf := parts[len(parts)-1]
		switch v := value.(type) {
		case deleteField:
			delete(parent, leaf)
		case increment:
			cur, _ := toFloat(parent[leaf])
			parent[leaf] = cur + v.by
		default:
			n, err := normalize(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			parent[leaf] = n
		}
	}
	return out, nil
}

// PrepareSet normalizes data for a full overwrite. Transforms are only
// meaningful in updates.
func PrepareSet(data map[string]any) (map[string]any, error) {
	n, err := normalize(data)
	if err != nil {
		return nil, fmt.Errorf("set document: %w", err)
	}
	m, ok := n.(map[string]any)
	if !ok {
		m = map[string]any{}
	}
	return m, nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = cloneValue(e)
		}
		return cp
	}
	return v
}
