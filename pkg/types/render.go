// Package types models the GitHub Actions building blocks the workflow
// compiler emits and pipeline definitions embed.
package types

import (
	"sort"

	"github.com/goccy/go-yaml"
)

// StringMap converts m to a mapping sorted by key.
func StringMap(m map[string]string) yaml.MapSlice {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(yaml.MapSlice, 0, len(keys))
	for _, k := range keys {
		out = append(out, yaml.MapItem{Key: k, Value: m[k]})
	}
	return out
}

// SortedMap converts m, and every map nested inside it, to mappings sorted
// by key.
func SortedMap(m map[string]any) yaml.MapSlice {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(yaml.MapSlice, 0, len(keys))
	for _, k := range keys {
		out = append(out, yaml.MapItem{Key: k, Value: sortedValue(m[k])})
	}
	return out
}

func sortedValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return SortedMap(val)
	case map[string]string:
		return StringMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sortedValue(item)
		}
		return out
	default:
		return v
	}
}

func appendString(out yaml.MapSlice, key, value string) yaml.MapSlice {
	if value == "" {
		return out
	}
	return append(out, yaml.MapItem{Key: key, Value: value})
}

func appendStrings(out yaml.MapSlice, key string, values []string) yaml.MapSlice {
	if len(values) == 0 {
		return out
	}
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return append(out, yaml.MapItem{Key: key, Value: list})
}
