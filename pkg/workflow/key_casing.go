package workflow

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/goccy/go-yaml"
)

var keyCasingLog = logger.New("workflow:key_casing")

// envKey holds environment variable names, which are never rewritten.
const envKey = "env"

// normalizeKeys rewrites camelCase mapping keys at every depth to lower
// case words joined by sep.
func normalizeKeys(v any, sep string) any {
	return normalizeKeysWith(v, sep, sep)
}

// normalizeTriggerKeys joins top-level trigger names with "_"
// (workflow_dispatch) and their settings with "-" (branches-ignore).
func normalizeTriggerKeys(v any) any {
	return normalizeKeysWith(v, "_", "-")
}

func normalizeKeysWith(v any, sep, nestedSep string) any {
	switch val := v.(type) {
	case yaml.MapSlice:
		out := make(yaml.MapSlice, 0, len(val))
		for _, item := range val {
			key := fmt.Sprint(item.Key)
			if key == envKey {
				out = append(out, yaml.MapItem{Key: key, Value: preserveKeys(item.Value)})
				continue
			}
			out = append(out, yaml.MapItem{
				Key:   decamelize(key, sep),
				Value: normalizeKeysWith(item.Value, nestedSep, nestedSep),
			})
		}
		return out
	case map[string]any:
		return normalizeKeysWith(types.SortedMap(val), sep, nestedSep)
	case map[string]string:
		return normalizeKeysWith(types.StringMap(val), sep, nestedSep)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeKeysWith(item, sep, nestedSep)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

// preserveKeys only gives plain maps a stable order.
func preserveKeys(v any) any {
	switch val := v.(type) {
	case map[string]string:
		return types.StringMap(val)
	case map[string]any:
		return types.SortedMap(val)
	default:
		return v
	}
}

// decamelize splits key at lower-to-upper and acronym boundaries, joins the
// words with sep and lower-cases the result: "idToken" -> "id-token",
// "HTTPServer" -> "http-server". Existing punctuation is kept.
func decamelize(key, sep string) string {
	if !strings.ContainsFunc(key, unicode.IsUpper) {
		return key
	}
	words := camelcase.Split(key)
	var b strings.Builder
	for i, w := range words {
		if i > 0 && startsUpper(w) && endsAlnum(words[i-1]) {
			b.WriteString(sep)
		}
		b.WriteString(w)
	}
	out := strings.ToLower(b.String())
	keyCasingLog.Printf("Normalized key %s -> %s", key, out)
	return out
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func endsAlnum(s string) bool {
	r := []rune(s)
	if len(r) == 0 {
		return false
	}
	last := r[len(r)-1]
	return unicode.IsLetter(last) || unicode.IsDigit(last)
}
