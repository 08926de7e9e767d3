package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/goccy/go-yaml"
)

var patchesLog = logger.New("workflow:patches")

// PatchOperation is one RFC 6902 operation applied to the rendered workflow
// before it is written. Paths address the normalized document, for example
// "/jobs/Build-Build/runs-on".
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value,omitempty"`
}

// PatchAdd inserts value at path.
func PatchAdd(path string, value any) PatchOperation {
	return PatchOperation{Op: "add", Path: path, Value: value}
}

// PatchRemove deletes the value at path.
func PatchRemove(path string) PatchOperation {
	return PatchOperation{Op: "remove", Path: path}
}

// PatchReplace overwrites the value at path.
func PatchReplace(path string, value any) PatchOperation {
	return PatchOperation{Op: "replace", Path: path, Value: value}
}

// PatchMove moves the value at from to path.
func PatchMove(from, path string) PatchOperation {
	return PatchOperation{Op: "move", Path: path, From: from}
}

// PatchCopy copies the value at from to path.
func PatchCopy(from, path string) PatchOperation {
	return PatchOperation{Op: "copy", Path: path, From: from}
}

// PatchTest fails the patch list unless the value at path equals value.
func PatchTest(path string, value any) PatchOperation {
	return PatchOperation{Op: "test", Path: path, Value: value}
}

func (p PatchOperation) tree() yaml.MapSlice {
	out := yaml.MapSlice{{Key: "op", Value: p.Op}, {Key: "path", Value: p.Path}}
	switch p.Op {
	case "move", "copy":
		out = append(out, yaml.MapItem{Key: "from", Value: p.From})
	case "add", "replace", "test":
		out = append(out, yaml.MapItem{Key: "value", Value: p.Value})
	}
	return out
}

// applyPatches applies ops in order. The tree round-trips through JSON with
// mapping order preserved.
func applyPatches(tree yaml.MapSlice, ops []PatchOperation) (yaml.MapSlice, error) {
	if len(ops) == 0 {
		return tree, nil
	}
	doc, err := orderedJSON(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow for patching: %w", err)
	}
	rawOps := make([]any, len(ops))
	for i, op := range ops {
		rawOps[i] = op.tree()
	}
	opsJSON, err := orderedJSON(rawOps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch operations: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}
	patched, err := patch.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch: %w", err)
	}

	var out yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(patched, &out, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("failed to decode patched workflow: %w", err)
	}
	patchesLog.Printf("Applied %d patch operations", len(ops))
	return out, nil
}

// orderedJSON encodes v as JSON, keeping the order of MapSlice keys and
// sorting plain maps.
func orderedJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case yaml.MapSlice:
		buf.WriteByte('{')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(fmt.Sprint(item.Key))
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, item.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case map[string]any:
		return writeJSON(buf, types.SortedMap(val))
	case map[string]string:
		return writeJSON(buf, types.StringMap(val))
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}
