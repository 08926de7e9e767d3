package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/goccy/go-yaml/ast"
	yamlparser "github.com/goccy/go-yaml/parser"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var jsonPathLog = logger.New("parser:json_path_locator")

// JSONPathLocation represents a location in YAML source corresponding to a JSON path
type JSONPathLocation struct {
	Line   int
	Column int
	Found  bool
}

// JSONPathInfo holds information about a validation error and its path
type JSONPathInfo struct {
	Path     string   // JSON pointer like "/stages/0/region"
	Message  string   // Error message without the location prefix
	Location []string // Instance location from jsonschema (e.g., ["stages", "0", "region"])
}

// ExtractJSONPathFromValidationError flattens a jsonschema validation error
// into its leaf causes. Duplicate leaves, which oneOf branches tend to
// produce, are reported once.
func ExtractJSONPathFromValidationError(err error) []JSONPathInfo {
	validationError, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil
	}

	var paths []JSONPathInfo
	seen := make(map[string]bool)
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		info := JSONPathInfo{
			Path:     convertInstanceLocationToJSONPath(e.InstanceLocation),
			Message:  cleanValidationMessage(e.Error()),
			Location: e.InstanceLocation,
		}
		key := info.Path + "\x00" + info.Message
		if seen[key] {
			return
		}
		seen[key] = true
		paths = append(paths, info)
	}
	walk(validationError)

	jsonPathLog.Printf("Extracted %d leaf validation errors", len(paths))
	return paths
}

// cleanValidationMessage strips the "jsonschema validation failed" banner and
// the "- at '/path':" prefix from a rendered validation error.
func cleanValidationMessage(msg string) string {
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- at ") {
			continue
		}
		if idx := strings.Index(line, "': "); idx >= 0 {
			return line[idx+3:]
		}
		return strings.TrimPrefix(line, "- ")
	}
	return strings.TrimSpace(msg)
}

// convertInstanceLocationToJSONPath converts jsonschema InstanceLocation to JSON path string
func convertInstanceLocationToJSONPath(location []string) string {
	if len(location) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, part := range location {
		sb.WriteString("/")
		sb.WriteString(part)
	}
	return sb.String()
}

// PathSegment represents a segment in a JSON path
type PathSegment struct {
	Type  string // "key" or "index"
	Value string // The raw value
	Index int    // Parsed index for array elements
}

// parseJSONPath parses a JSON path string into segments
func parseJSONPath(path string) []PathSegment {
	if path == "" || path == "/" {
		return []PathSegment{}
	}

	var segments []PathSegment
	for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if part == "" {
			continue
		}
		if index, err := strconv.Atoi(part); err == nil {
			segments = append(segments, PathSegment{Type: "index", Value: part, Index: index})
		} else {
			segments = append(segments, PathSegment{Type: "key", Value: part})
		}
	}
	return segments
}

var (
	additionalPropertiesPattern = regexp.MustCompile(`additional propert(?:y|ies) (.+?) not allowed`)
	quotedNamePattern           = regexp.MustCompile(`'([^']+)'`)
)

// extractAdditionalPropertyNames extracts property names from additional properties error messages
// Example: "additional properties 'invalid_prop', 'another_invalid' not allowed" -> ["invalid_prop", "another_invalid"]
func extractAdditionalPropertyNames(errorMessage string) []string {
	match := additionalPropertiesPattern.FindStringSubmatch(errorMessage)
	if len(match) < 2 {
		return []string{}
	}

	var properties []string
	for _, propMatch := range quotedNamePattern.FindAllStringSubmatch(match[1], -1) {
		if prop := strings.TrimSpace(propMatch[1]); prop != "" {
			properties = append(properties, prop)
		}
	}
	return properties
}

// LocateJSONPathInYAML finds the line/column position of a JSON path in YAML
// source. When the path does not fully resolve, the position of the deepest
// existing ancestor is returned with Found set to false.
func LocateJSONPathInYAML(yamlContent string, jsonPath string) JSONPathLocation {
	jsonPathLog.Printf("Locating JSON path in YAML: %s", jsonPath)

	file, err := yamlparser.ParseBytes([]byte(yamlContent), 0)
	if err != nil || len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return JSONPathLocation{Line: 1, Column: 1, Found: false}
	}
	return locateSegments(file.Docs[0].Body, parseJSONPath(jsonPath))
}

// LocateJSONPathInYAMLWithAdditionalProperties is LocateJSONPathInYAML with
// special handling for additional properties errors: the offending key
// itself is located rather than its enclosing object.
func LocateJSONPathInYAMLWithAdditionalProperties(yamlContent string, jsonPath string, errorMessage string) JSONPathLocation {
	propertyNames := extractAdditionalPropertyNames(errorMessage)
	if len(propertyNames) == 0 {
		return LocateJSONPathInYAML(yamlContent, jsonPath)
	}

	segments := parseJSONPath(jsonPath)
	segments = append(segments, PathSegment{Type: "key", Value: propertyNames[0]})
	return LocateJSONPathInYAML(yamlContent, convertSegmentsToJSONPath(segments))
}

func convertSegmentsToJSONPath(segments []PathSegment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Value
	}
	return convertInstanceLocationToJSONPath(parts)
}

func locateSegments(node ast.Node, segments []PathSegment) JSONPathLocation {
	if len(segments) == 0 {
		return JSONPathLocation{Line: 1, Column: 1, Found: true}
	}

	loc := positionOf(node)

	for _, segment := range segments {
		node = unwrapNode(node)
		switch segment.Type {
		case "key":
			mv := findMappingValue(node, segment.Value)
			if mv == nil {
				jsonPathLog.Printf("Key %q not found, using nearest ancestor", segment.Value)
				return loc
			}
			loc = positionOf(mv.Key)
			node = mv.Value
		case "index":
			seq, ok := node.(*ast.SequenceNode)
			if !ok || segment.Index < 0 || segment.Index >= len(seq.Values) {
				return loc
			}
			node = seq.Values[segment.Index]
			loc = positionOf(node)
		}
	}

	loc.Found = true
	return loc
}

func positionOf(node ast.Node) JSONPathLocation {
	if node == nil {
		return JSONPathLocation{Line: 1, Column: 1}
	}
	tk := node.GetToken()
	if tk == nil || tk.Position == nil {
		return JSONPathLocation{Line: 1, Column: 1}
	}
	return JSONPathLocation{Line: tk.Position.Line, Column: tk.Position.Column}
}

func unwrapNode(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			node = n.Value
		default:
			return node
		}
	}
}

func findMappingValue(node ast.Node, key string) *ast.MappingValueNode {
	var values []*ast.MappingValueNode
	switch n := node.(type) {
	case *ast.MappingNode:
		values = n.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{n}
	default:
		return nil
	}
	for _, mv := range values {
		if mv.Key == nil {
			continue
		}
		if tk := mv.Key.GetToken(); tk != nil && tk.Value == key {
			return mv
		}
	}
	return nil
}
