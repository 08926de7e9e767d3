// Package parser validates pipeline definition files and maps validation
// failures back to positions in the YAML source.
package parser

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/github/gh-pipelines/pkg/console"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var schemaLog = logger.New("parser:schema")

const pipelineSchemaURL = "pipeline.schema.json"

//go:embed schemas/pipeline.schema.json
var pipelineSchemaJSON []byte

var compilePipelineSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	schemaLog.Print("Compiling pipeline schema")
	var doc any
	if err := json.Unmarshal(pipelineSchemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(pipelineSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add pipeline schema: %w", err)
	}
	return compiler.Compile(pipelineSchemaURL)
})

// PipelineSchema returns the embedded JSON schema for pipeline definitions.
func PipelineSchema() []byte {
	return pipelineSchemaJSON
}

// SchemaError reports every schema violation found in a definition file.
type SchemaError struct {
	File   string
	Errors []console.CompilerError
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	for i, ce := range e.Errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(console.FormatError(ce))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ValidatePipelineYAML checks content against the pipeline schema. Syntax
// errors and schema violations are both reported as *SchemaError with
// source positions; file is only used for display.
func ValidatePipelineYAML(content []byte, file string) error {
	schemaLog.Printf("Validating pipeline definition: %s", file)

	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return &SchemaError{File: file, Errors: []console.CompilerError{NewYAMLSyntaxError(file, content, err)}}
	}

	instance, err := toJSONValue(raw)
	if err != nil {
		return fmt.Errorf("failed to convert %s for validation: %w", file, err)
	}

	schema, err := compilePipelineSchema()
	if err != nil {
		return err
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}

	paths := ExtractJSONPathFromValidationError(err)
	if len(paths) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}

	source := string(content)
	schemaErr := &SchemaError{File: file}
	for _, p := range paths {
		loc := LocateJSONPathInYAMLWithAdditionalProperties(source, p.Path, p.Message)
		message := p.Message
		if p.Path != "" {
			message = fmt.Sprintf("%s: %s", strings.TrimPrefix(p.Path, "/"), message)
		}
		schemaErr.Errors = append(schemaErr.Errors, console.CompilerError{
			Position: console.ErrorPosition{File: file, Line: loc.Line, Column: loc.Column},
			Type:     "error",
			Message:  message,
			Context:  contextLines(content, loc.Line),
		})
	}
	schemaLog.Printf("Schema validation found %d errors", len(schemaErr.Errors))
	return schemaErr
}

// toJSONValue normalises a YAML-decoded value into the shapes produced by
// encoding/json, which is what the schema validator expects.
func toJSONValue(v any) (any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
