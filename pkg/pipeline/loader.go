package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/parser"
	"github.com/goccy/go-yaml"
)

var loaderLog = logger.New("pipeline:loader")

// DefaultDefinitionFile is the definition compiled when none is named.
const DefaultDefinitionFile = "pipeline.yaml"

// LoadDefinition reads and schema-validates the definition at path.
// Schema violations are returned as *parser.SchemaError.
func LoadDefinition(path string) (*Definition, error) {
	loaderLog.Printf("Loading pipeline definition: %s", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline definition: %w", err)
	}
	return ParseDefinition(content, path)
}

// ParseDefinition validates and decodes content. file is only used in
// diagnostics.
func ParseDefinition(content []byte, file string) (*Definition, error) {
	if err := parser.ValidatePipelineYAML(content, file); err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(content, &def); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", file, err)
	}
	loaderLog.Printf("Decoded definition %q: %d waves, %d stages, %d patches", def.Name, len(def.Waves), len(def.Stages), len(def.Patches))
	return &def, nil
}

// Load reads the definition at path and builds its pipeline. Local paths in
// the definition are relative to the definition's directory.
func Load(path string) (*Pipeline, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return Build(def, filepath.Dir(abs))
}
