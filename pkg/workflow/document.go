package workflow

import (
	"regexp"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/goccy/go-yaml"
)

var documentLog = logger.New("workflow:document")

const generatedHeader = `# This file was generated by gh-pipelines. DO NOT EDIT.
# Change the pipeline definition and run "gh pipelines compile" instead.
`

// quotedOnKey matches the trigger key when the encoder quotes it as a YAML
// 1.1 boolean.
var quotedOnKey = regexp.MustCompile(`(?m)^["']on["']:`)

// Document is the assembled workflow with keys already normalized.
type Document struct {
	Name        string
	On          any
	Concurrency any
	Jobs        yaml.MapSlice
}

// Tree returns the document as an ordered mapping.
func (d *Document) Tree() yaml.MapSlice {
	tree := yaml.MapSlice{
		{Key: "name", Value: d.Name},
		{Key: "on", Value: d.On},
	}
	if d.Concurrency != nil {
		tree = append(tree, yaml.MapItem{Key: "concurrency", Value: d.Concurrency})
	}
	return append(tree, yaml.MapItem{Key: "jobs", Value: d.Jobs})
}

// ToYAML serializes the document. The output depends only on the document,
// so repeated calls return identical bytes.
func (d *Document) ToYAML() (string, error) {
	return marshalWorkflow(d.Tree())
}

func marshalWorkflow(tree yaml.MapSlice) (string, error) {
	data, err := yaml.MarshalWithOptions(tree,
		yaml.Indent(2),
		yaml.IndentSequence(true),
		yaml.UseLiteralStyleIfMultiline(true),
	)
	if err != nil {
		return "", err
	}
	out := generatedHeader + quotedOnKey.ReplaceAllString(string(data), "on:")
	documentLog.Printf("Serialized workflow: %d bytes", len(out))
	return out, nil
}
