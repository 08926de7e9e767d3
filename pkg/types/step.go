package types

import "github.com/goccy/go-yaml"

// JobStep is one step of a GitHub Actions job. Keys render in camelCase and
// are hyphenated by the workflow compiler.
type JobStep struct {
	ID               string            `json:"id,omitempty"`
	Name             string            `json:"name,omitempty"`
	If               string            `json:"if,omitempty"`
	Uses             string            `json:"uses,omitempty"`
	Run              string            `json:"run,omitempty"`
	Shell            string            `json:"shell,omitempty"`
	WorkingDirectory string            `json:"workingDirectory,omitempty"`
	With             map[string]any    `json:"with,omitempty"`
	Env              map[string]string `json:"env,omitempty"`
	ContinueOnError  bool              `json:"continueOnError,omitempty"`
	TimeoutMinutes   int               `json:"timeoutMinutes,omitempty"`
}

// Render returns the step as an ordered mapping, omitting empty fields.
func (s JobStep) Render() yaml.MapSlice {
	out := yaml.MapSlice{}
	out = appendString(out, "id", s.ID)
	out = appendString(out, "name", s.Name)
	out = appendString(out, "if", s.If)
	out = appendString(out, "uses", s.Uses)
	out = appendString(out, "run", s.Run)
	out = appendString(out, "shell", s.Shell)
	out = appendString(out, "workingDirectory", s.WorkingDirectory)
	if len(s.With) > 0 {
		out = append(out, yaml.MapItem{Key: "with", Value: SortedMap(s.With)})
	}
	if len(s.Env) > 0 {
		out = append(out, yaml.MapItem{Key: "env", Value: StringMap(s.Env)})
	}
	if s.ContinueOnError {
		out = append(out, yaml.MapItem{Key: "continueOnError", Value: true})
	}
	if s.TimeoutMinutes > 0 {
		out = append(out, yaml.MapItem{Key: "timeoutMinutes", Value: s.TimeoutMinutes})
	}
	return out
}

// RenderSteps renders steps in order.
func RenderSteps(steps []JobStep) []any {
	out := make([]any, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Render())
	}
	return out
}
