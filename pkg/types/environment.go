package types

import "github.com/goccy/go-yaml"

// Environment binds a job to a GitHub deployment environment.
type Environment struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Render returns the bare name when no URL is set, the form GitHub accepts
// as shorthand.
func (e *Environment) Render() any {
	if e.URL == "" {
		return e.Name
	}
	return yaml.MapSlice{
		{Key: "name", Value: e.Name},
		{Key: "url", Value: e.URL},
	}
}

// Concurrency limits concurrent runs of the workflow.
type Concurrency struct {
	Group            string `json:"group"`
	CancelInProgress bool   `json:"cancelInProgress,omitempty"`
}

// Render returns the concurrency block with camelCase keys.
func (c *Concurrency) Render() yaml.MapSlice {
	return yaml.MapSlice{
		{Key: "group", Value: c.Group},
		{Key: "cancelInProgress", Value: c.CancelInProgress},
	}
}

// JobSettings are applied to generated jobs.
type JobSettings struct {
	// If is a GitHub expression that must hold for the job to run.
	If string `json:"if,omitempty"`
}

// Runner selects the machine jobs run on.
type Runner struct {
	Labels []string `json:"labels"`
}

var (
	UbuntuLatest  = Runner{Labels: []string{"ubuntu-latest"}}
	WindowsLatest = Runner{Labels: []string{"windows-latest"}}
	MacOSLatest   = Runner{Labels: []string{"macos-latest"}}
)

// SelfHosted targets self-hosted runners carrying every label.
func SelfHosted(labels ...string) Runner {
	return Runner{Labels: append([]string{"self-hosted"}, labels...)}
}

// RunsOn renders a single label as a string and several as a list.
func (r Runner) RunsOn() any {
	if len(r.Labels) == 1 {
		return r.Labels[0]
	}
	out := make([]any, len(r.Labels))
	for i, l := range r.Labels {
		out[i] = l
	}
	return out
}
