package types

import "github.com/goccy/go-yaml"

// Triggers is the `on:` block of a workflow.
type Triggers struct {
	Push              *PushTrigger             `json:"push,omitempty"`
	PullRequest       *PullRequestTrigger      `json:"pullRequest,omitempty"`
	PullRequestTarget *PullRequestTrigger      `json:"pullRequestTarget,omitempty"`
	WorkflowDispatch  *WorkflowDispatchTrigger `json:"workflowDispatch,omitempty"`
	Schedule          []CronSchedule           `json:"schedule,omitempty"`
}

// PushTrigger runs on pushes.
type PushTrigger struct {
	Branches       []string `json:"branches,omitempty"`
	BranchesIgnore []string `json:"branchesIgnore,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	TagsIgnore     []string `json:"tagsIgnore,omitempty"`
	Paths          []string `json:"paths,omitempty"`
	PathsIgnore    []string `json:"pathsIgnore,omitempty"`
}

// PullRequestTrigger runs on pull request activity.
type PullRequestTrigger struct {
	Types          []string `json:"types,omitempty"`
	Branches       []string `json:"branches,omitempty"`
	BranchesIgnore []string `json:"branchesIgnore,omitempty"`
	Paths          []string `json:"paths,omitempty"`
	PathsIgnore    []string `json:"pathsIgnore,omitempty"`
}

// WorkflowDispatchTrigger allows manual runs.
type WorkflowDispatchTrigger struct{}

// CronSchedule runs the workflow on a POSIX cron schedule.
type CronSchedule struct {
	Cron string `json:"cron"`
}

// DefaultTriggers runs on pushes to main and on manual dispatch.
func DefaultTriggers() *Triggers {
	return &Triggers{
		Push:             &PushTrigger{Branches: []string{"main"}},
		WorkflowDispatch: &WorkflowDispatchTrigger{},
	}
}

// Render returns the trigger block with camelCase keys.
func (t *Triggers) Render() yaml.MapSlice {
	out := yaml.MapSlice{}
	if t.Push != nil {
		p := yaml.MapSlice{}
		p = appendStrings(p, "branches", t.Push.Branches)
		p = appendStrings(p, "branchesIgnore", t.Push.BranchesIgnore)
		p = appendStrings(p, "tags", t.Push.Tags)
		p = appendStrings(p, "tagsIgnore", t.Push.TagsIgnore)
		p = appendStrings(p, "paths", t.Push.Paths)
		p = appendStrings(p, "pathsIgnore", t.Push.PathsIgnore)
		out = append(out, yaml.MapItem{Key: "push", Value: p})
	}
	if t.PullRequest != nil {
		out = append(out, yaml.MapItem{Key: "pullRequest", Value: t.PullRequest.render()})
	}
	if t.PullRequestTarget != nil {
		out = append(out, yaml.MapItem{Key: "pullRequestTarget", Value: t.PullRequestTarget.render()})
	}
	if t.WorkflowDispatch != nil {
		out = append(out, yaml.MapItem{Key: "workflowDispatch", Value: yaml.MapSlice{}})
	}
	if len(t.Schedule) > 0 {
		schedules := make([]any, len(t.Schedule))
		for i, s := range t.Schedule {
			schedules[i] = yaml.MapSlice{{Key: "cron", Value: s.Cron}}
		}
		out = append(out, yaml.MapItem{Key: "schedule", Value: schedules})
	}
	return out
}

func (p *PullRequestTrigger) render() yaml.MapSlice {
	out := yaml.MapSlice{}
	out = appendStrings(out, "types", p.Types)
	out = appendStrings(out, "branches", p.Branches)
	out = appendStrings(out, "branchesIgnore", p.BranchesIgnore)
	out = appendStrings(out, "paths", p.Paths)
	out = appendStrings(out, "pathsIgnore", p.PathsIgnore)
	return out
}
