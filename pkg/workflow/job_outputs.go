package workflow

import (
	"fmt"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/goccy/go-yaml"
)

var jobOutputsLog = logger.New("workflow:job_outputs")

// JobStepOutput is an output of a step that a downstream job reads, to be
// declared on the job that owns the step.
type JobStepOutput struct {
	StepID     string
	OutputName string
}

// pendingOutputs collects outputs discovered while compiling downstream
// jobs, keyed by the owning job id.
type pendingOutputs struct {
	byJob map[string][]JobStepOutput
}

func newPendingOutputs() *pendingOutputs {
	return &pendingOutputs{byJob: make(map[string][]JobStepOutput)}
}

func (p *pendingOutputs) add(jobID string, output JobStepOutput) {
	for _, existing := range p.byJob[jobID] {
		if existing == output {
			return
		}
	}
	jobOutputsLog.Printf("Job %s must expose %s.%s", jobID, output.StepID, output.OutputName)
	p.byJob[jobID] = append(p.byJob[jobID], output)
}

// mergeJobOutputs returns a copy of the normalized jobs mapping with every
// pending output declared on its owning job. Output names are merged as is.
func mergeJobOutputs(jobs yaml.MapSlice, pending *pendingOutputs) (yaml.MapSlice, error) {
	known := make(map[string]bool, len(jobs))
	for _, item := range jobs {
		known[fmt.Sprint(item.Key)] = true
	}
	for jobID := range pending.byJob {
		if !known[jobID] {
			return nil, newCompileError(KindCrossReference, jobID, "outputs were requested from a job that was not compiled")
		}
	}

	out := make(yaml.MapSlice, 0, len(jobs))
	for _, item := range jobs {
		jobID := fmt.Sprint(item.Key)
		outputs, ok := pending.byJob[jobID]
		if !ok {
			out = append(out, item)
			continue
		}
		job, ok := item.Value.(yaml.MapSlice)
		if !ok {
			return nil, fmt.Errorf("job %s has unexpected type %T", jobID, item.Value)
		}
		out = append(out, yaml.MapItem{Key: item.Key, Value: withOutputs(job, outputs)})
	}
	return out, nil
}

func withOutputs(job yaml.MapSlice, outputs []JobStepOutput) yaml.MapSlice {
	merged := yaml.MapSlice{}
	existingAt := -1
	for i, item := range job {
		if item.Key == "outputs" {
			existingAt = i
			if current, ok := item.Value.(yaml.MapSlice); ok {
				merged = append(merged, current...)
			}
		}
	}
	for _, o := range outputs {
		merged = setMapItem(merged, o.OutputName, Interpolate(NewStepOutputRef(o.StepID, o.OutputName)))
	}

	result := make(yaml.MapSlice, 0, len(job)+1)
	for i, item := range job {
		switch {
		case i == existingAt:
			result = append(result, yaml.MapItem{Key: "outputs", Value: merged})
		case existingAt < 0 && item.Key == "steps":
			result = append(result, yaml.MapItem{Key: "outputs", Value: merged}, item)
		default:
			result = append(result, item)
		}
	}
	return result
}

func setMapItem(m yaml.MapSlice, key string, value any) yaml.MapSlice {
	for i, item := range m {
		if item.Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, yaml.MapItem{Key: key, Value: value})
}
