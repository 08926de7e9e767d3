package workflow

// Expression is the body of a GitHub Actions `${{ ... }}` expression.
type Expression interface {
	Render() string
}

// Interpolate wraps e in the `${{ }}` delimiters used inside YAML strings.
func Interpolate(e Expression) string {
	return "${{ " + e.Render() + " }}"
}

// JobOutputRef reads an output of an upstream job listed in `needs`.
type JobOutputRef struct {
	JobID  string
	Output string
}

// NewJobOutputRef references output of job jobID.
func NewJobOutputRef(jobID, output string) JobOutputRef {
	return JobOutputRef{JobID: jobID, Output: output}
}

func (r JobOutputRef) Render() string {
	return "needs." + r.JobID + ".outputs." + r.Output
}

// StepOutputRef reads an output of an earlier step in the same job.
type StepOutputRef struct {
	StepID string
	Output string
}

// NewStepOutputRef references output of step stepID.
func NewStepOutputRef(stepID, output string) StepOutputRef {
	return StepOutputRef{StepID: stepID, Output: output}
}

func (r StepOutputRef) Render() string {
	return "steps." + r.StepID + ".outputs." + r.Output
}

// SecretRef reads a repository or organization secret.
type SecretRef struct {
	Name string
}

// NewSecretRef references secret name.
func NewSecretRef(name string) SecretRef {
	return SecretRef{Name: name}
}

func (r SecretRef) Render() string {
	return "secrets." + r.Name
}

// EnvRef reads a variable from the step environment.
type EnvRef struct {
	Name string
}

// NewEnvRef references environment variable name.
func NewEnvRef(name string) EnvRef {
	return EnvRef{Name: name}
}

func (r EnvRef) Render() string {
	return "env." + r.Name
}

// ContextRef reads a value from a workflow context such as github.actor.
type ContextRef struct {
	Path string
}

// NewContextRef references a context path.
func NewContextRef(path string) ContextRef {
	return ContextRef{Path: path}
}

func (r ContextRef) Render() string {
	return r.Path
}
