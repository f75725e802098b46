package shared

import (
	"strings"

	"github.com/google/uuid"
)

type ModelTier string

const (
	ModelFast     ModelTier = "fast"
	ModelBalanced ModelTier = "balanced"
	ModelDeep     ModelTier = "deep"
)

// TaskOptions control a single invocation of the external agent process.
// AccessiblePaths is only honored when AllowSideChannelAccess is set; the
// default is no filesystem access at all.
type TaskOptions struct {
	Model                  ModelTier
	TimeoutMs              int
	AllowSideChannelAccess bool
	AccessiblePaths        []string
}

// Task is one unit of work handed to the scheduler. It is immutable after
// submission; the engine only ever reads it.
type Task struct {
	ID           string
	SystemPrompt string
	UserPrompt   string
	Options      TaskOptions
}

func NewTask(id string, systemPrompt string, userPrompt string, opts TaskOptions) Task {
	if id == "" {
		id = uuid.NewString()
	}
	return Task{
		ID:           id,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Options:      opts,
	}
}

// CombinedPrompt is the single prompt delivered to the external process.
func (t Task) CombinedPrompt() string {
	if strings.TrimSpace(t.SystemPrompt) == "" {
		return t.UserPrompt
	}
	return t.SystemPrompt + "\n\n" + t.UserPrompt
}

// WorkerResult is the captured outcome of one invocation. Err is empty on
// success; on a hard failure Output holds whatever partial text was captured.
type WorkerResult struct {
	ID     string
	Output string
	Err    string
}

func (r WorkerResult) Failed() bool {
	return r.Err != ""
}

// ValidationResult reports the structural check of raw agent output. Content
// always holds the best available candidate, even when Valid is false.
// Extracted marks content that was salvaged out of surrounding chatter.
type ValidationResult struct {
	Valid     bool
	Content   string
	Extracted bool
	Errors    []string
}

// SchemaValidationResult comes from a caller-supplied schema checker. The
// engine only looks at Valid; Errors and Warnings are diagnostics passed
// through to retry prompts and reports.
type SchemaValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}
