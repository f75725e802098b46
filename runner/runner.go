package runner

import (
	"context"
	"time"

	"screensmith/shared"
)

// Runner launches exactly one external generative invocation per call. The
// result's ID always matches the task's ID; failures are reported in the
// result, never as panics or aborts.
type Runner interface {
	Invoke(ctx context.Context, task shared.Task) shared.WorkerResult
}

const fallbackTimeout = 120 * time.Second

func taskTimeout(task shared.Task, def time.Duration) time.Duration {
	if task.Options.TimeoutMs > 0 {
		return time.Duration(task.Options.TimeoutMs) * time.Millisecond
	}
	if def > 0 {
		return def
	}
	return fallbackTimeout
}

func resolveModel(models map[string]string, tier shared.ModelTier) string {
	if tier == "" {
		tier = shared.ModelBalanced
	}
	return models[string(tier)]
}
