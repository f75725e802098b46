package schedule

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"screensmith/runner"
	"screensmith/shared"
)

// Scheduler drains a batch of independent tasks through a Runner with a fixed
// cap on simultaneously in-flight invocations. The gate belongs to the
// instance, so multiple schedulers can coexist.
type Scheduler struct {
	runner        runner.Runner
	maxConcurrent int
}

func NewScheduler(r runner.Runner, maxConcurrent int) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Scheduler{runner: r, maxConcurrent: maxConcurrent}
}

// RunBatch runs every task to completion and returns results index-aligned
// with the input, regardless of completion order. Task admission follows
// input order. One task failing never cancels or blocks its siblings; the
// returned set mixes successes and failures for the caller to aggregate.
func (s *Scheduler) RunBatch(ctx context.Context, tasks []shared.Task) ([]shared.WorkerResult, error) {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q in batch", t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	log.Info().Int("tasks", len(tasks)).Int("max_concurrent", s.maxConcurrent).Msg("running batch")

	results := make([]shared.WorkerResult, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(s.maxConcurrent)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			results[i] = s.runner.Invoke(ctx, task)
			if results[i].Failed() {
				log.Warn().Str("task", task.ID).Str("error", results[i].Err).Msg("task failed")
			}
			// Sibling tasks keep running whatever happened here.
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// RunOne is the sequential convenience for a dependent task that must finish
// before the caller can assemble the next batch.
func (s *Scheduler) RunOne(ctx context.Context, task shared.Task) shared.WorkerResult {
	res, err := NewScheduler(s.runner, 1).RunBatch(ctx, []shared.Task{task})
	if err != nil {
		return shared.WorkerResult{ID: task.ID, Err: err.Error()}
	}
	return res[0]
}
