package retry_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"screensmith/retry"
	"screensmith/shared"
)

// scriptedRunner replays one canned output per attempt.
type scriptedRunner struct {
	outputs []shared.WorkerResult
	prompts []string
	calls   int
}

func (s *scriptedRunner) Invoke(ctx context.Context, task shared.Task) shared.WorkerResult {
	s.prompts = append(s.prompts, task.UserPrompt)
	idx := s.calls
	s.calls++
	if idx >= len(s.outputs) {
		idx = len(s.outputs) - 1
	}
	res := s.outputs[idx]
	res.ID = task.ID
	return res
}

func alwaysInvalid(raw string) shared.SchemaValidationResult {
	return shared.SchemaValidationResult{Valid: false, Errors: []string{"missing field: title"}}
}

func requireField(field string) retry.Checker {
	return func(raw string) shared.SchemaValidationResult {
		if strings.Contains(raw, fmt.Sprintf("%q", field)) {
			return shared.SchemaValidationResult{Valid: true}
		}
		return shared.SchemaValidationResult{Valid: false, Errors: []string{"missing field: " + field}}
	}
}

func appendErrors(task shared.Task, errs []string) shared.Task {
	task.UserPrompt = task.UserPrompt + "\n\nThe previous attempt failed:\n" + strings.Join(errs, "\n")
	return task
}

func task() shared.Task {
	return shared.NewTask("screen-spec", "", "emit the screen description as JSON", shared.TaskOptions{})
}

func TestRetryBound(t *testing.T) {
	t.Run("always-invalid checker uses exactly maxAttempts invocations", func(t *testing.T) {
		r := &scriptedRunner{outputs: []shared.WorkerResult{{Output: `{"name": "login"}`}}}

		out := retry.RunWithSchemaRetry(context.Background(), r, task(), 4, alwaysInvalid, appendErrors)
		require.False(t, out.OK())
		require.Equal(t, 4, out.Attempts)
		require.Equal(t, 4, r.calls)
		require.Len(t, out.Trail, 4)
		require.Equal(t, []string{"missing field: title"}, out.LastErrors)
	})

	t.Run("success stops the loop immediately", func(t *testing.T) {
		r := &scriptedRunner{outputs: []shared.WorkerResult{{Output: `{"title": "login"}`}}}

		out := retry.RunWithSchemaRetry(context.Background(), r, task(), 5, requireField("title"), appendErrors)
		require.True(t, out.OK())
		require.Equal(t, 1, out.Attempts)
		require.Equal(t, 1, r.calls)
		require.Empty(t, out.Trail)
		require.Equal(t, "login", out.Result["title"])
	})
}

func TestRetryAugmentation(t *testing.T) {
	t.Run("second attempt carries the first failure's diagnostics", func(t *testing.T) {
		r := &scriptedRunner{outputs: []shared.WorkerResult{
			{Output: `{"name": "login"}`},
			{Output: `{"title": "login"}`},
		}}

		out := retry.RunWithSchemaRetry(context.Background(), r, task(), 3, requireField("title"), appendErrors)
		require.True(t, out.OK())
		require.Equal(t, 2, out.Attempts)
		require.Len(t, out.Trail, 1)
		require.Contains(t, r.prompts[1], "missing field: title")
		require.NotContains(t, r.prompts[0], "missing field")
	})
}

func TestRetryParsing(t *testing.T) {
	t.Run("non-JSON output counts as a schema failure", func(t *testing.T) {
		r := &scriptedRunner{outputs: []shared.WorkerResult{{Output: "I could not produce JSON for that."}}}

		out := retry.RunWithSchemaRetry(context.Background(), r, task(), 2, requireField("title"), nil)
		require.False(t, out.OK())
		require.Equal(t, 2, out.Attempts)
		require.Contains(t, out.LastErrors[0], "not valid JSON")
	})

	t.Run("sloppy JSON is repaired before checking", func(t *testing.T) {
		r := &scriptedRunner{outputs: []shared.WorkerResult{{Output: `{title: "login", widgets: ["button",],}`}}}

		out := retry.RunWithSchemaRetry(context.Background(), r, task(), 1, requireField("title"), nil)
		require.True(t, out.OK())
		require.Equal(t, "login", out.Result["title"])
	})

	t.Run("fenced JSON is unwrapped", func(t *testing.T) {
		r := &scriptedRunner{outputs: []shared.WorkerResult{{Output: "```json\n{\"title\": \"login\"}\n```"}}}

		out := retry.RunWithSchemaRetry(context.Background(), r, task(), 1, requireField("title"), nil)
		require.True(t, out.OK())
	})
}

func TestRetryInvocationFailure(t *testing.T) {
	t.Run("hard invocation errors land in the trail", func(t *testing.T) {
		r := &scriptedRunner{outputs: []shared.WorkerResult{
			{Err: "timeout"},
			{Output: `{"title": "login"}`},
		}}

		out := retry.RunWithSchemaRetry(context.Background(), r, task(), 3, requireField("title"), appendErrors)
		require.True(t, out.OK())
		require.Equal(t, 2, out.Attempts)
		require.Equal(t, []string{"invocation failed: timeout"}, out.Trail[0].Errors)
	})
}
