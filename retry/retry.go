package retry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"

	"screensmith/runner"
	"screensmith/shared"
	"screensmith/validate"
)

// Checker decides whether parsed structured output satisfies the caller's
// schema. The engine never interprets the schema itself.
type Checker func(raw string) shared.SchemaValidationResult

// PromptTransform builds the next attempt's task from the previous one plus
// the diagnostics of the failed attempt. The controller stays format-agnostic
// by delegating the augmentation wording to the caller.
type PromptTransform func(task shared.Task, errs []string) shared.Task

type Attempt struct {
	Attempt int
	Errors  []string
}

// Outcome carries the full diagnostic trail, not just the last failure, so an
// operator can see whether the agent converges across attempts.
type Outcome struct {
	Result     map[string]any
	Attempts   int
	LastErrors []string
	Trail      []Attempt
}

func (o Outcome) OK() bool {
	return o.Result != nil
}

// RunWithSchemaRetry drives invoke → parse → check up to maxAttempts times.
// A parse failure counts as a schema failure, not a hard error. Validity is
// binary per the checker; partially valid output is never accepted.
func RunWithSchemaRetry(ctx context.Context, r runner.Runner, task shared.Task, maxAttempts int, checker Checker, augment PromptTransform) Outcome {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	out := Outcome{}
	current := task

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out.Attempts = attempt

		errs := runAttempt(ctx, r, current, checker, &out)
		if errs == nil {
			return out
		}

		out.LastErrors = errs
		out.Trail = append(out.Trail, Attempt{Attempt: attempt, Errors: errs})
		log.Warn().Str("task", task.ID).Int("attempt", attempt).Strs("errors", errs).Msg("schema validation failed")

		if attempt < maxAttempts && augment != nil {
			current = augment(current, errs)
		}
	}

	log.Error().Str("task", task.ID).Int("attempts", out.Attempts).Msg("schema retries exhausted")
	return out
}

// runAttempt returns nil on success, after storing the parsed result.
func runAttempt(ctx context.Context, r runner.Runner, task shared.Task, checker Checker, out *Outcome) []string {
	res := r.Invoke(ctx, task)
	if res.Failed() {
		return []string{fmt.Sprintf("invocation failed: %s", res.Err)}
	}

	parsed, text, err := parseStructured(res.Output)
	if err != nil {
		return []string{err.Error()}
	}

	check := checker(text)
	if !check.Valid {
		if len(check.Errors) == 0 {
			return []string{"schema checker rejected output without diagnostics"}
		}
		return check.Errors
	}
	if len(check.Warnings) > 0 {
		log.Warn().Str("task", task.ID).Strs("warnings", check.Warnings).Msg("schema checker warnings")
	}

	out.Result = parsed
	return nil
}

// parseStructured strips any fence and parses JSON, falling back to a repair
// pass for the malformed-but-salvageable output agents tend to produce.
func parseStructured(raw string) (map[string]any, string, error) {
	text := validate.StripFence(raw)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed, text, nil
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, "", fmt.Errorf("output is not valid JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return nil, "", fmt.Errorf("output is not valid JSON after repair: %v", err)
	}
	return parsed, repaired, nil
}
