package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"mvdan.cc/sh/v3/shell"

	"screensmith/shared"
)

// CLIRunner invokes the agent as a one-shot subprocess: the combined prompt
// goes to stdin, stdout is captured to completion, and the process is killed
// when the task's timeout elapses.
type CLIRunner struct {
	Command        string
	Models         map[string]string
	DefaultTimeout time.Duration
}

func NewCLIRunner(command string, models map[string]string, defaultTimeout time.Duration) *CLIRunner {
	return &CLIRunner{
		Command:        command,
		Models:         models,
		DefaultTimeout: defaultTimeout,
	}
}

// buildArgv splits the configured command line with shell word rules, then
// appends per-task flags. Side-channel paths are passed as read-only --add-dir
// grants; without AllowSideChannelAccess no path flag is ever emitted.
func (r *CLIRunner) buildArgv(task shared.Task) ([]string, error) {
	argv, err := shell.Fields(r.Command, nil)
	if err != nil {
		return nil, fmt.Errorf("parse agent command %q: %w", r.Command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("agent command %q is empty", r.Command)
	}
	if model := resolveModel(r.Models, task.Options.Model); model != "" {
		argv = append(argv, "--model", model)
	}
	if task.Options.AllowSideChannelAccess {
		for _, p := range task.Options.AccessiblePaths {
			argv = append(argv, "--add-dir", p)
		}
	}
	return argv, nil
}

func (r *CLIRunner) Invoke(ctx context.Context, task shared.Task) shared.WorkerResult {
	res := shared.WorkerResult{ID: task.ID}

	argv, err := r.buildArgv(task)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	timeout := taskTimeout(task, r.DefaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(task.CombinedPrompt())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	log.Debug().Str("task", task.ID).Str("bin", argv[0]).Dur("timeout", timeout).Msg("launching agent process")
	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warn().Str("task", task.ID).Dur("elapsed", time.Since(start)).Msg("agent process timed out, killed")
		res.Output = ""
		res.Err = "timeout"
		return res
	}
	if ctx.Err() != nil {
		res.Output = stdout.String()
		res.Err = "canceled"
		return res
	}
	if runErr != nil {
		res.Output = stdout.String()
		res.Err = processDiagnostic(runErr, stderr.String())
		log.Warn().Str("task", task.ID).Str("error", res.Err).Msg("agent process failed")
		return res
	}

	res.Output = stdout.String()
	log.Debug().Str("task", task.ID).Dur("elapsed", time.Since(start)).Int("bytes", len(res.Output)).Msg("agent process finished")
	return res
}

func processDiagnostic(runErr error, stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Sprintf("agent process failed: %v", runErr)
	}
	return fmt.Sprintf("agent process failed: %v: %s", runErr, stderr)
}
