package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"screensmith/config"
	"screensmith/runner"
	"screensmith/schedule"
	"screensmith/shared"
	"screensmith/sink"
	"screensmith/validate"
)

type manifestEntry struct {
	ID           string   `json:"id"`
	SystemPrompt string   `json:"system_prompt"`
	UserPrompt   string   `json:"user_prompt"`
	Model        string   `json:"model,omitempty"`
	TimeoutMs    int      `json:"timeout_ms,omitempty"`
	ReadPaths    []string `json:"read_paths,omitempty"`
}

func loadManifest(path string) ([]shared.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	tasks := make([]shared.Task, 0, len(entries))
	for _, e := range entries {
		tasks = append(tasks, shared.NewTask(e.ID, e.SystemPrompt, e.UserPrompt, shared.TaskOptions{
			Model:                  shared.ModelTier(e.Model),
			TimeoutMs:              e.TimeoutMs,
			AllowSideChannelAccess: len(e.ReadPaths) > 0,
			AccessiblePaths:        e.ReadPaths,
		}))
	}
	return tasks, nil
}

func main() {
	manifest := flag.String("manifest", "batch.json", "path to the JSON task manifest")
	outDir := flag.String("out", "out", "directory for generated screens")
	useAPI := flag.Bool("api", false, "invoke via chat API instead of the agent CLI")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("load config failed")
		os.Exit(1)
	}

	tasks, err := loadManifest(*manifest)
	if err != nil {
		log.Error().Err(err).Msg("load manifest failed")
		os.Exit(1)
	}
	if len(tasks) == 0 {
		log.Info().Msg("manifest has no tasks, nothing to do")
		return
	}
	for i := range tasks {
		// Tasks consulting reference documents get the generous default.
		if tasks[i].Options.TimeoutMs == 0 && tasks[i].Options.AllowSideChannelAccess {
			tasks[i].Options.TimeoutMs = cfg.LargeInputTimeoutMs
		}
	}

	var r runner.Runner
	if *useAPI {
		r, err = runner.NewAPIRunner(cfg.APIBaseURL, cfg.APIKeyEnv, cfg.APIModels, cfg.DefaultTimeout())
		if err != nil {
			log.Error().Err(err).Msg("create api runner failed")
			os.Exit(1)
		}
	} else {
		r = runner.NewCLIRunner(cfg.AgentCommand, cfg.CLIModels, cfg.DefaultTimeout())
	}

	out, err := sink.NewFileSink(*outDir, ".html")
	if err != nil {
		log.Error().Err(err).Msg("create sink failed")
		os.Exit(1)
	}

	results, err := schedule.NewScheduler(r, cfg.MaxConcurrent).RunBatch(context.Background(), tasks)
	if err != nil {
		log.Error().Err(err).Msg("run batch failed")
		os.Exit(1)
	}

	validator := validate.NewHTMLValidator()
	validations := make([]*shared.ValidationResult, len(results))
	for i, res := range results {
		if res.Failed() {
			log.Warn().Str("task", res.ID).Str("error", res.Err).Msg("invocation failed")
		} else {
			v := validator.Validate(res.Output)
			validations[i] = &v
			if v.Extracted {
				log.Warn().Str("task", res.ID).Msg("content recovered by extraction, check output quality")
			}
		}
		if err := out.Write(res, validations[i]); err != nil {
			log.Error().Err(err).Str("task", res.ID).Msg("persist result failed")
		}
	}

	sink.Summarize(results, validations).Log()
}
