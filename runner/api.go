package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"screensmith/shared"
)

// APIRunner satisfies the same contract as CLIRunner against an
// OpenAI-compatible chat endpoint. One completion request per invocation,
// no streaming, no tool calls.
type APIRunner struct {
	client         *openai.Client
	models         map[string]string
	defaultTimeout time.Duration
}

func NewAPIRunner(baseURL string, apiKeyEnv string, models map[string]string, defaultTimeout time.Duration) (*APIRunner, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("api key %s not set", apiKeyEnv)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &APIRunner{
		client:         openai.NewClientWithConfig(cfg),
		models:         models,
		defaultTimeout: defaultTimeout,
	}, nil
}

func (r *APIRunner) Invoke(ctx context.Context, task shared.Task) shared.WorkerResult {
	res := shared.WorkerResult{ID: task.ID}

	model := resolveModel(r.models, task.Options.Model)
	if model == "" {
		res.Err = fmt.Sprintf("no api model configured for tier %q", task.Options.Model)
		return res
	}

	msgs := []openai.ChatCompletionMessage{}
	if task.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: task.SystemPrompt,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: task.UserPrompt,
	})

	ctx, cancel := context.WithTimeout(ctx, taskTimeout(task, r.defaultTimeout))
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	})
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.Err = "timeout"
		return res
	}
	if err != nil {
		log.Warn().Str("task", task.ID).Err(err).Msg("chat completion failed")
		res.Err = fmt.Sprintf("chat completion failed: %v", err)
		return res
	}
	if len(resp.Choices) == 0 {
		res.Err = "chat completion returned no choices"
		return res
	}
	res.Output = resp.Choices[0].Message.Content
	return res
}
