package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"screensmith/shared"
)

// Config is loaded once at process start and read-only afterwards.
type Config struct {
	MaxConcurrent       int
	DefaultTimeoutMs    int
	LargeInputTimeoutMs int

	AgentCommand string
	CLIModels    map[string]string

	APIBaseURL string
	APIKeyEnv  string
	APIModels  map[string]string
}

// Load reads screensmith-config.json from $HOME or the working directory.
// A missing file is fine, defaults apply. Every key can be overridden with a
// SCREENSMITH_ environment variable.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("screensmith-config")
	v.SetConfigType("json")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SCREENSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("max_concurrent", 10)
	v.SetDefault("default_timeout_ms", 120_000)
	v.SetDefault("large_input_timeout_ms", 600_000)
	v.SetDefault("agent_command", "claude -p")
	v.SetDefault("cli_models", map[string]string{
		string(shared.ModelFast):     "haiku",
		string(shared.ModelBalanced): "sonnet",
		string(shared.ModelDeep):     "opus",
	})
	v.SetDefault("api_base_url", "")
	v.SetDefault("api_key_env", "SCREENSMITH_API_KEY")
	v.SetDefault("api_models", map[string]string{
		string(shared.ModelFast):     "gpt-4o-mini",
		string(shared.ModelBalanced): "gpt-4o",
		string(shared.ModelDeep):     "o1",
	})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		MaxConcurrent:       v.GetInt("max_concurrent"),
		DefaultTimeoutMs:    v.GetInt("default_timeout_ms"),
		LargeInputTimeoutMs: v.GetInt("large_input_timeout_ms"),
		AgentCommand:        v.GetString("agent_command"),
		CLIModels:           v.GetStringMapString("cli_models"),
		APIBaseURL:          v.GetString("api_base_url"),
		APIKeyEnv:           v.GetString("api_key_env"),
		APIModels:           v.GetStringMapString("api_models"),
	}
	if cfg.MaxConcurrent < 1 {
		return nil, fmt.Errorf("max_concurrent must be >= 1, got %d", cfg.MaxConcurrent)
	}
	if cfg.DefaultTimeoutMs < 1 {
		return nil, fmt.Errorf("default_timeout_ms must be >= 1, got %d", cfg.DefaultTimeoutMs)
	}
	if strings.TrimSpace(cfg.AgentCommand) == "" {
		return nil, fmt.Errorf("agent_command must not be empty")
	}
	return cfg, nil
}

func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMs) * time.Millisecond
}

// LargeInputTimeout is the suggested timeout for tasks that consult large
// reference documents through the side channel.
func (c *Config) LargeInputTimeout() time.Duration {
	return time.Duration(c.LargeInputTimeoutMs) * time.Millisecond
}
