// Package config loads credentials and run settings from the environment and
// the per-channel prompt mapping from a YAML file.
//
// Required variables: DEEPSEEK_BASE_URL, DEEPSEEK_API_KEY, DEEPSEEK_MODEL,
// TG_BOT_TOKEN. Everything else has a default. A missing required variable is
// fatal before any task runs; there is no point attempting channels without
// credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMissingVar marks a required environment variable that is not set.
// Callers match it with errors.Is.
var ErrMissingVar = errors.New("required environment variable is not set")

type Config struct {
	DeepSeek   DeepSeekConfig
	Telegram   TelegramConfig
	Generation GenerationConfig
	Logging    LoggingConfig

	// ChannelsFile is the path of the channel->prompt YAML mapping.
	ChannelsFile string
}

type DeepSeekConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type TelegramConfig struct {
	BotToken string
}

// GenerationConfig carries the defaults applied to every completion request.
//
// Timeout is configured as a Go duration string (e.g. "30s", "2m").
type GenerationConfig struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
	defaultTimeout     = 60 * time.Second

	defaultChannelsFile = "./channels.yaml"
)

// FromEnv builds the full configuration from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	var err error

	if cfg.DeepSeek.BaseURL, err = requireEnv("DEEPSEEK_BASE_URL"); err != nil {
		return Config{}, err
	}
	if cfg.DeepSeek.APIKey, err = requireEnv("DEEPSEEK_API_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.DeepSeek.Model, err = requireEnv("DEEPSEEK_MODEL"); err != nil {
		return Config{}, err
	}
	if cfg.Telegram.BotToken, err = requireEnv("TG_BOT_TOKEN"); err != nil {
		return Config{}, err
	}

	cfg.Generation.SystemPrompt = os.Getenv("GEN_SYSTEM_PROMPT")

	cfg.Generation.Temperature = defaultTemperature
	if v := os.Getenv("GEN_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GEN_TEMPERATURE %q: %w", v, err)
		}
		cfg.Generation.Temperature = f
	}

	cfg.Generation.MaxTokens = defaultMaxTokens
	if v := os.Getenv("GEN_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("GEN_MAX_TOKENS %q: must be a positive integer", v)
		}
		cfg.Generation.MaxTokens = n
	}

	cfg.Generation.Timeout = defaultTimeout
	if v := os.Getenv("GEN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("GEN_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("GEN_TIMEOUT %q: must be positive", v)
		}
		cfg.Generation.Timeout = d
	}

	cfg.Logging.Level = getenvDefault("LOG_LEVEL", "INFO")
	cfg.Logging.FilePath = os.Getenv("LOG_FILE")
	cfg.ChannelsFile = getenvDefault("CHANNELS_FILE", defaultChannelsFile)

	return cfg, nil
}

func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingVar, name)
	}
	return v, nil
}

func getenvDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
