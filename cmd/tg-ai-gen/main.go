// One-shot content generation and posting to Telegram channels.
//
// A single run generates content for each configured channel via the DeepSeek
// chat-completions API and posts it with the bot. Per-channel failures are
// reported in the run log only; the process exits 0 as long as every channel
// was attempted. The bot must be an admin of the channels it targets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tarminik/tg-ai-gen/internal/completion"
	"github.com/tarminik/tg-ai-gen/internal/config"
	"github.com/tarminik/tg-ai-gen/internal/dispatch"
	"github.com/tarminik/tg-ai-gen/internal/transport/telegram"
	"github.com/tarminik/tg-ai-gen/pkg/logx"
)

func main() {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	log, closeLogs := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: true,
		File: logx.FileConfig{
			Enabled: cfg.Logging.FilePath != "",
			Path:    cfg.Logging.FilePath,
		},
	})
	defer func() { _ = closeLogs() }()

	channels, err := config.LoadChannels(cfg.ChannelsFile)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	adapter, err := telegram.New(telegram.Config{Token: cfg.Telegram.BotToken},
		log.With(logx.String("comp", "telegram")))
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	// Component config mapping.
	client := completion.New(completion.Config{
		BaseURL:      cfg.DeepSeek.BaseURL,
		APIKey:       cfg.DeepSeek.APIKey,
		Model:        cfg.DeepSeek.Model,
		SystemPrompt: cfg.Generation.SystemPrompt,
		Temperature:  cfg.Generation.Temperature,
		MaxTokens:    cfg.Generation.MaxTokens,
		Timeout:      cfg.Generation.Timeout,
	}, log.With(logx.String("comp", "completion")))

	tasks := make([]dispatch.Task, 0, len(channels))
	for _, ch := range channels {
		tasks = append(tasks, dispatch.Task{ChannelID: ch.ID, Prompt: ch.Prompt})
	}

	disp := dispatch.New(client, adapter, log.With(logx.String("comp", "dispatch")))
	disp.Run(ctx, tasks)
	// Per-channel failures were already reported; partial failure is not an
	// exit-code concern.
}
