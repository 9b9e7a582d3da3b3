// Package telegram adapts the Telegram Bot API (via telebot) to the narrow
// Sender capability the dispatcher needs. It performs no destination
// validation: the bot is assumed to already be an admin of the target
// channels.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/tarminik/tg-ai-gen/pkg/logx"
)

type Config struct {
	Token string

	// APIURL overrides the Bot API base URL. Empty means the public API.
	APIURL string
	// Offline skips the getMe token check at construction. Used in tests.
	Offline bool
}

// DeliveryError wraps a failed send with the destination it was meant for.
type DeliveryError struct {
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("telegram delivery to chat %d failed: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type Adapter struct {
	bot *tele.Bot
	log logx.Logger
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     cfg.APIURL,
		Offline: cfg.Offline,
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{bot: b, log: log}, nil
}

// SendText delivers text to the given chat. telebot does not take a context;
// the ctx parameter exists so callers keep a uniform transport contract.
func (a *Adapter) SendText(ctx context.Context, chatID int64, text string) error {
	chat := &tele.Chat{ID: chatID}
	msg, err := a.bot.Send(chat, text)
	if err != nil {
		return &DeliveryError{ChatID: chatID, Err: err}
	}
	a.log.Debug("telegram message delivered", logx.Int64("chat_id", chatID), logx.Int("message_id", msg.ID))
	return nil
}
