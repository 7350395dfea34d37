package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"

	"github.com/kalpitg/dipwatch-go/internal/config"
)

// TelegramNotifier sends alert messages to a single operator chat.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID any // int64 for direct chats, string for @channel usernames
}

// NewTelegramNotifier creates the notifier. Missing credentials are not
// an error here: the notifier degrades to a warned no-op so a dry
// deployment can still evaluate and persist triggers.
func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	n := &TelegramNotifier{}

	if cfg.BotToken == "" || cfg.ChatID == "" {
		return n
	}

	b, err := bot.New(cfg.BotToken)
	if err != nil {
		logrus.Warnf("Failed to initialize Telegram bot: %v", err)
		return n
	}
	n.bot = b

	if id, err := strconv.ParseInt(cfg.ChatID, 10, 64); err == nil {
		n.chatID = id
	} else {
		n.chatID = cfg.ChatID
	}

	return n
}

// Send delivers one text message to the configured chat. When the bot is
// not configured it warns and succeeds, so an unconfigured notifier never
// blocks a run.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if n.bot == nil || n.chatID == nil {
		logrus.Warnf("Telegram credentials not configured; skipping alert:\n%s", text)
		return nil
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}
