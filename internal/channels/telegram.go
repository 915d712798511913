package channels

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iris-assistant/iris/internal/config"
)

// telegramMaxLen is Telegram's message size limit, minus headroom.
const telegramMaxLen = 4000

// Telegram receives messages via long polling and replies in the same chat.
type Telegram struct {
	cfg config.TelegramConfig
	bot *tgbotapi.BotAPI
}

// NewTelegram creates a Telegram channel.
func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{cfg: cfg}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects the bot and runs the long-poll loop until ctx is cancelled.
func (t *Telegram) Start(ctx context.Context, respond Responder) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	bot, err := tgbotapi.NewBotAPI(t.cfg.Token)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	slog.Info("telegram connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go t.handleUpdate(ctx, update, respond)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update, respond Responder) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	sender := fmt.Sprintf("%d", msg.From.ID)
	if msg.From.UserName != "" {
		sender = sender + "|" + msg.From.UserName
	}
	if !allowed(t.cfg.AllowFrom, sender) {
		slog.Warn("access denied", "channel", "telegram", "sender", sender)
		return
	}

	// Keep the typing indicator alive while the agent works.
	typingCtx, cancelTyping := context.WithCancel(ctx)
	defer cancelTyping()
	go t.typingLoop(typingCtx, msg.Chat.ID)

	reply := respond(ctx, msg.Text)
	cancelTyping()

	if err := t.send(msg.Chat.ID, reply); err != nil {
		slog.Error("telegram send failed", "err", err)
	}
}

func (t *Telegram) typingLoop(ctx context.Context, chatID int64) {
	for {
		action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
		_, _ = t.bot.Send(action)
		select {
		case <-time.After(4 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}

// Notify sends text to the configured notification chat.
func (t *Telegram) Notify(_ context.Context, text string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	if t.cfg.NotifyTo == 0 {
		return fmt.Errorf("telegram: notifyTo chat not configured")
	}
	return t.send(t.cfg.NotifyTo, text)
}

func (t *Telegram) send(chatID int64, text string) error {
	if text == "" {
		return nil
	}
	for _, chunk := range splitMessage(text, telegramMaxLen) {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return err
		}
	}
	return nil
}
