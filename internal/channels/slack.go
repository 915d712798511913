package channels

import (
	"context"
	"fmt"
	"log/slog"

	slackgo "github.com/slack-go/slack"

	"github.com/iris-assistant/iris/internal/config"
)

// Slack is a notification-only channel: fired reminders and other unprompted
// messages are posted to one configured Slack channel. Inbound chat stays on
// the gateway and Telegram.
type Slack struct {
	cfg config.SlackConfig
	api *slackgo.Client
}

// NewSlack creates a Slack channel.
func NewSlack(cfg config.SlackConfig) *Slack {
	return &Slack{cfg: cfg, api: slackgo.New(cfg.BotToken)}
}

func (s *Slack) Name() string { return "slack" }

// Start validates the token, then idles until ctx is cancelled.
func (s *Slack) Start(ctx context.Context, _ Responder) error {
	if s.cfg.BotToken == "" {
		return fmt.Errorf("slack: bot token not configured")
	}
	resp, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}
	slog.Info("slack connected", "bot_user_id", resp.UserID)

	<-ctx.Done()
	return ctx.Err()
}

// Notify posts text to the configured channel.
func (s *Slack) Notify(ctx context.Context, text string) error {
	if s.cfg.Channel == "" {
		return fmt.Errorf("slack: notification channel not configured")
	}
	_, _, err := s.api.PostMessageContext(ctx, s.cfg.Channel,
		slackgo.MsgOptionText(text, false))
	return err
}
