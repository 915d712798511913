package channels

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/iris-assistant/iris/internal/config"
)

// Manager owns the set of enabled channels.
type Manager struct {
	channels []Channel
}

// NewManager builds a Manager holding every channel enabled in cfg.
func NewManager(cfg config.ChannelsConfig) *Manager {
	m := &Manager{}
	if cfg.Telegram.Enabled {
		m.channels = append(m.channels, NewTelegram(cfg.Telegram))
	}
	if cfg.Slack.Enabled {
		m.channels = append(m.channels, NewSlack(cfg.Slack))
	}
	return m
}

// newManagerWith is the test constructor.
func newManagerWith(chs ...Channel) *Manager {
	return &Manager{channels: chs}
}

// Names returns the enabled channel names.
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.channels))
	for _, c := range m.channels {
		out = append(out, c.Name())
	}
	return out
}

// Len returns the number of enabled channels.
func (m *Manager) Len() int { return len(m.channels) }

// StartAll runs every channel's receive loop and blocks until the first
// failure or ctx cancellation.
func (m *Manager) StartAll(ctx context.Context, respond Responder) error {
	if len(m.channels) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range m.channels {
		c := c
		g.Go(func() error {
			slog.Info("channel starting", "channel", c.Name())
			return c.Start(gctx, respond)
		})
	}
	return g.Wait()
}

// NotifyAll delivers text to every channel. Per-channel failures are logged
// and do not stop delivery to the rest.
func (m *Manager) NotifyAll(ctx context.Context, text string) {
	for _, c := range m.channels {
		if err := c.Notify(ctx, text); err != nil {
			slog.Error("notification failed", "channel", c.Name(), "err", err)
		}
	}
}
