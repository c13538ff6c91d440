package channels

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/quiethours"
)

// SettingsSource supplies the current admin settings.
type SettingsSource interface {
	Get(ctx context.Context, forceRefresh bool) (models.AdminSettings, error)
}

// Outcome records what SendTopic did with a message.
type Outcome string

const (
	OutcomeSent       Outcome = "sent"
	OutcomeDisabled   Outcome = "disabled"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeUnrouted   Outcome = "unrouted"
	OutcomeFailed     Outcome = "failed"
)

// Dispatcher routes topic messages through a Messenger. Delivery is best
// effort: failures are logged and reported as an Outcome, never returned as errors.
type Dispatcher struct {
	messenger Messenger
	settings  SettingsSource
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. A nil messenger turns every send into a no-op.
func NewDispatcher(m Messenger, settings SettingsSource) *Dispatcher {
	return &Dispatcher{messenger: m, settings: settings, now: time.Now}
}

// SetClock overrides the clock used for quiet-hours checks.
func (d *Dispatcher) SetClock(now func() time.Time) { d.now = now }

// Enabled reports whether a messenger is configured.
func (d *Dispatcher) Enabled() bool { return d.messenger != nil }

// SendTopic posts message into the forum topic named topic.
func (d *Dispatcher) SendTopic(ctx context.Context, topic, message string) Outcome {
	if d.messenger == nil {
		return OutcomeDisabled
	}
	cfg, err := d.settings.Get(ctx, false)
	if err != nil {
		slog.Error("Notification skipped: settings unavailable", "topic", topic, "error", err)
		return OutcomeFailed
	}

	if quiethours.Suppressed(cfg.QuietHours, topic, d.now()) {
		slog.Info("Quiet hours active; message suppressed", "topic", topic)
		return OutcomeSuppressed
	}

	threadID, ok := cfg.Messaging.Topics[strings.ToUpper(strings.TrimSpace(topic))]
	if !ok || threadID == 0 {
		slog.Warn("Unknown messaging topic", "topic", topic)
		return OutcomeUnrouted
	}
	if cfg.Messaging.ChatID == nil || *cfg.Messaging.ChatID == 0 {
		slog.Warn("Messaging chat id missing", "topic", topic)
		return OutcomeUnrouted
	}

	if err := d.messenger.SendMessage(ctx, *cfg.Messaging.ChatID, threadID, message); err != nil {
		slog.Error("Messaging delivery failed", "topic", topic, "error", err)
		return OutcomeFailed
	}
	slog.Debug("Message delivered", "topic", topic, "thread", threadID)
	return OutcomeSent
}

// CommandsFor builds the bot menu from configured command names.
func CommandsFor(names []string) []BotCommand {
	out := make([]BotCommand, 0, len(names))
	for _, n := range names {
		cmd := strings.TrimSpace(strings.Replace(n, "/", "", 1))
		if cmd == "" {
			continue
		}
		out = append(out, BotCommand{Command: cmd, Description: cmd + " command"})
	}
	return out
}

// RegisterCommands publishes the configured command menu from freshly loaded settings.
func (d *Dispatcher) RegisterCommands(ctx context.Context) ([]BotCommand, error) {
	if d.messenger == nil {
		return nil, nil
	}
	cfg, err := d.settings.Get(ctx, true)
	if err != nil {
		return nil, err
	}
	commands := CommandsFor(cfg.Messaging.Commands)
	if err := d.messenger.SetCommands(ctx, commands); err != nil {
		return nil, err
	}
	slog.Info("Messaging commands registered", "count", len(commands))
	return commands, nil
}
