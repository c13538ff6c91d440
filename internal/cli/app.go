package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/billing"
	"github.com/patino82/construction-app/internal/channels"
	"github.com/patino82/construction-app/internal/checkin"
	"github.com/patino82/construction-app/internal/config"
	"github.com/patino82/construction-app/internal/dailylog"
	"github.com/patino82/construction-app/internal/elements"
	"github.com/patino82/construction-app/internal/events"
	"github.com/patino82/construction-app/internal/fixture"
	"github.com/patino82/construction-app/internal/gantt"
	"github.com/patino82/construction-app/internal/lookahead"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/retry"
	"github.com/patino82/construction-app/internal/settings"
	"github.com/patino82/construction-app/internal/webhooks"
)

// app holds every service a command may need, built from one Config.
type app struct {
	cfg *config.Config

	memory     *notion.MemoryBackend // set in offline mode
	store      *notion.Store
	settings   *settings.Service
	builder    *lookahead.Builder
	renderer   *gantt.Renderer
	dispatcher *channels.Dispatcher
	ledger     *webhooks.Ledger
	webhooks   *webhooks.Sender
	kafka      *events.KafkaPublisher
	events     *events.Fanout
	dailyLogs  *dailylog.Service
	checkins   *checkin.Service
	elements   *elements.Service
	billing    *billing.Client
}

// withApp builds the services for one command run and closes them afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

// newApp wires the services. Outside offline mode the remote store token is
// required. When a fixture is given it is applied before returning.
func newApp(ctx context.Context, c *config.Config) (*app, error) {
	if !offlineMode {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	a := &app{cfg: c}

	var backend notion.Backend
	if offlineMode {
		a.memory = notion.NewMemoryBackend()
		backend = a.memory
	} else {
		backend = notion.NewClient(c.Notion.Token, c.Notion.Version)
	}
	policy := retry.Default()
	policy.Retries = c.Notion.Retries
	a.store = notion.NewStore(backend, notion.WithRetry(policy), notion.WithPageSize(c.Notion.PageSize))

	cols := c.Collections
	a.settings = settings.NewService(a.store, cols.AdminSettings)
	a.builder = lookahead.NewBuilder(a.store, cols.Tasks, cols.Lookahead)
	a.renderer = newRenderer(c)

	var messenger channels.Messenger
	if c.Telegram.Token != "" {
		bot := channels.NewTelegramBot(c.Telegram.Token)
		if c.Telegram.APIBase != "" {
			bot.BaseURL = strings.TrimRight(c.Telegram.APIBase, "/")
		}
		messenger = bot
	}
	a.dispatcher = channels.NewDispatcher(messenger, a.settings)

	if err := config.EnsureDir(filepath.Dir(c.LedgerPath())); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	ledger, err := webhooks.OpenLedger(c.LedgerPath())
	if err != nil {
		return nil, err
	}
	a.ledger = ledger
	a.webhooks = webhooks.NewSender(c.Webhooks.Static(), webhooks.WithSettings(a.settings), webhooks.WithLedger(ledger))

	sinks := []events.Publisher{a.webhooks}
	if c.Kafka.Brokers != "" && !offlineMode {
		a.kafka = events.NewKafkaPublisher(c.Kafka.Brokers, c.Kafka.Topic)
		sinks = append(sinks, a.kafka)
	}
	a.events = events.NewFanout(sinks...)

	a.dailyLogs = dailylog.NewService(a.store, cols.DailyLogs)
	a.checkins = checkin.NewService(a.store, cols.Projects, a.dailyLogs, a.dispatcher, a.events)
	a.elements = elements.NewService(a.store, cols.Elements)

	a.billing = billing.NewClient(c.Stripe.SecretKey)
	if c.Stripe.APIBase != "" {
		a.billing.BaseURL = strings.TrimRight(c.Stripe.APIBase, "/")
	}

	if fixturePath != "" {
		if _, err := a.seed(ctx, fixturePath); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func newRenderer(c *config.Config) *gantt.Renderer {
	var opts []gantt.RendererOption
	switch {
	case c.Storage.BucketURL != "":
		bucket := gantt.NewBucketStorage(c.Storage.BucketURL, c.Storage.WriteToken)
		if c.Storage.PublicURL != "" {
			bucket.PublicURL = strings.TrimRight(c.Storage.PublicURL, "/")
		}
		opts = append(opts, gantt.WithStorage(bucket))
	case c.Storage.Dir != "":
		opts = append(opts, gantt.WithStorage(gantt.DirStorage{Dir: c.Storage.Dir}))
	}
	if c.App.DashboardURL != "" {
		opts = append(opts, gantt.WithDashboardQR(c.App.DashboardURL))
	}
	return gantt.NewRenderer(opts...)
}

func (a *app) fixtureCollections() fixture.Collections {
	return fixture.Collections{
		Settings: a.cfg.Collections.AdminSettings,
		Sites:    a.cfg.Collections.Projects,
		Tasks:    a.cfg.Collections.Tasks,
	}
}

// seed applies a fixture file and drops any cached settings.
func (a *app) seed(ctx context.Context, path string) (fixture.Summary, error) {
	f, err := fixture.Load(path)
	if err != nil {
		return fixture.Summary{}, err
	}
	sum, err := fixture.Apply(ctx, a.store, a.fixtureCollections(), f)
	if err != nil {
		return sum, err
	}
	a.settings.Invalidate()
	slog.Debug("Fixture applied", "path", path, "sites", sum.Sites, "tasks", sum.Tasks)
	return sum, nil
}

// Close releases the ledger and event stream.
func (a *app) Close() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			slog.Warn("Closing event stream failed", "error", err)
		}
	}
	if a.ledger != nil {
		a.ledger.Close()
	}
}
