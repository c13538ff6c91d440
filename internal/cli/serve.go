package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/lookahead"
	"github.com/patino82/construction-app/internal/scheduler"
)

// Overridable in tests.
var serveSignalNotify = signal.Notify
var serveSignalStop = signal.Stop

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled jobs until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveRunNow bool

func init() {
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "Run the weekly look-ahead job once at startup")
}

// Job names registered by serve.
const (
	jobWeeklyLookahead = "weekly-lookahead"
	jobSettingsRefresh = "settings-refresh"
)

// weeklyJob builds next week's look-ahead, renders it, records the image URL
// and announces it on the look-ahead topic.
func weeklyJob(a *app) scheduler.JobFunc {
	return func(ctx context.Context, tick time.Time) error {
		week := lookahead.NextWeekStart(tick)
		build := buildRequest(week, "weekly-"+week, "")
		_, err := a.publishTimeline(ctx, timelineRequest{
			Build:   &build,
			Week:    week,
			Persist: true,
			Notify:  true,
		})
		return err
	}
}

// registerJobs adds the built-in jobs to s.
func registerJobs(s *scheduler.Scheduler, a *app) error {
	weekly, err := scheduler.Parse(a.cfg.App.WeeklyCron)
	if err != nil {
		return fmt.Errorf("SITESYNC_WEEKLY_CRON: %w", err)
	}
	jobs := []scheduler.Job{
		{Name: jobWeeklyLookahead, Schedule: weekly, Run: weeklyJob(a)},
		{
			Name:     jobSettingsRefresh,
			Schedule: scheduler.MustParse("*/5 * * * *"),
			Run: func(ctx context.Context, _ time.Time) error {
				_, err := a.settings.Get(ctx, true)
				return err
			},
		},
	}
	for _, j := range jobs {
		if err := s.Register(j); err != nil {
			return err
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !cfg.Scheduler.Enabled {
		fmt.Fprintln(out, "Scheduler disabled (SITESYNC_SCHEDULER_ENABLED=false)")
		return nil
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		sched := scheduler.New(a.cfg.Scheduler)
		if err := registerJobs(sched, a); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		serveSignalNotify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer serveSignalStop(sigChan)
		go func() {
			select {
			case sig := <-sigChan:
				slog.Info("Shutting down", "signal", sig.String())
				cancel()
			case <-ctx.Done():
			}
		}()

		printHeader(out, "⏱️ sitesync scheduler")
		next := sched.NextRuns(time.Now())
		for _, name := range sched.Jobs() {
			fmt.Fprintf(out, "%-18s next %s\n", name, next[name].Format(time.RFC3339))
		}

		if serveRunNow {
			if err := weeklyJob(a)(ctx, time.Now()); err != nil {
				slog.Error("Startup look-ahead run failed", "error", err)
			}
		}

		err := sched.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}
