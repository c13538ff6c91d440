package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/lookahead"
	"github.com/patino82/construction-app/internal/models"
)

var lookaheadCmd = &cobra.Command{
	Use:   "lookahead",
	Short: "Build and list weekly look-ahead rows",
}

var lookaheadBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Derive look-ahead rows from tasks and store them",
	Args:  cobra.NoArgs,
	RunE:  runLookaheadBuild,
}

var lookaheadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored look-ahead rows for a week",
	Args:  cobra.NoArgs,
	RunE:  runLookaheadList,
}

var (
	lookaheadWeek    string
	lookaheadKey     string
	lookaheadListKey string
	lookaheadSite    string
)

func init() {
	for _, c := range []*cobra.Command{lookaheadBuildCmd, lookaheadListCmd} {
		c.Flags().StringVar(&lookaheadWeek, "week", "", "Week start (YYYY-MM-DD, defaults to this Monday)")
		c.Flags().StringVar(&lookaheadSite, "site", "", "Limit to one project page id")
	}
	lookaheadBuildCmd.Flags().StringVar(&lookaheadKey, "key", "", "Build idempotency key (defaults to lookahead-<week>)")
	lookaheadListCmd.Flags().StringVar(&lookaheadListKey, "key", "", "Only rows stored by this build")

	lookaheadCmd.AddCommand(lookaheadBuildCmd)
	lookaheadCmd.AddCommand(lookaheadListCmd)
}

// weekOrDefault returns the requested week, or the Monday of the current week.
func weekOrDefault(week string) string {
	if week != "" {
		return week
	}
	return lookahead.WeekStart(time.Now())
}

func buildRequest(week, key, site string) lookahead.BuildRequest {
	if key == "" {
		key = "lookahead-" + week
	}
	return lookahead.BuildRequest{WeekStart: week, IdempotencyKey: key, SiteID: site}
}

func runLookaheadBuild(cmd *cobra.Command, args []string) error {
	req := buildRequest(weekOrDefault(lookaheadWeek), lookaheadKey, lookaheadSite)
	return withApp(cmd, func(ctx context.Context, a *app) error {
		rows, err := a.buildLookahead(ctx, req)
		if err != nil {
			return err
		}
		return printRows(cmd.OutOrStdout(), "🗓️ Look-ahead built: week of "+req.WeekStart, rows)
	})
}

func runLookaheadList(cmd *cobra.Command, args []string) error {
	week := weekOrDefault(lookaheadWeek)
	return withApp(cmd, func(ctx context.Context, a *app) error {
		rows, err := a.builder.Rows(ctx, week, lookaheadSite, lookaheadListKey)
		if err != nil {
			return err
		}
		return printRows(cmd.OutOrStdout(), "🗓️ Look-ahead: week of "+week, rows)
	})
}

func printRows(w io.Writer, title string, rows []models.ScheduleRow) error {
	if jsonOutput {
		return printJSON(w, map[string]any{"ok": true, "count": len(rows), "rows": rows})
	}
	printHeader(w, title)
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s %-28s %-12s %s → %s\n", r.Status, r.TaskName, orDash(r.Trade), day(r.Start), day(r.Finish))
	}
	fmt.Fprintf(w, "%d rows\n", len(rows))
	return nil
}

func day(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return t.Format("2006-01-02")
}
