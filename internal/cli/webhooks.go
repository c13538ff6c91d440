package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/config"
	"github.com/patino82/construction-app/internal/webhooks"
)

var webhooksCmd = &cobra.Command{
	Use:   "webhooks",
	Short: "Test webhook endpoints and inspect deliveries",
}

var webhooksSmokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Post a dry-run event to every configured endpoint",
	Args:  cobra.NoArgs,
	RunE:  runWebhooksSmoke,
}

var webhooksRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent delivery attempts",
	Args:  cobra.NoArgs,
	RunE:  runWebhooksRecent,
}

var webhooksLimit int

func init() {
	webhooksRecentCmd.Flags().IntVar(&webhooksLimit, "limit", 20, "Number of deliveries to show")

	webhooksCmd.AddCommand(webhooksSmokeCmd)
	webhooksCmd.AddCommand(webhooksRecentCmd)
}

func runWebhooksSmoke(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		results := a.webhooks.Smoke(ctx)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "results": results})
		}
		printHeader(out, "💨 Webhook smoke test")
		if len(results) == 0 {
			fmt.Fprintln(out, "No webhook endpoints configured")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%s %-11s %d %s\n", mark(r.OK), r.Name, r.Status, r.Error)
		}
		return nil
	})
}

func runWebhooksRecent(cmd *cobra.Command, args []string) error {
	if err := config.EnsureDir(filepath.Dir(cfg.LedgerPath())); err != nil {
		return err
	}
	ledger, err := webhooks.OpenLedger(cfg.LedgerPath())
	if err != nil {
		return err
	}
	defer ledger.Close()
	recent, err := ledger.Recent(cmd.Context(), webhooksLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"ok": true, "deliveries": recent})
	}
	printHeader(out, "📬 Recent deliveries")
	for _, d := range recent {
		fmt.Fprintf(out, "%s %s %-20s %3d %s %s\n", mark(d.OK()), d.CreatedAt.Format("2006-01-02 15:04:05"), d.Event, d.StatusCode, d.URL, d.Error)
	}
	return nil
}
