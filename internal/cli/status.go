package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/webhooks"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if jsonOutput {
			printJSON(out, map[string]string{"version": version})
			return
		}
		printHeader(out, "🏷️ sitesync Version")
		fmt.Fprintf(out, "Version: %s\n", version)
	},
}

var statusRecent int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and recent webhook deliveries",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusRecent, "recent", 5, "Number of recent deliveries to show")
}

type statusReport struct {
	Version    string              `json:"version"`
	Home       string              `json:"home"`
	Store      string              `json:"store"`
	Token      bool                `json:"notionToken"`
	Telegram   bool                `json:"telegram"`
	Stripe     bool                `json:"stripe"`
	Kafka      string              `json:"kafka,omitempty"`
	Storage    string              `json:"storage"`
	WeeklyCron string              `json:"weeklyCron"`
	Webhooks   map[string]string   `json:"webhooks"`
	Recent     []webhooks.Delivery `json:"recentDeliveries"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := cfg.Redacted()
	report := statusReport{
		Version:    version,
		Home:       c.App.Home,
		Store:      "notion",
		Token:      cfg.Notion.Token != "",
		Telegram:   cfg.Telegram.Token != "",
		Stripe:     cfg.Stripe.SecretKey != "",
		Kafka:      c.Kafka.Brokers,
		Storage:    "inline",
		WeeklyCron: c.App.WeeklyCron,
		Webhooks:   c.Webhooks.Static(),
	}
	if offlineMode {
		report.Store = "memory"
	}
	switch {
	case c.Storage.BucketURL != "":
		report.Storage = c.Storage.BucketURL
	case c.Storage.Dir != "":
		report.Storage = c.Storage.Dir
	}

	if _, err := os.Stat(cfg.LedgerPath()); err == nil {
		ledger, err := webhooks.OpenLedger(cfg.LedgerPath())
		if err != nil {
			return err
		}
		defer ledger.Close()
		report.Recent, err = ledger.Recent(cmd.Context(), statusRecent)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, report)
	}
	printHeader(out, "📊 sitesync Status")
	fmt.Fprintf(out, "Version:   %s\n", report.Version)
	fmt.Fprintf(out, "Home:      %s\n", report.Home)
	fmt.Fprintf(out, "Store:     %s\n", report.Store)
	fmt.Fprintf(out, "Token:     %s\n", mark(report.Token))
	fmt.Fprintf(out, "Telegram:  %s\n", mark(report.Telegram))
	fmt.Fprintf(out, "Stripe:    %s\n", mark(report.Stripe))
	fmt.Fprintf(out, "Kafka:     %s\n", orDash(report.Kafka))
	fmt.Fprintf(out, "Storage:   %s\n", report.Storage)
	fmt.Fprintf(out, "Weekly:    %s\n", report.WeeklyCron)
	for _, name := range webhooks.SmokeTargets {
		fmt.Fprintf(out, "Webhook %-11s %s\n", name+":", orDash(report.Webhooks[name]))
	}
	if len(report.Recent) > 0 {
		fmt.Fprintln(out, "\nRecent deliveries:")
		for _, d := range report.Recent {
			fmt.Fprintf(out, "  %s %s %-16s %d %s\n", mark(d.OK()), d.CreatedAt.Format("2006-01-02 15:04:05"), d.Event, d.StatusCode, d.Error)
		}
	}
	return nil
}
