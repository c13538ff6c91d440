package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change admin settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the admin settings record",
	Args:  cobra.NoArgs,
	RunE:  runConfigGet,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the process configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd.OutOrStdout(), cfg.Redacted())
	},
}

var configSetQuietCmd = &cobra.Command{
	Use:   "set-quiet",
	Short: "Change the quiet-hours window",
	Args:  cobra.NoArgs,
	RunE:  runConfigSetQuiet,
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url",
	Short: "Change the published timeline or dashboard URL",
	Args:  cobra.NoArgs,
	RunE:  runConfigSetURL,
}

var configSetWebhookCmd = &cobra.Command{
	Use:   "set-webhook <name> [url]",
	Short: "Set a webhook endpoint, or remove it when no URL is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runConfigSetWebhook,
}

var (
	quietStart string
	quietEnd   string
	quietTZ    string
	quietAllow string

	urlTimeline  string
	urlDashboard string
)

func init() {
	configSetQuietCmd.Flags().StringVar(&quietStart, "start", "", "Window start (HH:MM)")
	configSetQuietCmd.Flags().StringVar(&quietEnd, "end", "", "Window end (HH:MM)")
	configSetQuietCmd.Flags().StringVar(&quietTZ, "tz", "", "IANA time zone")
	configSetQuietCmd.Flags().StringVar(&quietAllow, "allow", "", "Comma-separated topics that bypass quiet hours")

	configSetURLCmd.Flags().StringVar(&urlTimeline, "timeline", "", "Public timeline image URL")
	configSetURLCmd.Flags().StringVar(&urlDashboard, "dashboard", "", "Dashboard base URL")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configEnvCmd)
	configCmd.AddCommand(configSetQuietCmd)
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configSetWebhookCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		s, err := a.settings.Get(ctx, true)
		if err != nil {
			return err
		}
		return printSettings(cmd, s)
	})
}

func runConfigSetQuiet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		current, err := a.settings.Get(ctx, true)
		if err != nil {
			return err
		}
		q := current.QuietHours
		flags := cmd.Flags()
		if flags.Changed("start") {
			q.Start = quietStart
		}
		if flags.Changed("end") {
			q.End = quietEnd
		}
		if flags.Changed("tz") {
			q.TZ = quietTZ
		}
		if flags.Changed("allow") {
			q.Bypass = splitList(quietAllow)
		}
		next, err := a.settings.Update(ctx, models.SettingsPatch{QuietHours: &q})
		if err != nil {
			return err
		}
		return printSettings(cmd, next)
	})
}

func runConfigSetURL(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		current, err := a.settings.Get(ctx, true)
		if err != nil {
			return err
		}
		urls := current.URLs
		if cmd.Flags().Changed("timeline") {
			urls.TimelineImage = urlTimeline
		}
		if cmd.Flags().Changed("dashboard") {
			urls.DashboardBase = urlDashboard
		}
		next, err := a.settings.Update(ctx, models.SettingsPatch{URLs: &urls})
		if err != nil {
			return err
		}
		return printSettings(cmd, next)
	})
}

func runConfigSetWebhook(cmd *cobra.Command, args []string) error {
	name := strings.ToUpper(strings.TrimSpace(args[0]))
	target := ""
	if len(args) == 2 {
		target = strings.TrimSpace(args[1])
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		current, err := a.settings.Get(ctx, true)
		if err != nil {
			return err
		}
		hooks := maps.Clone(current.Webhooks)
		if hooks == nil {
			hooks = map[string]string{}
		}
		if target == "" {
			delete(hooks, name)
		} else {
			hooks[name] = target
		}
		next, err := a.settings.Update(ctx, models.SettingsPatch{Webhooks: hooks})
		if err != nil {
			return err
		}
		return printSettings(cmd, next)
	})
}

func printSettings(cmd *cobra.Command, s models.AdminSettings) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, s)
	}
	printHeader(out, "⚙️ Admin Settings")
	fmt.Fprintf(out, "Record:     %s\n", s.ID)
	fmt.Fprintf(out, "Quiet:      %s-%s %s (allow: %s)\n", s.QuietHours.Start, s.QuietHours.End, s.QuietHours.TZ, orDash(strings.Join(s.QuietHours.Bypass, ",")))
	chat := "-"
	if s.Messaging.ChatID != nil {
		chat = fmt.Sprint(*s.Messaging.ChatID)
	}
	fmt.Fprintf(out, "Chat:       %s\n", chat)
	for _, topic := range slices.Sorted(maps.Keys(s.Messaging.Topics)) {
		fmt.Fprintf(out, "Topic:      %s -> %d\n", topic, s.Messaging.Topics[topic])
	}
	for _, name := range slices.Sorted(maps.Keys(s.Webhooks)) {
		fmt.Fprintf(out, "Webhook:    %s\n", name)
	}
	fmt.Fprintf(out, "Timeline:   %s\n", orDash(s.URLs.TimelineImage))
	fmt.Fprintf(out, "Dashboard:  %s\n", orDash(s.URLs.DashboardBase))
	fmt.Fprintf(out, "Billing:    %s/%s\n", s.Billing.Plan, s.Billing.Tier)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
