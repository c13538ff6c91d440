package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/channels"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Manage the messaging bot",
}

var telegramRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Publish the configured command menu to the bot",
	Args:  cobra.NoArgs,
	RunE:  runTelegramRegister,
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a message to a messaging topic",
	Args:  cobra.NoArgs,
	RunE:  runNotify,
}

var (
	notifyTopic   string
	notifyMessage string
)

func init() {
	notifyCmd.Flags().StringVar(&notifyTopic, "topic", "", "Topic name (LOGS, LOOKAHEAD, ...)")
	notifyCmd.Flags().StringVarP(&notifyMessage, "message", "m", "", "Message text")
	notifyCmd.MarkFlagRequired("topic")
	notifyCmd.MarkFlagRequired("message")

	telegramCmd.AddCommand(telegramRegisterCmd)
}

func runTelegramRegister(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()
		if !a.dispatcher.Enabled() {
			if jsonOutput {
				return printJSON(out, map[string]any{"ok": false, "reason": "telegram_disabled"})
			}
			fmt.Fprintln(out, "Telegram disabled: set TELEGRAM_BOT_TOKEN")
			return nil
		}
		commands, err := a.dispatcher.RegisterCommands(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "commands": commands})
		}
		printHeader(out, "🤖 Bot commands registered")
		for _, c := range commands {
			fmt.Fprintf(out, "/%s\n", c.Command)
		}
		return nil
	})
}

func runNotify(cmd *cobra.Command, args []string) error {
	topic := strings.ToUpper(strings.TrimSpace(notifyTopic))
	return withApp(cmd, func(ctx context.Context, a *app) error {
		outcome := a.dispatcher.SendTopic(ctx, topic, notifyMessage)
		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := printJSON(out, map[string]any{"ok": outcome == channels.OutcomeSent, "outcome": outcome}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "%s %s: %s\n", mark(outcome == channels.OutcomeSent), topic, outcome)
		}
		if outcome == channels.OutcomeFailed {
			return errors.New("message delivery failed")
		}
		return nil
	})
}
