package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Upsert sites, tasks and settings from a YAML fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		sum, err := a.seed(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "summary": sum})
		}
		printHeader(out, "🌱 Fixture applied")
		fmt.Fprintf(out, "Sites:    %d\n", sum.Sites)
		fmt.Fprintf(out, "Tasks:    %d\n", sum.Tasks)
		fmt.Fprintf(out, "Settings: %s\n", mark(sum.Settings))
		return nil
	})
}
