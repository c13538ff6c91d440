package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/config"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/patino82/construction-app/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"      _ _                             \n" +
		"  ___(_) |_ ___  ___ _   _ _ __   ___ \n" +
		" / __| | __/ _ \\/ __| | | | '_ \\ / __|\n" +
		" \\__ \\ | ||  __/\\__ \\ |_| | | | | (__ \n" +
		" |___/_|\\__\\___||___/\\__, |_| |_|\\___|\n" +
		"                     |___/            \n"
)

// Global flags shared by every command.
var (
	offlineMode bool
	fixturePath string
	jsonOutput  bool
)

// cfg is loaded once per invocation before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "sitesync",
	Short:         "sitesync - field operations sync for construction sites",
	Long:          color.CyanString(logo) + "\nSchedules, check-ins and notifications on top of a Notion workspace.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		return setupLogging(cfg.App)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), color.RedString("Error: %v", err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&offlineMode, "offline", false, "Use an in-memory store instead of Notion")
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixture", "", "Seed the store from a YAML fixture before running")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(lookaheadCmd)
	rootCmd.AddCommand(ganttCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(elementsCmd)
	rootCmd.AddCommand(telegramCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(webhooksCmd)
	rootCmd.AddCommand(billingCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(serveCmd)
}
