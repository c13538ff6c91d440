package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Billing account operations",
}

var billingEnsureCmd = &cobra.Command{
	Use:   "ensure <email>",
	Short: "Find or create the billing customer for an email",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillingEnsure,
}

func init() {
	billingCmd.AddCommand(billingEnsureCmd)
}

func runBillingEnsure(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		id, err := a.billing.EnsureCustomer(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "configured": a.billing.Configured(), "customerId": id})
		}
		if !a.billing.Configured() {
			fmt.Fprintln(out, "Billing disabled: set STRIPE_SECRET_KEY")
			return nil
		}
		fmt.Fprintf(out, "Customer: %s\n", id)
		return nil
	})
}
