package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/records"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project with its geofence",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		pages, err := a.store.ListAll(ctx, a.cfg.Collections.Projects, nil)
		if err != nil {
			return err
		}
		sites := make([]models.Site, 0, len(pages))
		for _, pg := range pages {
			sites = append(sites, records.DecodeSite(pg))
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "count": len(sites), "projects": sites})
		}
		printHeader(out, "🏗️ Projects")
		for _, s := range sites {
			pos := "no coordinates"
			if lat, lon, ok := s.Coordinates(); ok {
				pos = fmt.Sprintf("%.5f,%.5f r=%.0fm", lat, lon, s.GeofenceRadius)
			}
			fmt.Fprintf(out, "%-20s %-24s %-9s %s\n", s.Slug, s.Name, s.Status, pos)
		}
		return nil
	})
}
