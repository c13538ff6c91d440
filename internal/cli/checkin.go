package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/checkin"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Record a GPS check-in at the nearest site",
	Args:  cobra.NoArgs,
	RunE:  runCheckin,
}

var (
	checkinLat       float64
	checkinLon       float64
	checkinAccuracy  float64
	checkinAt        string
	checkinTolerance float64
)

func init() {
	f := checkinCmd.Flags()
	f.Float64Var(&checkinLat, "lat", 0, "Latitude in degrees")
	f.Float64Var(&checkinLon, "lon", 0, "Longitude in degrees")
	f.Float64Var(&checkinAccuracy, "accuracy", 0, "Reported GPS accuracy in meters")
	f.StringVar(&checkinAt, "at", "", "Check-in time (RFC 3339, defaults to now)")
	f.Float64Var(&checkinTolerance, "tolerance", 0, "Extra meters allowed beyond the geofence radius")
	checkinCmd.MarkFlagRequired("lat")
	checkinCmd.MarkFlagRequired("lon")
}

func runCheckin(cmd *cobra.Command, args []string) error {
	req := checkin.Request{Latitude: checkinLat, Longitude: checkinLon}
	if cmd.Flags().Changed("accuracy") {
		acc := checkinAccuracy
		req.AccuracyMeters = &acc
	}
	if checkinAt != "" {
		at, err := time.Parse(time.RFC3339, checkinAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		req.At = at
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if cmd.Flags().Changed("tolerance") {
			a.checkins.SetTolerance(checkinTolerance)
		}
		res, err := a.checkins.CheckIn(ctx, req)
		var outside *checkin.OutsideFenceError
		switch {
		case errors.As(err, &outside):
			return fmt.Errorf("not on site: nearest is %s, %.0fm away (fence %.0fm)", outside.Site.Name, outside.Distance, outside.Site.GeofenceRadius)
		case errors.Is(err, checkin.ErrNoSite):
			return errors.New("no project has coordinates; add latitude and longitude to a project first")
		case err != nil:
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "result": res})
		}
		printHeader(out, "📍 Check-in recorded")
		fmt.Fprintf(out, "Site:      %s (%s)\n", res.Site.Name, res.Site.Slug)
		fmt.Fprintf(out, "Distance:  %.1fm\n", res.Distance)
		fmt.Fprintf(out, "Daily log: %s\n", res.Log.ID)
		fmt.Fprintf(out, "Check-ins: %d today\n", len(res.Log.CheckIns))
		return nil
	})
}
