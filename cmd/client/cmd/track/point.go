package track

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
	"geotrail/internal/domain/geo"
)

var (
	pointLat float64
	pointLng float64
)

var PointCmd = &cobra.Command{
	Use:   "point",
	Short: "Append a position to the active track",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		t, err := app.RecordTrackPoint(geo.LatLng{Lat: pointLat, Lng: pointLng})
		if err != nil {
			if errors.Is(err, client.ErrNoActiveSession) {
				return fmt.Errorf("no active session, run 'geotrail track start' first")
			}
			return fmt.Errorf("recording point: %w", err)
		}

		fmt.Printf("Track #%d now has %d points\n", t.ID, t.TotalPoints)
		return nil
	},
}

func init() {
	PointCmd.Flags().Float64Var(&pointLat, "lat", 0, "latitude in degrees")
	PointCmd.Flags().Float64Var(&pointLng, "lng", 0, "longitude in degrees")
	_ = PointCmd.MarkFlagRequired("lat")
	_ = PointCmd.MarkFlagRequired("lng")
}
