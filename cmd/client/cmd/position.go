package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
	"geotrail/internal/domain/geo"
)

var (
	positionLat  float64
	positionLng  float64
	positionZoom int
)

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Show or set the remembered map position",
	Long: `Without flags, prints the remembered map viewport. With --lat and
--lng it saves a new one. The position survives a full data reset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return fmt.Errorf("--lat and --lng must be set together")
			}
			pos := geo.LastPosition{
				Lat:       positionLat,
				Lng:       positionLng,
				Zoom:      positionZoom,
				Timestamp: time.Now(),
			}
			if err := app.SaveLastPosition(pos); err != nil {
				return fmt.Errorf("saving position: %w", err)
			}
			fmt.Printf("Position saved: %.5f, %.5f (zoom %d)\n", pos.Lat, pos.Lng, pos.Zoom)
			return nil
		}

		pos, err := app.LastPosition()
		if err != nil {
			return fmt.Errorf("reading position: %w", err)
		}
		if pos == nil {
			def := geo.DefaultLastPosition()
			pos = &def
		}
		fmt.Printf("Position: %.5f, %.5f (zoom %d)\n", pos.Lat, pos.Lng, pos.Zoom)
		if !pos.Timestamp.IsZero() {
			fmt.Printf("Saved:    %s\n", pos.Timestamp.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	positionCmd.Flags().Float64Var(&positionLat, "lat", 0, "latitude in degrees")
	positionCmd.Flags().Float64Var(&positionLng, "lng", 0, "longitude in degrees")
	positionCmd.Flags().IntVar(&positionZoom, "zoom", geo.DefaultZoom, "zoom level")
}
