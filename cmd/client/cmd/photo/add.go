package photo

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
	"geotrail/internal/domain/geo"
)

var (
	addFile      string
	addLat       float64
	addLng       float64
	addDirection float64
	addCaption   string
)

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a captured photo",
	Long: `Reads an image file and stores it as a geo-tagged photo. Location
and direction are optional; a photo without them still participates in
exports and publishes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		data, err := os.ReadFile(addFile)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}

		p := &geo.Photo{
			Data: data,
			Text: addCaption,
		}
		if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
			p.Location = &geo.LatLng{Lat: addLat, Lng: addLng}
		}
		if cmd.Flags().Changed("direction") {
			d := addDirection
			p.Direction = &d
		}

		id, err := app.CapturePhoto(p)
		if err != nil {
			return fmt.Errorf("storing photo: %w", err)
		}

		fmt.Printf("Photo #%d stored (%d bytes)\n", id, len(data))
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&addFile, "file", "f", "", "image file to store")
	AddCmd.Flags().Float64Var(&addLat, "lat", 0, "latitude in degrees")
	AddCmd.Flags().Float64Var(&addLng, "lng", 0, "longitude in degrees")
	AddCmd.Flags().Float64Var(&addDirection, "direction", 0, "view direction in degrees")
	AddCmd.Flags().StringVar(&addCaption, "caption", "", "photo caption")
	_ = AddCmd.MarkFlagRequired("file")
}
