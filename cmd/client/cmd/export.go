package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracks and photos as KMZ or GeoJSON",
	Long: `Writes the whole local route log as an interchange document. KMZ
packages the photos into the archive; GeoJSON inlines them base64
encoded.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		var data []byte
		var err error
		out := exportOut

		switch exportFormat {
		case "kmz":
			data, err = app.ExportKMZ()
			if out == "" {
				out = "trail.kmz"
			}
		case "geojson":
			data, err = app.ExportGeoJSON()
			if out == "" {
				out = "trail.geojson"
			}
		default:
			return fmt.Errorf("unknown format %q, want kmz or geojson", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}

		fmt.Printf("Exported %d bytes to %s\n", len(data), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "kmz", "output format (kmz, geojson)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")
}
