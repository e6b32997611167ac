package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
	"geotrail/internal/codec"
)

var importYes bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a KMZ or GeoJSON document",
	Long: `Imports an interchange document. Documents produced by GeoTrail
replace the local route log; anything else is stored as an external
dataset next to it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}

		result, err := app.Import(filepath.Base(args[0]), data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if result.Kind == codec.KindForeign {
			fmt.Printf("Imported %q as external dataset #%d", result.Dataset.Name, result.Dataset.ID)
			if result.Assets > 0 {
				fmt.Printf(" with %d photo assets", result.Assets)
			}
			fmt.Println()
			return nil
		}

		fmt.Printf("GeoTrail document: %d tracks, %d photos\n",
			len(result.Tracks), len(result.Photos))

		if !importYes {
			fmt.Print("This replaces all local tracks and photos. Continue? [y/N] ")
			var answer string
			_, _ = fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted, nothing imported")
				return nil
			}
		}

		if err := app.ReplaceSession(result); err != nil {
			return fmt.Errorf("restoring data: %w", err)
		}

		fmt.Println("Local route log replaced")
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "skip the confirmation prompt")
}
