package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
)

var (
	resetAll bool
	resetYes bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear local data",
	Long: `Clears the local tracks and photos and ends the recording session.
With --all the whole store is recreated, external datasets included;
the remembered map position is kept either way.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if !resetYes {
			what := "all local tracks and photos"
			if resetAll {
				what = "the whole local store"
			}
			fmt.Printf("This deletes %s. Continue? [y/N] ", what)
			var answer string
			_, _ = fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted")
				return nil
			}
		}

		if resetAll {
			if err := app.FullReset(); err != nil {
				return fmt.Errorf("full reset failed: %w", err)
			}
			fmt.Println("Store recreated")
			return nil
		}

		if err := app.ClearRouteData(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Println("Tracks and photos cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "recreate the whole store")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
}
