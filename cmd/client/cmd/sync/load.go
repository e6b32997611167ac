package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
)

var loadYes bool

var LoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Restore a published project into the local store",
	Long: `Replaces the local tracks and photos with the named project.
Externally imported datasets are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if !loadYes {
			fmt.Print("This replaces all local tracks and photos. Continue? [y/N] ")
			var answer string
			_, _ = fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted")
				return nil
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		projects, err := app.Sync().Projects(ctx)
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}

		for _, p := range projects {
			if p.Name != args[0] {
				continue
			}
			result, err := app.Sync().Load(ctx, p)
			if err != nil {
				return fmt.Errorf("load failed: %w", err)
			}

			color.Green("Loaded %q", p.Name)
			fmt.Printf("Tracks restored: %d\n", result.Tracks)
			fmt.Printf("Photos restored: %d\n", result.Photos)
			if result.SkippedPhotos > 0 {
				color.Yellow("Photos skipped: %d", result.SkippedPhotos)
			}
			return nil
		}

		return fmt.Errorf("project %q not found", args[0])
	},
}

func init() {
	LoadCmd.Flags().BoolVarP(&loadYes, "yes", "y", false, "skip the confirmation prompt")
}
