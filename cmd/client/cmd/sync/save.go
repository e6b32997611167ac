package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
	"geotrail/internal/domain/project"
)

var SaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Publish the local dataset as a project",
	Long: `Uploads all tracks and photos as a new project. When the name is
taken, a numeric suffix is appended until a free one is found; an
existing project is never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		result, err := app.Sync().Publish(ctx, args[0])
		if err != nil {
			if errors.Is(err, project.ErrAuthRequired) {
				return fmt.Errorf("authentication required, run: geotrail auth login")
			}
			return fmt.Errorf("publish failed: %w", err)
		}

		color.Green("Published as %q", result.Name)
		fmt.Printf("Photos uploaded: %d\n", result.UploadedPhotos)
		if result.FailedPhotos > 0 {
			color.Yellow("Photos failed: %d (re-run save to publish them under a new name)", result.FailedPhotos)
		}
		return nil
	},
}
