package cmd

import (
	"context"
	"fmt"
	"time"

	"geotrail/cmd/client/cmd/auth"
	"geotrail/cmd/client/cmd/photo"
	"geotrail/cmd/client/cmd/sync"
	"geotrail/cmd/client/cmd/track"
	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show client status",
	Long: `Prints the local store summary, the authentication state and
whether the server is reachable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		tracks, err := app.Storage().Tracks()
		if err != nil {
			return fmt.Errorf("reading tracks: %w", err)
		}
		photos, err := app.Storage().Photos()
		if err != nil {
			return fmt.Errorf("reading photos: %w", err)
		}
		datasets, err := app.Storage().ExternalDatasets()
		if err != nil {
			return fmt.Errorf("reading external datasets: %w", err)
		}

		fmt.Printf("Tracks:            %d\n", len(tracks))
		fmt.Printf("Photos:            %d\n", len(photos))
		fmt.Printf("External datasets: %d\n", len(datasets))

		if app.IsAuthenticated() {
			fmt.Println("Authentication:    logged in")
		} else {
			fmt.Println("Authentication:    not logged in")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := app.CheckConnection(ctx); err != nil {
			fmt.Printf("Server:            unreachable (%v)\n", err)
		} else {
			fmt.Println("Server:            ok")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)

	rootCmd.AddCommand(track.TrackCmd)
	track.TrackCmd.AddCommand(track.StartCmd)
	track.TrackCmd.AddCommand(track.PointCmd)
	track.TrackCmd.AddCommand(track.ListCmd)

	rootCmd.AddCommand(photo.PhotoCmd)
	photo.PhotoCmd.AddCommand(photo.AddCmd)
	photo.PhotoCmd.AddCommand(photo.AnnotateCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.SaveCmd)
	sync.SyncCmd.AddCommand(sync.ListCmd)
	sync.SyncCmd.AddCommand(sync.LoadCmd)

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(resetCmd)
}
