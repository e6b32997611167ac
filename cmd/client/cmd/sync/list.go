package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
)

var listFormat string

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published projects",
	Long:  `Lists the account's published projects, newest first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		projects, err := app.Sync().Projects(ctx)
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}

		if listFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(projects)
		}

		if len(projects) == 0 {
			fmt.Println("No published projects")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Name\tStarted\tTracks\tPhotos\tPublished\t\n")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t\n",
				p.Name,
				p.StartTime.Format("2006-01-02"),
				p.TracksCount,
				p.PhotosCount,
				p.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json)")
}
