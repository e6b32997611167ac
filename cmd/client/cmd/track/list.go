package track

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
)

var listFormat string

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded tracks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		tracks, err := app.Storage().Tracks()
		if err != nil {
			return fmt.Errorf("reading tracks: %w", err)
		}

		if listFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(tracks)
		}

		if len(tracks) == 0 {
			fmt.Println("No tracks recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tStarted\tPoints\t\n")
		for _, t := range tracks {
			fmt.Fprintf(w, "%d\t%s\t%d\t\n",
				t.ID,
				t.Timestamp.Format("2006-01-02 15:04:05"),
				t.TotalPoints,
			)
		}
		return w.Flush()
	},
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json)")
}
