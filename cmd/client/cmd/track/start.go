package track

import (
	"fmt"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
)

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new recording session",
	Long: `Creates a fresh empty track and makes it the target of subsequent
'track point' calls. A previous session simply stops being the active
one; its track is kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		t, err := app.StartSession()
		if err != nil {
			return fmt.Errorf("starting session: %w", err)
		}

		fmt.Printf("Recording session started, track #%d\n", t.ID)
		return nil
	},
}
