package photo

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"geotrail/cmd/client/cmd/types"
	"geotrail/internal/app/client"
)

var (
	annotateCaption   string
	annotateDirection float64
)

var AnnotateCmd = &cobra.Command{
	Use:   "annotate <photo-id>",
	Short: "Update caption or direction of a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid photo id %q", args[0])
		}

		var caption *string
		var direction *float64
		if cmd.Flags().Changed("caption") {
			caption = &annotateCaption
		}
		if cmd.Flags().Changed("direction") {
			direction = &annotateDirection
		}
		if caption == nil && direction == nil {
			return fmt.Errorf("nothing to update, pass --caption and/or --direction")
		}

		if err := app.AnnotatePhoto(id, caption, direction); err != nil {
			return fmt.Errorf("annotating photo: %w", err)
		}

		fmt.Printf("Photo #%d updated\n", id)
		return nil
	},
}

func init() {
	AnnotateCmd.Flags().StringVar(&annotateCaption, "caption", "", "new caption")
	AnnotateCmd.Flags().Float64Var(&annotateDirection, "direction", 0, "new view direction in degrees")
}
