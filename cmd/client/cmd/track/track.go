package track

import (
	"github.com/spf13/cobra"
)

var TrackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track recording",
	Long: `Start a recording session and append sampled positions to the
active track.`,
}
