package photo

import (
	"github.com/spf13/cobra"
)

var PhotoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Geo-tagged photos",
	Long:  `Capture photos into the local store and annotate them afterwards.`,
}
