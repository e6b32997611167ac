package sync

import (
	"github.com/spf13/cobra"
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish and restore projects",
	Long: `Exchange data with the GeoTrail server: publish the local dataset
as a named project, list published projects and load one back.`,
}
