package cmd

import (
	"fmt"

	"github.com/msiedlarek/fluxfat/config"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the configured drive profile and the mounted image's BPB",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Drive: %s\n", config.DriveName)
		fmt.Printf("Geometry: %d tracks, %d side(s)\n", config.Cyls, config.Heads)
		fmt.Printf("Speed: %d RPM, max %d kbps\n", config.RPM, config.MaxKBps)

		s, v, err := openVolume()
		if err != nil {
			fmt.Printf("Image: %s (not mounted: %v)\n", imagePath, err)
			return nil
		}
		defer s.close()
		fmt.Printf("Image: %s\n", imagePath)
		fmt.Println(v.BPB.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
