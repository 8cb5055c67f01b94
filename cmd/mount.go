package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount the image and print its BPB summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, v, err := openVolume()
		if err != nil {
			return err
		}
		defer s.close()
		fmt.Println(v.BPB.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mountCmd)
}
