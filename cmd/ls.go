package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files on the image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, v, err := openVolume()
		if err != nil {
			return err
		}
		defer s.close()
		entries, err := v.List()
		if err != nil {
			return fmt.Errorf("listing directory: %w", err)
		}
		for _, e := range entries {
			fmt.Printf("%-12s %8d\n", e.DisplayName(), e.Size)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
