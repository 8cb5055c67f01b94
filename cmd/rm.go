package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm FILENAME",
	Short: "Delete a file from the image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, v, err := openVolume()
		if err != nil {
			return err
		}
		defer s.close()
		if err := v.Delete(args[0]); err != nil {
			return fmt.Errorf("deleting %s: %w", args[0], err)
		}
		if err := s.save(); err != nil {
			return fmt.Errorf("saving image: %w", err)
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
