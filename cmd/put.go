package cmd

import (
	"fmt"
	"os"

	"github.com/msiedlarek/fluxfat/internal/log"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put SRC FILENAME",
	Short: "Write a host file onto the image under FILENAME",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dest := args[0], args[1]

		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("reading %s: %w", src, err)
		}

		s, v, err := openVolume()
		if err != nil {
			return err
		}
		defer s.close()

		w, err := v.OpenWrite(dest)
		if err != nil {
			return fmt.Errorf("opening %s for write: %w", dest, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", dest, err)
		}

		log.Printf("flushing write batch")
		if err := s.save(); err != nil {
			return fmt.Errorf("saving image: %w", err)
		}
		fmt.Printf("%s -> %s (%d bytes)\n", src, dest, len(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
