package cmd

import (
	"fmt"

	"github.com/msiedlarek/fluxfat/fat12"
	"github.com/msiedlarek/fluxfat/fatimage"
	"github.com/msiedlarek/fluxfat/internal/log"

	"github.com/spf13/cobra"
)

var (
	formatQuick bool
	formatLabel string
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format (or create) the image as an empty FAT12 volume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		img := fatimage.New()

		mode := fat12.FormatFull
		if formatQuick {
			mode = fat12.FormatQuick
		} else {
			log.Printf("zero-filling data area")
		}
		if err := fat12.Format(img, formatLabel, mode, 0); err != nil {
			return fmt.Errorf("formatting: %w", err)
		}
		if err := img.Save(imagePath); err != nil {
			return fmt.Errorf("saving image: %w", err)
		}
		fmt.Printf("formatted %s\n", imagePath)
		return nil
	},
}

func init() {
	formatCmd.Flags().BoolVar(&formatQuick, "quick", false, "skip zero-filling the data area")
	formatCmd.Flags().StringVar(&formatLabel, "label", "", "11-character volume label")
	rootCmd.AddCommand(formatCmd)
}
