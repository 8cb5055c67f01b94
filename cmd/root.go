// Package cmd implements the fluxfat command-line tool: a cobra-based
// CLI over the fat12 core, operating on flat .img files by default and,
// when a live drive adapter is connected, directly on hardware via the
// drive package.
package cmd

import (
	"fmt"

	"github.com/msiedlarek/fluxfat/config"
	"github.com/msiedlarek/fluxfat/drive"
	"github.com/msiedlarek/fluxfat/fat12"
	"github.com/msiedlarek/fluxfat/fatimage"

	"github.com/spf13/cobra"
)

var (
	imagePath  string
	serialPort string
	useUSB     bool
)

var rootCmd = &cobra.Command{
	Use:   "fluxfat",
	Short: "Inspect and edit FAT12 floppy images at the flux level",
	Long: `fluxfat reads and writes FAT12 3.5" HD floppy images.

It operates on a flat .img file by default (see --image), reading and
writing its sectors directly; with --serial or --usb it talks to an
attached flux drive, encoding and decoding tracks through the MFM codec.`,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "completion":
			return nil
		}
		return config.Initialize()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&imagePath, "image", "disk.img", "path to the flat .img file to operate on")
	rootCmd.PersistentFlags().StringVar(&serialPort, "serial", "", "serial port of an attached flux drive (overrides --image); \"auto\" to probe known VID/PID pairs")
	rootCmd.PersistentFlags().BoolVar(&useUSB, "usb", false, "use a direct USB bulk connection to an attached flux drive (overrides --image and --serial)")
}

// Execute runs the root command, terminating the process on error via
// cobra.CheckErr.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// session wraps whichever fat12.Device backend the --image/--serial/--usb
// flags select, so the rest of the commands don't care whether they're
// talking to a flat file or a live drive.
type session struct {
	dev   fat12.Device
	save  func() error // flushes to persistent storage; no-op for live drives
	close func() error // releases the backend; no-op for flat files
}

// openDevice selects a backend according to --usb, --serial and --image,
// in that priority order.
func openDevice() (*session, error) {
	switch {
	case useUSB:
		t, err := drive.OpenUSB()
		if err != nil {
			return nil, fmt.Errorf("opening USB drive: %w", err)
		}
		a := drive.New(t)
		return &session{dev: a, save: func() error { return nil }, close: a.Close}, nil

	case serialPort != "":
		port := serialPort
		if port == "auto" {
			found, err := drive.FindPort()
			if err != nil {
				return nil, err
			}
			port = found
		}
		t, err := drive.OpenSerial(port)
		if err != nil {
			return nil, fmt.Errorf("opening serial drive %s: %w", port, err)
		}
		a := drive.New(t)
		return &session{dev: a, save: func() error { return nil }, close: a.Close}, nil

	default:
		img, err := fatimage.Load(imagePath)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", imagePath, err)
		}
		return &session{
			dev:   img,
			save:  func() error { return img.Save(imagePath) },
			close: func() error { return nil },
		}, nil
	}
}

// openVolume opens a backend and mounts the FAT12 filesystem on it.
func openVolume() (*session, *fat12.Volume, error) {
	s, err := openDevice()
	if err != nil {
		return nil, nil, err
	}
	v, err := fat12.Mount(s.dev)
	if err != nil {
		s.close()
		return nil, nil, fmt.Errorf("mounting: %w", err)
	}
	return s, v, nil
}
