// Package config loads the floppy drive/image profile used by the CLI:
// which physical drive geometry and transfer-rate budget to assume, and
// the named disk images the fat12 core operates on. The file format and
// load sequence (embedded default, then user override at a per-OS path)
// follow the same shape as the original drive-selection config this was
// adapted from.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

//go:embed floppy.toml
var defaultConfigData []byte

// Global state populated by Initialize, mirroring the selected drive
// profile and registered images.
var (
	DriveName string
	Cyls      int
	Heads     int
	RPM       int
	MaxKBps   int
	Images    []string
	ImageMap  map[string]string // image name -> filename

	JitterUnits int // default PLL jitter bound applied by `simulate`, in pulse units
	DriftPPM    int // default drift applied by `simulate`, in ppm
)

// Config is the entire TOML configuration structure.
type Config struct {
	Default string  `toml:"default"`
	Drive   []Drive `toml:"drive"`
	Image   []Image `toml:"image"`
	Sim     Sim     `toml:"simulate"`
}

// Drive describes one physical (or emulated) floppy drive's geometry and
// transfer budget.
type Drive struct {
	Name    string   `toml:"name"`
	Cyls    int      `toml:"cyls"`
	Heads   int      `toml:"heads"`
	RPM     int      `toml:"rpm"`
	MaxKBps int      `toml:"maxkbps"`
	Images  []string `toml:"images"`
}

// Image names a disk image file the CLI can mount by name.
type Image struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

// Sim holds default flux-simulator parameters for the `simulate` CLI
// subcommand.
type Sim struct {
	JitterUnits int `toml:"jitter_units"`
	DriftPPM    int `toml:"drift_ppm"`
}

// configPath determines the config file path based on the operating system.
func configPath() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "fluxfat")
	default:
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, ".fluxfat.toml"), nil
}

// Initialize loads and validates the configuration file, creating it from
// the embedded default on first run.
func Initialize() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
		if err := os.WriteFile(path, defaultConfigData, 0644); err != nil {
			return fmt.Errorf("failed to create default config file at %s: %w", path, err)
		}
	}

	var conf Config
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return fmt.Errorf("failed to parse TOML config at %s: %w", path, err)
	}

	if conf.Default == "" {
		return errors.New("`default` key is missing or empty in config")
	}

	var foundDrive *Drive
	for i := range conf.Drive {
		if conf.Drive[i].Name == conf.Default {
			foundDrive = &conf.Drive[i]
			break
		}
	}
	if foundDrive == nil {
		return fmt.Errorf("default drive %q not found in drive array", conf.Default)
	}

	if foundDrive.Cyls <= 0 {
		return fmt.Errorf("drive %q has invalid cyls: %d (must be positive)", conf.Default, foundDrive.Cyls)
	}
	if foundDrive.Heads <= 0 {
		return fmt.Errorf("drive %q has invalid heads: %d (must be positive)", conf.Default, foundDrive.Heads)
	}
	if foundDrive.RPM <= 0 {
		return fmt.Errorf("drive %q has invalid rpm: %d (must be positive)", conf.Default, foundDrive.RPM)
	}
	if foundDrive.MaxKBps <= 0 {
		return fmt.Errorf("drive %q has invalid maxkbps: %d (must be positive)", conf.Default, foundDrive.MaxKBps)
	}

	DriveName = conf.Default
	Cyls = foundDrive.Cyls
	Heads = foundDrive.Heads
	RPM = foundDrive.RPM
	MaxKBps = foundDrive.MaxKBps
	Images = make([]string, len(foundDrive.Images))
	copy(Images, foundDrive.Images)

	imageExists := make(map[string]bool)
	ImageMap = make(map[string]string)
	for _, img := range conf.Image {
		imageExists[img.Name] = true
		ImageMap[img.Name] = img.File
	}
	for _, imgName := range foundDrive.Images {
		if !imageExists[imgName] {
			return fmt.Errorf("image %q listed under drive %q not found in image array", imgName, conf.Default)
		}
	}

	JitterUnits = conf.Sim.JitterUnits
	DriftPPM = conf.Sim.DriftPPM

	return nil
}

// GetImageFilename returns the filename registered for imageName.
func GetImageFilename(imageName string) (string, error) {
	filename, ok := ImageMap[imageName]
	if !ok {
		return "", fmt.Errorf("image %q not found in configuration", imageName)
	}
	return filename, nil
}
