// Package log is a minimal [fluxfat]-prefixed stderr logger for the CLI and
// drive backends. The codec/filesystem core (crc16, mfm, fat12, flux, pio)
// never imports this: it reports everything through return values instead.
package log

import (
	"fmt"
	"os"
)

// Printf writes a progress message to stderr.
func Printf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[fluxfat] "+format+"\n", args...)
}

// Warnf writes a warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[fluxfat] warning: "+format+"\n", args...)
}
