// Package drive adapts physical flux transports -- a serial-port-attached
// board (Greaseweazle/KryoFlux/SuperCard-Pro-class hardware) or a raw USB
// bulk endpoint -- to the fat12.Device interface, decoding/encoding every
// track through mfm.Decoder/mfm.Encoder so the filesystem core never sees
// flux directly.
package drive

import (
	"fmt"

	"github.com/msiedlarek/fluxfat/internal/log"
	"github.com/msiedlarek/fluxfat/mfm"
)

// Known VID/PID pairs for serial-attached flux controllers, carried over
// from the wider flux-tooling ecosystem this adapter family targets.
const (
	GreaseweazleVendorID  = 0x1209
	GreaseweazleProductID = 0x4d69

	KryoFluxVendorID  = 0x03eb
	KryoFluxProductID = 0x6124

	SuperCardProVendorID  = 0x0403
	SuperCardProProductID = 0x6015
)

// Transport is the raw byte-stream a flux controller is reachable over,
// implemented by both the serial and USB backends.
type Transport interface {
	// SeekTrack moves the head to the given cylinder and side.
	SeekTrack(cylinder, side int) error
	// ReadFluxRevolution returns one revolution's pulse intervals,
	// already in this package's OVERHEAD-subtracted unit.
	ReadFluxRevolution() ([]byte, error)
	// WriteFluxRevolution streams pre-encoded pulse intervals to the head.
	WriteFluxRevolution(intervals []byte) error
	Close() error
}

// Adapter implements fat12.Device over any Transport, decoding reads and
// encoding writes through the mfm codec.
type Adapter struct {
	t Transport
}

// New wraps a Transport as a fat12.Device.
func New(t Transport) *Adapter { return &Adapter{t: t} }

// ReadSector seeks to the sector's track, decodes one flux revolution, and
// returns that sector number from it, or an error if the revolution does
// not contain it.
func (a *Adapter) ReadSector(track, side, sectorN int) (*mfm.Sector, error) {
	if err := a.t.SeekTrack(track, side); err != nil {
		return nil, fmt.Errorf("drive: seek: %w", err)
	}
	intervals, err := a.t.ReadFluxRevolution()
	if err != nil {
		return nil, fmt.Errorf("drive: read flux: %w", err)
	}
	for _, sec := range mfm.DecodeTrack(intervals) {
		if sec.SectorN == sectorN {
			if !sec.Valid {
				log.Warnf("track %d side %d sector %d decoded with bad CRC", track, side, sectorN)
			}
			s := sec
			return &s, nil
		}
	}
	return nil, fmt.Errorf("drive: sector (%d,%d,%d) not found in revolution", track, side, sectorN)
}

// WriteTrack encodes all 18 sectors and streams the resulting flux.
func (a *Adapter) WriteTrack(track, side int, sectors [mfm.SectorsPerTrack][mfm.SectorSize]byte) error {
	if err := a.t.SeekTrack(track, side); err != nil {
		return fmt.Errorf("drive: seek: %w", err)
	}

	var payload [mfm.SectorsPerTrack][]byte
	for i := range sectors {
		data := sectors[i]
		payload[i] = data[:]
	}

	buf := make([]byte, 1<<17)
	enc := mfm.NewEncoder(buf)
	enc.EncodeTrack(track, side, payload)
	if enc.Overflow() {
		return fmt.Errorf("drive: encoded track overflowed buffer")
	}

	if err := a.t.WriteFluxRevolution(enc.Intervals()); err != nil {
		return fmt.Errorf("drive: write flux: %w", err)
	}
	return nil
}

// DiskChanged and WriteProtected are conservative defaults for
// transports that don't expose dedicated status lines.
func (a *Adapter) DiskChanged() bool    { return false }
func (a *Adapter) WriteProtected() bool { return false }

// Close releases the underlying transport.
func (a *Adapter) Close() error { return a.t.Close() }
