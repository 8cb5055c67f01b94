// Package fatimage implements fat12.Device over a flat .img file: a
// straight 2880-sector byte dump with no flux modeling, used by the CLI
// and by tests that want a fat12.Volume without going through mfm/flux at
// all.
package fatimage

import (
	"fmt"
	"os"

	"github.com/msiedlarek/fluxfat/ferr"
	"github.com/msiedlarek/fluxfat/mfm"
)

// Image is an in-memory flat disk image, optionally backed by a file on
// disk for Load/Save.
type Image struct {
	path           string
	data           []byte
	writeProtected bool
	changed        bool
}

// New creates a blank, zero-filled image of the standard HD geometry.
func New() *Image {
	return &Image{data: make([]byte, mfm.TotalSectors*mfm.SectorSize)}
}

// Load reads an existing .img file from disk.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fatimage: reading %s: %w", path, err)
	}
	if len(data) != mfm.TotalSectors*mfm.SectorSize {
		return nil, ferr.Invalidf("fatimage: %s is %d bytes, want %d", path, len(data), mfm.TotalSectors*mfm.SectorSize)
	}
	return &Image{path: path, data: data}, nil
}

// Save writes the image to path (or the path it was loaded from, if
// empty).
func (img *Image) Save(path string) error {
	if path == "" {
		path = img.path
	}
	if path == "" {
		return ferr.Invalidf("fatimage: no path to save to")
	}
	if err := os.WriteFile(path, img.data, 0o644); err != nil {
		return fmt.Errorf("fatimage: writing %s: %w", path, err)
	}
	img.path = path
	return nil
}

// SetWriteProtected toggles the write-protect flag WriteProtected()
// reports.
func (img *Image) SetWriteProtected(v bool) { img.writeProtected = v }

func (img *Image) lba(track, side, sectorN int) int {
	return track*2*mfm.SectorsPerTrack + side*mfm.SectorsPerTrack + (sectorN - 1)
}

// ReadSector implements fat12.Device.
func (img *Image) ReadSector(track, side, sectorN int) (*mfm.Sector, error) {
	lba := img.lba(track, side, sectorN)
	off := lba * mfm.SectorSize
	if off < 0 || off+mfm.SectorSize > len(img.data) {
		return nil, ferr.Invalidf("fatimage: sector (%d,%d,%d) out of range", track, side, sectorN)
	}
	sec := &mfm.Sector{Track: track, Side: side, SectorN: sectorN, SizeCode: 2, Valid: true}
	copy(sec.Data[:], img.data[off:off+mfm.SectorSize])
	return sec, nil
}

// WriteTrack implements fat12.Device.
func (img *Image) WriteTrack(track, side int, sectors [mfm.SectorsPerTrack][mfm.SectorSize]byte) error {
	if img.writeProtected {
		return ferr.New(ferr.Write, "fatimage: image is write-protected")
	}
	for i, data := range sectors {
		lba := img.lba(track, side, i+1)
		off := lba * mfm.SectorSize
		if off+mfm.SectorSize > len(img.data) {
			return ferr.Invalidf("fatimage: track (%d,%d) out of range", track, side)
		}
		copy(img.data[off:off+mfm.SectorSize], data[:])
	}
	img.changed = true
	return nil
}

// DiskChanged implements fat12.Device: reports true once, after any
// WriteTrack, then resets -- mirroring the disk-change latch a real
// controller exposes.
func (img *Image) DiskChanged() bool {
	v := img.changed
	img.changed = false
	return v
}

// WriteProtected implements fat12.Device.
func (img *Image) WriteProtected() bool { return img.writeProtected }
