// Package fat12 implements a FAT12 filesystem over the 80x2-track,
// 18-sector-per-track geometry mfm.Track/mfm.Sector model: BPB parsing,
// cluster-chain reads, and a write path batched per track because the
// underlying device can only commit whole tracks at a time.
package fat12

import "github.com/msiedlarek/fluxfat/mfm"

// Device is the narrow I/O boundary the filesystem core is built against:
// a drive (or a flat image file standing in for one), addressed by
// (cylinder, side, sector) triples and written a whole track at a time.
type Device interface {
	ReadSector(track, side, sectorN int) (*mfm.Sector, error)
	WriteTrack(track, side int, sectors [mfm.SectorsPerTrack][mfm.SectorSize]byte) error
	DiskChanged() bool
	WriteProtected() bool
}
