package fat12

import (
	"encoding/binary"
	"fmt"

	"github.com/msiedlarek/fluxfat/ferr"
)

// Cluster chain markers, 12-bit FAT entry space.
const (
	clusterFree = 0x000
	clusterBad  = 0xFF7
	clusterEOC  = 0xFF8 // anything >= this ends a chain
	clusterMin  = 0x002
)

const (
	bootSignatureOffset = 510
	bootSignature1      = 0x55
	bootSignature2      = 0xAA

	defaultMedia         = 0xF0
	defaultRootDirEnts   = 224
	defaultFATs          = 2
	defaultSectorsPerFAT = 9
)

// BPB is the subset of the BIOS Parameter Block this filesystem relies on,
// parsed from sector 0.
type BPB struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootDirEntries    uint16
	TotalSectors      uint16
	Media             uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	Heads             uint16

	// Derived layout constants.
	FATStart       int
	RootDirStart   int
	RootDirSectors int
	DataStart      int
	TotalClusters  int
}

// ParseBPB validates and parses a 512-byte sector-0 image into a BPB.
func ParseBPB(sector []byte) (*BPB, error) {
	if len(sector) != 512 {
		return nil, ferr.Invalidf("fat12: boot sector must be 512 bytes, got %d", len(sector))
	}
	if sector[bootSignatureOffset] != bootSignature1 || sector[bootSignatureOffset+1] != bootSignature2 {
		return nil, ferr.Invalidf("fat12: bad boot sector signature %02x%02x", sector[bootSignatureOffset], sector[bootSignatureOffset+1])
	}

	b := &BPB{
		BytesPerSector:    binary.LittleEndian.Uint16(sector[11:13]),
		SectorsPerCluster: sector[13],
		ReservedSectors:   binary.LittleEndian.Uint16(sector[14:16]),
		NumFATs:           sector[16],
		RootDirEntries:    binary.LittleEndian.Uint16(sector[17:19]),
		TotalSectors:      binary.LittleEndian.Uint16(sector[19:21]),
		Media:             sector[21],
		SectorsPerFAT:     binary.LittleEndian.Uint16(sector[22:24]),
		SectorsPerTrack:   binary.LittleEndian.Uint16(sector[24:26]),
		Heads:             binary.LittleEndian.Uint16(sector[26:28]),
	}

	if b.BytesPerSector != 512 {
		return nil, ferr.Invalidf("fat12: unsupported bytes/sector %d", b.BytesPerSector)
	}
	if b.SectorsPerCluster == 0 || b.SectorsPerCluster > 128 {
		return nil, ferr.Invalidf("fat12: invalid sectors/cluster %d", b.SectorsPerCluster)
	}
	if b.NumFATs == 0 {
		return nil, ferr.Invalidf("fat12: num_fats must be nonzero")
	}
	if b.SectorsPerTrack == 0 {
		return nil, ferr.Invalidf("fat12: sectors/track must be nonzero")
	}
	if b.Heads == 0 {
		return nil, ferr.Invalidf("fat12: heads must be nonzero")
	}

	b.FATStart = int(b.ReservedSectors)
	b.RootDirSectors = (int(b.RootDirEntries)*32 + int(b.BytesPerSector) - 1) / int(b.BytesPerSector)
	b.RootDirStart = b.FATStart + int(b.NumFATs)*int(b.SectorsPerFAT)
	b.DataStart = b.RootDirStart + b.RootDirSectors
	dataSectors := int(b.TotalSectors) - b.DataStart
	b.TotalClusters = dataSectors / int(b.SectorsPerCluster)

	return b, nil
}

// LBAToCHS converts a logical block address to (cylinder, head, sector),
// sector numbers being 1-based.
func (b *BPB) LBAToCHS(lba int) (cyl, head, sec int) {
	spt := int(b.SectorsPerTrack)
	heads := int(b.Heads)
	cyl = lba / (heads * spt)
	head = (lba % (heads * spt)) / spt
	sec = (lba % spt) + 1
	return
}

// CHSToLBA is the inverse of LBAToCHS.
func (b *BPB) CHSToLBA(cyl, head, sec int) int {
	spt := int(b.SectorsPerTrack)
	heads := int(b.Heads)
	return cyl*heads*spt + head*spt + (sec - 1)
}

func (b *BPB) String() string {
	return fmt.Sprintf("FAT12 volume: %d sectors, %d clusters, fat@%d root@%d data@%d",
		b.TotalSectors, b.TotalClusters, b.FATStart, b.RootDirStart, b.DataStart)
}
