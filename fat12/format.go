package fat12

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/msiedlarek/fluxfat/ferr"
	"github.com/msiedlarek/fluxfat/mfm"
)

// Geometry constants for the 3.5" HD floppy this filesystem targets.
const (
	hdSectorsPerTrack = 18
	hdHeads           = 2
	hdCylinders       = 80
	hdTotalSectors    = hdCylinders * hdHeads * hdSectorsPerTrack
	hdSectorsPerFAT   = 9
	hdRootDirEntries  = 224
	hdSectorsPerClust = 1
)

// FormatMode selects how much of the medium Format actually writes.
type FormatMode int

const (
	// FormatQuick writes only the boot sector, both FATs, and the root
	// directory -- enough for the volume to mount and be empty.
	FormatQuick FormatMode = iota
	// FormatFull additionally zero-fills every remaining data-area track.
	FormatFull
)

// Format lays down a fresh FAT12 HD-floppy volume: boot sector, both FAT
// copies, and an optional volume label entry. In FormatFull mode every
// remaining track of the data area is zero-filled too.
func Format(dev Device, volumeLabel string, mode FormatMode, serial uint32) error {
	boot := buildBootSector(serial)

	bpb, err := ParseBPB(boot)
	if err != nil {
		return ferr.Wrap(ferr.Invalid, "fat12: format produced an invalid BPB", err)
	}

	fat0 := make([]byte, 512)
	fat0[0] = defaultMedia
	fat0[1] = 0xFF
	fat0[2] = 0xFF

	rootSector := make([]byte, 512)
	if volumeLabel != "" {
		var name [8]byte
		var ext [3]byte
		padded := fmt.Sprintf("%-11.11s", strings.ToUpper(volumeLabel))
		copy(name[:], padded[:8])
		copy(ext[:], padded[8:])
		e := DirEntry{Name: name, Ext: ext, Attr: attrVolume}
		e.encode(rootSector[0:dirEntrySize])
	}

	b := newBatch(hdTotalSectors)
	lba := 0
	var sec [512]byte
	copy(sec[:], boot)
	b.add(lba, sec)
	lba++

	for copyN := 0; copyN < defaultFATs; copyN++ {
		var fatSec [512]byte
		copy(fatSec[:], fat0)
		b.add(bpb.FATStart+copyN*hdSectorsPerFAT, fatSec)
		for i := 1; i < hdSectorsPerFAT; i++ {
			var zero [512]byte
			b.add(bpb.FATStart+copyN*hdSectorsPerFAT+i, zero)
		}
	}

	var rootSec [512]byte
	copy(rootSec[:], rootSector)
	b.add(bpb.RootDirStart, rootSec)
	for i := 1; i < bpb.RootDirSectors; i++ {
		var zero [512]byte
		b.add(bpb.RootDirStart+i, zero)
	}

	if mode == FormatFull {
		for i := bpb.DataStart; i < hdTotalSectors; i++ {
			var zero [512]byte
			b.add(i, zero)
		}
	}

	v := &Volume{BPB: bpb, dev: dev, batch: b}
	return v.Flush()
}

func buildBootSector(serial uint32) []byte {
	boot := make([]byte, 512)
	copy(boot[0:3], []byte{0xEB, 0x3C, 0x90})
	copy(boot[3:11], []byte("MSDOS5.0"))

	binary.LittleEndian.PutUint16(boot[11:13], 512)
	boot[13] = hdSectorsPerClust
	binary.LittleEndian.PutUint16(boot[14:16], 1) // reserved sectors
	boot[16] = defaultFATs
	binary.LittleEndian.PutUint16(boot[17:19], hdRootDirEntries)
	binary.LittleEndian.PutUint16(boot[19:21], hdTotalSectors)
	boot[21] = defaultMedia
	binary.LittleEndian.PutUint16(boot[22:24], hdSectorsPerFAT)
	binary.LittleEndian.PutUint16(boot[24:26], hdSectorsPerTrack)
	binary.LittleEndian.PutUint16(boot[26:28], hdHeads)

	boot[36] = 0x00            // BS_DrvNum
	boot[38] = 0x29            // extended boot signature
	binary.LittleEndian.PutUint32(boot[39:43], serial)
	copy(boot[43:54], []byte("NO NAME    "))
	copy(boot[54:62], []byte("FAT12   "))

	boot[bootSignatureOffset] = bootSignature1
	boot[bootSignatureOffset+1] = bootSignature2
	return boot
}

// TrackGeometry exposes the constant whole-disk geometry independent of
// any mounted BPB, for callers that need to iterate tracks before mount
// (e.g. a full-disk low-level format over mfm.Track).
func TrackGeometry() (cylinders, sides, sectorsPerTrack int) {
	return hdCylinders, hdHeads, mfm.SectorsPerTrack
}
