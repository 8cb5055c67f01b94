package fat12

import (
	"github.com/msiedlarek/fluxfat/ferr"
	"github.com/msiedlarek/fluxfat/mfm"
)

// Volume is a mounted FAT12 filesystem: the parsed BPB plus the device it
// reads and writes sectors through. It owns at most one active write
// batch, guarded by batchInUse -- reentrant
// writers are a programming error, not something to wait out.
type Volume struct {
	BPB    *BPB
	dev    Device
	batch  *batch
	batchInUse bool
}

// Mount reads sector 0 (CHS 0/0/1), validates and parses its BPB, and
// returns a ready-to-use Volume.
func Mount(dev Device) (*Volume, error) {
	sec, err := dev.ReadSector(0, 0, 1)
	if err != nil {
		return nil, ferr.Wrap(ferr.Read, "fat12: reading boot sector", err)
	}
	if !sec.Valid {
		return nil, ferr.New(ferr.Read, "fat12: boot sector CRC invalid")
	}

	bpb, err := ParseBPB(sec.Data[:])
	if err != nil {
		return nil, err
	}

	return &Volume{BPB: bpb, dev: dev, batch: newBatch(64)}, nil
}

// readSectorRaw reads one 512-byte sector by LBA, first consulting the
// open write batch (read-your-writes) before falling through to the
// device.
func (v *Volume) readSectorRaw(lba int) ([512]byte, error) {
	if data, ok := v.batch.read(lba); ok {
		return data, nil
	}
	cyl, head, secN := v.BPB.LBAToCHS(lba)
	sec, err := v.dev.ReadSector(cyl, head, secN)
	if err != nil {
		return [512]byte{}, ferr.Wrap(ferr.Read, "fat12: reading sector", err)
	}
	if !sec.Valid {
		return [512]byte{}, ferr.New(ferr.Read, "fat12: sector CRC invalid")
	}
	return sec.Data, nil
}

// fatEntry resolves the 12-bit FAT entry for cluster c from FAT copy 0.
func (v *Volume) fatEntry(c int) (int, error) {
	if c < 0 || c >= v.BPB.TotalClusters+clusterMin {
		return 0, ferr.Invalidf("fat12: cluster %d out of range", c)
	}

	byteOff := c + c/2
	sectorSize := int(v.BPB.BytesPerSector)
	lba := v.BPB.FATStart + byteOff/sectorSize
	inSec := byteOff % sectorSize

	sec0, err := v.readSectorRaw(lba)
	if err != nil {
		return 0, err
	}

	var lo, hi byte
	lo = sec0[inSec]
	if inSec+1 < sectorSize {
		hi = sec0[inSec+1]
	} else {
		sec1, err := v.readSectorRaw(lba + 1)
		if err != nil {
			return 0, err
		}
		hi = sec1[0]
	}

	value := uint16(lo) | uint16(hi)<<8
	if c%2 == 0 {
		return int(value & 0x0FFF), nil
	}
	return int(value >> 4), nil
}

// setFATEntry writes the 12-bit entry for cluster c into both FAT copies'
// batch images, so a later flush commits them byte-identical.
func (v *Volume) setFATEntry(c, value int) error {
	byteOff := c + c/2
	sectorSize := int(v.BPB.BytesPerSector)
	fatSecIndex := byteOff / sectorSize
	inSec := byteOff % sectorSize

	for copyN := 0; copyN < int(v.BPB.NumFATs); copyN++ {
		lba := v.BPB.FATStart + copyN*int(v.BPB.SectorsPerFAT) + fatSecIndex
		data, err := v.readSectorRaw(lba)
		if err != nil {
			return err
		}

		existing := uint16(data[inSec])
		if inSec+1 < sectorSize {
			existing |= uint16(data[inSec+1]) << 8
		}

		var merged uint16
		if c%2 == 0 {
			merged = (existing & 0xF000) | uint16(value&0x0FFF)
		} else {
			merged = (existing & 0x000F) | uint16((value&0x0FFF)<<4)
		}
		data[inSec] = byte(merged)
		if inSec+1 < sectorSize {
			data[inSec+1] = byte(merged >> 8)
		} else {
			nextData, err := v.readSectorRaw(lba + 1)
			if err != nil {
				return err
			}
			nextData[0] = byte(merged >> 8)
			v.batch.add(lba+1, nextData)
		}
		v.batch.add(lba, data)
	}
	return nil
}

// allocCluster scans the FAT starting at hint (initially 2) for the first
// free cluster.
func (v *Volume) allocCluster(hint int) (int, error) {
	if hint < clusterMin {
		hint = clusterMin
	}
	last := clusterMin + v.BPB.TotalClusters
	for c := hint; c < last; c++ {
		e, err := v.fatEntry(c)
		if err != nil {
			return 0, err
		}
		if e == clusterFree {
			return c, nil
		}
	}
	for c := clusterMin; c < hint; c++ {
		e, err := v.fatEntry(c)
		if err != nil {
			return 0, err
		}
		if e == clusterFree {
			return c, nil
		}
	}
	return 0, ferr.Fullf("fat12: no free cluster")
}

// clusterLBA returns the LBA of the first sector of cluster c's data.
func (v *Volume) clusterLBA(c int) int {
	return v.BPB.DataStart + (c-clusterMin)*int(v.BPB.SectorsPerCluster)
}

// readCluster reads all sectors of cluster c into one contiguous buffer.
func (v *Volume) readCluster(c int) ([]byte, error) {
	spc := int(v.BPB.SectorsPerCluster)
	out := make([]byte, 0, spc*512)
	base := v.clusterLBA(c)
	for i := 0; i < spc; i++ {
		data, err := v.readSectorRaw(base + i)
		if err != nil {
			return nil, err
		}
		out = append(out, data[:]...)
	}
	return out, nil
}

// writeCluster overwrites cluster c's sectors with buf (must be exactly
// sectorsPerCluster*512 bytes), staging the writes into the batch.
func (v *Volume) writeCluster(c int, buf []byte) error {
	spc := int(v.BPB.SectorsPerCluster)
	base := v.clusterLBA(c)
	for i := 0; i < spc; i++ {
		var sec [512]byte
		copy(sec[:], buf[i*512:(i+1)*512])
		if !v.batch.add(base+i, sec) {
			return ferr.Fullf("fat12: write batch at capacity")
		}
	}
	return nil
}

// rootDirSector returns the raw bytes of one root-directory sector.
func (v *Volume) rootDirSector(i int) ([512]byte, error) {
	return v.readSectorRaw(v.BPB.RootDirStart + i)
}

// Flush commits every pending batch entry to the device, coalescing
// sector writes into whole-track writes (the device can only commit a
// full track at a time).
func (v *Volume) Flush() error {
	return v.batch.flush(v)
}

// flushTrack materializes one (cyl,head) track from batch entries plus
// device read-through for uncovered slots, and writes it.
func (v *Volume) flushTrack(cyl, head int, pending map[int][512]byte) error {
	var sectors [mfm.SectorsPerTrack][mfm.SectorSize]byte
	covered := make([]bool, mfm.SectorsPerTrack)

	for lba, data := range pending {
		c, h, s := v.BPB.LBAToCHS(lba)
		if c != cyl || h != head {
			continue
		}
		sectors[s-1] = data
		covered[s-1] = true
	}

	for i := 0; i < mfm.SectorsPerTrack; i++ {
		if covered[i] {
			continue
		}
		sec, err := v.dev.ReadSector(cyl, head, i+1)
		if err == nil && sec.Valid {
			sectors[i] = sec.Data
		}
	}

	if err := v.dev.WriteTrack(cyl, head, sectors); err != nil {
		return ferr.Wrap(ferr.Write, "fat12: writing track", err)
	}
	return nil
}
