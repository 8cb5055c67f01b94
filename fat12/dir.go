package fat12

import "github.com/msiedlarek/fluxfat/ferr"

// walkRoot scans the flat root directory, invoking fn for every active
// entry until it returns true (stop) or the end marker is reached.
func (v *Volume) walkRoot(fn func(e DirEntry) bool) error {
	entriesPerSector := 512 / dirEntrySize
	for i := 0; i < v.BPB.RootDirSectors; i++ {
		data, err := v.rootDirSector(i)
		if err != nil {
			return err
		}
		for j := 0; j < entriesPerSector; j++ {
			off := j * dirEntrySize
			raw := data[off : off+dirEntrySize]
			switch classify(raw) {
			case TagEnd:
				return nil
			case TagFree, TagLFN:
				continue
			}
			e := parseDirEntry(raw, i*512+off)
			if fn(e) {
				return nil
			}
		}
	}
	return nil
}

// List returns every active, non-volume-label directory entry.
func (v *Volume) List() ([]DirEntry, error) {
	var out []DirEntry
	err := v.walkRoot(func(e DirEntry) bool {
		if e.Attr&attrVolume == 0 {
			out = append(out, e)
		}
		return false
	})
	return out, err
}

// Stat returns the directory entry matching filename (8.3, case-insensitive).
func (v *Volume) Stat(filename string) (*DirEntry, error) {
	var found *DirEntry
	err := v.walkRoot(func(e DirEntry) bool {
		if matches83(&e, filename) {
			found = &e
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ferr.NotFoundf("fat12: %q not found", filename)
	}
	return found, nil
}

// findSlot locates filename's existing entry, the first end marker, or
// the first free slot, in that priority order (the order open-for-write
// needs).
func (v *Volume) findSlot(filename string) (existing *DirEntry, emptyOffset int, haveEmpty bool, err error) {
	entriesPerSector := 512 / dirEntrySize
	for i := 0; i < v.BPB.RootDirSectors; i++ {
		data, rerr := v.rootDirSector(i)
		if rerr != nil {
			return nil, 0, false, rerr
		}
		for j := 0; j < entriesPerSector; j++ {
			off := j * dirEntrySize
			raw := data[off : off+dirEntrySize]
			tag := classify(raw)

			if tag == TagActive {
				e := parseDirEntry(raw, i*512+off)
				if matches83(&e, filename) {
					return &e, 0, false, nil
				}
				continue
			}
			if !haveEmpty {
				emptyOffset = i*512 + off
				haveEmpty = true
			}
			if tag == TagEnd {
				return nil, emptyOffset, true, nil
			}
		}
	}
	if !haveEmpty {
		return nil, 0, false, ferr.Fullf("fat12: root directory full")
	}
	return nil, emptyOffset, true, nil
}

// writeDirEntry stages the 32-byte encoding of e at its recorded offset
// into the root directory, via the batch.
func (v *Volume) writeDirEntry(e *DirEntry, offset int) error {
	sectorIdx := offset / 512
	inSec := offset % 512

	lba := v.BPB.RootDirStart + sectorIdx
	data, err := v.readSectorRaw(lba)
	if err != nil {
		return err
	}
	e.encode(data[inSec : inSec+dirEntrySize])
	if !v.batch.add(lba, data) {
		return ferr.Fullf("fat12: write batch at capacity")
	}
	return nil
}

// freeChain walks a cluster chain starting at start and zeroes every FAT
// entry in it.
func (v *Volume) freeChain(start int) error {
	c := start
	for c >= clusterMin && c < clusterEOC {
		next, err := v.fatEntry(c)
		if err != nil {
			return err
		}
		if err := v.setFATEntry(c, clusterFree); err != nil {
			return err
		}
		c = next
	}
	return nil
}

// Delete removes filename: frees its cluster chain, marks its directory
// slot free, and flushes.
func (v *Volume) Delete(filename string) error {
	if v.batchInUse {
		return ferr.Invalidf("fat12: a write or delete is already open")
	}
	v.batchInUse = true
	defer func() { v.batchInUse = false }()

	e, err := v.Stat(filename)
	if err != nil {
		return err
	}
	if e.StartCluster != 0 {
		if err := v.freeChain(int(e.StartCluster)); err != nil {
			return err
		}
	}

	sectorIdx := e.offset / 512
	inSec := e.offset % 512
	lba := v.BPB.RootDirStart + sectorIdx
	data, err := v.readSectorRaw(lba)
	if err != nil {
		return err
	}
	data[inSec] = freeMarker
	if !v.batch.add(lba, data) {
		return ferr.Fullf("fat12: write batch at capacity")
	}
	return v.Flush()
}
