package fat12

import "github.com/msiedlarek/fluxfat/ferr"

// FileWriter is an open append-only write transaction. Only one writer
// (or delete) may be open on a Volume at a time; OpenWrite sets
// batchInUse and Close (on every path) must release it.
type FileWriter struct {
	v         *Volume
	dirOffset int
	filename  string

	firstCluster int
	lastCluster  int
	bytesWritten int

	clusterBuf    []byte // scratch, sectorsPerCluster*512
	clusterOffset int
}

// OpenWrite finds filename's existing entry, an end marker, or a free
// slot (in that priority order). An existing match has its chain freed
// when the writer opens; its dirent is not touched until Close rewrites it
// with the new size and start cluster.
func (v *Volume) OpenWrite(filename string) (*FileWriter, error) {
	if v.batchInUse {
		return nil, ferr.Invalidf("fat12: a write or delete is already open")
	}

	existing, emptyOffset, haveEmpty, err := v.findSlot(filename)
	if err != nil {
		return nil, err
	}

	w := &FileWriter{v: v, filename: filename}
	if existing != nil {
		if existing.StartCluster != 0 {
			if err := v.freeChain(int(existing.StartCluster)); err != nil {
				return nil, err
			}
		}
		w.dirOffset = existing.offset
	} else if haveEmpty {
		w.dirOffset = emptyOffset
	} else {
		return nil, ferr.Fullf("fat12: no free directory slot")
	}

	v.batchInUse = true
	return w, nil
}

// Write appends data to the file, allocating new clusters as needed and
// preserving existing bytes of a partially-filled cluster via
// read-modify-write through the batch.
func (w *FileWriter) Write(data []byte) (int, error) {
	v := w.v
	spc := int(v.BPB.SectorsPerCluster) * 512

	total := 0
	for len(data) > 0 {
		if w.lastCluster == 0 || w.clusterOffset >= spc {
			hint := clusterMin
			if w.lastCluster != 0 {
				hint = w.lastCluster + 1
			}
			next, err := v.allocCluster(hint)
			if err != nil {
				return total, err
			}
			if err := v.setFATEntry(next, clusterEOC); err != nil {
				return total, err
			}
			if w.lastCluster != 0 {
				if err := v.setFATEntry(w.lastCluster, next); err != nil {
					return total, err
				}
			} else {
				w.firstCluster = next
			}
			w.lastCluster = next

			buf, err := v.readCluster(next)
			if err != nil {
				return total, err
			}
			w.clusterBuf = buf
			w.clusterOffset = 0
		}

		n := spc - w.clusterOffset
		if n > len(data) {
			n = len(data)
		}
		copy(w.clusterBuf[w.clusterOffset:w.clusterOffset+n], data[:n])
		if err := v.writeCluster(w.lastCluster, w.clusterBuf); err != nil {
			return total, err
		}

		w.clusterOffset += n
		w.bytesWritten += n
		total += n
		data = data[n:]
	}
	return total, nil
}

// Close commits the directory entry (start_cluster, size), flushes the
// batch, and releases the write lock. It must be called on every code
// path that opened a writer.
func (w *FileWriter) Close() error {
	v := w.v
	defer func() { v.batchInUse = false }()

	name, ext := split83(w.filename)
	e := DirEntry{
		Name:         name,
		Ext:          ext,
		Attr:         attrArchive,
		StartCluster: uint16(w.firstCluster),
		Size:         uint32(w.bytesWritten),
	}
	if err := v.writeDirEntry(&e, w.dirOffset); err != nil {
		return err
	}
	return v.Flush()
}
