package fat12

// batch is a fixed-capacity mapping from LBA to a dirty 512-byte sector
// image, staged between an open write transaction and the next Flush. It
// exists because the device can only commit whole tracks, so individual
// sector writes must be coalesced before they reach the wire.
type batch struct {
	capacity int
	entries  map[int][512]byte
}

func newBatch(capacity int) *batch {
	return &batch{capacity: capacity, entries: make(map[int][512]byte)}
}

// add stages data for lba, replacing any existing entry for the same LBA.
// Returns false (without staging) once the batch is at capacity and lba is
// not already present.
func (b *batch) add(lba int, data [512]byte) bool {
	if _, exists := b.entries[lba]; !exists && len(b.entries) >= b.capacity {
		return false
	}
	b.entries[lba] = data
	return true
}

// read returns the staged image for lba, if any, implementing
// read-your-writes for callers that fall through to the device otherwise.
func (b *batch) read(lba int) ([512]byte, bool) {
	data, ok := b.entries[lba]
	return data, ok
}

func (b *batch) empty() bool { return len(b.entries) == 0 }

// flush repeatedly picks any pending LBA, builds and writes the whole
// track it belongs to, and removes every entry that track covered, until
// the batch is empty.
func (b *batch) flush(v *Volume) error {
	for !b.empty() {
		var anyLBA int
		for lba := range b.entries {
			anyLBA = lba
			break
		}
		cyl, head, _ := v.BPB.LBAToCHS(anyLBA)

		group := make(map[int][512]byte)
		for lba, data := range b.entries {
			c, h, _ := v.BPB.LBAToCHS(lba)
			if c == cyl && h == head {
				group[lba] = data
			}
		}

		if err := v.flushTrack(cyl, head, group); err != nil {
			return err
		}
		for lba := range group {
			delete(b.entries, lba)
		}
	}
	return nil
}
