package mfm

import "github.com/msiedlarek/fluxfat/crc16"

// syncPulses is the fixed 15-pulse sequence realizing three 0xA1 bytes with
// one missing clock bit each, preceded by the twelve-byte zero preamble
// written through the ordinary bit path by EncodeSync.
var syncPulses = [15]byte{
	Medium, Long, Medium, Long, Medium,
	Short,
	Long, Medium, Long, Medium,
	Short,
	Long, Medium, Long, Medium,
}

// Encoder serializes address/data records into a caller-owned slice of
// pulse intervals. It exclusively owns that slice for the duration of one
// track's worth of encoding; the caller retains the backing storage.
type Encoder struct {
	buf      []byte
	pos      int
	overflow bool
	prevBit  int
	pending  int
}

// NewEncoder wraps buf as the output interval buffer. buf's length is the
// encoder's capacity: emitting past it sets Overflow and drops further
// pulses rather than growing or wrapping.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Overflow reports whether the buffer capacity was exceeded. Callers must
// consider the track invalid if set.
func (e *Encoder) Overflow() bool { return e.overflow }

// Len returns the number of intervals emitted so far.
func (e *Encoder) Len() int { return e.pos }

// Intervals returns the emitted prefix of the backing buffer.
func (e *Encoder) Intervals() []byte { return e.buf[:e.pos] }

func (e *Encoder) emit(pulse byte) {
	if e.pos >= len(e.buf) {
		e.overflow = true
		return
	}
	e.buf[e.pos] = pulse
	e.pos++
}

// pulseForPending maps the count of pending (empty) half-cells since the
// last transition onto the pulse that realizes the transition now occurring.
func pulseForPending(pending int) byte {
	switch {
	case pending <= 1:
		return Short
	case pending == 2:
		return Medium
	default:
		return Long
	}
}

// encodeHalfCell processes one half-cell: a flux transition (bit != 0) or
// an empty half-cell (bit == 0, just advances the pending counter).
func (e *Encoder) encodeHalfCell(bit int) {
	if bit != 0 {
		e.emit(pulseForPending(e.pending))
		e.pending = 0
		return
	}
	e.pending++
}

// encodeBit MFM-encodes a single data bit: a clock half-cell is inserted
// iff both the previous data bit and this one are 0, followed by the data
// half-cell itself.
func (e *Encoder) encodeBit(d int) {
	clock := 0
	if e.prevBit == 0 && d == 0 {
		clock = 1
	}
	e.encodeHalfCell(clock)
	e.encodeHalfCell(d)
	e.prevBit = d
}

// EncodeBytes MFM-encodes a byte stream, MSB-first.
func (e *Encoder) EncodeBytes(data []byte) {
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			e.encodeBit(int((b >> uint(i)) & 1))
		}
	}
}

// EncodeGap writes n bytes of the standard 0x4E gap filler.
func (e *Encoder) EncodeGap(n int) {
	gap := make([]byte, n)
	for i := range gap {
		gap[i] = 0x4E
	}
	e.EncodeBytes(gap)
}

// EncodeSync writes the twelve-byte zero preamble through the ordinary bit
// path, then appends the fixed 15-pulse A1-with-missing-clock sequence.
// Afterward it forces prevBit=1, pending=0 exactly as the reference
// implementation does, so the bytes that follow encode correctly.
func (e *Encoder) EncodeSync() {
	e.EncodeBytes(make([]byte, 12))
	for _, p := range syncPulses {
		e.emit(p)
	}
	e.prevBit = 1
	e.pending = 0
}

// EncodeSector writes one complete sector record: SYNC, address mark and
// header, header CRC, gap, SYNC, data mark, payload, data CRC.
func (e *Encoder) EncodeSector(track, side, sectorN int, data []byte) {
	e.EncodeSync()
	e.EncodeBytes([]byte{0xFE})
	header := []byte{byte(track), byte(side), byte(sectorN), 2}
	e.EncodeBytes(header)
	hcrc := crc16.UpdateBytes(crc16.SeededAddress, header)
	e.EncodeBytes([]byte{byte(hcrc >> 8), byte(hcrc)})

	e.EncodeGap(22)

	e.EncodeSync()
	e.EncodeBytes([]byte{0xFB})
	e.EncodeBytes(data)
	dcrc := crc16.UpdateBytes(crc16.SeededData, data)
	e.EncodeBytes([]byte{byte(dcrc >> 8), byte(dcrc)})
}

// EncodeTrack writes a full track: 80 bytes of post-index gap, then
// SectorsPerTrack sectors each followed by a 54-byte inter-sector gap.
// sectors[s] supplies the payload for sector number s+1; a nil entry is
// treated as 512 zero bytes. It returns the number of intervals produced.
// If cylinder >= 40, write precompensation is applied to the buffer
// afterward.
func (e *Encoder) EncodeTrack(cylinder, side int, sectors [SectorsPerTrack][]byte) int {
	e.EncodeGap(80)
	for s := 0; s < SectorsPerTrack; s++ {
		data := sectors[s]
		if data == nil {
			data = make([]byte, SectorSize)
		}
		e.EncodeSector(cylinder, side, s+1, data)
		e.EncodeGap(54)
	}
	ApplyPrecomp(e.Intervals(), cylinder)
	return e.pos
}
