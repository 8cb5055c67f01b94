package mfm

import (
	"github.com/msiedlarek/fluxfat/crc16"
	"github.com/msiedlarek/fluxfat/pll"
)

// state is the decoder's position in the IBM System/34 record grammar.
type state int

const (
	hunt state = iota
	afterSync
	readAddr
	readData
)

// syncClasses is the pulse-class sequence a matched A1-sync produces,
// mirroring the encoder's syncPulses.
var syncClasses = [15]pll.Category{
	pll.Medium, pll.Long, pll.Medium, pll.Long, pll.Medium,
	pll.Short,
	pll.Long, pll.Medium, pll.Long, pll.Medium,
	pll.Short,
	pll.Long, pll.Medium, pll.Long, pll.Medium,
}

// maxHeaderToDataGap bounds how many pulses may elapse between a valid
// address record and its data record before the header is considered stale
// (the "address-to-data proximity within one track" requirement).
const maxHeaderToDataGap = 700 * 16 // generous upper bound on one sector's worth of pulses

// Decoder is a streaming state machine: feed it pulse intervals one at a
// time via PushInterval, and it reports completed sector records as they
// are demodulated. It is a long-lived state machine, reset once per decode
// session via Reset.
type Decoder struct {
	est *pll.Estimator

	shiftReg    [15]pll.Category
	shiftFilled int

	halfCells   []bool
	byteBits    []int
	state       state

	addrBuf    []byte
	dataBuf    []byte
	haveHeader bool
	header     struct {
		track, side, sectorN int
		sizeCode              byte
	}
	gapSinceHeader int
}

// NewDecoder creates a decoder seeded with the nominal SHORT cell length.
func NewDecoder() *Decoder {
	d := &Decoder{est: pll.NewEstimator(float64(Short))}
	d.Reset()
	return d
}

// Reset returns the decoder to its initial HUNT state, discarding all
// partially-read record state, but keeps the current timing estimate.
func (d *Decoder) Reset() {
	d.shiftFilled = 0
	d.halfCells = d.halfCells[:0]
	d.byteBits = d.byteBits[:0]
	d.state = hunt
	d.addrBuf = nil
	d.dataBuf = nil
	d.haveHeader = false
	d.gapSinceHeader = 0
}

// PushInterval feeds the decoder one pulse interval (already OVERHEAD-
// subtracted, the same units the encoder emits). It returns a completed
// sector record and true whenever one is demodulated; a CRC-bad data
// record is still returned, with Valid=false, so callers can retry on the
// next revolution. A data record with no preceding valid address is
// dropped silently (no return).
func (d *Decoder) PushInterval(delta byte) (*Sector, bool) {
	cat := d.est.Classify(float64(delta))

	if d.haveHeader {
		d.gapSinceHeader++
		if d.gapSinceHeader > maxHeaderToDataGap {
			d.haveHeader = false
		}
	}

	if d.state == hunt {
		d.pushShift(cat)
		if d.shiftMatches() {
			d.state = afterSync
			d.halfCells = d.halfCells[:0]
			d.byteBits = d.byteBits[:0]
		}
		return nil, false
	}

	// A pulse spans empty half-cells ending in its transition, the same
	// order the encoder accumulates them in.
	for i := 0; i < cat.HalfCells(); i++ {
		bit := i == cat.HalfCells()-1
		if sec, ok := d.pushHalfCell(bit); ok {
			return sec, true
		}
	}
	return nil, false
}

// DecodeTrack feeds a whole interval buffer through a fresh decode pass and
// collects every completed sector, including CRC-bad ones.
func DecodeTrack(intervals []byte) []Sector {
	d := NewDecoder()
	var out []Sector
	for _, iv := range intervals {
		if sec, ok := d.PushInterval(iv); ok {
			out = append(out, *sec)
		}
	}
	return out
}

func (d *Decoder) pushShift(cat pll.Category) {
	copy(d.shiftReg[:14], d.shiftReg[1:])
	d.shiftReg[14] = cat
	if d.shiftFilled < 15 {
		d.shiftFilled++
	}
}

func (d *Decoder) shiftMatches() bool {
	if d.shiftFilled < 15 {
		return false
	}
	return d.shiftReg == syncClasses
}

// pushHalfCell buffers one recovered half-cell bit and, once a clock/data
// pair is available, discards the clock half and folds the data half into
// the current byte, dispatching it to the record-grammar state machine
// whenever a full byte has accumulated.
func (d *Decoder) pushHalfCell(bit bool) (*Sector, bool) {
	d.halfCells = append(d.halfCells, bit)
	for len(d.halfCells) >= 2 {
		// halfCells[0] is the clock half (discarded), [1] is the data half.
		dataBit := 0
		if d.halfCells[1] {
			dataBit = 1
		}
		d.halfCells = d.halfCells[2:]

		d.byteBits = append(d.byteBits, dataBit)
		if len(d.byteBits) == 8 {
			var b byte
			for _, bb := range d.byteBits {
				b = (b << 1) | byte(bb)
			}
			d.byteBits = d.byteBits[:0]
			if sec, ok := d.onByte(b); ok {
				return sec, true
			}
		}
	}
	return nil, false
}

func (d *Decoder) onByte(b byte) (*Sector, bool) {
	switch d.state {
	case afterSync:
		switch b {
		case 0xFE:
			d.state = readAddr
			d.addrBuf = d.addrBuf[:0]
		case 0xFB:
			d.state = readData
			d.dataBuf = d.dataBuf[:0]
		default:
			d.state = hunt
		}
		return nil, false

	case readAddr:
		d.addrBuf = append(d.addrBuf, b)
		if len(d.addrBuf) < 6 {
			return nil, false
		}
		d.state = hunt

		payload := d.addrBuf[:4]
		crc := crc16.UpdateBytes(crc16.SeededAddress, payload)
		embedded := uint16(d.addrBuf[4])<<8 | uint16(d.addrBuf[5])
		if crc == embedded {
			d.header.track = int(payload[0])
			d.header.side = int(payload[1])
			d.header.sectorN = int(payload[2])
			d.header.sizeCode = payload[3]
			d.haveHeader = true
			d.gapSinceHeader = 0
		}
		return nil, false

	case readData:
		d.dataBuf = append(d.dataBuf, b)
		if len(d.dataBuf) < SectorSize+2 {
			return nil, false
		}
		d.state = hunt

		if !d.haveHeader {
			return nil, false
		}

		payload := d.dataBuf[:SectorSize]
		crc := crc16.UpdateBytes(crc16.SeededData, payload)
		embedded := uint16(d.dataBuf[SectorSize])<<8 | uint16(d.dataBuf[SectorSize+1])

		sec := &Sector{
			Track:    d.header.track,
			Side:     d.header.side,
			SectorN:  d.header.sectorN,
			SizeCode: d.header.sizeCode,
			Valid:    crc == embedded,
		}
		copy(sec.Data[:], payload)
		d.haveHeader = false
		return sec, true

	default:
		return nil, false
	}
}
