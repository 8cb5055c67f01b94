// Package flux replays and synthesizes SuperCard Pro flux captures, the
// test-side stand-in for a real drive: it turns an SCP container (or an
// encoder's interval buffer) into the pulse-interval stream mfm.Decoder
// consumes, optionally perturbed by jitter and drift so codec tests can
// probe tolerance the way a worn drive or a slow-clocked board would.
package flux

import (
	"encoding/binary"
	"fmt"

	"github.com/msiedlarek/fluxfat/mfm"
)

const (
	magic          = "SCP"
	headerLen      = 0x10
	offsetTableLen = 160
	trkMagic       = "TRK"
)

// Revolution is one recorded disk rotation: a duration in SCP tick units
// and the flux samples captured during it.
type Revolution struct {
	DurationTicks uint32
	Samples       []uint16 // raw 16-bit SCP samples, pre overflow-folding
}

// Track holds every captured revolution for one physical track index
// (cylinder*2 + side, SCP's convention).
type Track struct {
	Index       int
	Revolutions []Revolution
}

// Capture is a parsed SCP container.
type Capture struct {
	Revolutions int
	StartTrack  int
	EndTrack    int
	Resolution  byte // tick length is (resolution+1)*25ns
	Tracks      []Track
}

// Parse decodes an SCP container from raw bytes.
func Parse(data []byte) (*Capture, error) {
	if len(data) < headerLen+offsetTableLen*4 {
		return nil, fmt.Errorf("flux: capture too short for SCP header")
	}
	if string(data[0:3]) != magic {
		return nil, fmt.Errorf("flux: bad SCP magic %q", data[0:3])
	}

	c := &Capture{
		Revolutions: int(data[5]),
		StartTrack:  int(data[6]),
		EndTrack:    int(data[7]),
		Resolution:  data[9],
	}

	for slot := 0; slot < offsetTableLen; slot++ {
		offPos := headerLen + slot*4
		off := binary.LittleEndian.Uint32(data[offPos : offPos+4])
		if off == 0 {
			continue
		}
		if int(off)+4 > len(data) {
			return nil, fmt.Errorf("flux: track slot %d offset out of range", slot)
		}
		trk, err := parseTrack(data, int(off), slot, c.Revolutions)
		if err != nil {
			return nil, err
		}
		c.Tracks = append(c.Tracks, trk)
	}
	return c, nil
}

func parseTrack(data []byte, off, slot, revolutions int) (Track, error) {
	if string(data[off:off+3]) != trkMagic {
		return Track{}, fmt.Errorf("flux: track %d: missing TRK header", slot)
	}
	if int(data[off+3]) != slot {
		return Track{}, fmt.Errorf("flux: track %d: header index mismatch (%d)", slot, data[off+3])
	}

	trk := Track{Index: slot}
	recBase := off + 4
	for rev := 0; rev < revolutions; rev++ {
		recPos := recBase + rev*12
		if recPos+12 > len(data) {
			return Track{}, fmt.Errorf("flux: track %d revolution %d record out of range", slot, rev)
		}
		duration := binary.LittleEndian.Uint32(data[recPos : recPos+4])
		fluxCount := binary.LittleEndian.Uint32(data[recPos+4 : recPos+8])
		dataOffset := binary.LittleEndian.Uint32(data[recPos+8 : recPos+12])

		sampPos := off + int(dataOffset)
		samples := make([]uint16, fluxCount)
		for i := range samples {
			p := sampPos + i*2
			if p+2 > len(data) {
				return Track{}, fmt.Errorf("flux: track %d revolution %d: sample out of range", slot, rev)
			}
			samples[i] = binary.BigEndian.Uint16(data[p : p+2])
		}
		trk.Revolutions = append(trk.Revolutions, Revolution{DurationTicks: duration, Samples: samples})
	}
	return trk, nil
}

// TicksToUnits converts a run of accumulated SCP ticks into this package's
// pulse-interval unit (the same unit mfm.Encoder/Decoder operate in):
// ticks are scaled to PIO-clock units by the documented SCP-tick
// conversion, then mfm.Overhead is subtracted.
func (c *Capture) TicksToUnits(totalTicks uint64) byte {
	resolution := uint64(c.Resolution)
	v := (totalTicks*(resolution+1)*3 + 2) / 5
	if v <= mfm.Overhead {
		return 1
	}
	v -= mfm.Overhead
	if v > 255 {
		return 255
	}
	return byte(v)
}

// Intervals folds a revolution's raw big-endian SCP samples into pulse
// intervals in this package's unit, resolving zero-sample overflow
// continuation (a zero sample means "accumulate 65536 ticks and keep
// reading the next sample before emitting an interval").
func (c *Capture) Intervals(rev Revolution) []byte {
	var out []byte
	var acc uint64
	for _, s := range rev.Samples {
		if s == 0 {
			acc += 65536
			continue
		}
		acc += uint64(s)
		out = append(out, c.TicksToUnits(acc))
		acc = 0
	}
	return out
}

// FromEncoder builds a single-revolution, single-track Capture directly
// from an mfm.Encoder's buffer, adding OVERHEAD back to each interval and
// scaling the resulting PIO-clock units to SCP ticks (the inverse of
// TicksToUnits) to recover the raw pulse-to-pulse tick counts a real
// capture would show.
func FromEncoder(enc *mfm.Encoder, trackIndex int) *Capture {
	raw := enc.Intervals()
	samples := make([]uint16, len(raw))
	var total uint32
	for i, iv := range raw {
		ticks := ((uint16(iv)+mfm.Overhead)*5 + 1) / 3
		samples[i] = ticks
		total += uint32(ticks)
	}
	return &Capture{
		Revolutions: 1,
		StartTrack:  trackIndex,
		EndTrack:    trackIndex,
		Resolution:  0, // one SCP tick == 25ns; one PIO-clock unit is 5/3 ticks
		Tracks: []Track{{
			Index:       trackIndex,
			Revolutions: []Revolution{{DurationTicks: total, Samples: samples}},
		}},
	}
}
