package mfm

import "testing"

func TestEncodeDecodeSingleSectorRoundTrip(t *testing.T) {
	data := make([]byte, SectorSize)
	for i := range data {
		data[i] = byte(i)
	}

	buf := make([]byte, 8192)
	enc := NewEncoder(buf)
	enc.EncodeGap(10)
	enc.EncodeSector(0, 0, 1, data)
	enc.EncodeGap(10)

	if enc.Overflow() {
		t.Fatalf("unexpected overflow")
	}

	sectors := DecodeTrack(enc.Intervals())
	if len(sectors) != 1 {
		t.Fatalf("got %d sectors, want 1", len(sectors))
	}
	got := sectors[0]
	if !got.Valid {
		t.Fatalf("decoded sector invalid")
	}
	if got.Track != 0 || got.Side != 0 || got.SectorN != 1 {
		t.Fatalf("metadata mismatch: %+v", got)
	}
	if got.Data != data2Array(data) {
		t.Fatalf("payload mismatch")
	}
}

func data2Array(data []byte) [SectorSize]byte {
	var a [SectorSize]byte
	copy(a[:], data)
	return a
}

func TestEncodeDecodeWholeTrackRoundTrip(t *testing.T) {
	var sectors [SectorsPerTrack][]byte
	for s := 0; s < SectorsPerTrack; s++ {
		d := make([]byte, SectorSize)
		for i := range d {
			d[i] = byte((s*13 + 7 + i) & 0xFF)
		}
		sectors[s] = d
	}

	buf := make([]byte, 1<<17)
	enc := NewEncoder(buf)
	n := enc.EncodeTrack(5, 1, sectors)
	if enc.Overflow() {
		t.Fatalf("unexpected overflow, produced %d intervals", n)
	}

	got := DecodeTrack(enc.Intervals())
	if len(got) != SectorsPerTrack {
		t.Fatalf("got %d sectors, want %d", len(got), SectorsPerTrack)
	}

	seen := make(map[int]bool)
	for _, sec := range got {
		if !sec.Valid {
			t.Errorf("sector %d invalid", sec.SectorN)
		}
		if sec.Track != 5 || sec.Side != 1 {
			t.Errorf("sector %d: wrong track/side %d/%d", sec.SectorN, sec.Track, sec.Side)
		}
		want := sectors[sec.SectorN-1]
		for i, b := range sec.Data {
			if b != want[i] {
				t.Errorf("sector %d byte %d = %x, want %x", sec.SectorN, i, b, want[i])
				break
			}
		}
		seen[sec.SectorN] = true
	}
	if len(seen) != SectorsPerTrack {
		t.Errorf("only saw %d distinct sector numbers", len(seen))
	}
}

func TestEncodeTrackWithPrecompRoundTrip(t *testing.T) {
	const cylinder = 60 // precomp active (>= 40)

	var sectors [SectorsPerTrack][]byte
	for s := 0; s < SectorsPerTrack; s++ {
		d := make([]byte, SectorSize)
		for i := range d {
			d[i] = byte((s*37 + i) & 0xFF)
		}
		sectors[s] = d
	}

	buf := make([]byte, 1<<17)
	enc := NewEncoder(buf)
	enc.EncodeTrack(cylinder, 0, sectors)
	if enc.Overflow() {
		t.Fatalf("unexpected overflow")
	}

	got := DecodeTrack(enc.Intervals())
	if len(got) != SectorsPerTrack {
		t.Fatalf("got %d sectors, want %d", len(got), SectorsPerTrack)
	}
	for _, sec := range got {
		if sec.Track != cylinder {
			t.Errorf("sector %d: track = %d, want %d", sec.SectorN, sec.Track, cylinder)
		}
		if !sec.Valid {
			t.Errorf("sector %d: invalid after precomp round-trip", sec.SectorN)
		}
	}
}

func TestEncoderOverflowSetsFlagAndStopsEmitting(t *testing.T) {
	buf := make([]byte, 4)
	enc := NewEncoder(buf)
	enc.EncodeBytes([]byte{0xFF, 0xFF})
	if !enc.Overflow() {
		t.Fatalf("expected overflow to be set")
	}
	if enc.Len() != len(buf) {
		t.Fatalf("Len() = %d, want buffer fully used at %d", enc.Len(), len(buf))
	}
}

func TestApplyPrecompBelow40IsNoop(t *testing.T) {
	buf := []byte{Long, Short, Long}
	orig := append([]byte(nil), buf...)
	ApplyPrecomp(buf, 39)
	for i := range buf {
		if buf[i] != orig[i] {
			t.Fatalf("precomp modified buffer below cylinder 40")
		}
	}
}

func TestApplyPrecompShiftsAsymmetricNeighborhoods(t *testing.T) {
	// LONG SHORT notLONG -> subtract; notLONG SHORT LONG -> add; LONG SHORT LONG -> untouched.
	buf := []byte{Long, Short, Medium, Short, Long, Long, Short, Long}
	ApplyPrecomp(buf, 40)
	shift := precompShiftFor(40)

	if buf[1] != Short-shift {
		t.Errorf("buf[1] = %d, want %d", buf[1], Short-shift)
	}
	if buf[3] != Short+shift {
		t.Errorf("buf[3] = %d, want %d", buf[3], Short+shift)
	}
	if buf[6] != Short {
		t.Errorf("buf[6] (flanked by LONG both sides) = %d, want untouched %d", buf[6], Short)
	}
}
