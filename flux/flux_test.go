package flux

import (
	"testing"

	"github.com/msiedlarek/fluxfat/mfm"
)

func TestWriteParseRoundTrip(t *testing.T) {
	c := &Capture{
		Revolutions: 1,
		StartTrack:  0,
		EndTrack:    0,
		Resolution:  0,
		Tracks: []Track{{
			Index: 0,
			Revolutions: []Revolution{{
				DurationTicks: 1000,
				Samples:       []uint16{100, 200, 0, 50, 65535},
			}},
		}},
	}

	raw := Write(c)
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Revolutions != 1 || got.StartTrack != 0 || got.EndTrack != 0 {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(got.Tracks))
	}
	gotSamples := got.Tracks[0].Revolutions[0].Samples
	wantSamples := c.Tracks[0].Revolutions[0].Samples
	if len(gotSamples) != len(wantSamples) {
		t.Fatalf("sample count = %d, want %d", len(gotSamples), len(wantSamples))
	}
	for i := range wantSamples {
		if gotSamples[i] != wantSamples[i] {
			t.Errorf("sample %d = %d, want %d", i, gotSamples[i], wantSamples[i])
		}
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := make([]byte, headerLen+offsetTableLen*4)
	copy(buf[0:3], "XXX")
	if _, err := Parse(buf); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestIntervalsFoldsOverflow(t *testing.T) {
	c := &Capture{Resolution: 0}
	rev := Revolution{Samples: []uint16{0, 100}} // overflow then 65536+100 ticks
	ivs := c.Intervals(rev)
	if len(ivs) != 1 {
		t.Fatalf("got %d intervals, want 1", len(ivs))
	}
	want := c.TicksToUnits(65536 + 100)
	if ivs[0] != want {
		t.Errorf("interval = %d, want %d", ivs[0], want)
	}
}

func TestFromEncoderRoundTripsThroughReplayer(t *testing.T) {
	data := make([]byte, mfm.SectorSize)
	for i := range data {
		data[i] = byte(i)
	}
	buf := make([]byte, 8192)
	enc := mfm.NewEncoder(buf)
	enc.EncodeGap(10)
	enc.EncodeSector(2, 1, 1, data)
	enc.EncodeGap(10)

	cap := FromEncoder(enc, 0)
	rep := NewReplayer(cap, cap.Tracks[0].Revolutions[0], 42)
	intervals := rep.All()

	sectors := mfm.DecodeTrack(intervals)
	if len(sectors) != 1 || !sectors[0].Valid {
		t.Fatalf("round trip through flux replay failed: %+v", sectors)
	}
}

func TestReplayerJitterStaysWithinBound(t *testing.T) {
	data := make([]byte, mfm.SectorSize)
	buf := make([]byte, 8192)
	enc := mfm.NewEncoder(buf)
	enc.EncodeSector(0, 0, 1, data)

	cap := FromEncoder(enc, 0)
	original := append([]byte(nil), cap.Intervals(cap.Tracks[0].Revolutions[0])...)

	rep := NewReplayer(cap, cap.Tracks[0].Revolutions[0], 7).WithJitter(3)
	got := rep.All()
	if len(got) != len(original) {
		t.Fatalf("got %d intervals, want %d", len(got), len(original))
	}
	for i := range original {
		diff := int(got[i]) - int(original[i])
		if diff < -3 || diff > 3 {
			t.Errorf("interval %d deviated by %d, want within +/-3", i, diff)
		}
	}
}

func TestReplayerDriftScalesIntervals(t *testing.T) {
	data := make([]byte, mfm.SectorSize)
	buf := make([]byte, 8192)
	enc := mfm.NewEncoder(buf)
	enc.EncodeSector(0, 0, 1, data)

	cap := FromEncoder(enc, 0)
	rep := NewReplayer(cap, cap.Tracks[0].Revolutions[0], 1).WithDrift(100000) // +10%
	got := rep.All()
	original := cap.Intervals(cap.Tracks[0].Revolutions[0])

	driftedUp := 0
	for i := range original {
		if got[i] > original[i] {
			driftedUp++
		}
	}
	if driftedUp == 0 {
		t.Fatalf("expected positive drift to lengthen intervals")
	}
}
