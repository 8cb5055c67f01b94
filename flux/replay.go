package flux

// lcgState is a tiny linear congruential generator matching the documented
// constants, used instead of math/rand so replay jitter is reproducible
// byte-for-byte from a given seed across runs and platforms.
type lcgState uint32

func (s *lcgState) next() uint32 {
	*s = lcgState(uint32(*s)*1103515245 + 12345)
	return uint32(*s)
}

// Replayer streams one revolution's worth of pulse intervals, optionally
// perturbed by jitter (a bounded uniform deviate) and drift (a constant
// multiplicative ppm factor), simulating the instability a worn drive or a
// mis-clocked capture board would introduce.
type Replayer struct {
	intervals []byte
	pos       int

	jitterMax int
	driftPPM  int
	rng       lcgState
}

// NewReplayer wraps a capture revolution for sequential reading.
func NewReplayer(cap *Capture, rev Revolution, seed uint32) *Replayer {
	return &Replayer{intervals: cap.Intervals(rev), rng: lcgState(seed)}
}

// WithJitter bounds the per-interval deviate to +/-maxDeviation units.
func (r *Replayer) WithJitter(maxDeviation int) *Replayer {
	r.jitterMax = maxDeviation
	return r
}

// WithDrift applies a constant ppm scale factor to every interval: positive
// ppm lengthens intervals (a drive running slow) and negative ppm shortens
// them (running fast).
func (r *Replayer) WithDrift(ppm int) *Replayer {
	r.driftPPM = ppm
	return r
}

// Next returns the next perturbed interval and true, or (0, false) once the
// revolution is exhausted.
func (r *Replayer) Next() (byte, bool) {
	if r.pos >= len(r.intervals) {
		return 0, false
	}
	v := int(r.intervals[r.pos])
	r.pos++

	if r.driftPPM != 0 {
		v = v + v*r.driftPPM/1_000_000
	}
	if r.jitterMax > 0 {
		span := uint32(2*r.jitterMax + 1)
		dev := int(r.rng.next()%span) - r.jitterMax
		v += dev
	}
	if v < 1 {
		v = 1
	}
	if v > 255 {
		v = 255
	}
	return byte(v), true
}

// All drains every remaining interval.
func (r *Replayer) All() []byte {
	out := make([]byte, 0, len(r.intervals)-r.pos)
	for {
		v, ok := r.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
