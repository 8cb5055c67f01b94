package flux

import "encoding/binary"

// Write serializes a Capture as a single-revolution-per-track SCP
// container: header, a 160-slot little-endian offset table, then each
// track's "TRK" header immediately followed by its one revolution record
// and big-endian 16-bit flux samples. Samples are capped to 16 bits; a
// source interval that has already overflowed should be pre-folded by the
// caller (this writer does not split large values back into zero-sample
// continuation chains).
func Write(c *Capture) []byte {
	buf := make([]byte, headerLen+offsetTableLen*4)
	copy(buf[0:3], magic)
	buf[5] = byte(c.Revolutions)
	buf[6] = byte(c.StartTrack)
	buf[7] = byte(c.EndTrack)
	buf[9] = c.Resolution

	for _, trk := range c.Tracks {
		trackOff := len(buf)
		binary.LittleEndian.PutUint32(buf[headerLen+trk.Index*4:], uint32(trackOff))

		buf = append(buf, trkMagic...)
		buf = append(buf, byte(trk.Index))

		for _, rev := range trk.Revolutions {
			recPos := len(buf)
			buf = append(buf, make([]byte, 12)...)
			dataOff := len(buf) - trackOff

			binary.LittleEndian.PutUint32(buf[recPos:], rev.DurationTicks)
			binary.LittleEndian.PutUint32(buf[recPos+4:], uint32(len(rev.Samples)))
			binary.LittleEndian.PutUint32(buf[recPos+8:], uint32(dataOff))

			for _, s := range rev.Samples {
				var tmp [2]byte
				binary.BigEndian.PutUint16(tmp[:], s)
				buf = append(buf, tmp[:]...)
			}
		}
	}
	return buf
}
