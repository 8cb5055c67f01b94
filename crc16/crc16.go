// Package crc16 implements the CRC-16/CCITT variant used by IBM System/34
// MFM address and data records: polynomial 0x1021, MSB-first, initial value
// 0xFFFF, no input/output reflection, no final XOR.
package crc16

// Init is the starting value fed into the first Update call of a record.
const Init uint16 = 0xFFFF

// poly is the CCITT polynomial, 0x1021 (x^16 + x^12 + x^5 + 1).
const poly uint16 = 0x1021

// Update folds a single byte into a running CRC value.
func Update(crc uint16, b byte) uint16 {
	crc ^= uint16(b) << 8
	for i := 0; i < 8; i++ {
		if crc&0x8000 != 0 {
			crc = (crc << 1) ^ poly
		} else {
			crc <<= 1
		}
	}
	return crc
}

// UpdateBytes folds a whole byte slice into a running CRC value.
func UpdateBytes(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc = Update(crc, b)
	}
	return crc
}

// Seeded computes the CRC that results from feeding the three 0xA1 sync
// bytes (already implicitly covered by the MFM clock-violation pattern, but
// still part of the protected byte stream) followed by the given mark byte
// into Init. Both the address mark (0xFE) and the data mark (0xFB) use this
// to seed the CRC of the record that follows, which is exactly the two
// magic constants (0xB230, 0xE295) the teacher's reader/writer hard-coded —
// computed once here instead of duplicated as literals, so there is a
// single seeded_crc routine as called for by the encoder/decoder design
// notes.
func Seeded(mark byte) uint16 {
	crc := Init
	crc = Update(crc, 0xA1)
	crc = Update(crc, 0xA1)
	crc = Update(crc, 0xA1)
	crc = Update(crc, mark)
	return crc
}

// SeededAddress and SeededData are the two seeds used throughout the mfm
// and fat12 packages; computed once at init time via Seeded rather than
// hand-copied as magic numbers.
var (
	SeededAddress = Seeded(0xFE)
	SeededData    = Seeded(0xFB)
)
