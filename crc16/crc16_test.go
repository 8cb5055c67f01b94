package crc16

import "testing"

func TestUpdateAgainstKnownSeeds(t *testing.T) {
	// Known CRC of three 0xA1 sync bytes folded with the address/data mark
	// byte.
	tests := []struct {
		name string
		mark byte
		want uint16
	}{
		{"address mark 0xFE", 0xFE, 0xB230},
		{"data mark 0xFB", 0xFB, 0xE295},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Seeded(tt.mark)
			if got != tt.want {
				t.Errorf("Seeded(0x%02x) = 0x%04x, want 0x%04x", tt.mark, got, tt.want)
			}
		})
	}
}

func TestIdentityProperty(t *testing.T) {
	// crc(addr || addr_crc_be) == 0, where addr is the payload that
	// follows the mark byte already folded into the seed.
	payload := []byte{10, 1, 3, 2} // track, side, sector_n, size_code
	crc := UpdateBytes(Seeded(0xFE), payload)
	final := Update(Update(crc, byte(crc>>8)), byte(crc))
	if final != 0 {
		t.Errorf("identity property failed: got 0x%04x, want 0", final)
	}
}

func TestUpdateBytesMatchesUpdate(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xFF, 0x00}
	crc1 := Init
	for _, b := range data {
		crc1 = Update(crc1, b)
	}
	crc2 := UpdateBytes(Init, data)
	if crc1 != crc2 {
		t.Errorf("UpdateBytes = 0x%04x, want 0x%04x", crc2, crc1)
	}
}
