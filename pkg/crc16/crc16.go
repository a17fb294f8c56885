// Package crc16 implements the CRC-CCITT variant used by Davis Instruments
// consoles (polynomial 0x1021, initial value 0, no reflection).
//
// The console appends the CRC of a packet big-endian, so running Crc16 over
// a packet together with its two CRC bytes yields zero for an intact packet.
package crc16

var table [256]uint16

func init() {
	for i := range table {
		crc := uint16(i) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
}

// Crc16 returns the CRC of data
func Crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = table[byte(crc>>8)^b] ^ crc<<8
	}
	return crc
}

// Valid reports whether data ends with a correct big-endian CRC of the bytes
// preceding it.
func Valid(data []byte) bool {
	return len(data) >= 2 && Crc16(data) == 0
}
