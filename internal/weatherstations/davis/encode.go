package davis

import (
	"encoding/binary"

	"github.com/chrissnell/wxcore/pkg/crc16"
)

// LoopValues holds raw, console-native values for the LOOP fields we decode.
// It is used to build frames for the emulator and tests.
type LoopValues struct {
	BarometerTrend int8   // trend code, or 'P' (80) for none
	Barometer      uint16 // inHg * 1000
	OutTemp        uint16 // °F * 10
	WindSpeed      uint8  // mph
	WindSpeed10    uint8  // mph
	WindDir        uint16 // degrees
	OutHumidity    uint8  // percent
	RainRate       uint16 // clicks
	DayRain        uint16 // clicks
}

// EncodeLoopFrame builds a complete 99-byte LOOP packet with the "\n\r"
// terminator and a valid big-endian CRC. Fields we do not decode carry the
// console's "dashed" values.
func EncodeLoopFrame(v LoopValues) []byte {
	p := make([]byte, FrameLength)
	copy(p, frameHeader)

	// dashed out extra/soil/leaf temps and humidities
	for i := 18; i <= 40; i++ {
		p[i] = 0xFF
	}

	p[3] = byte(v.BarometerTrend)
	binary.LittleEndian.PutUint16(p[5:7], 0x7FFF) // next archive record
	binary.LittleEndian.PutUint16(p[7:9], v.Barometer)
	binary.LittleEndian.PutUint16(p[12:14], v.OutTemp)
	p[14] = v.WindSpeed
	p[15] = v.WindSpeed10
	binary.LittleEndian.PutUint16(p[16:18], v.WindDir)
	p[33] = v.OutHumidity
	binary.LittleEndian.PutUint16(p[41:43], v.RainRate)
	binary.LittleEndian.PutUint16(p[50:52], v.DayRain)

	p[95] = '\n'
	p[96] = '\r'
	binary.BigEndian.PutUint16(p[97:99], crc16.Crc16(p[:97]))

	return p
}
