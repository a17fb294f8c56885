package davis

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/crc16"
	"github.com/chrissnell/wxcore/pkg/units"
)

var sampleValues = LoopValues{
	BarometerTrend: 20,
	Barometer:      29921,
	OutTemp:        720,
	WindSpeed:      10,
	WindSpeed10:    8,
	WindDir:        270,
	OutHumidity:    55,
	RainRate:       3,
	DayRain:        5,
}

func TestDecodeLoopFrame(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d := NewLoopDecoder(clockwork.NewFakeClockAt(now))

	r, err := d.Decode(EncodeLoopFrame(sampleValues))
	require.NoError(t, err)

	wantTemp, _ := units.ConvertTemperature(72, units.Fahrenheit, units.Celsius)
	wantBaro, _ := units.ConvertPressure(float32(29921)/1000, units.InchesOfMercury, units.Hectopascals)
	wantWind, _ := units.ConvertSpeed(10, units.MilesPerHour, units.KilometersPerHour)
	wantWind10, _ := units.ConvertSpeed(8, units.MilesPerHour, units.KilometersPerHour)

	assert.Equal(t, now, r.Timestamp)
	assert.Equal(t, "davis", r.StationType)
	assert.Equal(t, types.RisingSlowly, r.BarometerTrend)
	assert.Equal(t, wantTemp, r.OutTemp)
	assert.InDelta(t, 22.2222, r.OutTemp, 1e-3)
	assert.Equal(t, wantBaro, r.Barometer)
	assert.Equal(t, wantWind, r.WindSpeed)
	assert.Equal(t, wantWind10, r.WindSpeed10)
	assert.Equal(t, uint16(270), r.WindDir)
	assert.Equal(t, float32(55), r.OutHumidity)
	assert.InDelta(t, 0.6, r.RainRate, 1e-6)
	assert.InDelta(t, 1.0, r.DayRain, 1e-6)
}

// wireFrame returns a 99-byte LOOP packet with only the header set
func wireFrame() []byte {
	f := make([]byte, FrameLength)
	copy(f, "LOO")
	return f
}

func TestDecodeWireBytes(t *testing.T) {
	f := wireFrame()
	// trend -20, falling slowly
	f[3] = 0xEC
	// barometer 29921 -> 29.921 inHg
	f[7], f[8] = 0xE1, 0x74
	// outside temperature 720 -> 72.0 F
	f[12], f[13] = 0xD0, 0x02
	f[14], f[15] = 10, 8
	// wind direction 270 degrees
	f[16], f[17] = 0x0E, 0x01
	f[33] = 55
	// rain rate 5 clicks, day rain 300 clicks
	f[41], f[42] = 5, 0
	f[50], f[51] = 0x2C, 0x01

	r, err := NewLoopDecoder(clockwork.NewFakeClock()).Decode(f)
	require.NoError(t, err)

	wantTemp, _ := units.ConvertTemperature(72, units.Fahrenheit, units.Celsius)
	wantBaro, _ := units.ConvertPressure(29.921, units.InchesOfMercury, units.Hectopascals)

	assert.Equal(t, types.FallingSlowly, r.BarometerTrend)
	assert.Equal(t, wantBaro, r.Barometer)
	assert.Equal(t, wantTemp, r.OutTemp)
	assert.InDelta(t, 22.2222, r.OutTemp, 1e-3)
	assert.InDelta(t, 16.0934, r.WindSpeed, 1e-3)
	assert.InDelta(t, 12.8748, r.WindSpeed10, 1e-3)
	assert.Equal(t, uint16(270), r.WindDir)
	assert.Equal(t, float32(55), r.OutHumidity)
	assert.InDelta(t, 1.0, r.RainRate, 1e-6)
	assert.InDelta(t, 60.0, r.DayRain, 1e-4)
}

func TestDecodeHighByteIsUnsigned(t *testing.T) {
	f := wireFrame()
	// 0xFFD0 is 65488, not -48
	f[12], f[13] = 0xD0, 0xFF
	f[16], f[17] = 0x00, 0x80
	f[50], f[51] = 0x00, 0x80

	r, err := NewLoopDecoder(clockwork.NewFakeClock()).Decode(f)
	require.NoError(t, err)

	wantTemp, _ := units.ConvertTemperature(6548.8, units.Fahrenheit, units.Celsius)
	assert.Equal(t, wantTemp, r.OutTemp)
	assert.Greater(t, r.OutTemp, float32(3000))
	assert.Equal(t, uint16(32768), r.WindDir)
	assert.InDelta(t, 6553.6, r.DayRain, 1e-2)
}

func TestDecodeUsesClockForEveryFrame(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewLoopDecoder(clock)
	frame := EncodeLoopFrame(sampleValues)

	first, err := d.Decode(frame)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	second, err := d.Decode(frame)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, second.Timestamp.Sub(first.Timestamp))
}

func TestDecodeKeepsUnknownTrendCode(t *testing.T) {
	v := sampleValues
	v.BarometerTrend = 'P'

	r, err := NewLoopDecoder(nil).Decode(EncodeLoopFrame(v))
	require.NoError(t, err)
	assert.Equal(t, types.BarometerTrend(80), r.BarometerTrend)
	assert.False(t, r.BarometerTrend.Valid())
}

func TestDecodeNegativeTrend(t *testing.T) {
	v := sampleValues
	v.BarometerTrend = -60

	r, err := NewLoopDecoder(nil).Decode(EncodeLoopFrame(v))
	require.NoError(t, err)
	assert.Equal(t, types.FallingRapidly, r.BarometerTrend)
}

func TestDecodeWordsAreUnsigned(t *testing.T) {
	v := sampleValues
	v.DayRain = 0x8000

	r, err := NewLoopDecoder(nil).Decode(EncodeLoopFrame(v))
	require.NoError(t, err)
	assert.InDelta(t, float32(0x8000)*0.2, r.DayRain, 1e-2)
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	good := EncodeLoopFrame(sampleValues)

	badHeader := append([]byte(nil), good...)
	copy(badHeader, "XYZ")

	tests := []struct {
		name  string
		frame []byte
		want  errcode.Code
	}{
		{"empty", nil, errcode.FrameTooShort},
		{"98 bytes", good[:98], errcode.FrameTooShort},
		{"100 bytes", append(append([]byte(nil), good...), 0), errcode.FrameTooShort},
		{"bad header", badHeader, errcode.InvalidHeader},
	}

	d := NewLoopDecoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := d.Decode(tt.frame)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want, errcode.Of(err))
			assert.Equal(t, types.Reading{}, r)
		})
	}
}

func TestDecodeLengthErrorDetails(t *testing.T) {
	_, err := NewLoopDecoder(nil).Decode(make([]byte, 98))

	var lerr *FrameLengthError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 99, lerr.Expected)
	assert.Equal(t, 98, lerr.Actual)
}

func TestDecodeIgnoresCRC(t *testing.T) {
	frame := EncodeLoopFrame(sampleValues)
	frame[98] ^= 0xFF
	require.False(t, crc16.Valid(frame))

	_, err := NewLoopDecoder(nil).Decode(frame)
	assert.NoError(t, err)
}

func TestEncodeLoopFrame(t *testing.T) {
	frame := EncodeLoopFrame(sampleValues)

	assert.Len(t, frame, FrameLength)
	assert.Equal(t, "LOO", string(frame[:3]))
	assert.Equal(t, []byte("\n\r"), frame[95:97])
	assert.True(t, crc16.Valid(frame))
}
