package davis

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/units"
)

const (
	// FrameLength is the size of a LOOP packet including its trailing CRC
	FrameLength = 99

	frameHeader = "LOO"
)

// FrameLengthError is returned for a LOOP frame of the wrong size
type FrameLengthError struct {
	Expected int
	Actual   int
}

func (e *FrameLengthError) Error() string {
	return fmt.Sprintf("loop frame is %d bytes, expected %d", e.Actual, e.Expected)
}

func (e *FrameLengthError) Code() errcode.Code { return errcode.FrameTooShort }

func (e *FrameLengthError) Is(target error) bool { return target == errcode.FrameTooShort }

// HeaderError is returned when a frame does not begin with "LOO"
type HeaderError struct {
	Got []byte
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid loop frame header: %s (%q)", hex.EncodeToString(e.Got), e.Got)
}

func (e *HeaderError) Code() errcode.Code { return errcode.InvalidHeader }

func (e *HeaderError) Is(target error) bool { return target == errcode.InvalidHeader }

type fieldEncoding int

const (
	int8Field fieldEncoding = iota
	uint8Field
	uint16LEField
)

// loopField describes one LOOP packet field: where it sits, how it is encoded
// and how the raw value lands in a Reading.
type loopField struct {
	name     string
	offset   int
	encoding fieldEncoding
	store    func(r *types.Reading, raw int) error
}

// loopFields is the subset of the Vantage LOOP (rev B) layout that we decode.
// Offsets are part of the console's wire format.
var loopFields = []loopField{
	{"barometer_trend", 3, int8Field, func(r *types.Reading, raw int) error {
		r.BarometerTrend = types.BarometerTrend(raw)
		return nil
	}},
	{"barometer", 7, uint16LEField, func(r *types.Reading, raw int) (err error) {
		r.Barometer, err = units.ConvertPressure(float32(raw)/1000, units.InchesOfMercury, units.Hectopascals)
		return err
	}},
	{"out_temp", 12, uint16LEField, func(r *types.Reading, raw int) (err error) {
		r.OutTemp, err = units.ConvertTemperature(float32(raw)/10, units.Fahrenheit, units.Celsius)
		return err
	}},
	{"wind_speed", 14, uint8Field, func(r *types.Reading, raw int) (err error) {
		r.WindSpeed, err = units.ConvertSpeed(float32(raw), units.MilesPerHour, units.KilometersPerHour)
		return err
	}},
	{"wind_speed_10", 15, uint8Field, func(r *types.Reading, raw int) (err error) {
		r.WindSpeed10, err = units.ConvertSpeed(float32(raw), units.MilesPerHour, units.KilometersPerHour)
		return err
	}},
	{"wind_dir", 16, uint16LEField, func(r *types.Reading, raw int) error {
		r.WindDir = uint16(raw)
		return nil
	}},
	{"out_humidity", 33, uint8Field, func(r *types.Reading, raw int) error {
		r.OutHumidity = float32(raw)
		return nil
	}},
	{"rain_rate", 41, uint16LEField, func(r *types.Reading, raw int) (err error) {
		r.RainRate, err = units.ConvertRainClicksToMillimeters(raw, units.Davis)
		return err
	}},
	{"day_rain", 50, uint16LEField, func(r *types.Reading, raw int) (err error) {
		r.DayRain, err = units.ConvertRainClicksToMillimeters(raw, units.Davis)
		return err
	}},
}

// raw extracts the field's value from a length-checked frame. Multi-byte
// fields are little-endian with both octets unsigned.
func (f loopField) raw(frame []byte) int {
	switch f.encoding {
	case int8Field:
		return int(int8(frame[f.offset]))
	case uint8Field:
		return int(frame[f.offset])
	default:
		return int(binary.LittleEndian.Uint16(frame[f.offset : f.offset+2]))
	}
}

// LoopDecoder turns Davis LOOP packets into Readings
type LoopDecoder struct {
	clock clockwork.Clock
}

// NewLoopDecoder returns a decoder that timestamps readings with clock
func NewLoopDecoder(clock clockwork.Clock) *LoopDecoder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LoopDecoder{clock: clock}
}

// StationType returns the hardware family this decoder handles
func (d *LoopDecoder) StationType() units.StationType {
	return units.Davis
}

// FrameLength returns the exact frame size Decode accepts
func (d *LoopDecoder) FrameLength() int {
	return FrameLength
}

// Decode validates frame and extracts a Reading. The trailing CRC is not
// checked here; transports verify it before handing frames over.
func (d *LoopDecoder) Decode(frame []byte) (types.Reading, error) {
	if len(frame) != FrameLength {
		return types.Reading{}, &FrameLengthError{Expected: FrameLength, Actual: len(frame)}
	}

	if string(frame[:len(frameHeader)]) != frameHeader {
		got := make([]byte, len(frameHeader))
		copy(got, frame)
		return types.Reading{}, &HeaderError{Got: got}
	}

	r := types.Reading{
		StationType: string(units.Davis),
	}

	for _, f := range loopFields {
		if err := f.store(&r, f.raw(frame)); err != nil {
			return types.Reading{}, fmt.Errorf("decoding %s: %w", f.name, err)
		}
	}

	r.Timestamp = d.clock.Now()

	return r, nil
}
