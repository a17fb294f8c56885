package units

import (
	"fmt"

	"github.com/chrissnell/wxcore/internal/errcode"
)

// StationType identifies a weather station hardware family. The values match
// the device "type" field in configuration.
type StationType string

const (
	// Davis is the Davis Instruments Vantage family (Vantage Pro2, Vue)
	// reporting through LOOP packets.
	Davis StationType = "davis"

	// Analog is a voltage-sampled TMP36/HIH-5031 sensor pair. It has no rain
	// gauge.
	Analog StationType = "analog"
)

// rain gauge calibration, millimeters per tipping-bucket click
var rainClickMM = map[StationType]float32{
	Davis: 0.2,
}

// ConvertRainClicksToMillimeters converts a tipping-bucket click count into a
// rain depth using the station's calibration factor.
func ConvertRainClicksToMillimeters(clicks int, station StationType) (float32, error) {
	factor, ok := rainClickMM[station]
	if !ok {
		return 0, errcode.New(errcode.UnsupportedStation, "ConvertRainClicksToMillimeters", fmt.Sprintf("no rain calibration for station type %q", station))
	}
	if clicks < 0 {
		return 0, errcode.New(errcode.InvalidArgument, "ConvertRainClicksToMillimeters", fmt.Sprintf("negative click count %d", clicks))
	}
	return float32(clicks) * factor, nil
}
