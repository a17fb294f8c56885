package units

import (
	"fmt"

	"github.com/chrissnell/wxcore/internal/errcode"
)

// SensorType identifies an analog sensor with a known calibration curve
type SensorType int

const (
	// TMP36 is the Analog Devices TMP36 temperature sensor (10 mV/°C, 500 mV offset)
	TMP36 SensorType = 0
	// HIH5031 is the Honeywell HIH-5031 capacitive humidity sensor at 3.3 V supply
	HIH5031 SensorType = 100
)

// Calibration constants from the sensor datasheets
const (
	tmp36Offset float32 = 0.5
	tmp36Gain   float32 = 100.0

	hihSupply    float32 = 3.3
	hihZero      float32 = 0.1515
	hihSlope     float32 = 0.00636
	hihTempBase  float32 = 1.0546
	hihTempCoeff float32 = 0.00216
)

// ConvertVoltageToTemperature converts a sensor output voltage to a
// temperature on the requested scale.
func ConvertVoltageToTemperature(voltage float32, sensor SensorType, scale Scale) (float32, error) {
	switch sensor {
	case TMP36:
		c := (voltage - tmp36Offset) * tmp36Gain
		return ConvertTemperature(c, Celsius, scale)
	default:
		return 0, unsupportedSensor("ConvertVoltageToTemperature", sensor)
	}
}

// ConvertVoltageToRelativeHumidity converts a sensor output voltage to an
// uncompensated relative humidity in percent.
func ConvertVoltageToRelativeHumidity(voltage float32, sensor SensorType) (float32, error) {
	switch sensor {
	case HIH5031:
		return (1.0 / hihSlope) * ((voltage / hihSupply) - hihZero), nil
	default:
		return 0, unsupportedSensor("ConvertVoltageToRelativeHumidity", sensor)
	}
}

// AdjustRelativeHumidity applies the sensor's temperature compensation.
// temperature is in degrees Celsius.
func AdjustRelativeHumidity(relativeHumidity, temperature float32, sensor SensorType) (float32, error) {
	switch sensor {
	case HIH5031:
		// float32() rounds the product; it must not fuse into an FMA
		return relativeHumidity / (hihTempBase - float32(hihTempCoeff*temperature)), nil
	default:
		return 0, unsupportedSensor("AdjustRelativeHumidity", sensor)
	}
}

func unsupportedSensor(op string, sensor SensorType) error {
	return errcode.New(errcode.UnsupportedSensor, op, fmt.Sprintf("sensor type %d", int(sensor)))
}
