// Package units converts weather measurements between unit systems.
//
// Every function is pure. Arithmetic is carried out in float32 so results
// match the values reported by console firmware and by earlier tooling bit for bit.
package units

import (
	"fmt"

	"github.com/chrissnell/wxcore/internal/errcode"
)

// Scale is a temperature scale
type Scale int

const (
	Celsius Scale = iota
	Fahrenheit
	Kelvin
)

func (s Scale) String() string {
	switch s {
	case Celsius:
		return "celsius"
	case Fahrenheit:
		return "fahrenheit"
	case Kelvin:
		return "kelvin"
	default:
		return fmt.Sprintf("scale(%d)", int(s))
	}
}

func (s Scale) valid() bool {
	return s == Celsius || s == Fahrenheit || s == Kelvin
}

// PressureUnit is a unit of atmospheric pressure
type PressureUnit int

const (
	InchesOfMercury PressureUnit = iota
	Hectopascals
)

// SpeedUnit is a unit of wind speed
type SpeedUnit int

const (
	MilesPerHour SpeedUnit = iota
	KilometersPerHour
)

const (
	hPaPerInHg  float32 = 33.8639
	kmhPerMph   float32 = 1.609344
	kelvinShift float32 = 273.15
)

// ConvertTemperature converts value between temperature scales. Conversions
// not involving Celsius go through Celsius, e.g. F->K is C->K(F->C(v)).
func ConvertTemperature(value float32, from, to Scale) (float32, error) {
	if !from.valid() {
		return 0, errcode.New(errcode.InvalidArgument, "ConvertTemperature", fmt.Sprintf("unrecognised from scale %v", from))
	}
	if !to.valid() {
		return 0, errcode.New(errcode.InvalidArgument, "ConvertTemperature", fmt.Sprintf("unrecognised to scale %v", to))
	}
	if from == to {
		return value, nil
	}

	c := value
	switch from {
	case Fahrenheit:
		c = fahrenheitToCelsius(value)
	case Kelvin:
		c = kelvinToCelsius(value)
	}

	switch to {
	case Fahrenheit:
		return celsiusToFahrenheit(c), nil
	case Kelvin:
		return celsiusToKelvin(c), nil
	}
	return c, nil
}

func celsiusToFahrenheit(v float32) float32 { return v*9/5 + 32 }
func fahrenheitToCelsius(v float32) float32 { return (v - 32) * 5 / 9 }
func celsiusToKelvin(v float32) float32     { return v + kelvinShift }
func kelvinToCelsius(v float32) float32     { return v - kelvinShift }

// ConvertPressure converts value between inches of mercury and hectopascals
func ConvertPressure(value float32, from, to PressureUnit) (float32, error) {
	for _, u := range []PressureUnit{from, to} {
		if u != InchesOfMercury && u != Hectopascals {
			return 0, errcode.New(errcode.InvalidArgument, "ConvertPressure", fmt.Sprintf("unrecognised pressure unit %d", u))
		}
	}

	switch {
	case from == to:
		return value, nil
	case from == InchesOfMercury:
		return value * hPaPerInHg, nil
	default:
		return value / hPaPerInHg, nil
	}
}

// ConvertSpeed converts value between miles per hour and kilometers per hour
func ConvertSpeed(value float32, from, to SpeedUnit) (float32, error) {
	for _, u := range []SpeedUnit{from, to} {
		if u != MilesPerHour && u != KilometersPerHour {
			return 0, errcode.New(errcode.InvalidArgument, "ConvertSpeed", fmt.Sprintf("unrecognised speed unit %d", u))
		}
	}

	switch {
	case from == to:
		return value, nil
	case from == MilesPerHour:
		return value * kmhPerMph, nil
	default:
		return value / kmhPerMph, nil
	}
}
