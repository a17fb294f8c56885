package types

import (
	"time"
)

// Reading is a normalized weather observation. Every physical quantity is
// stored in canonical units (hPa, °C, km/h, %, mm) regardless of what the
// originating station reports, so consumers never need to know the station's
// native units.
type Reading struct {
	Timestamp      time.Time
	StationName    string
	StationType    string
	BarometerTrend BarometerTrend
	Barometer      float32 // hPa
	OutTemp        float32 // °C
	WindSpeed      float32 // km/h
	WindSpeed10    float32 // km/h, 10-minute average
	WindDir        uint16  // degrees, 0 means no data
	OutHumidity    float32 // percent
	RainRate       float32 // mm
	DayRain        float32 // mm
}

// BarometerTrend is the console's coarse 3-hour pressure tendency code
type BarometerTrend int8

const (
	FallingRapidly BarometerTrend = -60
	FallingSlowly  BarometerTrend = -20
	Steady         BarometerTrend = 0
	RisingSlowly   BarometerTrend = 20
	RisingRapidly  BarometerTrend = 60
)

// Valid reports whether t is one of the defined trend codes. Any other value
// means the console had no trend data (for example during its first three hours).
func (t BarometerTrend) Valid() bool {
	switch t {
	case FallingRapidly, FallingSlowly, Steady, RisingSlowly, RisingRapidly:
		return true
	}
	return false
}
