package history

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/wxcore/internal/types"
)

// Summary describes the readings currently in a window
type Summary struct {
	Count        int
	From, To     time.Time
	MeanTemp     float64 // °C
	MinTemp      float64 // °C
	MaxTemp      float64 // °C
	MeanHumidity float64 // percent

	// PressureTendency is the least-squares barometer slope in hPa/hour.
	// It is zero when the window spans no time.
	PressureTendency float64
}

// Summarize computes a Summary over readings, which must be oldest first.
// It returns false for an empty slice.
func Summarize(readings []types.Reading) (Summary, bool) {
	if len(readings) == 0 {
		return Summary{}, false
	}

	n := len(readings)
	temps := make([]float64, n)
	hums := make([]float64, n)
	hours := make([]float64, n)
	baro := make([]float64, n)

	start := readings[0].Timestamp
	for i, r := range readings {
		temps[i] = float64(r.OutTemp)
		hums[i] = float64(r.OutHumidity)
		hours[i] = r.Timestamp.Sub(start).Hours()
		baro[i] = float64(r.Barometer)
	}

	s := Summary{
		Count:        n,
		From:         start,
		To:           readings[n-1].Timestamp,
		MeanTemp:     stat.Mean(temps, nil),
		MinTemp:      floats.Min(temps),
		MaxTemp:      floats.Max(temps),
		MeanHumidity: stat.Mean(hums, nil),
	}

	if floats.Max(hours) > floats.Min(hours) {
		_, s.PressureTendency = stat.LinearRegression(hours, baro, nil, false)
	}

	return s, true
}

// Summary summarizes the readings currently held
func (h *History) Summary() (Summary, bool) {
	return Summarize(h.Readings())
}
