package main

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/chrissnell/wxcore/internal/weatherstations/davis"
)

// WeatherEmulator produces plausible, slowly varying LOOP values
type WeatherEmulator struct {
	mu           sync.Mutex
	rng          *rand.Rand
	baseTemp     float64 // °F
	baseHumidity float64 // %
	basePressure float64 // inHg
	dayRain      uint16  // clicks
	badCRCRate   float64
}

func NewWeatherEmulator(seed int64, badCRCRate float64) *WeatherEmulator {
	return &WeatherEmulator{
		rng:          rand.New(rand.NewSource(seed)),
		baseTemp:     70.0,
		baseHumidity: 50.0,
		basePressure: 30.0,
		badCRCRate:   badCRCRate,
	}
}

// Values generates the LOOP values for time now
func (w *WeatherEmulator) Values(now time.Time) davis.LoopValues {
	w.mu.Lock()
	defer w.mu.Unlock()

	hourOfDay := float64(now.Hour()) + float64(now.Minute())/60.0

	// ±15°F daily swing plus a little noise
	temp := w.baseTemp + 15.0*math.Sin(2*math.Pi*(hourOfDay-9)/24.0) + (w.rng.Float64()-0.5)*2.0

	// humidity falls as temperature rises
	humidity := math.Max(10, math.Min(95, w.baseHumidity+(w.baseTemp-temp)*0.8+(w.rng.Float64()-0.5)*6.0))

	// pressure random walk
	prev := w.basePressure
	w.basePressure = math.Max(28.5, math.Min(31.5, w.basePressure+(w.rng.Float64()-0.5)*0.02))

	baseWind := 3.0 + w.rng.Float64()*8.0
	gust := w.rng.Float64() * 6.0

	var rainRate uint16
	if humidity > 85 {
		rainRate = uint16(w.rng.Intn(10))
		w.dayRain += rainRate / 4
	}

	return davis.LoopValues{
		BarometerTrend: trendFor(w.basePressure - prev),
		Barometer:      uint16(w.basePressure * 1000),
		OutTemp:        uint16(math.Max(0, temp*10)),
		WindSpeed:      uint8(baseWind + gust),
		WindSpeed10:    uint8(baseWind),
		WindDir:        uint16(1 + w.rng.Intn(360)),
		OutHumidity:    uint8(humidity),
		RainRate:       rainRate,
		DayRain:        w.dayRain,
	}
}

// Frame builds one LOOP packet, corrupting its CRC at the configured rate
func (w *WeatherEmulator) Frame(now time.Time) []byte {
	frame := davis.EncodeLoopFrame(w.Values(now))

	w.mu.Lock()
	corrupt := w.badCRCRate > 0 && w.rng.Float64() < w.badCRCRate
	w.mu.Unlock()

	if corrupt {
		frame[davis.FrameLength-1] ^= 0xA5
	}
	return frame
}

func trendFor(delta float64) int8 {
	switch {
	case delta <= -0.006:
		return -60
	case delta <= -0.002:
		return -20
	case delta >= 0.006:
		return 60
	case delta >= 0.002:
		return 20
	default:
		return 0
	}
}
