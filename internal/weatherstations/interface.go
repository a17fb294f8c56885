package weatherstations

import (
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/units"
)

// WeatherStation is an interface that provides standard methods for various
// weather station backends
type WeatherStation interface {
	StartWeatherStation() error
	StationName() string
}

// FrameDecoder turns one raw frame from a particular station family into a
// normalized Reading
type FrameDecoder interface {
	StationType() units.StationType
	FrameLength() int
	Decode(frame []byte) (types.Reading, error)
}
