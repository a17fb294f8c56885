// Package labels provides the default LabelResolver used by command-line tools.
package labels

import (
	"github.com/chrissnell/wxcore/internal/types"
)

var trendLabels = map[types.BarometerTrend]string{
	types.FallingRapidly: "Falling Rapidly",
	types.FallingSlowly:  "Falling Slowly",
	types.Steady:         "Steady",
	types.RisingSlowly:   "Rising Slowly",
	types.RisingRapidly:  "Rising Rapidly",
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// English resolves labels in English for every locale.
type English struct{}

var _ types.LabelResolver = English{}

// TrendLabel returns the text for a trend code, or "" when the code means no data
func (English) TrendLabel(trend types.BarometerTrend, _ string) string {
	return trendLabels[trend]
}

// CompassPoint returns the 16-point compass direction for degrees. Zero
// degrees is the console's "no data" value and resolves to "".
func (English) CompassPoint(degrees uint16, _ string) string {
	if degrees == 0 || degrees > 360 {
		return ""
	}
	// 22.5° sectors centred on each point
	idx := int((float64(degrees)+11.25)/22.5) % 16
	return compassPoints[idx]
}
