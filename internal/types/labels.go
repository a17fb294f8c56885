package types

// LabelResolver maps enumerated reading codes to human-readable text for a
// locale such as "en" or "en-GB". Implementations return an empty string
// when a code has no label.
type LabelResolver interface {
	TrendLabel(trend BarometerTrend, locale string) string
	CompassPoint(degrees uint16, locale string) string
}
