// Package metrics holds the Prometheus instruments for the decode pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chrissnell/wxcore/internal/errcode"
)

// Metrics holds the counters and gauges for frame decoding and the reading
// history. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FramesReceived *prometheus.CounterVec // labels: station
	FramesDecoded  *prometheus.CounterVec // labels: station
	FramesRejected *prometheus.CounterVec // labels: station, kind
	ReadingsStored prometheus.Counter
	Evictions      *prometheus.CounterVec // labels: reason={capacity,age}
	HistorySize    prometheus.Gauge
	StationsActive prometheus.Gauge
}

// New creates all instruments and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxcore",
			Name:      "frames_received_total",
			Help:      "Raw frames received from station links.",
		}, []string{"station"}),
		FramesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxcore",
			Name:      "frames_decoded_total",
			Help:      "Frames successfully decoded into readings.",
		}, []string{"station"}),
		FramesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxcore",
			Name:      "frames_rejected_total",
			Help:      "Frames rejected by kind of failure.",
		}, []string{"station", "kind"}),
		ReadingsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wxcore",
			Name:      "readings_stored_total",
			Help:      "Readings appended to the history.",
		}),
		Evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxcore",
			Name:      "history_evictions_total",
			Help:      "Readings evicted from the history by reason.",
		}, []string{"reason"}),
		HistorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wxcore",
			Name:      "history_size",
			Help:      "Readings currently held in the history.",
		}),
		StationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wxcore",
			Name:      "stations_active",
			Help:      "Weather stations started by the station manager.",
		}),
	}

	reg.MustRegister(
		m.FramesReceived,
		m.FramesDecoded,
		m.FramesRejected,
		m.ReadingsStored,
		m.Evictions,
		m.HistorySize,
		m.StationsActive,
	)

	return m
}

func (m *Metrics) FrameReceived(station string) {
	if m == nil {
		return
	}
	m.FramesReceived.WithLabelValues(station).Inc()
}

func (m *Metrics) FrameDecoded(station string) {
	if m == nil {
		return
	}
	m.FramesDecoded.WithLabelValues(station).Inc()
}

// FrameRejected counts a rejected frame under the error's code
func (m *Metrics) FrameRejected(station string, err error) {
	if m == nil {
		return
	}
	m.FramesRejected.WithLabelValues(station, string(errcode.Of(err))).Inc()
}

func (m *Metrics) ReadingStored(size int) {
	if m == nil {
		return
	}
	m.ReadingsStored.Inc()
	m.HistorySize.Set(float64(size))
}

func (m *Metrics) Evicted(reason string, n, size int) {
	if m == nil {
		return
	}
	if n > 0 {
		m.Evictions.WithLabelValues(reason).Add(float64(n))
	}
	m.HistorySize.Set(float64(size))
}

func (m *Metrics) SetStationsActive(n int) {
	if m == nil {
		return
	}
	m.StationsActive.Set(float64(n))
}
