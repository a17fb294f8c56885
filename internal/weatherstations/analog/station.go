// Package analog reads a TMP36 temperature sensor and an HIH-5031 humidity
// sensor through their output voltages.
package analog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/metrics"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/config"
	"github.com/chrissnell/wxcore/pkg/units"
)

// BuildReading converts a voltage pair into a Reading. Humidity is corrected
// for the measured temperature.
func BuildReading(tempVolts, humVolts float32, at time.Time) (types.Reading, error) {
	tempC, err := units.ConvertVoltageToTemperature(tempVolts, units.TMP36, units.Celsius)
	if err != nil {
		return types.Reading{}, err
	}

	rh, err := units.ConvertVoltageToRelativeHumidity(humVolts, units.HIH5031)
	if err != nil {
		return types.Reading{}, err
	}
	rh, err = units.AdjustRelativeHumidity(rh, tempC, units.HIH5031)
	if err != nil {
		return types.Reading{}, err
	}

	return types.Reading{
		Timestamp:   at,
		StationType: string(units.Analog),
		OutTemp:     tempC,
		OutHumidity: rh,
	}, nil
}

// Station polls a VoltageSource and forwards the derived readings
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	config             config.DeviceData
	source             VoltageSource
	clock              clockwork.Clock
	pollInterval       time.Duration
	ReadingDistributor chan<- types.Reading
	metrics            *metrics.Metrics
	logger             *zap.SugaredLogger
}

// NewStation creates an analog station. A nil source reads the files named
// in the device configuration; a nil clock uses the wall clock.
func NewStation(ctx context.Context, wg *sync.WaitGroup, cfg config.DeviceData, source VoltageSource, clock clockwork.Clock, distributor chan<- types.Reading, m *metrics.Metrics, logger *zap.SugaredLogger) (*Station, error) {
	interval, err := cfg.PollIntervalDuration()
	if err != nil || interval <= 0 {
		return nil, errcode.New(errcode.InvalidArgument, "analog.NewStation",
			fmt.Sprintf("station [%s] has invalid poll_interval %q", cfg.Name, cfg.PollInterval))
	}

	if source == nil {
		if cfg.TemperatureVoltageFile == "" || cfg.HumidityVoltageFile == "" {
			return nil, errcode.New(errcode.InvalidArgument, "analog.NewStation",
				fmt.Sprintf("station [%s] must define temperature_voltage_file and humidity_voltage_file", cfg.Name))
		}
		source = FileVoltageSource{TemperatureFile: cfg.TemperatureVoltageFile, HumidityFile: cfg.HumidityVoltageFile}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Station{
		ctx:                ctx,
		wg:                 wg,
		config:             cfg,
		source:             source,
		clock:              clock,
		pollInterval:       interval,
		ReadingDistributor: distributor,
		metrics:            m,
		logger:             logger.Named("analog").With("station", cfg.Name),
	}, nil
}

// StationName returns the configured device name
func (s *Station) StationName() string {
	return s.config.Name
}

// StartWeatherStation starts the polling goroutine
func (s *Station) StartWeatherStation() error {
	s.logger.Infow("starting analog station", "interval", s.pollInterval)

	s.wg.Add(1)
	go s.pollLoop()

	return nil
}

func (s *Station) pollLoop() {
	defer s.wg.Done()

	s.poll()

	ticker := s.clock.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("poll loop stopped")
			return
		case <-ticker.Chan():
			s.poll()
		}
	}
}

func (s *Station) poll() {
	s.metrics.FrameReceived(s.config.Name)

	tv, hv, err := s.source.ReadVoltages()
	if err != nil {
		s.metrics.FrameRejected(s.config.Name, err)
		s.logger.Errorw("failed to read sensor voltages", "error", err)
		return
	}

	r, err := BuildReading(tv, hv, s.clock.Now())
	if err != nil {
		s.metrics.FrameRejected(s.config.Name, err)
		s.logger.Errorw("failed to convert sensor voltages", "error", err)
		return
	}
	r.StationName = s.config.Name

	s.metrics.FrameDecoded(s.config.Name)
	s.logger.Debugf("temperature %.2f°C humidity %.1f%%", r.OutTemp, r.OutHumidity)

	select {
	case s.ReadingDistributor <- r:
	case <-s.ctx.Done():
	}
}
