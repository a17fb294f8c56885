package managers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/metrics"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/internal/weatherstations"
	"github.com/chrissnell/wxcore/internal/weatherstations/analog"
	"github.com/chrissnell/wxcore/internal/weatherstations/davis"
	"github.com/chrissnell/wxcore/pkg/config"
)

// WeatherStationManager owns the configured weather stations
type WeatherStationManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	distributor chan<- types.Reading
	clock       clockwork.Clock
	metrics     *metrics.Metrics
	logger      *zap.SugaredLogger
	stations    map[string]weatherstations.WeatherStation
}

// NewWeatherStationManager creates a WeatherStationManager, populated with all enabled weather stations
func NewWeatherStationManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, distributor chan<- types.Reading, clock clockwork.Clock, m *metrics.Metrics, logger *zap.SugaredLogger) (*WeatherStationManager, error) {
	devices, err := configProvider.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	wsm := &WeatherStationManager{
		ctx:         ctx,
		wg:          wg,
		distributor: distributor,
		clock:       clock,
		metrics:     m,
		logger:      logger,
		stations:    make(map[string]weatherstations.WeatherStation),
	}

	for _, deviceConfig := range devices {
		if !deviceConfig.Enabled {
			logger.Infof("skipping disabled device [%s]", deviceConfig.Name)
			continue
		}
		station, err := wsm.createStation(deviceConfig)
		if err != nil {
			return nil, fmt.Errorf("error creating weather station [%s]: %w", deviceConfig.Name, err)
		}
		wsm.stations[deviceConfig.Name] = station
	}

	return wsm, nil
}

// StartWeatherStations starts every station the manager holds
func (w *WeatherStationManager) StartWeatherStations() error {
	for _, name := range w.StationNames() {
		w.logger.Infof("starting weather station [%v]...", name)
		if err := w.stations[name].StartWeatherStation(); err != nil {
			return fmt.Errorf("failed to start weather station [%s]: %w", name, err)
		}
	}
	w.metrics.SetStationsActive(len(w.stations))

	return nil
}

// StationNames lists the managed stations in sorted order
func (w *WeatherStationManager) StationNames() []string {
	names := make([]string, 0, len(w.stations))
	for name := range w.stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// createStation creates the appropriate weather station based on device type
func (w *WeatherStationManager) createStation(d config.DeviceData) (weatherstations.WeatherStation, error) {
	switch d.Type {
	case config.DeviceTypeDavis:
		w.logger.Infof("initializing Davis weather station [%v]", d.Name)
		s, err := davis.NewStation(w.ctx, w.wg, d, davis.NewLoopDecoder(w.clock), w.distributor, w.metrics, w.logger.Named("davis"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DeviceTypeAnalog:
		w.logger.Infof("initializing analog sensor station [%v]", d.Name)
		s, err := analog.NewStation(w.ctx, w.wg, d, nil, w.clock, w.distributor, w.metrics, w.logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errcode.New(errcode.UnsupportedStation, "managers.createStation",
			fmt.Sprintf("unknown weather station type: %s", d.Type))
	}
}
