package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/managers"
	"github.com/chrissnell/wxcore/internal/metrics"
	"github.com/chrissnell/wxcore/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	clock          clockwork.Clock
	logger         *zap.SugaredLogger

	// Session identifies this process run in logs and on /healthz
	Session string
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	session := uuid.New().String()
	return &App{
		configProvider: configProvider,
		clock:          clockwork.NewRealClock(),
		logger:         logger.With("session", session),
		Session:        session,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Initialize the history manager; stations feed its distributor
	hm, err := managers.NewHistoryManager(ctx, &wg, cfg.History, a.clock, m, a.logger)
	if err != nil {
		return err
	}

	// From here on workers are running; stop them before reporting a failure
	abort := func(err error) error {
		cancel()
		wg.Wait()
		return err
	}

	wsm, err := managers.NewWeatherStationManager(ctx, &wg, a.configProvider, hm.GetReadingDistributor(), a.clock, m, a.logger)
	if err != nil {
		return abort(err)
	}
	if err := wsm.StartWeatherStations(); err != nil {
		return abort(err)
	}

	cm, err := managers.NewControllerManager(ctx, &wg, cfg.Admin, a.Session, hm.History, reg, a.logger)
	if err != nil {
		return abort(err)
	}
	if err := cm.StartControllers(); err != nil {
		return abort(err)
	}

	a.logger.Infow("application started successfully",
		"stations", wsm.StationNames(),
		"history_capacity", hm.History.Capacity())

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	cancel()

	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()

	if s, ok := hm.History.Summary(); ok {
		a.logger.Infow("final history window",
			"readings", s.Count,
			"mean_temp_c", s.MeanTemp,
			"pressure_tendency_hpa_h", s.PressureTendency)
	}
	a.logger.Info("shutdown complete")

	return nil
}
