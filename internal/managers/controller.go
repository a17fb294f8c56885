package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/controllers/admin"
	"github.com/chrissnell/wxcore/pkg/config"
)

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// ControllerManager holds the HTTP-facing controllers
type ControllerManager struct {
	logger      *zap.SugaredLogger
	controllers []Controller
}

// NewControllerManager creates a new controller manager. The admin controller
// is only created when an admin listen address is configured.
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, ac config.AdminData, session string, hs admin.HistoryStatus, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) (*ControllerManager, error) {
	cm := &ControllerManager{
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	if ac.ListenAddr != "" {
		ctrl, err := admin.NewController(ctx, wg, ac, session, hs, gatherer, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating admin controller: %w", err)
		}
		cm.controllers = append(cm.controllers, ctrl)
	}

	return cm, nil
}

// StartControllers starts every configured controller
func (c *ControllerManager) StartControllers() error {
	c.logger.Info("starting controller manager...")

	for _, controller := range c.controllers {
		if err := controller.StartController(); err != nil {
			return fmt.Errorf("error starting controller: %w", err)
		}
	}

	c.logger.Infof("started %d controllers successfully", len(c.controllers))
	return nil
}
