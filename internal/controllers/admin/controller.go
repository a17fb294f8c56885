// Package admin serves the process's metrics and health endpoints.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/log"
	"github.com/chrissnell/wxcore/pkg/config"
)

// HistoryStatus is the part of the history the health check reports on
type HistoryStatus interface {
	Len() int
	Capacity() int
}

// Controller holds our admin HTTP server
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	Server   http.Server
	session  string
	started  time.Time
	history  HistoryStatus
	gatherer prometheus.Gatherer
	logger   *zap.SugaredLogger
}

// HealthResponse is the /healthz body
type HealthResponse struct {
	Status      string `json:"status"`
	Session     string `json:"session"`
	Uptime      string `json:"uptime"`
	HistorySize int    `json:"history_size"`
	Capacity    int    `json:"history_capacity"`
}

// NewController creates an admin controller listening on ac.ListenAddr
func NewController(ctx context.Context, wg *sync.WaitGroup, ac config.AdminData, session string, history HistoryStatus, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) (*Controller, error) {
	if ac.ListenAddr == "" {
		return nil, errcode.New(errcode.InvalidArgument, "admin.NewController", "listen_addr is required")
	}

	ctrl := &Controller{
		ctx:      ctx,
		wg:       wg,
		session:  session,
		started:  time.Now(),
		history:  history,
		gatherer: gatherer,
		logger:   logger.Named("admin"),
	}

	ctrl.Server.Addr = ac.ListenAddr
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the admin server
func (c *Controller) StartController() error {
	c.logger.Infof("starting admin server on %v...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			c.logger.Errorf("admin server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the admin server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPRequests(c.logger))

	router.Handle("/metrics", promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.handleHealth).Methods(http.MethodGet)

	return router
}

func (c *Controller) handleHealth(w http.ResponseWriter, req *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Session: c.session,
		Uptime:  time.Since(c.started).Truncate(time.Second).String(),
	}
	if c.history != nil {
		resp.HistorySize = c.history.Len()
		resp.Capacity = c.history.Capacity()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		c.logger.Errorf("error encoding health response: %v", err)
	}
}
