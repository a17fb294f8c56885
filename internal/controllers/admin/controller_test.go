package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/history"
	"github.com/chrissnell/wxcore/internal/metrics"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/config"
)

func newTestController(t *testing.T) (*Controller, *metrics.Metrics, *history.History) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h, err := history.New(4)
	require.NoError(t, err)

	c, err := NewController(context.Background(), &sync.WaitGroup{}, config.AdminData{ListenAddr: "127.0.0.1:0"},
		"3f1b7c1e-0000-4000-8000-000000000000", h, reg, zap.NewNop().Sugar())
	require.NoError(t, err)
	return c, m, h
}

func TestNewControllerRequiresAddress(t *testing.T) {
	_, err := NewController(context.Background(), &sync.WaitGroup{}, config.AdminData{}, "", nil,
		prometheus.NewRegistry(), zap.NewNop().Sugar())
	assert.ErrorIs(t, err, errcode.InvalidArgument)
}

func TestHealthz(t *testing.T) {
	c, _, h := newTestController(t)
	h.Append(types.Reading{OutTemp: 21})
	h.Append(types.Reading{OutTemp: 22})

	rec := httptest.NewRecorder()
	c.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "3f1b7c1e-0000-4000-8000-000000000000", resp.Session)
	assert.Equal(t, 2, resp.HistorySize)
	assert.Equal(t, 4, resp.Capacity)
	assert.NotContains(t, rec.Body.String(), "OutTemp")
}

func TestMetricsEndpoint(t *testing.T) {
	c, m, _ := newTestController(t)
	m.FrameReceived("vp2")
	m.ReadingStored(1)

	rec := httptest.NewRecorder()
	c.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `wxcore_frames_received_total{station="vp2"} 1`), body)
	assert.Contains(t, body, "wxcore_history_size 1")
}

func TestUnknownMethod(t *testing.T) {
	c, _, _ := newTestController(t)

	rec := httptest.NewRecorder()
	c.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
