package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrissnell/wxcore/pkg/config"
)

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	tf, hf := filepath.Join(dir, "t"), filepath.Join(dir, "h")
	require.NoError(t, os.WriteFile(tf, []byte("0.70"), 0o600))
	require.NoError(t, os.WriteFile(hf, []byte("1.60"), 0o600))

	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
devices:
  - name: shed
    type: analog
    temperature_voltage_file: `+tf+`
    humidity_voltage_file: `+hf+`
history:
  capacity: 5
`), 0o600))

	a := New(config.NewYAMLProvider(cfgFile), zap.NewNop().Sugar())
	_, err := uuid.Parse(a.Session)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRunReportsConfigErrors(t *testing.T) {
	a := New(config.NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")), zap.NewNop().Sugar())
	assert.Error(t, a.Run(context.Background()))
}

func TestRunStopsWorkersOnStartupError(t *testing.T) {
	dir := t.TempDir()
	tf, hf := filepath.Join(dir, "t"), filepath.Join(dir, "h")
	require.NoError(t, os.WriteFile(tf, []byte("0.70"), 0o600))
	require.NoError(t, os.WriteFile(hf, []byte("1.60"), 0o600))

	// shed starts first; vp2 then fails because its capture directory is missing
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
devices:
  - name: shed
    type: analog
    temperature_voltage_file: `+tf+`
    humidity_voltage_file: `+hf+`
  - name: vp2
    type: davis
    hostname: 127.0.0.1
    port: "22222"
    capture_file: `+filepath.Join(dir, "missing", "frames.msgpack")+`
`), 0o600))

	core, logs := observer.New(zapcore.InfoLevel)
	a := New(config.NewYAMLProvider(cfgFile), zap.New(core).Sugar())

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after a station failed to start")
	}

	// both workers must have exited before Run returned
	assert.Equal(t, 1, logs.FilterMessageSnippet("cancellation request received").Len())
	assert.Equal(t, 1, logs.FilterMessage("poll loop stopped").Len())
}
