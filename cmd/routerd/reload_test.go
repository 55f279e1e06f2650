package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter/internal/config"
)

const reloadUpdatedYAML = `
log:
  level: info
  format: json
  output: stdout
routes:
  - method: GET
    path: /ping
    response:
      status: 200
      body: pong
  - method: GET
    path: /pong
    response:
      status: 200
      body: ping
`

// newWatchedApp builds an application from a config file and starts
// its watcher.
func newWatchedApp(t *testing.T, content string) (*application, string) {
	t.Helper()

	path := writeTempConfig(t, content)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.ValidateConfig(cfg))

	app := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	watcher, err := startConfigWatcher(ctx, app, path)
	require.NoError(t, err)
	app.watcher = watcher
	t.Cleanup(func() { _ = watcher.Stop() })

	return app, path
}

func TestReloadState(t *testing.T) {
	t.Parallel()

	state := &reloadState{}
	assert.NoError(t, state.LastError())

	state.Record(errors.New("boom"))
	assert.EqualError(t, state.LastError(), "boom")

	state.Record(nil)
	assert.NoError(t, state.LastError())
}

func TestApplyConfig(t *testing.T) {
	app := newTestApp(t, testConfig())

	next := testConfig()
	next.Routes = append(next.Routes, config.RouteConfig{
		Method:   http.MethodGet,
		Path:     "/extra",
		Response: &config.ResponseConfig{Status: http.StatusOK, Body: "extra"},
	})
	next.SetDefaults()

	require.NoError(t, applyConfig(app, next))

	assert.Equal(t, 2, app.router.Load().Len())
	assert.Same(t, next, app.config)
	assert.NoError(t, app.reloadState.LastError())
	assert.Equal(t, 1.0, testutil.ToFloat64(app.reloadMetrics.reloadsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(app.reloadMetrics.reloadFailures))
}

func TestApplyConfig_KeepsTableOnFailure(t *testing.T) {
	app := newTestApp(t, testConfig())

	bad := testConfig()
	bad.Routes = append(bad.Routes, bad.Routes[0])

	err := applyConfig(app, bad)
	require.Error(t, err)

	assert.Equal(t, 1, app.router.Load().Len())
	assert.Error(t, app.reloadState.LastError())
	assert.Equal(t, 1.0, testutil.ToFloat64(app.reloadMetrics.reloadFailures))

	// A later good reload clears the failure state.
	require.NoError(t, applyConfig(app, testConfig()))
	assert.NoError(t, app.reloadState.LastError())
}

func TestRecordReloadFailure(t *testing.T) {
	app := newTestApp(t, testConfig())

	recordReloadFailure(app, errors.New("config unreadable"))

	assert.EqualError(t, app.reloadState.LastError(), "config unreadable")
	assert.Equal(t, 1.0, testutil.ToFloat64(app.reloadMetrics.reloadsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(app.reloadMetrics.reloadFailures))

	logger, ok := app.logger.(*mockLogger)
	require.True(t, ok)
	assert.Contains(t, logger.errorMessages(), "configuration reload failed")
}

func TestConfigSectionChanged(t *testing.T) {
	t.Parallel()

	base := testConfig()
	changed := testConfig()
	changed.Listen.Address = ":8081"

	tests := []struct {
		name   string
		before interface{}
		after  interface{}
		want   bool
	}{
		{"identical listen", base.Listen, testConfig().Listen, false},
		{"changed listen", base.Listen, changed.Listen, true},
		{"both nil limits", (*config.LimitsConfig)(nil), (*config.LimitsConfig)(nil), false},
		{"nil to set limits", (*config.LimitsConfig)(nil), &config.LimitsConfig{RPS: 10, Burst: 10}, true},
		{"equal timeout", config.Duration(time.Second), config.Duration(time.Second), false},
		{"changed timeout", config.Duration(time.Second), config.Duration(2 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, configSectionChanged(tt.before, tt.after))
		})
	}
}

func TestWarnStaticChanges(t *testing.T) {
	t.Parallel()

	before := testConfig()
	after := testConfig()
	after.Listen.Address = ":8081"
	after.Log.Level = "debug"

	logger := &mockLogger{}
	warnStaticChanges(before, after, logger)

	warns := logger.warnMessages()
	assert.Len(t, warns, 2)
	for _, msg := range warns {
		assert.Equal(t, "configuration section changed; restart required to apply", msg)
	}
}

func TestWarnStaticChanges_RouteOnlyChange(t *testing.T) {
	t.Parallel()

	before := testConfig()
	after := testConfig()
	after.Routes = append(after.Routes, config.RouteConfig{
		Method:   http.MethodGet,
		Path:     "/extra",
		Response: &config.ResponseConfig{Status: http.StatusOK},
	})

	logger := &mockLogger{}
	warnStaticChanges(before, after, logger)

	assert.Empty(t, logger.warnMessages())
}

func TestStartConfigWatcher_AppliesFileChanges(t *testing.T) {
	app, path := newWatchedApp(t, mainTestConfigYAML)

	require.Equal(t, 1, app.router.Load().Len())

	require.NoError(t, os.WriteFile(path, []byte(reloadUpdatedYAML), 0o644))

	assert.Eventually(t, func() bool {
		router := app.router.Load()
		return router != nil && router.Len() == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.NoError(t, app.reloadState.LastError())
}

func TestHandleReloadSignal(t *testing.T) {
	app, path := newWatchedApp(t, mainTestConfigYAML)
	logger, ok := app.logger.(*mockLogger)
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(reloadUpdatedYAML), 0o644))

	handleReloadSignal(app, logger)

	assert.Equal(t, 2, app.router.Load().Len())
	assert.NoError(t, app.reloadState.LastError())
}

func TestHandleReloadSignal_InvalidFile(t *testing.T) {
	app, path := newWatchedApp(t, mainTestConfigYAML)
	logger, ok := app.logger.(*mockLogger)
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("routes: ["), 0o644))

	handleReloadSignal(app, logger)

	assert.Error(t, app.reloadState.LastError())
	assert.Equal(t, 1, app.router.Load().Len())
	assert.Contains(t, logger.errorMessages(), "configuration reload failed")
}

func TestHandleReloadSignal_NoWatcher(t *testing.T) {
	app := newTestApp(t, testConfig())
	logger, ok := app.logger.(*mockLogger)
	require.True(t, ok)

	handleReloadSignal(app, logger)

	assert.Contains(t, logger.warnMessages(), "configuration watcher is not running; reload skipped")
}
