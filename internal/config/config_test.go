package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, DefaultService, cfg.DefaultService)

	svc, err := cfg.Service(DefaultService)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/graphql", svc.HTTPURL)
	assert.Equal(t, 10*time.Second, svc.Timeout)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	body := `
mode: debug
port: 9090
user_cache_size: 16
services:
  soilservice:
    http_url: http://soil:4000/graphql
    ws_url: ws://soil:4000/graphql
    timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 16, cfg.UserCacheSize)

	svc, err := cfg.Service("SoilService")
	require.NoError(t, err)
	assert.Equal(t, "ws://soil:4000/graphql", svc.WSURL)
	assert.Equal(t, 2*time.Second, svc.Timeout)

	_, err = cfg.Service("nodeservice")
	assert.ErrorIs(t, err, ErrUnknownService)
}
