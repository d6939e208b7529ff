package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
	"github.com/klabast/wb-services/canada-holidays/internal/storage"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ON", cfg.Server.DefaultProvince)
	assert.Equal(t, holidays.DefaultBaseURL, cfg.Upstream.BaseURL)
	assert.Equal(t, storage.BackendMemory, cfg.Cache.Backend)

	retention, err := cfg.Cache.RetentionDuration()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, retention)

	timeout, err := cfg.Upstream.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canada-holidays.toml")
	content := `
[server]
port = 9090
default_province = "QC"

[upstream]
timeout = "0"
rate_limit = 0

[cache]
backend = "sqlite"
path = "/tmp/holidays.db"
retention = "12h"

[scheduler]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("HOLIDAYS_SERVER_PORT", "7070")
	t.Setenv("HOLIDAYS_CACHE_BACKEND", "badger")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// env beats file, file beats defaults
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Cache.Backend)
	assert.Equal(t, "QC", cfg.Server.DefaultProvince)
	assert.Equal(t, "/tmp/holidays.db", cfg.Cache.Path)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.Schedule)

	timeout, err := cfg.Upstream.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, timeout)

	retention, err := cfg.Cache.RetentionDuration()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, retention)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nport = "), 0600))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	t.Run("unknown default province", func(t *testing.T) {
		t.Setenv("HOLIDAYS_DEFAULT_PROVINCE", "zz")
		_, err := LoadConfig("")
		assert.ErrorIs(t, err, holidays.ErrInvalidProvince)
	})

	t.Run("bad retention", func(t *testing.T) {
		t.Setenv("HOLIDAYS_CACHE_RETENTION", "forever")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "cache.retention")
	})
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { InitLogger(DefaultAppName, LoggingConfig{}, io.Discard) })

	var buf bytes.Buffer
	InitLogger("test-app", LoggingConfig{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	Logger.Debug("hello")
	assert.Contains(t, buf.String(), `"app":"test-app"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	InitLogger("test-app", LoggingConfig{Level: "nonsense"}, &buf)
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}

func TestNewProviderMemoryBackend(t *testing.T) {
	cfg := NewDefaultConfig()
	provider, store, err := NewProvider(cfg)
	require.NoError(t, err)
	defer store.Close()
	assert.NotNil(t, provider)
	assert.IsType(t, &storage.MemoryStore{}, store)

	cfg.Cache.Backend = "redis"
	_, _, err = NewProvider(cfg)
	assert.Error(t, err)
}
