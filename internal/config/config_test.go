package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.True(t, cfg.DB.Serializable)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Admission.StoreTimeout)
	assert.Equal(t, 2, cfg.Admission.MaxRetries)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", ":memory:")
	t.Setenv("DB_SERIALIZABLE", "false")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMISSION_STORE_TIMEOUT", "2s")
	t.Setenv("ADMISSION_MAX_RETRIES", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, ":memory:", cfg.DB.SQLitePath)
	assert.False(t, cfg.DB.Serializable)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Admission.StoreTimeout)
	assert.Equal(t, 4, cfg.Admission.MaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestLoad_RejectsNonPositiveStoreTimeout(t *testing.T) {
	t.Setenv("ADMISSION_STORE_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GRPC_ADDR=:6000\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// t.Setenv восстановит прежнее значение после теста.
	t.Setenv("GRPC_ADDR", "")
	require.NoError(t, os.Unsetenv("GRPC_ADDR"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.GRPC.Addr)
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DBOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 42, cfg.DB.MaxOpenConns)
}

func TestLoad_TrustedProxies(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.TrustedProxies, "no proxy is trusted by default")
	assert.Equal(t, "stdout", cfg.Log.OutputPath)

	t.Setenv("HTTP_TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("LOG_OUTPUT_PATH", "stderr")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.HTTP.TrustedProxies)
	assert.Equal(t, "stderr", cfg.Log.OutputPath)
}
