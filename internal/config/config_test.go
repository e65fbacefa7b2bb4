package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
	require.Equal(t, 10, cfg.MinReasonLength)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caseledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
store_timeout: 3s
cache_ttl: 1m
logging:
  level: debug
session:
  max_failures: 7
`), 0o600))
	t.Setenv("NR_HTTP_ADDR", ":7070")
	t.Setenv("NR_MIN_REASON_LENGTH", "12")
	t.Setenv("NR_MIGRATE_ON_START", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTPAddr)
	require.Equal(t, 3*time.Second, cfg.StoreTimeout)
	require.Equal(t, time.Minute, cfg.CacheTTL)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, 7, cfg.Session.MaxFailures)
	require.Equal(t, 12, cfg.MinReasonLength)
	require.False(t, cfg.MigrateOnStart)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: [unterminated"), 0o600))
	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")
}

func TestApplyEnv_BadValues(t *testing.T) {
	for key, val := range map[string]string{
		"NR_STORE_TIMEOUT":     "soon",
		"NR_MIN_REASON_LENGTH": "ten",
		"NR_MIGRATE_ON_START":  "perhaps",
	} {
		cfg := Default()
		err := cfg.applyEnv(func(k string) (string, bool) {
			if k == key {
				return val, true
			}
			return "", false
		})
		require.ErrorContains(t, err, key)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate(), "jwt key is required")

	cfg.JWTKey = "0123456789abcdef0123"
	require.NoError(t, cfg.Validate())

	cfg.DSN = ""
	cfg.MinReasonLength = 0
	err := cfg.Validate()
	require.ErrorContains(t, err, "dsn")
	require.ErrorContains(t, err, "min_reason_length")
}
