package inverse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inverse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoadConfig validates YAML loading with environment overrides.
//
// Arguments:
//   - t: Testing context for assertions and error reporting.
func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "workers: 3\nchain_mode: compose\nlog_level: debug\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{Workers: 3, ChainMode: ChainModeCompose, LogLevel: "debug"}, cfg)

	t.Setenv("INVERSE_WORKERS", "8")
	t.Setenv("INVERSE_LOG_LEVEL", "warn")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers, "environment overrides the file")
	assert.Equal(t, ChainModeCompose, cfg.ChainMode)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "chain_mode: fold\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = LoadConfig(writeConfig(t, "workers: -2\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = LoadConfig(writeConfig(t, "log_level: loud\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig), "unknown log levels must be rejected")

	_, err = LoadConfig(writeConfig(t, "workers: [\n"))
	assert.Error(t, err, "malformed YAML must fail")
}

func TestConfigLevel(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).level().String())
	assert.Equal(t, "info", (&Config{LogLevel: "loud"}).level().String())
}
