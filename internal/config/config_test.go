package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, DefaultMpvSocketPath, cfg.MpvSocketPath)
	assert.Equal(t, DefaultSocketConnectionTimeoutSec, cfg.SocketConnectionTimeoutSec)
	assert.True(t, cfg.StartMpvInstance)
	assert.False(t, cfg.AllowCORS)
	assert.Zero(t, cfg.DefaultBPM)
	assert.Empty(t, cfg.Directories)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `address: 0.0.0.0:8080
allow_cors: true
default_bpm: 120
directories:
  - /media/loops
  - /media/stems
mpv_socket_path: /run/mpvsocket
socket_connection_timeout_sec: 30
start_mpv_instance: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address)
	assert.True(t, cfg.AllowCORS)
	assert.Equal(t, 120, cfg.DefaultBPM)
	assert.Equal(t, []string{"/media/loops", "/media/stems"}, cfg.Directories)
	assert.Equal(t, "/run/mpvsocket", cfg.MpvSocketPath)
	assert.Equal(t, 30, cfg.SocketConnectionTimeoutSec)
	assert.False(t, cfg.StartMpvInstance)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `default_bpm: 90
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.DefaultBPM)
	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, DefaultMpvSocketPath, cfg.MpvSocketPath)
	assert.Equal(t, DefaultSocketConnectionTimeoutSec, cfg.SocketConnectionTimeoutSec)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "address: [not\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(cfg *Config)
		field  string
	}{
		{
			name:   "empty address",
			mutate: func(cfg *Config) { cfg.Address = "" },
			field:  "address",
		},
		{
			name:   "empty socket path",
			mutate: func(cfg *Config) { cfg.MpvSocketPath = "" },
			field:  "mpv_socket_path",
		},
		{
			name:   "non-positive timeout",
			mutate: func(cfg *Config) { cfg.SocketConnectionTimeoutSec = 0 },
			field:  "socket_connection_timeout_sec",
		},
		{
			name:   "negative tempo",
			mutate: func(cfg *Config) { cfg.DefaultBPM = -1 },
			field:  "default_bpm",
		},
		{
			name:   "tempo above limit",
			mutate: func(cfg *Config) { cfg.DefaultBPM = 301 },
			field:  "default_bpm",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			testCase.mutate(&cfg)

			err := ValidateConfig(&cfg)
			require.Error(t, err)

			var validationErr ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, testCase.field, validationErr.Field)
		})
	}
}
