package gridsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/grid"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/remote"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadOptionsDefaults(t *testing.T) {
	t.Setenv(EndpointEnv, "")

	opts, err := LoadOptions("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.False(t, opts.ShouldRequireConfirmation())
}

func TestLoadOptionsMergesFile(t *testing.T) {
	t.Setenv(EndpointEnv, "")
	path := writeConfig(t, `
endpoint: https://script.example.com/exec
timeout: 3s
write_mode: readable
`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "https://script.example.com/exec", opts.Endpoint)
	assert.Equal(t, 3*time.Second, opts.Timeout)
	assert.Equal(t, remote.WriteReadable, opts.WriteMode)
	assert.Equal(t, DefaultLockedColumns, opts.LockedColumns)
	assert.True(t, opts.ShouldRequireConfirmation())
}

func TestLoadOptionsExplicitConfirmation(t *testing.T) {
	t.Setenv(EndpointEnv, "")
	path := writeConfig(t, "write_mode: readable\nrequire_confirmation: false\nlocked_columns: [Total]\n")

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.False(t, opts.ShouldRequireConfirmation())
	assert.Equal(t, []string{"Total"}, opts.LockedColumns)
}

func TestLoadOptionsEnvOverride(t *testing.T) {
	t.Setenv(EndpointEnv, "https://env.example.com/exec")
	path := writeConfig(t, "endpoint: https://file.example.com/exec\n")

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/exec", opts.Endpoint)
}

func TestLoadOptionsErrors(t *testing.T) {
	t.Setenv(EndpointEnv, "")

	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = LoadOptions(writeConfig(t, "endpoint: [unterminated"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	path := writeConfig(t, "write_mode: carrier-pigeon\n")
	_, err = LoadOptions(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "write_mode", cfgErr.Field)
	assert.Equal(t, path, cfgErr.Path)
}

func TestNewControllerWithoutEndpoint(t *testing.T) {
	c := NewController(DefaultOptions(), nil)

	err := c.Load(context.Background())
	require.ErrorIs(t, err, grid.ErrNotConfigured)
	assert.Equal(t, grid.EmptyMissingEndpoint, c.View().Empty)
}
