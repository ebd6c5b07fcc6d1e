package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Connections)
	assert.Equal(t, "8M", cfg.ChunkSize)
	assert.Equal(t, 3*time.Minute, cfg.Timeout)
	assert.Equal(t, 90*time.Second, cfg.KATimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RPULL_CONNECTIONS", "auto")
	t.Setenv("RPULL_CHUNK_SIZE", "32M")
	t.Setenv("RPULL_TIMEOUT", "45s")
	t.Setenv("RPULL_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Connections)
	assert.Equal(t, "32M", cfg.ChunkSize)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".config", "rpull.yaml"),
		[]byte("connections: \"3\"\nchunk_size: 16M\ndebug: true\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3", cfg.Connections)
	assert.Equal(t, "16M", cfg.ChunkSize)
	assert.True(t, cfg.Debug)

	// Environment beats the file, untouched file values survive
	t.Setenv("RPULL_CHUNK_SIZE", "64M")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "64M", cfg.ChunkSize)
	assert.Equal(t, "3", cfg.Connections)
}

func TestResolveConnections(t *testing.T) {
	cfg := defaults()

	n, err := cfg.ResolveConnections()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cfg.Connections = "4"
	n, err = cfg.ResolveConnections()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	cfg.Connections = "auto"
	n, err = cfg.ResolveConnections()
	require.NoError(t, err)
	assert.Equal(t, min(runtime.GOMAXPROCS(0), maxAutoConnections), n)
	assert.LessOrEqual(t, n, maxAutoConnections)
	assert.GreaterOrEqual(t, n, 1)

	for _, bad := range []string{"0", "-2", "lots"} {
		cfg.Connections = bad
		_, err = cfg.ResolveConnections()
		assert.Error(t, err, "connections=%q", bad)
	}
}
