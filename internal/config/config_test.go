package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, "info", c.Server.LogLevel)
	assert.Equal(t, "0.01", c.Engine.Step)
	assert.Equal(t, "0.01", c.Engine.Spread)
	assert.Equal(t, 10, c.Engine.TopLevels)
	assert.True(t, c.DefaultRTH())
	assert.False(t, c.DefaultExactOnly())
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
engine:
  step: "0.05"
  exact_only: true
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, "0.05", c.Engine.Step)
	assert.Equal(t, "0.01", c.Engine.Spread)
	assert.True(t, c.DefaultExactOnly())
	assert.True(t, c.DefaultRTH())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o644))

	t.Setenv("API_PORT", "7070")
	t.Setenv("POLYGON_BASE_URL", "http://localhost:1234")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", c.Server.Port)
	assert.Equal(t, "http://localhost:1234", c.Polygon.BaseURL)
}

func TestValidation(t *testing.T) {
	c := Default()
	c.Engine.Step = "0"
	assert.Error(t, c.Validate())

	c = Default()
	c.Engine.Spread = "abc"
	assert.Error(t, c.Validate())

	c = Default()
	c.Engine.TopLevels = -1
	assert.Error(t, c.Validate())

	c = Default()
	c.Server.Port = ""
	assert.Error(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
