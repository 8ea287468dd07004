package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/shared/constants"
)

func writeConfigFile(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configs"), 0o755))
	content := "server:\n  port: 8080\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte(content), 0o644))
	t.Chdir(dir)
}

func TestLoad_ServerMode(t *testing.T) {
	writeConfigFile(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, constants.EnvDebug, cfg.Server.Mode)

	_, err = Load("staging")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown server mode")

	cfg, err = Load(constants.EnvTest)
	require.NoError(t, err)
	assert.Equal(t, constants.EnvTest, cfg.Server.Mode)

	cfg, err = Load(constants.EnvRelease)
	require.NoError(t, err)
	assert.Equal(t, constants.EnvRelease, cfg.Server.Mode)
}
