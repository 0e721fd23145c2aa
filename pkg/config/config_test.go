package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EPOCHFS_BASE_PATH", "/srv/data")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/data", cfg.BasePath)
	assert.Equal(t, DefaultEpochYear(), cfg.Epoch)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "epochfs", cfg.Mount.FSName)
	assert.False(t, cfg.Mount.AllowOther)
	assert.False(t, cfg.Mount.ReadOnly)
}

func TestLoadMissingBasePath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BasePath")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epochfs.yaml")
	content := `base_path: /srv/backing
epoch: 2000
logging:
  level: debug
  output: stdout
mount:
  fsname: timeshift
  allow_other: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/backing", cfg.BasePath)
	assert.Equal(t, 2000, cfg.Epoch)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "timeshift", cfg.Mount.FSName)
	assert.True(t, cfg.Mount.AllowOther)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epochfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_path: /from/file\nepoch: 1990\n"), 0644))

	t.Setenv("EPOCHFS_EPOCH", "2038")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/file", cfg.BasePath)
	assert.Equal(t, 2038, cfg.Epoch)
}

func TestLoadBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epochfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_path: [unterminated\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := &Config{
		Epoch:   1970,
		Logging: LoggingConfig{Level: "LOUD", Output: "stderr"},
		Mount:   MountConfig{FSName: "epochfs"},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BasePath")
	assert.Contains(t, err.Error(), "Level")
}

func TestValidateEpochRange(t *testing.T) {
	cfg := &Config{
		BasePath: "/srv/data",
		Epoch:    1 << 40,
		Logging:  LoggingConfig{Level: "INFO", Output: "stderr"},
		Mount:    MountConfig{FSName: "epochfs"},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestDefaultEpochYear(t *testing.T) {
	// Second zero falls in 1970 in UTC and zones east of Greenwich,
	// 1969 in zones west of it.
	year := DefaultEpochYear()
	assert.True(t, year == 1969 || year == 1970, "got %d", year)
}
