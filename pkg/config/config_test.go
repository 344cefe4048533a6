package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points discovery at an empty directory so a developer's own
// starcat.yaml cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("STARCAT_HOME", filepath.Join(dir, ".starcat"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "objects.json", config.Catalog.Path)
	assert.Equal(t, "textures", config.Textures.Dir)
	assert.Equal(t, []string{".*.tmp-*"}, config.Textures.Ignore)
	assert.Equal(t, int64(5*1024*1024), config.Textures.LargeWarningBytes)
	assert.Equal(t, 30*time.Second, config.Fetch.Timeout)
	assert.Equal(t, int64(50*1024*1024), config.Fetch.MaxBytes)
	assert.Equal(t, 85, config.Encode.JPEGQuality)
	assert.Empty(t, config.Seed.File)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "starcat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`catalog:
  path: data/objects.json
textures:
  dir: assets
  ignore: ["*.psd"]
fetch:
  timeout: 5s
encode:
  jpeg_quality: 92
`), 0o644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "data/objects.json", config.Catalog.Path)
	assert.Equal(t, "assets", config.Textures.Dir)
	assert.Equal(t, []string{"*.psd"}, config.Textures.Ignore)
	assert.Equal(t, 5*time.Second, config.Fetch.Timeout)
	assert.Equal(t, 92, config.Encode.JPEGQuality)
	assert.Equal(t, int64(50*1024*1024), config.Fetch.MaxBytes)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("STARCAT_CATALOG_PATH", "env.json")
	t.Setenv("STARCAT_FETCH_TIMEOUT", "2m")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env.json", config.Catalog.Path)
	assert.Equal(t, 2*time.Minute, config.Fetch.Timeout)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	toml := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(toml, []byte("[textures]\ndir = \"maps\"\n"), 0o644))
	config, err := LoadConfig(toml)
	require.NoError(t, err)
	assert.Equal(t, "maps", config.Textures.Dir)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := isolate(t)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("catalogue:\n  path: x.json\n"), 0o644))
	_, err := LoadConfig(unknown)
	assert.ErrorContains(t, err, "configuration validation failed")

	quality := filepath.Join(dir, "quality.yaml")
	require.NoError(t, os.WriteFile(quality, []byte("encode:\n  jpeg_quality: 150\n"), 0o644))
	_, err = LoadConfig(quality)
	assert.Error(t, err)
}

func TestDefaultIsCopy(t *testing.T) {
	a := Default()
	a.Textures.Ignore[0] = "changed"
	assert.Equal(t, ".*.tmp-*", Default().Textures.Ignore[0])
}

func TestGetStarcatHome(t *testing.T) {
	t.Setenv("STARCAT_HOME", "/tmp/custom-starcat")
	home, err := GetStarcatHome()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-starcat", home)

	t.Setenv("STARCAT_HOME", "")
	t.Setenv("HOME", "/tmp/user")
	home, err = GetStarcatHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/user", ".starcat"), home)
}
