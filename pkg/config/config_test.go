package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	t.Setenv("NOTEMASTER_CONFIG", path)

	cfg := Defaults()
	cfg.APIBaseURL = "http://file.example/api"
	cfg.ListenAddr = "127.0.0.1:9000"
	require.NoError(t, cfg.Save())

	t.Setenv("NOTEMASTER_LISTEN_ADDR", "127.0.0.1:9100")
	t.Setenv("NOTEMASTER_AUTOSAVE_DELAY", "250ms")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://file.example/api", loaded.APIBaseURL)
	assert.Equal(t, "127.0.0.1:9100", loaded.ListenAddr)
	assert.Equal(t, 250*time.Millisecond, loaded.AutosaveDelay)
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("NOTEMASTER_CONFIG", filepath.Join(t.TempDir(), "missing"))
	t.Setenv("NOTEMASTER_AUTOSAVE_DELAY", "soon")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 900*time.Millisecond, loaded.AutosaveDelay)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	t.Setenv("NOTEMASTER_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestSaveDoesNotPersistSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	t.Setenv("NOTEMASTER_CONFIG", path)

	cfg := Defaults()
	cfg.S3SecretKey = "hunter2"
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}
