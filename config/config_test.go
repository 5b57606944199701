package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should return defaults without overrides", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "output", cfg.OutputDir)
		assert.Equal(t, 8192, cfg.Fetch.ChunkSize)
		assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, BrowserUserAgent, cfg.Fetch.UserAgent)
		assert.Equal(t, 100, cfg.Web.MaxPages)
	})

	t.Run("Should apply environment overrides", func(t *testing.T) {
		t.Setenv("DOCMARK_OUTPUT_DIR", "/tmp/pdf_output")
		t.Setenv("DOCMARK_FETCH_TIMEOUT", "5s")
		t.Setenv("DOCMARK_FETCH_CHUNK_SIZE", "4096")
		t.Setenv("DOCMARK_ARCHIVE_KEEP_ARCHIVE", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/pdf_output", cfg.OutputDir)
		assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 4096, cfg.Fetch.ChunkSize)
		assert.True(t, cfg.Archive.KeepArchive)
	})

	t.Run("Should read a .env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("DOCMARK_LOG_LEVEL=debug\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("DOCMARK_LOG_LEVEL") })

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("Should ignore a missing .env file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), ".env"))
		assert.NoError(t, err)
	})

	t.Run("Should fail on an unreadable .env file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Load(dir)
		assert.ErrorContains(t, err, "loading "+dir)
	})

	t.Run("Should reject an invalid log level", func(t *testing.T) {
		t.Setenv("DOCMARK_LOG_LEVEL", "verbose")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid log level")
	})
}
