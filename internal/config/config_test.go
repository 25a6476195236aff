package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Settings{}, s)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		require.NoError(t, os.WriteFile(path, []byte("server: https://flights.example.com\ntimeout: 5s\nnoCache: true\n"), 0600))

		s, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://flights.example.com", s.ServerURL)
		assert.Equal(t, 5*time.Second, s.Timeout)
		assert.True(t, s.NoCache)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		require.NoError(t, os.WriteFile(path, []byte("server: [unterminated\n"), 0600))

		_, err := ReadFile(path)
		require.Error(t, err)
	})
}

func TestMerge(t *testing.T) {
	base := Defaults("/home/ann")
	assert.Equal(t, "/home/ann/.flightdesk/cache", base.CacheDir)

	file := Settings{ServerURL: "https://file.example.com", Timeout: 10 * time.Second}
	flags := Settings{ServerURL: "https://flag.example.com", StateDir: "/tmp/state"}

	got := Merge(base, file, flags)
	assert.Equal(t, "https://flag.example.com", got.ServerURL)
	assert.Equal(t, 10*time.Second, got.Timeout)
	assert.Equal(t, "/tmp/state", got.StateDir)
	assert.Equal(t, "/tmp/state/cache", got.CacheDir)
	assert.False(t, got.NoCache)

	got = Merge(base, Settings{CacheDir: "/var/cache/fd"}, Settings{StateDir: "/tmp/state"})
	assert.Equal(t, "/var/cache/fd", got.CacheDir)
}

func TestResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server: https://file.example.com\n"), 0600))

	s, err := Resolve(path, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", s.ServerURL)
	assert.Equal(t, DefaultTimeout, s.Timeout)

	s, err = Resolve(path, Settings{ServerURL: "http://override:9000"})
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000", s.ServerURL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FLIGHTDESK_TEST_VALUE=from-file\n"), 0600))

	t.Setenv("FLIGHTDESK_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("FLIGHTDESK_TEST_VALUE"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("FLIGHTDESK_TEST_VALUE"))

	t.Setenv("FLIGHTDESK_TEST_VALUE", "from-env")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("FLIGHTDESK_TEST_VALUE"))
}
