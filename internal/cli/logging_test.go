package cli

import (
	"log/slog"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetupLogging_OneShotCommandsAppend checks that only the server resets
// the shared log file.
func TestSetupLogging_OneShotCommandsAppend(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CACHE_HOME only drives os.UserCacheDir on Linux")
	}
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path, err := getLogFilePath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{\"msg\":\"server line\"}\n"), 0o600))

	closer := setupLogging(false, false)
	require.NotNil(t, closer)
	slog.Info("one-shot line")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server line")
	assert.Contains(t, string(data), "one-shot line")

	closer = setupLogging(false, true)
	require.NotNil(t, closer)
	require.NoError(t, closer.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "server line", "serve starts a fresh log")
}

func TestLogFileFlags(t *testing.T) {
	assert.NotZero(t, logFileFlags(true)&os.O_TRUNC)
	assert.Zero(t, logFileFlags(true)&os.O_APPEND)
	assert.NotZero(t, logFileFlags(false)&os.O_APPEND)
	assert.Zero(t, logFileFlags(false)&os.O_TRUNC)
}
