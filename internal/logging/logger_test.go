package logging

import (
	"os"
	"path/filepath"
	"testing"

	"hotelier/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	app := config.AppConfig{Name: "hotelier", Environment: "test", Version: "0.1.0"}

	t.Run("stdout needs no closer", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "info", Output: "stdout"}, app)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("console format on stderr", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "debug", Output: "stderr", Format: "console"}, app)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("file output creates the file and returns a closer", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, closer, err := New(config.LoggingConfig{Level: "error", Output: "file", FilePath: path}, app)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		require.NotNil(t, closer)
		require.NoError(t, closer.Close())

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("file output without a path fails", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "file"}, app)
		assert.Error(t, err)
	})
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, levelFor("warn"))
	assert.Equal(t, zerolog.WarnLevel, levelFor("  WARN  "))
	assert.Equal(t, zerolog.InfoLevel, levelFor(""), "unset level defaults to info")
	assert.Equal(t, zerolog.InfoLevel, levelFor("verbose"), "unknown level defaults to info")
}
