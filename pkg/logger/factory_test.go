package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/streamkit/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))

		log.Info("hello", slog.String("key", "value"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "value", record["key"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithFormat(logger.FormatText),
		)

		log.Info("hello")
		assert.True(t, strings.Contains(buf.String(), "msg=hello"))
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithLevel(slog.LevelWarn),
		)

		log.Info("dropped")
		assert.Empty(t, buf.String())

		log.Warn("kept")
		assert.NotEmpty(t, buf.String())
	})

	t.Run("static attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("app", "streamkit")),
		)

		log.Info("hello")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "streamkit", record["app"])
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("parses level and format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewFromConfig(
			logger.Config{Level: "debug", Format: logger.FormatText},
			logger.WithOutput(&buf),
		)

		log.Debug("visible")
		assert.True(t, strings.Contains(buf.String(), "msg=visible"))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewFromConfig(
			logger.Config{Level: "nonsense", Format: logger.FormatJSON},
			logger.WithOutput(&buf),
		)

		log.Debug("dropped")
		assert.Empty(t, buf.String())

		log.Info("kept")
		assert.NotEmpty(t, buf.String())
	})
}
