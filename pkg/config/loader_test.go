package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/streamkit/pkg/config"
)

type testConfig struct {
	Name    string        `env:"TEST_NAME" envDefault:"streamkit"`
	Port    int           `env:"TEST_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TEST_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "streamkit", cfg.Name)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_NAME", "custom")
		t.Setenv("TEST_PORT", "9090")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "custom", cfg.Name)
		assert.Equal(t, 9090, cfg.Port)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsing)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("TEST_PORT", "not-a-number")

		var cfg testConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsing)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		var cfg requiredConfig
		require.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("succeeds with defaults", func(t *testing.T) {
		var cfg testConfig
		require.NotPanics(t, func() { config.MustLoad(&cfg) })
	})
}
