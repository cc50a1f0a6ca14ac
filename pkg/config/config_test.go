package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "9090")

	require.NoError(t, Load())

	c := C()
	assert.Equal(t, "localhost:9090", c.Server.Address())
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout())
	assert.Equal(t, "info", c.Logger.Level())
	assert.Equal(t, "", c.Database.Driver())
	assert.Equal(t, 10, c.Engine.MaxDepth())
	assert.EqualValues(t, 3, c.Engine.RoundDecimals())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	t.Run("max depth", func(t *testing.T) {
		t.Setenv("EXPLOSION_MAX_DEPTH", "11")
		require.Error(t, Load())
	})

	t.Run("driver without dsn", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		require.Error(t, Load())
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		t.Setenv("DB_DSN", "x")
		require.Error(t, Load())
	})
}
