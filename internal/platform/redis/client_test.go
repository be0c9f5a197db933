package redis

import (
	"testing"

	"pricehive_backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	t.Run("disabled without address", func(t *testing.T) {
		client, cleanup, err := NewClient(&config.Config{}, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, client)
		cleanup()
	})

	t.Run("connects", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, cleanup, err := NewClient(&config.Config{RedisAddr: mr.Addr()}, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, client)
		cleanup()
	})

	t.Run("unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, _, err := NewClient(&config.Config{RedisAddr: addr}, zap.NewNop())
		assert.Error(t, err)
	})
}
