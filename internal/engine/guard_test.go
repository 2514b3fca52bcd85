package engine

import (
	"testing"

	"fusionswap/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflightGuard(t *testing.T) {
	g := newInflightGuard()

	t.Run("reentrant acquisition is detected, not deadlocked", func(t *testing.T) {
		require.NoError(t, g.acquire(1))
		err := g.acquire(1)
		require.ErrorIs(t, err, domain.ErrReentrancyDetected)
		g.release(1)
	})

	t.Run("release frees the id", func(t *testing.T) {
		require.NoError(t, g.acquire(2))
		g.release(2)
		require.NoError(t, g.acquire(2))
		g.release(2)
	})

	t.Run("distinct ids do not contend", func(t *testing.T) {
		require.NoError(t, g.acquire(3))
		require.NoError(t, g.acquire(4))
		g.release(3)
		g.release(4)
	})

	t.Run("tryAcquire skips held ids", func(t *testing.T) {
		require.NoError(t, g.acquire(5))
		assert.False(t, g.tryAcquire(5))
		g.release(5)
		assert.True(t, g.tryAcquire(5))
		g.release(5)
	})
}
