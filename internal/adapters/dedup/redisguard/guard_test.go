package redisguard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestGuard(t *testing.T) (*miniredis.Miniredis, *Guard) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewWithClient(client, time.Minute, "test:")
}

func TestGuard_ClaimOnce(t *testing.T) {
	mr, g := setupTestGuard(t)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "s1", "d1@2024-03-10T08:00")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, "s1", "d1@2024-03-10T08:00")
	require.NoError(t, err)
	assert.False(t, ok)

	// Mismo id en otro shelter es otra reserva.
	ok, err = g.Claim(ctx, "s2", "d1@2024-03-10T08:00")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists("test:s1:d1@2024-03-10T08:00"))
	assert.Equal(t, time.Minute, mr.TTL("test:s1:d1@2024-03-10T08:00"))
}

func TestGuard_ReleaseAndExpire(t *testing.T) {
	mr, g := setupTestGuard(t)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "s1", "occ")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, g.Release(ctx, "s1", "occ"))
	ok, err = g.Claim(ctx, "s1", "occ")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = g.Claim(ctx, "s1", "occ")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_RedisDown(t *testing.T) {
	mr, g := setupTestGuard(t)
	mr.Close()

	_, err := g.Claim(context.Background(), "s1", "occ")
	assert.Error(t, err)
}
