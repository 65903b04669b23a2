package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupTestStateStore(t *testing.T) (OAuthStateStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisOAuthStateStore(client, 10*time.Minute, zaptest.NewLogger(t)), mr
}

// ==================== OAUTH STATE TESTS ====================

func TestOAuthStateStore_PutThenConsume(t *testing.T) {
	store, _ := setupTestStateStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "state-token", OAuthState{UserID: 1, Platform: "monday"}))

	got, err := store.Consume(ctx, "state-token")

	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "monday", got.Platform)
}

func TestOAuthStateStore_ConsumeIsSingleUse(t *testing.T) {
	store, _ := setupTestStateStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "state-token", OAuthState{UserID: 1, Platform: "monday"}))

	first, err := store.Consume(ctx, "state-token")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := store.Consume(ctx, "state-token")
	assert.NoError(t, err)
	assert.Nil(t, second)
}

func TestOAuthStateStore_UnknownTokenReturnsNil(t *testing.T) {
	store, _ := setupTestStateStore(t)

	got, err := store.Consume(context.Background(), "never-issued")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestOAuthStateStore_StateExpires(t *testing.T) {
	store, mr := setupTestStateStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "state-token", OAuthState{UserID: 1, Platform: "smartsheet"}))
	mr.FastForward(11 * time.Minute)

	got, err := store.Consume(ctx, "state-token")

	assert.NoError(t, err)
	assert.Nil(t, got)
}
