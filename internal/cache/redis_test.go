package cache

import (
	"context"
	"testing"
	"time"

	"github.com/reseller-hub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test"), mr
}

func TestStoreJSONRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	payload := map[string]int64{"pending": 3, "delivered": 1}
	require.NoError(t, store.SetJSON(ctx, "stats:orders", payload, time.Minute))
	assert.True(t, mr.Exists("test:stats:orders"))

	var got map[string]int64
	hit, err := store.GetJSON(ctx, "stats:orders", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload, got)

	mr.FastForward(2 * time.Minute)
	hit, err = store.GetJSON(ctx, "stats:orders", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStoreDelMultipleKeys(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetJSON(ctx, "a", 1, 0))
	require.NoError(t, store.SetJSON(ctx, "b", 2, 0))

	require.NoError(t, store.Del(ctx, "a", "b"))
	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:b"))
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store
	ctx := context.Background()

	assert.False(t, store.Enabled())
	assert.NoError(t, store.SetJSON(ctx, "k", 1, time.Minute))
	hit, err := store.GetJSON(ctx, "k", new(int))
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, store.Del(ctx, "k"))
	assert.Equal(t, "rh:k", store.Key("k"))
}

func TestAccountStateCache(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state := BuildAccountState(&models.User{ID: 9, Role: "admin", Status: models.UserStatusActive})
	require.NoError(t, store.SetAccountState(ctx, state))

	got, hit, err := store.GetAccountState(ctx, 9)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "admin", got.Role)

	require.NoError(t, store.DelAccountState(ctx, 9))
	_, hit, err = store.GetAccountState(ctx, 9)
	require.NoError(t, err)
	assert.False(t, hit)
}
