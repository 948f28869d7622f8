package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/model"
)

func newTestCache(t *testing.T) (*AccountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAccountCache(client, time.Minute, 5*time.Second), mr
}

func TestAccountCache_RoundTripWithoutHash(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, ok, err := c.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	user := &model.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "$2a$10$secret"}
	require.NoError(t, c.SetAccount(ctx, user))

	raw, err := mr.Get("account:public:1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "$2a$10$secret")

	got, ok, err := c.GetAccount(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Empty(t, got.PasswordHash)
}

func TestAccountCache_DeleteAndExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.SetAccount(ctx, &model.User{ID: 2, Username: "bob"}))
	require.NoError(t, c.DeleteAccount(ctx, 2))
	_, ok, err := c.GetAccount(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	raw, err := mr.Get("account:public:2")
	require.NoError(t, err)
	assert.Equal(t, tombstone, raw)
	mr.FastForward(6 * time.Second)
	assert.False(t, mr.Exists("account:public:2"), "tombstone expires on its own")

	require.NoError(t, c.SetAccount(ctx, &model.User{ID: 3, Username: "carol"}))
	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetAccount(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("account:public:4", "{not json"))
	_, ok, err := c.GetAccount(ctx, 4)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestAccountCache_TombstoneBlocksStaleFill(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	stale := &model.User{ID: 5, Username: "dave", Email: "dave@example.com"}
	require.NoError(t, c.DeleteAccount(ctx, 5))

	// A reader that loaded the row before the delete tries to fill the cache.
	require.NoError(t, c.SetAccount(ctx, stale))
	_, ok, err := c.GetAccount(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(6 * time.Second)
	fresh := &model.User{ID: 5, Username: "dave2", Email: "dave@example.com"}
	require.NoError(t, c.SetAccount(ctx, fresh))
	got, ok, err := c.GetAccount(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dave2", got.Username)
}

func TestAccountCache_SetDoesNotReplaceLiveEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.SetAccount(ctx, &model.User{ID: 6, Username: "erin"}))
	require.NoError(t, c.SetAccount(ctx, &model.User{ID: 6, Username: "older"}))

	got, ok, err := c.GetAccount(ctx, 6)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "erin", got.Username)
}
