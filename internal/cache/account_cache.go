package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"todo-api/internal/model"
)

// tombstone marks an account that was just changed or deleted. While it is
// present nothing can be cached under the key, so a reader that loaded the row
// before the change cannot put the old view back.
const tombstone = "-"

// AccountCache stores public account views in redis. Only model.User.Public
// views are written, so nothing secret reaches the cache.
type AccountCache struct {
	client       *redisv9.Client
	ttl          time.Duration
	tombstoneTTL time.Duration
}

func NewAccountCache(client *redisv9.Client, ttl, tombstoneTTL time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if tombstoneTTL <= 0 {
		tombstoneTTL = 5 * time.Second
	}
	return &AccountCache{
		client:       client,
		ttl:          ttl,
		tombstoneTTL: tombstoneTTL,
	}
}

func (c *AccountCache) GetAccount(ctx context.Context, id uint) (*model.User, bool, error) {
	raw, err := c.client.Get(ctx, c.accountKey(id)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get account failed: %w", err)
	}
	if string(raw) == tombstone {
		return nil, false, nil
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached account failed: %w", err)
	}
	return &user, true, nil
}

// SetAccount only fills an empty key. It never replaces a tombstone or a
// newer entry.
func (c *AccountCache) SetAccount(ctx context.Context, user *model.User) error {
	payload, err := json.Marshal(user.Public())
	if err != nil {
		return fmt.Errorf("marshal account cache failed: %w", err)
	}
	if err := c.client.SetNX(ctx, c.accountKey(user.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set account failed: %w", err)
	}
	return nil
}

// DeleteAccount replaces the entry with a short-lived tombstone.
func (c *AccountCache) DeleteAccount(ctx context.Context, id uint) error {
	if err := c.client.Set(ctx, c.accountKey(id), tombstone, c.tombstoneTTL).Err(); err != nil {
		return fmt.Errorf("redis delete account failed: %w", err)
	}
	return nil
}

func (c *AccountCache) accountKey(id uint) string {
	return fmt.Sprintf("account:public:%d", id)
}
