package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todo-api/internal/model"
	"todo-api/internal/pkg/jwtutil"
	"todo-api/internal/pkg/password"
	"todo-api/internal/platform/sqlite"
	"todo-api/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mapCache struct {
	mu      sync.Mutex
	entries map[uint]model.User
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[uint]model.User)}
}

func (c *mapCache) GetAccount(_ context.Context, id uint) (*model.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	u, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (c *mapCache) SetAccount(_ context.Context, user *model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = user.Public()
	return nil
}

func (c *mapCache) DeleteAccount(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *mapCache) Has(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

type fixture struct {
	db        *gorm.DB
	users     *repository.UserRepository
	todos     *repository.TodoRepository
	hasher    *password.Hasher
	clock     *fakeClock
	codec     *jwtutil.Codec
	publisher *recordingPublisher
	cache     *mapCache
	accounts  *AccountService
	auth      *AuthService
	todoSvc   *TodoService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hasher, err := password.NewHasher(password.Config{Algorithm: password.AlgorithmBcrypt, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := jwtutil.NewCodec("test-secret", 30*time.Minute, jwtutil.WithClock(clock.Now))
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		users:     repository.NewUserRepository(db),
		todos:     repository.NewTodoRepository(db),
		hasher:    hasher,
		clock:     clock,
		codec:     codec,
		publisher: &recordingPublisher{},
		cache:     newMapCache(),
	}
	f.accounts = NewAccountService(f.users, hasher, f.cache, f.publisher, nil)
	f.auth, err = NewAuthService(f.users, hasher, codec, f.publisher, nil)
	require.NoError(t, err)
	f.todoSvc = NewTodoService(f.todos, f.publisher, nil)
	return f
}

func (f *fixture) createAccount(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := f.accounts.Create(context.Background(), AccountInput{
		Username: name,
		Email:    name + "@example.com",
		Password: name + "-secret",
	})
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

func statePtr(s model.TodoState) *model.TodoState { return &s }
