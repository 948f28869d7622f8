package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-api/internal/model"
	"todo-api/internal/platform/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, repo *UserRepository, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	u := seedUser(t, repo, "alice")
	assert.Equal(t, uint(1), u.ID)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	seedUser(t, repo, "alice")

	err := repo.Create(ctx, &model.User{Username: "bob", Email: "alice@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, ErrDuplicate)

	err = repo.Create(ctx, &model.User{Username: "alice", Email: "bob@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, ErrDuplicate)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "carol", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "alice", "carol@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "Alice", "carol@example.com")
	require.NoError(t, err)
	assert.False(t, exists, "usernames match case-sensitively")
}

func TestUserRepository_Replace(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	alice := seedUser(t, repo, "alice")
	seedUser(t, repo, "bob")

	updated, err := repo.Replace(ctx, alice.ID, "alice2", "alice2@example.com", "hash2")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, updated.ID)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "hash2", updated.PasswordHash)

	_, err = repo.Replace(ctx, alice.ID, "bob", "alice3@example.com", "hash3")
	require.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username, "failed update must not be applied")

	_, err = repo.Replace(ctx, 999, "x", "x@example.com", "h")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUserRepository_ListPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	for i := 0; i < 5; i++ {
		seedUser(t, repo, fmt.Sprintf("user%d", i))
	}

	all, err := repo.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, u := range all {
		assert.Equal(t, fmt.Sprintf("user%d", i), u.Username)
	}

	page, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "user1", page[0].Username)
	assert.Equal(t, "user2", page[1].Username)

	empty, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepository_DeleteWithTodos(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	for _, owner := range []*model.User{alice, alice, bob} {
		require.NoError(t, todos.Create(ctx, &model.Todo{UserID: owner.ID, Title: "t", Description: "d", State: model.TodoStateDraft}))
	}

	require.NoError(t, users.DeleteWithTodos(ctx, alice.ID))

	var remaining []model.Todo
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, bob.ID, remaining[0].UserID)

	gone, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	err = users.DeleteWithTodos(ctx, alice.ID)
	require.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestTodoRepository_ScopedAccess(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	todo := &model.Todo{UserID: alice.ID, Title: "buy milk", Description: "2 liters", State: model.TodoStateTodo}
	require.NoError(t, repo.Create(ctx, todo))

	got, err := repo.GetByIDAndUserID(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = repo.GetByIDAndUserID(ctx, todo.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.ErrorIs(t, repo.DeleteByIDAndUserID(ctx, todo.ID, bob.ID), ErrRecordNotFound)
	require.NoError(t, repo.DeleteByIDAndUserID(ctx, todo.ID, alice.ID))
	require.ErrorIs(t, repo.DeleteByIDAndUserID(ctx, todo.ID, alice.ID), ErrRecordNotFound)
}

func TestTodoRepository_SaveKeepsOwner(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	todo := &model.Todo{UserID: alice.ID, Title: "old", Description: "desc", State: model.TodoStateDraft}
	require.NoError(t, repo.Create(ctx, todo))

	todo.Title = "new"
	todo.State = model.TodoStateDone
	require.NoError(t, repo.Save(ctx, todo))

	got, err := repo.GetByIDAndUserID(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, model.TodoStateDone, got.State)

	hijack := *got
	hijack.UserID = bob.ID
	hijack.Title = "stolen"
	require.ErrorIs(t, repo.Save(ctx, &hijack), ErrRecordNotFound)

	got, err = repo.GetByIDAndUserID(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Title)
}

func TestTodoRepository_SaveDeleted(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewTodoRepository(db)

	alice := seedUser(t, users, "alice")
	todo := &model.Todo{UserID: alice.ID, Title: "t", Description: "d", State: model.TodoStateTodo}
	require.NoError(t, repo.Create(ctx, todo))

	// Unchanged values still count as found.
	require.NoError(t, repo.Save(ctx, todo))

	require.NoError(t, repo.DeleteByIDAndUserID(ctx, todo.ID, alice.ID))
	todo.Title = "changed"
	require.ErrorIs(t, repo.Save(ctx, todo), ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&model.Todo{}).Count(&count).Error)
	assert.Zero(t, count, "save must not resurrect the row")
}

func TestTodoRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	seed := []model.Todo{
		{UserID: alice.ID, Title: "buy milk", Description: "groceries", State: model.TodoStateTodo},
		{UserID: alice.ID, Title: "buy bread", Description: "bakery run", State: model.TodoStateDone},
		{UserID: alice.ID, Title: "write report", Description: "groceries budget", State: model.TodoStateDoing},
		{UserID: bob.ID, Title: "buy milk", Description: "groceries", State: model.TodoStateTodo},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	tests := []struct {
		name   string
		query  TodoQuery
		titles []string
	}{
		{"all", TodoQuery{Limit: 100}, []string{"buy milk", "buy bread", "write report"}},
		{"title", TodoQuery{Title: "buy", Limit: 100}, []string{"buy milk", "buy bread"}},
		{"description", TodoQuery{Description: "groceries", Limit: 100}, []string{"buy milk", "write report"}},
		{"state", TodoQuery{State: model.TodoStateDone, Limit: 100}, []string{"buy bread"}},
		{"combined", TodoQuery{Title: "buy", Description: "groc", State: model.TodoStateTodo, Limit: 100}, []string{"buy milk"}},
		{"no match", TodoQuery{Title: "zzz", Limit: 100}, []string{}},
		{"paged", TodoQuery{Offset: 1, Limit: 1}, []string{"buy bread"}},
		{"zero limit", TodoQuery{Limit: 0}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			todos, err := repo.ListByUserID(ctx, alice.ID, tc.query)
			require.NoError(t, err)

			titles := make([]string, 0, len(todos))
			for _, todo := range todos {
				assert.Equal(t, alice.ID, todo.UserID)
				titles = append(titles, todo.Title)
			}
			assert.Equal(t, tc.titles, titles)
		})
	}
}
