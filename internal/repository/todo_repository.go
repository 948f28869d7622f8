package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-api/internal/model"
)

// TodoQuery narrows a listing. Empty fields do not filter.
type TodoQuery struct {
	Title       string
	Description string
	State       model.TodoState
	Offset      int
	Limit       int
}

type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(todo).Error; err != nil {
		return fmt.Errorf("create todo failed: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListByUserID(ctx context.Context, userID uint, q TodoQuery) ([]model.Todo, error) {
	todos := make([]model.Todo, 0)
	if q.Limit == 0 {
		return todos, nil
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if q.Title != "" {
		query = query.Where("title LIKE ?", "%"+q.Title+"%")
	}
	if q.Description != "" {
		query = query.Where("description LIKE ?", "%"+q.Description+"%")
	}
	if q.State != "" {
		query = query.Where("state = ?", q.State)
	}

	if err := query.Order("id ASC").Offset(q.Offset).Limit(q.Limit).Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos failed: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) GetByIDAndUserID(ctx context.Context, todoID, userID uint) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", todoID, userID).First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get todo failed: %w", err)
	}
	return &todo, nil
}

// Save writes title, description and state back. The owner column is never
// part of the update. A todo that is gone, or owned by someone else, gives
// ErrRecordNotFound.
func (r *TodoRepository) Save(ctx context.Context, todo *model.Todo) error {
	result := r.db.WithContext(ctx).
		Model(todo).
		Where("user_id = ?", todo.UserID).
		Select("title", "description", "state", "updated_at").
		Updates(todo)
	if result.Error != nil {
		return fmt.Errorf("update todo failed: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when nothing changed, so check the row.
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Todo{}).
		Where("id = ? AND user_id = ?", todo.ID, todo.UserID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check todo existence failed: %w", err)
	}
	if count == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *TodoRepository) DeleteByIDAndUserID(ctx context.Context, todoID, userID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", todoID, userID).Delete(&model.Todo{})
	if result.Error != nil {
		return fmt.Errorf("delete todo failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
