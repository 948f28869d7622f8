package repository

import (
	"fmt"

	"gorm.io/gorm"

	"todo-api/internal/model"
)

// AutoMigrate creates or updates the users and todos tables. Users go first
// so the todos foreign key has a target.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Todo{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
