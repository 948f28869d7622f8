package model

import (
	"fmt"
	"time"
)

type TodoState string

const (
	TodoStateDraft TodoState = "draft"
	TodoStateTodo  TodoState = "todo"
	TodoStateDoing TodoState = "doing"
	TodoStateDone  TodoState = "done"
	TodoStateTrash TodoState = "trash"
)

var todoStates = []TodoState{TodoStateDraft, TodoStateTodo, TodoStateDoing, TodoStateDone, TodoStateTrash}

func TodoStates() []TodoState {
	out := make([]TodoState, len(todoStates))
	copy(out, todoStates)
	return out
}

func (s TodoState) Valid() bool {
	for _, known := range todoStates {
		if s == known {
			return true
		}
	}
	return false
}

func ParseTodoState(raw string) (TodoState, error) {
	s := TodoState(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown todo state %q", raw)
	}
	return s, nil
}

// Todo belongs to exactly one user. UserID is set on create and never updated.
type Todo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"-"`
	Owner       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	State       TodoState `gorm:"size:16;not null;index" json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
