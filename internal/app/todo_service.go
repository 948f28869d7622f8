package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"todo-api/internal/model"
	"todo-api/internal/repository"
)

const (
	filterMinLength = 3
	filterMaxLength = 20
	titleMaxLength  = 255
)

type TodoService struct {
	todoRepo *repository.TodoRepository
	events   *eventEmitter
	logger   *slog.Logger
}

type TodoInput struct {
	Title       string
	Description string
	State       model.TodoState
}

// TodoPatch changes only the fields that are non-nil.
type TodoPatch struct {
	Title       *string
	Description *string
	State       *model.TodoState
}

// TodoFilter narrows List. Nil fields do not filter; present text filters
// must be 3 to 20 characters.
type TodoFilter struct {
	Title       *string
	Description *string
	State       *model.TodoState
	Page        Page
}

func NewTodoService(todoRepo *repository.TodoRepository, publisher EventPublisher, logger *slog.Logger) *TodoService {
	logger = loggerOrDefault(logger)
	return &TodoService{
		todoRepo: todoRepo,
		events:   newEventEmitter(publisher, logger),
		logger:   logger,
	}
}

// Create stores a todo owned by the caller. There is no way to pick another owner.
func (s *TodoService) Create(ctx context.Context, owner *model.User, input TodoInput) (*model.Todo, error) {
	if owner == nil {
		return nil, ErrCredentialsInvalid
	}
	if err := validateTodo(input.Title, input.State); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		UserID:      owner.ID,
		Title:       input.Title,
		Description: input.Description,
		State:       input.State,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.events.emit(ctx, model.Event{Type: model.EventTodoCreated, UserID: owner.ID, ResourceID: todo.ID})
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, owner *model.User, todoID uint) (*model.Todo, error) {
	return s.load(ctx, owner, todoID)
}

func (s *TodoService) List(ctx context.Context, owner *model.User, filter TodoFilter) ([]model.Todo, error) {
	if owner == nil {
		return nil, ErrCredentialsInvalid
	}
	if err := filter.Page.validate(); err != nil {
		return nil, err
	}

	q := repository.TodoQuery{Offset: filter.Page.Offset, Limit: filter.Page.Limit}
	if filter.Title != nil {
		if err := validateFilterText("title", *filter.Title); err != nil {
			return nil, err
		}
		q.Title = *filter.Title
	}
	if filter.Description != nil {
		if err := validateFilterText("description", *filter.Description); err != nil {
			return nil, err
		}
		q.Description = *filter.Description
	}
	if filter.State != nil {
		if !filter.State.Valid() {
			return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidInput, *filter.State)
		}
		q.State = *filter.State
	}

	return s.todoRepo.ListByUserID(ctx, owner.ID, q)
}

func (s *TodoService) Update(ctx context.Context, owner *model.User, todoID uint, patch TodoPatch) (*model.Todo, error) {
	todo, err := s.load(ctx, owner, todoID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.State != nil {
		todo.State = *patch.State
	}
	if err := validateTodo(todo.Title, todo.State); err != nil {
		return nil, err
	}

	if err := s.todoRepo.Save(ctx, todo); err != nil {
		// Deleted between the lookup and the write.
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}

	s.events.emit(ctx, model.Event{Type: model.EventTodoUpdated, UserID: owner.ID, ResourceID: todo.ID})
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, owner *model.User, todoID uint) error {
	if _, err := s.load(ctx, owner, todoID); err != nil {
		return err
	}

	if err := s.todoRepo.DeleteByIDAndUserID(ctx, todoID, owner.ID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrTodoNotFound
		}
		return err
	}

	s.events.emit(ctx, model.Event{Type: model.EventTodoDeleted, UserID: owner.ID, ResourceID: todoID})
	return nil
}

// load finds a todo through the owner-scoped query. Someone else's todo is
// reported exactly like a missing one.
func (s *TodoService) load(ctx context.Context, owner *model.User, todoID uint) (*model.Todo, error) {
	if owner == nil {
		return nil, ErrCredentialsInvalid
	}

	todo, err := s.todoRepo.GetByIDAndUserID(ctx, todoID, owner.ID)
	if err != nil {
		return nil, err
	}
	if todo == nil || !Authorize(owner, todo.UserID) {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func validateTodo(title string, state model.TodoState) error {
	if utf8.RuneCountInString(title) > titleMaxLength {
		return fmt.Errorf("%w: title longer than %d characters", ErrInvalidInput, titleMaxLength)
	}
	if !state.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidInput, state)
	}
	return nil
}

func validateFilterText(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n < filterMinLength || n > filterMaxLength {
		return fmt.Errorf("%w: %s filter must be %d to %d characters", ErrInvalidInput, field, filterMinLength, filterMaxLength)
	}
	return nil
}
