package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"todo-api/internal/model"
	"todo-api/internal/pkg/password"
	"todo-api/internal/repository"
)

var validate = validator.New()

type AccountService struct {
	userRepo *repository.UserRepository
	hasher   PasswordHasher
	cache    AccountCache
	events   *eventEmitter
	logger   *slog.Logger
}

// AccountInput replaces all three fields on create and update.
type AccountInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=128"`
	Password string `validate:"required,max=128"`
}

func NewAccountService(
	userRepo *repository.UserRepository,
	hasher PasswordHasher,
	cache AccountCache,
	publisher EventPublisher,
	logger *slog.Logger,
) *AccountService {
	logger = loggerOrDefault(logger)
	return &AccountService{
		userRepo: userRepo,
		hasher:   hasher,
		cache:    cache,
		events:   newEventEmitter(publisher, logger),
		logger:   logger,
	}
}

func (s *AccountService) Create(ctx context.Context, input AccountInput) (*model.User, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.WarnContext(ctx, "account already exists", "username", input.Username)
		return nil, ErrConflict
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race against a concurrent create with the same username or email.
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.WarnContext(ctx, "account create hit unique constraint", "username", input.Username)
			return nil, ErrConflict
		}
		return nil, err
	}

	s.events.emit(ctx, model.Event{Type: model.EventUserCreated, UserID: user.ID})
	return user, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}

	if s.cache != nil {
		user, ok, err := s.cache.GetAccount(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "account cache read failed", "user_id", id, "error", err)
		} else if ok {
			return user, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetAccount(ctx, user); err != nil {
			s.logger.WarnContext(ctx, "account cache write failed", "user_id", id, "error", err)
		}
	}
	return user, nil
}

func (s *AccountService) List(ctx context.Context, page Page) ([]model.User, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, page.Offset, page.Limit)
}

// Update replaces username, email and password of the caller's own account.
func (s *AccountService) Update(ctx context.Context, caller *model.User, id uint, input AccountInput) (*model.User, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !Authorize(caller, id) {
		s.logger.WarnContext(ctx, "account update denied", "caller_id", callerID(caller), "user_id", id)
		return nil, ErrPermissionDenied
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Replace(ctx, id, input.Username, input.Email, hash)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			s.logger.WarnContext(ctx, "account update hit unique constraint", "user_id", id)
			return nil, ErrConflict
		default:
			return nil, err
		}
	}

	s.forget(ctx, id)
	s.events.emit(ctx, model.Event{Type: model.EventUserUpdated, UserID: id})
	return user, nil
}

// Delete removes the caller's own account together with all of its todos.
func (s *AccountService) Delete(ctx context.Context, caller *model.User, id uint) error {
	if !Authorize(caller, id) {
		s.logger.WarnContext(ctx, "account delete denied", "caller_id", callerID(caller), "user_id", id)
		return ErrPermissionDenied
	}

	if err := s.userRepo.DeleteWithTodos(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.forget(ctx, id)
	s.events.emit(ctx, model.Event{Type: model.EventUserDeleted, UserID: id})
	return nil
}

func (s *AccountService) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) || errors.Is(err, password.ErrEmptyPassword) {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return "", err
	}
	return hash, nil
}

func (s *AccountService) forget(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteAccount(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "account cache invalidation failed", "user_id", id, "error", err)
	}
}

func callerID(caller *model.User) uint {
	if caller == nil {
		return 0
	}
	return caller.ID
}
