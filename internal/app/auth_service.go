package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"todo-api/internal/model"
	"todo-api/internal/pkg/jwtutil"
	"todo-api/internal/repository"
)

const TokenTypeBearer = "Bearer"

type AuthService struct {
	userRepo  *repository.UserRepository
	hasher    PasswordHasher
	codec     *jwtutil.Codec
	events    *eventEmitter
	logger    *slog.Logger
	dummyHash string
}

type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

func NewAuthService(
	userRepo *repository.UserRepository,
	hasher PasswordHasher,
	codec *jwtutil.Codec,
	publisher EventPublisher,
	logger *slog.Logger,
) (*AuthService, error) {
	logger = loggerOrDefault(logger)

	// Verified against when the email is unknown so both login failures cost the same.
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash failed: %w", err)
	}

	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		codec:     codec,
		events:    newEventEmitter(publisher, logger),
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Login checks email and password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Verify(password, s.dummyHash)
		s.logger.WarnContext(ctx, "login for unknown email")
		s.events.emit(ctx, model.Event{Type: model.EventLoginFailed, Attributes: map[string]any{"reason": "unknown_email"}})
		return nil, ErrIncorrectLogin
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "login with wrong password", "user_id", user.ID)
		s.events.emit(ctx, model.Event{Type: model.EventLoginFailed, UserID: user.ID, Attributes: map[string]any{"reason": "wrong_password"}})
		return nil, ErrIncorrectLogin
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, model.Event{Type: model.EventLoginSucceeded, UserID: user.ID})
	return result, nil
}

// Refresh reissues a token for an identity that already passed Resolve.
func (s *AuthService) Refresh(ctx context.Context, identity *model.User) (*TokenResult, error) {
	if identity == nil {
		return nil, ErrCredentialsInvalid
	}

	result, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, model.Event{Type: model.EventTokenRefreshed, UserID: identity.ID})
	return result, nil
}

// Resolve turns a bearer token into the account it names. Malformed, expired,
// and orphaned tokens all fail with ErrCredentialsInvalid.
func (s *AuthService) Resolve(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrCredentialsInvalid
	}

	claims, err := s.codec.Parse(token)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, jwtutil.ErrExpired) {
			reason = "expired"
		}
		s.logger.DebugContext(ctx, "reject bearer token", "reason", reason)
		return nil, ErrCredentialsInvalid
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.DebugContext(ctx, "reject bearer token", "reason", "unknown_subject")
		return nil, ErrCredentialsInvalid
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*TokenResult, error) {
	token, err := s.codec.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token failed: %w", err)
	}
	return &TokenResult{
		AccessToken: token.Value,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}
