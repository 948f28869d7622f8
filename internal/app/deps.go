package app

import (
	"context"
	"log/slog"
	"time"

	"todo-api/internal/model"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

// AccountCache keeps public account views. Implementations must not store
// password hashes.
type AccountCache interface {
	GetAccount(ctx context.Context, id uint) (*model.User, bool, error)
	SetAccount(ctx context.Context, user *model.User) error
	DeleteAccount(ctx context.Context, id uint) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// Page is an offset/limit window. The zero value is not the default window,
// use DefaultPage.
type Page struct {
	Offset int
	Limit  int
}

const DefaultPageLimit = 100

func DefaultPage() Page {
	return Page{Offset: 0, Limit: DefaultPageLimit}
}

func (p Page) validate() error {
	if p.Offset < 0 || p.Limit < 0 {
		return ErrInvalidInput
	}
	return nil
}

// eventEmitter publishes audit events best-effort. A broker failure is logged
// and never fails the request that triggered it.
type eventEmitter struct {
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func newEventEmitter(publisher EventPublisher, logger *slog.Logger) *eventEmitter {
	return &eventEmitter{publisher: publisher, logger: logger, now: time.Now}
}

func (e *eventEmitter) emit(ctx context.Context, event model.Event) {
	if e.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "publish event failed", "event", event.Type, "error", err)
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
