package model

import "time"

const (
	EventUserCreated    = "user.created"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventLoginSucceeded = "auth.login.succeeded"
	EventLoginFailed    = "auth.login.failed"
	EventTokenRefreshed = "auth.token.refreshed"
	EventTodoCreated    = "todo.created"
	EventTodoUpdated    = "todo.updated"
	EventTodoDeleted    = "todo.deleted"
)

// Event is an audit record published after a state change or login attempt.
// It never carries passwords, hashes or tokens.
type Event struct {
	Type       string         `json:"type"`
	UserID     uint           `json:"user_id,omitempty"`
	ResourceID uint           `json:"resource_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
