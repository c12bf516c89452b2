package events

import (
	"time"

	"github.com/spec-kit/accounts-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated         EventType = "user_created"
	EventUserDeleted         EventType = "user_deleted"
	EventUserPasswordChanged EventType = "user_password_changed"
	EventUserLoggedIn        EventType = "user_logged_in"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Email   string      `json:"email"`
	Role    domain.Role `json:"role"`
	IsAdmin bool        `json:"is_admin"`
	Source  string      `json:"source"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	Email string `json:"email,omitempty"`
	Self  bool   `json:"self"`
}
