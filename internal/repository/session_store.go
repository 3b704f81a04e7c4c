package repository

import (
	"context"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

// SessionStore defines the interface for session persistence and the
// live session event stream observed by the guard.
type SessionStore interface {
	// Save persists a session under its token with the given TTL
	Save(ctx context.Context, session *domain.Session) error
	// Get retrieves a session by token. Returns (nil, nil) when absent or expired.
	Get(ctx context.Context, token string) (*domain.Session, error)
	// Delete destroys a session and publishes a SIGNED_OUT event
	Delete(ctx context.Context, token string) error
	// Publish pushes a session event to every subscriber
	Publish(ctx context.Context, event *domain.SessionEvent) error
	// Subscribe registers a callback for session events and returns an
	// unsubscribe function. Teardown must be guaranteed on unmount to
	// avoid leaked listeners.
	Subscribe(ctx context.Context, fn func(*domain.SessionEvent)) (func(), error)
}
