package domain

import (
	"time"
)

// Session binds an identity to a browser context. Its lifecycle is independent
// of any agency: created on sign-in, destroyed on sign-out or expiry.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AgencyID  string    `json:"agency_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionEventType identifies a change pushed on the session event stream.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "SIGNED_IN"
	SessionSignedOut SessionEventType = "SIGNED_OUT"
	SessionRefreshed SessionEventType = "TOKEN_REFRESHED"
)

// SessionEvent is pushed on every sign-in, sign-out and token refresh.
// Session is nil for SIGNED_OUT events.
type SessionEvent struct {
	Type    SessionEventType `json:"type"`
	Token   string           `json:"token,omitempty"`
	Session *Session         `json:"session,omitempty"`
}
