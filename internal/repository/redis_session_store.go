package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/logger"
)

const (
	sessionKeyPrefix    = "session:"
	sessionEventChannel = "session:events"
)

// RedisSessionStore implements SessionStore on Redis. Sessions are keyed by
// token with a TTL matching their expiry; events fan out on a pub/sub channel
// so every gateway instance observes sign-ins and sign-outs.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a new RedisSessionStore
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Save persists a session under its token with a TTL derived from ExpiresAt
func (s *RedisSessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session.Token == "" {
		return errors.New("session token is empty")
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.Token, payload, ttl).Err()
}

// Get retrieves a session by token. Returns (nil, nil) when the key is
// missing, which covers both "never existed" and "expired".
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	session := &domain.Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete destroys a session and publishes a SIGNED_OUT event
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return err
	}
	return s.Publish(ctx, &domain.SessionEvent{
		Type:  domain.SessionSignedOut,
		Token: token,
	})
}

// Publish pushes a session event on the shared channel
func (s *RedisSessionStore) Publish(ctx context.Context, event *domain.SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, sessionEventChannel, payload).Err()
}

// Subscribe registers a callback for session events. The returned function
// closes the subscription; the receive goroutine exits when the channel drains.
func (s *RedisSessionStore) Subscribe(ctx context.Context, fn func(*domain.SessionEvent)) (func(), error) {
	sub := s.client.Subscribe(ctx, sessionEventChannel)

	// Wait for the subscription to be confirmed before returning, so a
	// caller never misses events published right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	ch := sub.Channel()
	go func() {
		for msg := range ch {
			event := &domain.SessionEvent{}
			if err := json.Unmarshal([]byte(msg.Payload), event); err != nil {
				logger.Warn("dropping malformed session event")
				continue
			}
			fn(event)
		}
	}()

	return func() { _ = sub.Close() }, nil
}
