package guard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/logger"
)

// SessionState is the observable state of the current session.
type SessionState int

const (
	// SessionLoading: the initial fetch has not settled yet.
	SessionLoading SessionState = iota
	// SessionPresent: an identity is bound to this context.
	SessionPresent
	// SessionAbsent: no session, or the session was signed out.
	SessionAbsent
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionPresent:
		return "present"
	case SessionAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// SessionSnapshot is one observed value of the session. Identity is non-nil
// only when State is SessionPresent.
type SessionSnapshot struct {
	State    SessionState
	Identity *domain.User
}

// SessionFetcher resolves a persisted session token to its identity and
// clears credential state on sign-out.
type SessionFetcher interface {
	// CurrentSession returns the identity bound to the token, or (nil, nil)
	// when the token resolves to nothing.
	CurrentSession(ctx context.Context, token string) (*domain.User, error)
	// SignOut destroys whatever the token still points at.
	SignOut(ctx context.Context, token string) error
}

// SessionEvents is the live update stream of sign-in/sign-out/refresh events.
type SessionEvents interface {
	Subscribe(ctx context.Context, fn func(*domain.SessionEvent)) (func(), error)
}

// SessionProvider reconciles an initial fetch of a persisted session against
// the live event stream, exposing the result as an observable snapshot.
// A stale persisted session is never trusted once a sign-out event for its
// token is observed.
type SessionProvider struct {
	fetcher SessionFetcher
	events  SessionEvents

	mu       sync.RWMutex
	token    string
	snapshot SessionSnapshot
	watchers map[int]func(SessionSnapshot)
	nextID   int
	// epoch is bumped on every observed sign-out. A fetch started before the
	// bump carries a stale view and must not overwrite the Absent snapshot.
	epoch uint64

	ctx         context.Context
	unsubscribe func()
	closeOnce   sync.Once
}

// NewSessionProvider creates a provider in the loading state. Nothing is
// observed until Start.
func NewSessionProvider(fetcher SessionFetcher, events SessionEvents) *SessionProvider {
	return &SessionProvider{
		fetcher:  fetcher,
		events:   events,
		snapshot: SessionSnapshot{State: SessionLoading},
		watchers: make(map[int]func(SessionSnapshot)),
	}
}

// Start subscribes to the event stream and runs the initial fetch. The
// subscription is taken out first so an event racing the fetch is not lost.
// If the fetch yields no session, any residual credential state for the token
// is proactively cleared so a dead session cannot silently resume.
func (p *SessionProvider) Start(ctx context.Context, token string) error {
	p.mu.Lock()
	p.token = token
	p.ctx = ctx
	p.mu.Unlock()

	unsubscribe, err := p.events.Subscribe(ctx, p.onEvent)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.unsubscribe = unsubscribe
	p.mu.Unlock()

	p.refetch(ctx, token)
	return nil
}

func (p *SessionProvider) refetch(ctx context.Context, token string) {
	if token == "" {
		p.setSnapshot(SessionSnapshot{State: SessionAbsent})
		return
	}

	p.mu.RLock()
	started := p.epoch
	p.mu.RUnlock()

	identity, err := p.fetcher.CurrentSession(ctx, token)
	if err != nil {
		// A failed fetch is logged and classified absent; it never blocks
		// the guard from settling.
		logger.Warn("session fetch failed", zap.Error(err))
		p.commit(started, SessionSnapshot{State: SessionAbsent})
		return
	}

	if identity == nil {
		if err := p.fetcher.SignOut(ctx, token); err != nil {
			logger.Warn("clearing residual session state failed", zap.Error(err))
		}
		p.commit(started, SessionSnapshot{State: SessionAbsent})
		return
	}

	p.commit(started, SessionSnapshot{State: SessionPresent, Identity: identity})
}

func (p *SessionProvider) onEvent(event *domain.SessionEvent) {
	p.mu.RLock()
	token := p.token
	ctx := p.ctx
	p.mu.RUnlock()

	switch event.Type {
	case domain.SessionSignedOut:
		if event.Token == "" || event.Token == token {
			p.mu.Lock()
			p.epoch++
			p.mu.Unlock()
			p.setSnapshot(SessionSnapshot{State: SessionAbsent})
		}
	case domain.SessionSignedIn, domain.SessionRefreshed:
		if event.Session != nil && event.Session.Token == token {
			p.refetch(ctx, token)
		}
	}
}

// commit writes a fetch result unless a sign-out arrived while the fetch was
// in flight. The stale result is discarded so a signed-out session can never
// be resurrected by a slow initial fetch.
func (p *SessionProvider) commit(started uint64, snapshot SessionSnapshot) {
	p.mu.Lock()
	if p.epoch != started {
		p.mu.Unlock()
		return
	}
	p.snapshot = snapshot
	watchers := make([]func(SessionSnapshot), 0, len(p.watchers))
	for _, fn := range p.watchers {
		watchers = append(watchers, fn)
	}
	p.mu.Unlock()

	for _, fn := range watchers {
		fn(snapshot)
	}
}

func (p *SessionProvider) setSnapshot(snapshot SessionSnapshot) {
	p.mu.Lock()
	p.snapshot = snapshot
	watchers := make([]func(SessionSnapshot), 0, len(p.watchers))
	for _, fn := range p.watchers {
		watchers = append(watchers, fn)
	}
	p.mu.Unlock()

	for _, fn := range watchers {
		fn(snapshot)
	}
}

// Snapshot returns the current observed session value.
func (p *SessionProvider) Snapshot() SessionSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Watch registers an observer called on every snapshot change and returns its
// unsubscribe function.
func (p *SessionProvider) Watch(fn func(SessionSnapshot)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

// Close tears down the event subscription. Safe to call more than once;
// teardown must be guaranteed to avoid leaked listeners across navigations.
func (p *SessionProvider) Close() {
	p.closeOnce.Do(func() {
		p.mu.RLock()
		unsubscribe := p.unsubscribe
		p.mu.RUnlock()
		if unsubscribe != nil {
			unsubscribe()
		}
	})
}
