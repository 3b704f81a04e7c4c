package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

// In-memory fakes shared by the service tests.

type memoryAgencyRepo struct {
	mu        sync.Mutex
	agencies  map[string]*domain.Agency
	createErr error
}

func newMemoryAgencyRepo() *memoryAgencyRepo {
	return &memoryAgencyRepo{agencies: make(map[string]*domain.Agency)}
}

func (r *memoryAgencyRepo) Create(_ context.Context, agency *domain.Agency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *agency
	r.agencies[agency.ID] = &cp
	return nil
}

func (r *memoryAgencyRepo) GetByID(_ context.Context, id string) (*domain.Agency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agencies[id]
	if !ok || a.DeletedAt != nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memoryAgencyRepo) GetBySlug(_ context.Context, slug string) (*domain.Agency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agencies {
		if a.Slug == slug && a.DeletedAt == nil {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryAgencyRepo) List(_ context.Context, page, limit int, isActive *bool, search string) ([]*domain.Agency, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Agency
	for _, a := range r.agencies {
		if a.DeletedAt != nil {
			continue
		}
		if isActive != nil && a.IsActive != *isActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(search)) {
			continue
		}
		cp := *a
		all = append(all, &cp)
	}
	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *memoryAgencyRepo) Update(_ context.Context, agency *domain.Agency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agencies[agency.ID]; !ok {
		return errors.New("agency not found")
	}
	cp := *agency
	r.agencies[agency.ID] = &cp
	return nil
}

func (r *memoryAgencyRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agencies[id]
	if !ok {
		return errors.New("agency not found")
	}
	now := time.Now()
	a.DeletedAt = &now
	return nil
}

func (r *memoryAgencyRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agencies {
		if a.Slug == slug && a.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

type memoryUserRepo struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	deleteCalls []string
	deleteErr   error
	updateErr   error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = passwordHash
	u.MustChangePassword = false
	return nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls = append(r.deleteCalls, id)
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.users, id)
	return nil
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	events   []*domain.SessionEvent
	subs     []func(*domain.SessionEvent)
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *memorySessionStore) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.Token] = &cp
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *memorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return s.Publish(ctx, &domain.SessionEvent{Type: domain.SessionSignedOut, Token: token})
}

func (s *memorySessionStore) Publish(_ context.Context, event *domain.SessionEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	subs := append(([]func(*domain.SessionEvent))(nil), s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(event)
	}
	return nil
}

func (s *memorySessionStore) Subscribe(_ context.Context, fn func(*domain.SessionEvent)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}, nil
}

func (s *memorySessionStore) publishedEvents() []*domain.SessionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.SessionEvent(nil), s.events...)
}
