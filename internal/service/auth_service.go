package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password does not match")
)

// AuthServiceConfig holds token issuance settings
type AuthServiceConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	Issuer         string
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// SignIn verifies credentials, persists a session and issues a token
	SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.SignInResponse, error)
	// SignOut destroys the session bound to the token
	SignOut(ctx context.Context, token string) error
	// CurrentSession resolves a token to its identity, or (nil, nil) when
	// the session is gone
	CurrentSession(ctx context.Context, token string) (*domain.User, error)
	// ChangePassword replaces the identity's password and clears the
	// must-change flag
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	userRepo repository.UserRepository
	sessions repository.SessionStore
	config   *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, sessions repository.SessionStore, config *AuthServiceConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		config:   config,
	}
}

// SignIn verifies credentials, saves a session keyed by a fresh token and
// publishes a SIGNED_IN event on the session stream.
func (s *authService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.SignInResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	sessionID := uuid.New().String()
	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"email":     user.Email,
		"role":      string(user.Role),
		"tenant_id": user.AgencyID,
		"sid":       sessionID,
		"iss":       s.config.Issuer,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		Token:     sessionID,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		AgencyID:  user.AgencyID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	_ = s.sessions.Publish(ctx, &domain.SessionEvent{
		Type:    domain.SessionSignedIn,
		Token:   sessionID,
		Session: session,
	})

	return &dto.SignInResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenTTL.Seconds()),
		User:        toUserResponse(user),
	}, nil
}

// SignOut destroys the session. Deleting an already-absent session is not an
// error: the point is clearing residual credential state.
func (s *authService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// CurrentSession resolves a session token to the identity it binds. A missing
// or expired session returns (nil, nil); the caller classifies that absent.
func (s *authService) CurrentSession(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// ChangePassword replaces the password hash after verifying the current one.
// The must-change flag is cleared in the same statement.
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

// toUserResponse converts domain.User to dto.UserResponse
func toUserResponse(user *domain.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                 user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Phone:              user.Phone,
		Role:               string(user.Role),
		AgencyID:           user.AgencyID,
		MustChangePassword: user.MustChangePassword,
		IsActive:           user.IsActive,
	}
}
