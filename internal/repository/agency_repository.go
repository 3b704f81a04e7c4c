package repository

import (
	"context"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

// AgencyRepository defines the interface for agency data access
type AgencyRepository interface {
	// Create creates a new agency
	Create(ctx context.Context, agency *domain.Agency) error
	// GetByID retrieves an agency by ID
	GetByID(ctx context.Context, id string) (*domain.Agency, error)
	// GetBySlug retrieves an agency by slug
	GetBySlug(ctx context.Context, slug string) (*domain.Agency, error)
	// List retrieves agencies with pagination and filters
	List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Agency, int, error)
	// Update updates an agency
	Update(ctx context.Context, agency *domain.Agency) error
	// SoftDelete soft deletes an agency
	SoftDelete(ctx context.Context, id string) error
	// ExistsBySlug checks if an agency exists with the given slug
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// UserRepository defines the interface for identity data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update updates a user
	Update(ctx context.Context, user *domain.User) error
	// UpdatePassword replaces the password hash and clears the change flag
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// Delete hard deletes a user; used to compensate a failed provisioning
	Delete(ctx context.Context, id string) error
}
