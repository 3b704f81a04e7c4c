package domain

import (
	"time"
)

// Agency represents an onboarded real-estate agency in the multi-tenant system.
// The slug is immutable and addresses the agency in every portal URL.
type Agency struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Slug              string                 `json:"slug"`
	OwnerID           string                 `json:"owner_id"`
	LogoURL           string                 `json:"logo_url,omitempty"`
	PrimaryColor      string                 `json:"primary_color,omitempty"`
	Settings          map[string]interface{} `json:"settings,omitempty"`
	IsActive          bool                   `json:"is_active"`
	HasImmoModule     bool                   `json:"has_immo_module"`
	HasLocativeModule bool                   `json:"has_locative_module"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	DeletedAt         *time.Time             `json:"deleted_at,omitempty"` // Soft delete support
}

// IsOwnedBy reports whether the given identity administratively owns the agency.
func (a *Agency) IsOwnedBy(userID string) bool {
	return userID != "" && a.OwnerID == userID
}
