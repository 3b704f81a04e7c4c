package dto

import (
	"regexp"
)

// CreateAgencyRequest represents request to onboard a new agency
type CreateAgencyRequest struct {
	Name              string                 `json:"name" binding:"required,min=2,max=255"`
	Slug              string                 `json:"slug" binding:"required,min=2,max=100"`
	OwnerID           string                 `json:"owner_id" binding:"required,uuid"`
	LogoURL           string                 `json:"logo_url" binding:"omitempty,url"`
	PrimaryColor      string                 `json:"primary_color" binding:"omitempty,max=20"`
	Settings          map[string]interface{} `json:"settings" binding:"omitempty"`
	HasImmoModule     bool                   `json:"has_immo_module"`
	HasLocativeModule bool                   `json:"has_locative_module"`
}

var slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateSlug validates slug format (lowercase alphanumeric and hyphens only)
func (r *CreateAgencyRequest) ValidateSlug() (bool, string) {
	if !slugRegex.MatchString(r.Slug) {
		return false, "Slug must contain only lowercase letters, numbers, and hyphens"
	}
	if len(r.Slug) < 2 {
		return false, "Slug must be at least 2 characters"
	}
	if len(r.Slug) > 100 {
		return false, "Slug must not exceed 100 characters"
	}
	return true, ""
}

// UpdateAgencyRequest represents request to update agency information.
// The slug is immutable and deliberately absent.
type UpdateAgencyRequest struct {
	Name              *string                 `json:"name" binding:"omitempty,min=2,max=255"`
	LogoURL           *string                 `json:"logo_url" binding:"omitempty,url"`
	PrimaryColor      *string                 `json:"primary_color" binding:"omitempty,max=20"`
	Settings          *map[string]interface{} `json:"settings" binding:"omitempty"`
	IsActive          *bool                   `json:"is_active" binding:"omitempty"`
	HasImmoModule     *bool                   `json:"has_immo_module" binding:"omitempty"`
	HasLocativeModule *bool                   `json:"has_locative_module" binding:"omitempty"`
}

// Validate validates that at least one field is provided for update
func (r *UpdateAgencyRequest) Validate() (bool, string) {
	if r.Name == nil && r.LogoURL == nil && r.PrimaryColor == nil && r.Settings == nil &&
		r.IsActive == nil && r.HasImmoModule == nil && r.HasLocativeModule == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// AgencyResponse represents agency data in response
type AgencyResponse struct {
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
	CreatedAt         string                 `json:"created_at"`
	UpdatedAt         string                 `json:"updated_at"`
}

// ListAgenciesQuery represents query parameters for listing agencies
type ListAgenciesQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	IsActive *bool  `form:"is_active" binding:"omitempty"`
	Search   string `form:"search" binding:"omitempty,max=255"`
}

// SetDefaults sets default values for query parameters
func (q *ListAgenciesQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// ListAgenciesResponse represents paginated list of agencies
type ListAgenciesResponse struct {
	Agencies   []AgencyResponse `json:"agencies"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
