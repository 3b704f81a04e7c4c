package domain

import (
	"time"
)

// Role is the authoritative role attached to an identity at creation.
// The guard trusts it as-is and never re-derives it.
type Role string

const (
	RoleAgencyOwner Role = "AGENCY_OWNER"
	RoleProprietor  Role = "PROPRIETOR"
	RoleClient      Role = "CLIENT"
	RoleAdmin       Role = "ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAgencyOwner, RoleProprietor, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// User represents an authenticated principal (identity).
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	FirstName          string     `json:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Role               Role       `json:"role"`
	AgencyID           string     `json:"agency_id,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}
