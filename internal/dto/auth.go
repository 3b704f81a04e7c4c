package dto

// SignInRequest represents a sign-in attempt
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// SignInResponse carries the issued token and the identity it binds
type SignInResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

// UserResponse represents identity data in responses
type UserResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Role               string `json:"role"`
	AgencyID           string `json:"agency_id,omitempty"`
	MustChangePassword bool   `json:"must_change_password"`
	IsActive           bool   `json:"is_active"`
}

// SessionResponse represents the current session as seen by the client
type SessionResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AgencyID  string `json:"agency_id,omitempty"`
	ExpiresAt string `json:"expires_at"`
}

// ChangePasswordRequest represents a password change for the current identity
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// CreateAgencyUserRequest provisions an identity and its agency in one call
type CreateAgencyUserRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	FirstName         string `json:"first_name" binding:"omitempty,max=100"`
	LastName          string `json:"last_name" binding:"omitempty,max=100"`
	Phone             string `json:"phone" binding:"omitempty,max=30"`
	AgencyName        string `json:"agency_name" binding:"required,min=2,max=255"`
	AgencySlug        string `json:"agency_slug" binding:"required,min=2,max=100"`
	LogoURL           string `json:"logo_url" binding:"omitempty,url"`
	PrimaryColor      string `json:"primary_color" binding:"omitempty,max=20"`
	HasImmoModule     bool   `json:"has_immo_module"`
	HasLocativeModule bool   `json:"has_locative_module"`
}

// CreateAgencyUserResponse returns the provisioned pair
type CreateAgencyUserResponse struct {
	User   *UserResponse   `json:"user"`
	Agency *AgencyResponse `json:"agency"`
}
