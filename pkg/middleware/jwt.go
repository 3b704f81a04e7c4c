package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/response"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)

// Context keys for the identity a validated token carries
const (
	ContextKeyUserID    = "user_id"
	ContextKeyEmail     = "email"
	ContextKeyRole      = "role"
	ContextKeyTenantID  = "tenant_id"
	ContextKeySessionID = "session_id"
)

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// Secret key for validating JWT tokens
	Secret string
	// SkipPaths is a list of paths that should skip JWT validation
	SkipPaths []string
}

// identityClaims is the platform's access token payload. The sid claim binds
// the token to its Redis session; the guard resolves identity through it.
type identityClaims struct {
	UserID    string
	Email     string
	Role      string
	AgencyID  string
	SessionID string
}

func parseIdentity(tokenString, secret string) (*identityClaims, error) {
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id := &identityClaims{}
	if id.UserID, _ = claims["user_id"].(string); id.UserID == "" {
		return nil, ErrInvalidToken
	}
	id.Email, _ = claims["email"].(string)
	id.Role, _ = claims["role"].(string)
	id.AgencyID, _ = claims["tenant_id"].(string)
	id.SessionID, _ = claims["sid"].(string)
	return id, nil
}

// JWTMiddleware validates the bearer token and injects the identity claims
// into the request context.
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error("MISSING_TOKEN", "Authorization header is required"))
			return
		}

		const bearerPrefix = "Bearer "
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error("INVALID_TOKEN", "Invalid authorization header format"))
			return
		}

		id, err := parseIdentity(tokenString, config.Secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					response.Error("TOKEN_EXPIRED", "Access token has expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error("INVALID_TOKEN", "Invalid access token"))
			return
		}

		c.Set(ContextKeyUserID, id.UserID)
		c.Set(ContextKeyEmail, id.Email)
		c.Set(ContextKeyRole, id.Role)
		c.Set(ContextKeyTenantID, id.AgencyID)
		c.Set(ContextKeySessionID, id.SessionID)

		c.Next()
	}
}

// RequireRole allows the request through only when the validated identity
// holds one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error("UNAUTHORIZED", "User not authenticated"))
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			response.Error("FORBIDDEN", "Insufficient permissions"))
	}
}

func contextString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	return contextString(c, ContextKeyUserID)
}

// GetEmail extracts email from gin context
func GetEmail(c *gin.Context) (string, bool) {
	return contextString(c, ContextKeyEmail)
}

// GetRole extracts role from gin context
func GetRole(c *gin.Context) (string, bool) {
	return contextString(c, ContextKeyRole)
}

// GetTenantID extracts the agency ID bound to the identity, if any.
func GetTenantID(c *gin.Context) (string, bool) {
	return contextString(c, ContextKeyTenantID)
}

// GetSessionID extracts the session ID from gin context
func GetSessionID(c *gin.Context) (string, bool) {
	s, ok := contextString(c, ContextKeySessionID)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
