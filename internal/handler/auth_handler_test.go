package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/service"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/middleware"
)

const testJWTSecret = "handler-test-secret"

// fakeAuthService scripts service outcomes for handler tests.
type fakeAuthService struct {
	signInResp   *dto.SignInResponse
	signInErr    error
	signOutCalls []string
	sessionUser  *domain.User
	sessionErr   error
	changeErr    error
}

func (f *fakeAuthService) SignIn(context.Context, *dto.SignInRequest) (*dto.SignInResponse, error) {
	return f.signInResp, f.signInErr
}

func (f *fakeAuthService) SignOut(_ context.Context, token string) error {
	f.signOutCalls = append(f.signOutCalls, token)
	return nil
}

func (f *fakeAuthService) CurrentSession(context.Context, string) (*domain.User, error) {
	return f.sessionUser, f.sessionErr
}

func (f *fakeAuthService) ChangePassword(context.Context, string, *dto.ChangePasswordRequest) error {
	return f.changeErr
}

func setupAuthRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAuthHandler(svc, testJWTSecret)
	auth := router.Group("/api/v1/auth")
	auth.POST("/signin", h.SignIn)
	auth.POST("/signout", h.SignOut)
	auth.GET("/session", h.CurrentSession)
	auth.POST("/change-password", func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "user-1")
	}, h.ChangePassword)
	return router
}

func signedToken(t *testing.T, sid string) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_SignIn(t *testing.T) {
	svc := &fakeAuthService{signInResp: &dto.SignInResponse{
		AccessToken: "tok",
		ExpiresIn:   3600,
		User:        &dto.UserResponse{ID: "user-1", Email: "owner@acme.sn", Role: "AGENCY_OWNER"},
	}}
	router := setupAuthRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/signin", "", gin.H{
		"email": "owner@acme.sn", "password": "s3cretpass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"tok"`)
}

func TestAuthHandler_SignIn_BadPayload(t *testing.T) {
	router := setupAuthRouter(&fakeAuthService{})

	w := doRequest(router, http.MethodPost, "/api/v1/auth/signin", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_SignIn_InvalidCredentials(t *testing.T) {
	router := setupAuthRouter(&fakeAuthService{signInErr: service.ErrInvalidCredentials})

	w := doRequest(router, http.MethodPost, "/api/v1/auth/signin", "", gin.H{
		"email": "owner@acme.sn", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthHandler_SignIn_Inactive(t *testing.T) {
	router := setupAuthRouter(&fakeAuthService{signInErr: service.ErrUserInactive})

	w := doRequest(router, http.MethodPost, "/api/v1/auth/signin", "", gin.H{
		"email": "gone@acme.sn", "password": "s3cretpass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthHandler_SignOut(t *testing.T) {
	svc := &fakeAuthService{}
	router := setupAuthRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/signout", signedToken(t, "sid-1"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sid-1"}, svc.signOutCalls)
}

func TestAuthHandler_SignOut_NoToken(t *testing.T) {
	svc := &fakeAuthService{}
	router := setupAuthRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/signout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.signOutCalls)
}

func TestAuthHandler_SignOut_GarbageToken(t *testing.T) {
	svc := &fakeAuthService{}
	router := setupAuthRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/signout", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_CurrentSession(t *testing.T) {
	svc := &fakeAuthService{sessionUser: &domain.User{
		ID: "user-1", Email: "owner@acme.sn",
		Role: domain.RoleAgencyOwner, AgencyID: "agency-1", IsActive: true,
	}}
	router := setupAuthRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/auth/session", signedToken(t, "sid-1"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, w.Body.String(), `"role":"AGENCY_OWNER"`)
}

func TestAuthHandler_CurrentSession_Gone(t *testing.T) {
	router := setupAuthRouter(&fakeAuthService{sessionUser: nil})

	w := doRequest(router, http.MethodGet, "/api/v1/auth/session", signedToken(t, "sid-stale"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	router := setupAuthRouter(&fakeAuthService{})

	w := doRequest(router, http.MethodPost, "/api/v1/auth/change-password", "", gin.H{
		"current_password": "oldpassword",
		"new_password":     "newpassword1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_ChangePassword_WrongCurrent(t *testing.T) {
	router := setupAuthRouter(&fakeAuthService{changeErr: service.ErrWrongPassword})

	w := doRequest(router, http.MethodPost, "/api/v1/auth/change-password", "", gin.H{
		"current_password": "nope",
		"new_password":     "newpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "WRONG_PASSWORD")
}

func TestAuthHandler_ChangePassword_ShortNewPassword(t *testing.T) {
	router := setupAuthRouter(&fakeAuthService{})

	w := doRequest(router, http.MethodPost, "/api/v1/auth/change-password", "", gin.H{
		"current_password": "oldpassword",
		"new_password":     "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
