package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupCORSRouter(cfg CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/api/agencies", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func corsRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/agencies", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_AgencySubdomain(t *testing.T) {
	router := setupCORSRouter(DefaultCORSConfig())

	w := corsRequest(router, http.MethodGet, "https://acme-immo.lycs-immo.com")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://acme-immo.lycs-immo.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_ExactOrigin(t *testing.T) {
	router := setupCORSRouter(DefaultCORSConfig())

	w := corsRequest(router, http.MethodGet, "http://localhost:3000")

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	router := setupCORSRouter(DefaultCORSConfig())

	w := corsRequest(router, http.MethodGet, "https://evil.example.com")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightAllowed(t *testing.T) {
	router := setupCORSRouter(DefaultCORSConfig())

	w := corsRequest(router, http.MethodOptions, "https://dakar-homes.lycs-immo.com")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_PreflightRejected(t *testing.T) {
	router := setupCORSRouter(DefaultCORSConfig())

	w := corsRequest(router, http.MethodOptions, "https://evil.example.com")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_NoOriginHeader(t *testing.T) {
	router := setupCORSRouter(DefaultCORSConfig())

	w := corsRequest(router, http.MethodGet, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig_OriginAllowed(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:        []string{"https://lycs-immo.com"},
		AllowOriginSuffixes: []string{".lycs-immo.com"},
	}

	assert.True(t, cfg.originAllowed("https://lycs-immo.com"))
	assert.True(t, cfg.originAllowed("https://acme-immo.lycs-immo.com"))
	assert.True(t, cfg.originAllowed("http://acme-immo.lycs-immo.com:8080"))
	assert.False(t, cfg.originAllowed("https://lycs-immo.com.evil.example"))
	assert.False(t, cfg.originAllowed("https://other.example"))

	wildcard := CORSConfig{AllowOrigins: []string{"*"}}
	assert.True(t, wildcard.originAllowed("https://anything.example"))
}
