package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/service"
)

// fakeAgencyService scripts agency service outcomes for handler tests.
type fakeAgencyService struct {
	agency  *dto.AgencyResponse
	list    *dto.ListAgenciesResponse
	err     error
	deleted []string
}

func (f *fakeAgencyService) Create(context.Context, *dto.CreateAgencyRequest) (*dto.AgencyResponse, error) {
	return f.agency, f.err
}

func (f *fakeAgencyService) GetByID(context.Context, string) (*dto.AgencyResponse, error) {
	return f.agency, f.err
}

func (f *fakeAgencyService) GetBySlug(context.Context, string) (*dto.AgencyResponse, error) {
	return f.agency, f.err
}

func (f *fakeAgencyService) ResolveAgency(context.Context, string) (*domain.Agency, error) {
	return nil, service.ErrAgencyNotFound
}

func (f *fakeAgencyService) List(context.Context, *dto.ListAgenciesQuery) (*dto.ListAgenciesResponse, error) {
	return f.list, f.err
}

func (f *fakeAgencyService) Update(context.Context, string, *dto.UpdateAgencyRequest) (*dto.AgencyResponse, error) {
	return f.agency, f.err
}

func (f *fakeAgencyService) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func setupAgencyRouter(svc service.AgencyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAgencyHandler(svc)
	agencies := router.Group("/api/v1/agencies")
	agencies.POST("", h.Create)
	agencies.GET("", h.List)
	agencies.GET("/:id", h.GetByID)
	agencies.GET("/slug/:slug", h.GetBySlug)
	agencies.PUT("/:id", h.Update)
	agencies.DELETE("/:id", h.Delete)
	return router
}

func acmeResponse() *dto.AgencyResponse {
	return &dto.AgencyResponse{
		ID:       "agency-1",
		Name:     "Acme Immo",
		Slug:     "acme",
		OwnerID:  "owner-1",
		IsActive: true,
	}
}

func TestAgencyHandler_Create(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{agency: acmeResponse()})

	w := doRequest(router, http.MethodPost, "/api/v1/agencies", "", gin.H{
		"name":     "Acme Immo",
		"slug":     "acme",
		"owner_id": "7b69c7b2-0d05-4f3a-9a13-0c431b3c2a01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"acme"`)
}

func TestAgencyHandler_Create_InvalidSlug(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{})

	w := doRequest(router, http.MethodPost, "/api/v1/agencies", "", gin.H{
		"name":     "Bad",
		"slug":     "Not A Slug",
		"owner_id": "7b69c7b2-0d05-4f3a-9a13-0c431b3c2a01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SLUG")
}

func TestAgencyHandler_Create_DuplicateSlug(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{err: service.ErrAgencyAlreadyExists})

	w := doRequest(router, http.MethodPost, "/api/v1/agencies", "", gin.H{
		"name":     "Acme Immo",
		"slug":     "acme",
		"owner_id": "7b69c7b2-0d05-4f3a-9a13-0c431b3c2a01",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "AGENCY_EXISTS")
}

func TestAgencyHandler_GetBySlug(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{agency: acmeResponse()})

	w := doRequest(router, http.MethodGet, "/api/v1/agencies/slug/acme", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Acme Immo"`)
}

func TestAgencyHandler_GetByID_NotFound(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{err: service.ErrAgencyNotFound})

	w := doRequest(router, http.MethodGet, "/api/v1/agencies/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAgencyHandler_List(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{list: &dto.ListAgenciesResponse{
		Agencies:   []dto.AgencyResponse{*acmeResponse()},
		TotalCount: 1,
		Page:       1,
		Limit:      20,
		TotalPages: 1,
	}})

	w := doRequest(router, http.MethodGet, "/api/v1/agencies?page=1&limit=20", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_count":1`)
}

func TestAgencyHandler_Update_NoFields(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{})

	w := doRequest(router, http.MethodPut, "/api/v1/agencies/agency-1", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_UPDATE")
}

func TestAgencyHandler_Update(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{agency: acmeResponse()})

	w := doRequest(router, http.MethodPut, "/api/v1/agencies/agency-1", "", gin.H{
		"is_active": false,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAgencyHandler_Delete(t *testing.T) {
	svc := &fakeAgencyService{}
	router := setupAgencyRouter(svc)

	w := doRequest(router, http.MethodDelete, "/api/v1/agencies/agency-1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"agency-1"}, svc.deleted)
}

func TestAgencyHandler_Delete_NotFound(t *testing.T) {
	router := setupAgencyRouter(&fakeAgencyService{err: service.ErrAgencyNotFound})

	w := doRequest(router, http.MethodDelete, "/api/v1/agencies/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
