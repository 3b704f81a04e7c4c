package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/service"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/response"
)

// AgencyHandler handles agency management HTTP requests
type AgencyHandler struct {
	agencyService service.AgencyService
}

// NewAgencyHandler creates a new AgencyHandler
func NewAgencyHandler(agencyService service.AgencyService) *AgencyHandler {
	return &AgencyHandler{agencyService: agencyService}
}

// Create handles agency onboarding
// POST /api/v1/agencies
func (h *AgencyHandler) Create(c *gin.Context) {
	var req dto.CreateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	// Validate slug format
	if valid, msg := req.ValidateSlug(); !valid {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_SLUG", msg))
		return
	}

	result, err := h.agencyService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrAgencyAlreadyExists) {
			c.JSON(http.StatusConflict, response.Error("AGENCY_EXISTS", "Agency with this slug already exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles retrieving an agency by ID
// GET /api/v1/agencies/:id
func (h *AgencyHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Agency ID is required"))
		return
	}

	result, err := h.agencyService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAgencyNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Agency not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// GetBySlug handles retrieving an agency by slug
// GET /api/v1/agencies/slug/:slug
func (h *AgencyHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Slug is required"))
		return
	}

	result, err := h.agencyService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrAgencyNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Agency not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// List handles retrieving all agencies with pagination
// GET /api/v1/agencies
func (h *AgencyHandler) List(c *gin.Context) {
	var query dto.ListAgenciesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.agencyService.List(c.Request.Context(), &query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Update handles agency update
// PUT /api/v1/agencies/:id
func (h *AgencyHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Agency ID is required"))
		return
	}

	var req dto.UpdateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	// Validate that at least one field is provided
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_UPDATE", msg))
		return
	}

	result, err := h.agencyService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrAgencyNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Agency not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Delete handles agency soft deletion
// DELETE /api/v1/agencies/:id
func (h *AgencyHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Agency ID is required"))
		return
	}

	err := h.agencyService.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAgencyNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Agency not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Agency deleted successfully"}))
}
