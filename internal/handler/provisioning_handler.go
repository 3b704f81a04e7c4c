package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/service"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/response"
)

// ProvisioningHandler handles agency onboarding requests from the admin console
type ProvisioningHandler struct {
	provisioning service.ProvisioningService
}

// NewProvisioningHandler creates a new ProvisioningHandler
func NewProvisioningHandler(provisioning service.ProvisioningService) *ProvisioningHandler {
	return &ProvisioningHandler{provisioning: provisioning}
}

// CreateAgencyUser provisions an owner identity and its agency in one call
// POST /api/v1/admin/create-agency-user
func (h *ProvisioningHandler) CreateAgencyUser(c *gin.Context) {
	var req dto.CreateAgencyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.provisioning.CreateAgencyUser(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, response.Error("EMAIL_EXISTS", "User with this email already exists"))
			return
		}
		if errors.Is(err, service.ErrAgencyAlreadyExists) {
			c.JSON(http.StatusConflict, response.Error("AGENCY_EXISTS", "Agency with this slug already exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}
