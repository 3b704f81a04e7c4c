package mailer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/response"
)

// Handler exposes the mailer over HTTP
type Handler struct {
	service *Service
}

// NewHandler creates a new mailer Handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the mailer endpoints
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	api.POST("/send-email", h.SendEmail)
	api.POST("/send-bulk-email", h.SendBulkEmail)
}

// SendEmail handles a single transactional email
// POST /api/send-email
func (h *Handler) SendEmail(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if err := h.service.Send(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error("SEND_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Email sent"}))
}

// SendBulkEmail handles a personalized bulk send
// POST /api/send-bulk-email
func (h *Handler) SendBulkEmail(c *gin.Context) {
	var req dto.SendBulkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result := h.service.SendBulk(c.Request.Context(), &req)

	// Partial failure still returns 200: per-recipient outcomes are in the
	// body and the caller treats the batch as fire-and-forget.
	c.JSON(http.StatusOK, response.Success(result))
}
