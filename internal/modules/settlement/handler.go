package settlement

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mentorhub/internal/middleware"
	"mentorhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/intents", h.CreateIntent)
	rg.GET("/payments/:id", h.GetPayment)
	rg.POST("/bookings/:id/refund", h.Refund)
}

// RegisterWebhookRoutes mounts the provider-facing endpoint, which is
// authenticated by the provider's delivery channel, not by user JWTs.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.Webhook)
}

func (h *Handler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "booking_id is required")
		return
	}

	p, err := h.service.CreateIntent(c.Request.Context(), middleware.ActorFrom(c), req.BookingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	p, serr := h.service.GetPayment(c.Request.Context(), middleware.ActorFrom(c), id)
	if serr != nil {
		h.respondError(c, serr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) Refund(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	p, serr := h.service.Refund(c.Request.Context(), middleware.ActorFrom(c), id)
	if serr != nil {
		h.respondError(c, serr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) Webhook(c *gin.Context) {
	var event WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed webhook event")
		return
	}

	if err := h.service.ApplyWebhook(c.Request.Context(), event); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "received"})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment parameters")
	case ErrForbidden:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action")
	case ErrNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case ErrAlreadyPaid:
		response.Error(c, http.StatusConflict, "ALREADY_PAID", "This booking has already been paid")
	case ErrInvalidStatusTransition:
		response.Error(c, http.StatusConflict, "INVALID_STATE_TRANSITION", "Action is not valid in the current payment status")
	case ErrRefundNotDue:
		response.Error(c, http.StatusConflict, "REFUND_NOT_DUE", "No refund is due under the cancellation policy")
	case ErrDataIntegrity:
		response.Error(c, http.StatusInternalServerError, "DATA_INTEGRITY", "Payment records are inconsistent; the incident has been logged")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}
