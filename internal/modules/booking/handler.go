package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mentorhub/internal/middleware"
	"mentorhub/internal/pkg/response"
	"mentorhub/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the JWT-protected booking and availability routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/my", h.MyBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id/confirm", h.ConfirmBooking)
	rg.PATCH("/bookings/:id/cancel", h.CancelBooking)
	rg.PATCH("/bookings/:id/complete", h.CompleteBooking)
	rg.PUT("/bookings/:id/meeting-link", h.SetMeetingLink)
	rg.POST("/bookings/:id/summary", h.SubmitSummary)
	rg.POST("/bookings/:id/consent", h.MenteeConsent)

	rg.POST("/availability", h.CreateSlot)
	rg.GET("/availability/my", h.MySlots)
	rg.PATCH("/availability/:id", h.SetSlotActive)
	rg.DELETE("/availability/:id", h.DeleteSlot)

	rg.POST("/blocked-dates", h.BlockDate)
	rg.GET("/blocked-dates/my", h.MyBlockedDates)
	rg.DELETE("/blocked-dates/:id", h.UnblockDate)
}

// RegisterPublicRoutes mounts routes that need no authentication.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/mentors/:id/slots", h.MentorOpenSlots)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking parameters", fields)
		return
	}

	b, err := h.service.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) MyBookings(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", "requested", "confirmed", "completed", "cancelled":
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status filter")
		return
	}

	out, err := h.service.MyBookings(c.Request.Context(), middleware.ActorFrom(c), status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.Confirm(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), middleware.ActorFrom(c), id, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CompleteBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.Complete(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) SetMeetingLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req MeetingLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "meeting_link must be a valid URL")
		return
	}

	b, err := h.service.SetMeetingLink(c.Request.Context(), middleware.ActorFrom(c), id, req.MeetingLink)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) SubmitSummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "session_summary is required")
		return
	}

	b, err := h.service.SubmitSummary(c.Request.Context(), middleware.ActorFrom(c), id, req.SessionSummary)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) MenteeConsent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "consent is required")
		return
	}

	b, err := h.service.MenteeConsent(c.Request.Context(), middleware.ActorFrom(c), id, *req.Consent, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid slot parameters", fields)
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

func (h *Handler) MySlots(c *gin.Context) {
	slots, err := h.service.MySlots(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) SetSlotActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SlotActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "is_active is required")
		return
	}

	slot, err := h.service.SetSlotActive(c.Request.Context(), middleware.ActorFrom(c), id, *req.IsActive)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSlot(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) BlockDate(c *gin.Context) {
	var req BlockDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date", fields)
		return
	}

	d, err := h.service.BlockDate(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"blocked_date": d})
}

func (h *Handler) MyBlockedDates(c *gin.Context) {
	dates, err := h.service.MyBlockedDates(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"blocked_dates": dates})
}

func (h *Handler) UnblockDate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.UnblockDate(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MentorOpenSlots(c *gin.Context) {
	mentorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid mentor id")
		return
	}

	out, serr := h.service.MentorOpenSlots(c.Request.Context(), mentorID, c.Query("from"), c.Query("to"))
	if serr != nil {
		h.respondError(c, serr)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking parameters")
	case ErrSlotUnavailable:
		response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "The requested time slot is not available")
	case ErrForbidden:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action")
	case ErrInvalidStatusTransition:
		response.Error(c, http.StatusConflict, "INVALID_STATE_TRANSITION", "Action is not valid in the current booking status")
	case ErrPaymentRequired:
		response.Error(c, http.StatusConflict, "PAYMENT_REQUIRED", "The booking must be paid before the payout can be released")
	case ErrSessionNotStarted:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Session has not started yet")
	case ErrSlotOverlap:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Slot overlaps an existing availability slot")
	case ErrDateAlreadyBlocked:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "This date is already blocked")
	case ErrNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}
