package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrSlotUnavailable         = errors.New("slot unavailable")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotFound                = errors.New("not found")
	ErrSessionNotStarted       = errors.New("session has not started yet")
	ErrPaymentRequired         = errors.New("booking has not been paid")
	ErrSlotOverlap             = errors.New("availability slot overlaps an existing slot")
	ErrDateAlreadyBlocked      = errors.New("date is already blocked")
)
