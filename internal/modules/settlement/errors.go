package settlement

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("not found")
	ErrAlreadyPaid             = errors.New("booking already paid")
	ErrInvalidStatusTransition = errors.New("invalid payment state for this action")
	ErrRefundNotDue            = errors.New("no refund due under the cancellation policy")

	// ErrDataIntegrity marks states that must never occur, like two
	// succeeded payment records for one booking. Logged and surfaced,
	// never auto-corrected.
	ErrDataIntegrity = errors.New("payment data integrity violation")
)
