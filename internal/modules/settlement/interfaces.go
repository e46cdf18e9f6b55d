package settlement

import (
	"context"
	"time"

	"mentorhub/internal/domain"
)

type paymentRepo interface {
	Create(ctx context.Context, p *domain.PaymentRecord) error
	GetByID(ctx context.Context, id int64) (*domain.PaymentRecord, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.PaymentRecord, error)
	GetSucceededByBooking(ctx context.Context, bookingID int64) (*domain.PaymentRecord, error)
	CountSucceededByBooking(ctx context.Context, bookingID int64) (int64, error)
	MarkSucceededIdempotent(ctx context.Context, intentID string, at time.Time) (changed bool, err error)
	MarkRefunded(ctx context.Context, intentID string, refundAmount float64, at time.Time) (changed bool, err error)
	RecordWebhookEvent(ctx context.Context, eventID, eventType string) (firstSeen bool, err error)
}

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// bookingPaymentWriter flips only the payment axis of a booking.
type bookingPaymentWriter interface {
	UpdatePaymentStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (*domain.Booking, error)
}

// walletCreditor credits a mentor's payout wallet. Credits are
// idempotent per reference, so a repeated release cannot double-pay.
type walletCreditor interface {
	Credit(ctx context.Context, userID int64, amountPence int64, reference string) error
}
