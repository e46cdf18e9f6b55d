package domain

import "time"

type PaymentRecordStatus string

const (
	PaymentRecordPending   PaymentRecordStatus = "pending"
	PaymentRecordSucceeded PaymentRecordStatus = "succeeded"
	PaymentRecordRefunded  PaymentRecordStatus = "refunded"
)

// PaymentRecord tracks one payment attempt for a booking. The split is
// computed up front; external_intent_id is the idempotency key shared
// with the payment provider.
type PaymentRecord struct {
	ID               int64               `json:"id"`
	BookingID        int64               `json:"booking_id" gorm:"index;not null"`
	Amount           float64             `json:"amount"`
	Currency         string              `json:"currency" gorm:"type:varchar(3);default:'GBP'"`
	PlatformFee      float64             `json:"platform_fee"`
	MentorPayout     float64             `json:"mentor_payout"`
	ExternalIntentID string              `json:"external_intent_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Status           PaymentRecordStatus `json:"status" gorm:"type:varchar(16);default:'pending';index"`
	RefundAmount     float64             `json:"refund_amount,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	SucceededAt      *time.Time          `json:"succeeded_at,omitempty"`
	RefundedAt       *time.Time          `json:"refunded_at,omitempty"`
}

func (PaymentRecord) TableName() string { return "payment_records" }

// WebhookEvent records provider event ids so replays are no-ops.
type WebhookEvent struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id" gorm:"type:varchar(128);uniqueIndex;not null"`
	EventType  string    `json:"event_type" gorm:"type:varchar(64)"`
	ReceivedAt time.Time `json:"received_at" gorm:"autoCreateTime"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
