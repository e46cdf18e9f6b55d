package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"mentorhub/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	if err := r.db.WithContext(ctx).Where("external_intent_id = ?", intentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CountSucceededByBooking also backs the integrity check: more than one
// succeeded record for a booking means the idempotency guard was
// bypassed somewhere, which callers treat as fatal.
func (r *PaymentRepository) CountSucceededByBooking(ctx context.Context, bookingID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.PaymentRecord{}).
		Where("booking_id = ? AND status = ?", bookingID, domain.PaymentRecordSucceeded).
		Count(&cnt).Error
	return cnt, err
}

func (r *PaymentRepository) GetSucceededByBooking(ctx context.Context, bookingID int64) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, domain.PaymentRecordSucceeded).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkSucceededIdempotent moves the record from pending to succeeded
// under a row lock. If it already succeeded, it reports changed=false
// without touching the row, so webhook replays cannot double-credit.
func (r *PaymentRepository) MarkSucceededIdempotent(ctx context.Context, intentID string, at time.Time) (changed bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.PaymentRecord
		if err := forUpdate(tx).Where("external_intent_id = ?", intentID).First(&p).Error; err != nil {
			return err
		}
		if p.Status == domain.PaymentRecordSucceeded {
			changed = false
			return nil
		}
		res := tx.Model(&domain.PaymentRecord{}).
			Where("external_intent_id = ? AND status = ?", intentID, domain.PaymentRecordPending).
			Updates(map[string]interface{}{
				"status":       domain.PaymentRecordSucceeded,
				"succeeded_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("payment record not updated")
		}
		changed = true
		return nil
	})
	return changed, err
}

// MarkRefunded moves succeeded to refunded with the refunded amount,
// again guarded so a replayed refund event is a no-op.
func (r *PaymentRepository) MarkRefunded(ctx context.Context, intentID string, refundAmount float64, at time.Time) (changed bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.PaymentRecord
		if err := forUpdate(tx).Where("external_intent_id = ?", intentID).First(&p).Error; err != nil {
			return err
		}
		if p.Status == domain.PaymentRecordRefunded {
			changed = false
			return nil
		}
		if p.Status != domain.PaymentRecordSucceeded {
			return errors.New("cannot refund a payment that has not succeeded")
		}
		res := tx.Model(&domain.PaymentRecord{}).
			Where("external_intent_id = ? AND status = ?", intentID, domain.PaymentRecordSucceeded).
			Updates(map[string]interface{}{
				"status":        domain.PaymentRecordRefunded,
				"refund_amount": refundAmount,
				"refunded_at":   at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("payment record not updated")
		}
		changed = true
		return nil
	})
	return changed, err
}

// RecordWebhookEvent inserts the provider event id and reports whether
// this is the first time the event was seen.
func (r *PaymentRepository) RecordWebhookEvent(ctx context.Context, eventID, eventType string) (firstSeen bool, err error) {
	e := domain.WebhookEvent{EventID: eventID, EventType: eventType}
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		if isUniqueConstraintError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
