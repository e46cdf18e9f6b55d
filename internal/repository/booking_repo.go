package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"mentorhub/internal/domain"
)

// ErrSlotTaken is returned by CreateIfFree when an active booking
// already occupies the requested window.
var ErrSlotTaken = errors.New("slot already taken")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// activeStatuses are the statuses that block a mentor's time window.
// Cancelled bookings never block re-booking of the same window.
var activeStatuses = []domain.BookingStatus{domain.BookingRequested, domain.BookingConfirmed}

// CreateIfFree inserts the booking only if no active booking overlaps
// the same mentor/date/window. Check and insert run in one transaction
// so concurrent create() calls cannot both pass the check.
func (r *BookingRepository) CreateIfFree(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		err := forUpdate(tx.Model(&domain.Booking{})).
			Where("mentor_id = ? AND session_date = ? AND status IN ?", b.MentorID, b.SessionDate, activeStatuses).
			Where("start_time < ? AND end_time > ?", b.EndTime, b.StartTime).
			Count(&cnt).Error
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrSlotTaken
		}

		if err := tx.Create(b).Error; err != nil {
			if pgErr, ok := err.(*pgconn.PgError); ok && (pgErr.Code == "23505" || pgErr.Code == "23P01") {
				return ErrSlotTaken
			}
			return err
		}
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Mutate applies fn to the booking under a per-row lock, persisting the
// result in the same transaction. All status transitions go through
// here so two concurrent actors cannot interleave.
func (r *BookingRepository) Mutate(ctx context.Context, id int64, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	var out domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&out, id).Error; err != nil {
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePaymentStatus flips only the payment axis; the booking status
// axis is owned by the booking service.
func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (*domain.Booking, error) {
	return r.Mutate(ctx, bookingID, func(b *domain.Booking) error {
		b.PaymentStatus = status
		return nil
	})
}

func (r *BookingRepository) ListForUser(ctx context.Context, userID int64, role domain.UserRole, status string) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if role == domain.RoleMentor {
		q = q.Where("mentor_id = ?", userID)
	} else {
		q = q.Where("mentee_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var out []domain.Booking
	if err := q.Order("session_date DESC, start_time DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveForMentorInRange returns the requested/confirmed bookings
// that occupy the mentor's calendar between the two dates (inclusive).
func (r *BookingRepository) ListActiveForMentorInRange(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("mentor_id = ? AND session_date BETWEEN ? AND ? AND status IN ?", mentorID, from, to, activeStatuses).
		Order("session_date, start_time").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
