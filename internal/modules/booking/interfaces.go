package booking

import (
	"context"
	"time"

	"mentorhub/internal/domain"
)

// BookingRepository is the persistence surface the manager needs. All
// transitions run through Mutate, which holds a per-booking lock.
type BookingRepository interface {
	CreateIfFree(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Mutate(ctx context.Context, id int64, fn func(b *domain.Booking) error) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID int64, role domain.UserRole, status string) ([]domain.Booking, error)
	ListActiveForMentorInRange(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.Booking, error)
}

type AvailabilityRepository interface {
	CreateSlot(ctx context.Context, s *domain.AvailabilitySlot) error
	GetSlotByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error)
	ListSlotsByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilitySlot, error)
	ListActiveSlotsByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilitySlot, error)
	SetSlotActive(ctx context.Context, id int64, active bool) (*domain.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id int64) error
	CreateBlockedDate(ctx context.Context, d *domain.BlockedDate) error
	GetBlockedDate(ctx context.Context, mentorID int64, date time.Time) (*domain.BlockedDate, error)
	GetBlockedDateByID(ctx context.Context, id int64) (*domain.BlockedDate, error)
	ListBlockedDates(ctx context.Context, mentorID int64) ([]domain.BlockedDate, error)
	ListBlockedDatesInRange(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.BlockedDate, error)
	DeleteBlockedDate(ctx context.Context, id int64) error
}

// MentorReader resolves the mentor and their hourly rate for pricing.
type MentorReader interface {
	GetMentorByID(ctx context.Context, id int64) (*domain.User, error)
}

// PayoutReleaser is the settlement side of the consent gate: consent=true
// releases the mentor's payout for the booking.
type PayoutReleaser interface {
	ReleasePayout(ctx context.Context, bookingID int64) error
}
