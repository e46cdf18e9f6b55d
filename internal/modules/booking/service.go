package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"mentorhub/internal/domain"
	"mentorhub/internal/lock"
	"mentorhub/internal/repository"
)

type Service struct {
	bookings     BookingRepository
	availability AvailabilityRepository
	mentors      MentorReader
	payouts      PayoutReleaser
	locker       lock.Locker
	loggerf      func(format string, args ...interface{})
}

func NewService(
	bookings BookingRepository,
	availability AvailabilityRepository,
	mentors MentorReader,
	payouts PayoutReleaser,
	locker lock.Locker,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings:     bookings,
		availability: availability,
		mentors:      mentors,
		payouts:      payouts,
		locker:       locker,
		loggerf:      loggerf,
	}
}

// Create books a session for the calling mentee. The window must sit
// inside one of the mentor's active weekly slots, not touch a blocked
// date, and not overlap an active booking.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error) {
	if !actor.IsMentee() {
		return nil, ErrForbidden
	}

	date, err := parseDate(req.SessionDate)
	if err != nil {
		return nil, ErrValidation
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, ErrValidation
	}
	// Sessions may not cross midnight; "24:00" is not a valid clock value.
	end := start + req.DurationMinutes
	if end >= 24*60 {
		return nil, ErrValidation
	}

	startAt := domain.CombineDateClock(date, req.StartTime)
	if !startAt.After(time.Now().UTC()) {
		return nil, ErrValidation
	}

	mentor, err := s.mentors.GetMentorByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	amount := round2(mentor.HourlyRate * float64(req.DurationMinutes) / 60)
	if amount <= 0 {
		return nil, ErrValidation
	}

	if _, err := s.availability.GetBlockedDate(ctx, mentor.ID, date); err == nil {
		return nil, ErrSlotUnavailable
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	slots, err := s.availability.ListActiveSlotsByMentor(ctx, mentor.ID)
	if err != nil {
		return nil, err
	}
	if !coveredByWeeklySlot(slots, domain.WeekdayIndex(date.Weekday()), start, end) {
		return nil, ErrSlotUnavailable
	}

	b := &domain.Booking{
		MentorID:        mentor.ID,
		MenteeID:        actor.UserID,
		SessionDate:     date,
		StartTime:       req.StartTime,
		EndTime:         clockString(end),
		DurationMinutes: req.DurationMinutes,
		Status:          domain.BookingRequested,
		Amount:          amount,
		PaymentStatus:   domain.PaymentPending,
		MenteeMessage:   req.MenteeMessage,
	}

	// Serialize competing create() calls for the same mentor/day; the
	// repository repeats the overlap check inside its transaction.
	key := fmt.Sprintf("booking:mentor:%d:%s", mentor.ID, req.SessionDate)
	err = s.locker.WithLock(ctx, key, func(ctx context.Context) error {
		return s.bookings.CreateIfFree(ctx, b)
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) || errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	s.loggerf("level=info msg=booking created booking_id=%d mentor_id=%d mentee_id=%d date=%s start=%s", b.ID, b.MentorID, b.MenteeID, req.SessionDate, req.StartTime)
	return b, nil
}

// Confirm moves requested to confirmed. Only the assigned mentor may call.
func (s *Service) Confirm(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	return s.mutate(ctx, bookingID, func(b *domain.Booking) error {
		if b.MentorID != actor.UserID {
			return ErrForbidden
		}
		if b.Status != domain.BookingRequested {
			return ErrInvalidStatusTransition
		}
		now := time.Now().UTC()
		b.Status = domain.BookingConfirmed
		b.ConfirmedAt = &now
		return nil
	})
}

// Cancel moves requested or confirmed to cancelled. Either party may
// cancel; a paid booking carries a refund obligation settled separately.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, bookingID int64, reason string) (*domain.Booking, error) {
	b, err := s.mutate(ctx, bookingID, func(b *domain.Booking) error {
		if b.MentorID != actor.UserID && b.MenteeID != actor.UserID {
			return ErrForbidden
		}
		if b.Status != domain.BookingRequested && b.Status != domain.BookingConfirmed {
			return ErrInvalidStatusTransition
		}
		now := time.Now().UTC()
		b.Status = domain.BookingCancelled
		b.CancelledAt = &now
		b.CancellationReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == domain.PaymentPaid {
		s.loggerf("level=info msg=cancelled paid booking, refund due booking_id=%d actor_id=%d", b.ID, actor.UserID)
	}
	return b, nil
}

// Complete moves confirmed to completed. Only the mentor may call, and
// only once the session start has passed.
func (s *Service) Complete(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	return s.mutate(ctx, bookingID, func(b *domain.Booking) error {
		if b.MentorID != actor.UserID {
			return ErrForbidden
		}
		if b.Status != domain.BookingConfirmed {
			return ErrInvalidStatusTransition
		}
		if time.Now().UTC().Before(b.StartAt()) {
			return ErrSessionNotStarted
		}
		now := time.Now().UTC()
		b.Status = domain.BookingCompleted
		b.CompletedAt = &now
		return nil
	})
}

// SetMeetingLink is valid while confirmed or completed; it never changes
// the status.
func (s *Service) SetMeetingLink(ctx context.Context, actor domain.Actor, bookingID int64, link string) (*domain.Booking, error) {
	return s.mutate(ctx, bookingID, func(b *domain.Booking) error {
		if b.MentorID != actor.UserID {
			return ErrForbidden
		}
		if b.Status != domain.BookingConfirmed && b.Status != domain.BookingCompleted {
			return ErrInvalidStatusTransition
		}
		b.MeetingLink = link
		return nil
	})
}

// SubmitSummary records the mentor's session summary. Every submission
// re-opens the consent cycle: prior consent is always cleared.
func (s *Service) SubmitSummary(ctx context.Context, actor domain.Actor, bookingID int64, summary string) (*domain.Booking, error) {
	return s.mutate(ctx, bookingID, func(b *domain.Booking) error {
		if b.MentorID != actor.UserID {
			return ErrForbidden
		}
		if b.Status != domain.BookingConfirmed && b.Status != domain.BookingCompleted {
			return ErrInvalidStatusTransition
		}
		now := time.Now().UTC()
		b.SessionSummary = summary
		b.SessionSummarySubmittedAt = &now
		b.MenteeConsent = nil
		b.MenteeConsentAt = nil
		b.MenteeConsentNote = ""
		return nil
	})
}

// MenteeConsent records the mentee's verdict on the submitted summary.
// Approval requires the booking to be paid and releases the mentor
// payout; decline leaves the payment paid until the mentor re-engages
// with a new summary. If the release fails the consent is rolled back
// so the mentee can retry once the payout path recovers.
func (s *Service) MenteeConsent(ctx context.Context, actor domain.Actor, bookingID int64, consent bool, note string) (*domain.Booking, error) {
	b, err := s.mutate(ctx, bookingID, func(b *domain.Booking) error {
		if b.MenteeID != actor.UserID {
			return ErrForbidden
		}
		if b.Status != domain.BookingCompleted || b.SessionSummary == "" || b.MenteeConsent != nil {
			return ErrInvalidStatusTransition
		}
		if consent && b.PaymentStatus != domain.PaymentPaid {
			return ErrPaymentRequired
		}
		now := time.Now().UTC()
		v := consent
		b.MenteeConsent = &v
		b.MenteeConsentAt = &now
		b.MenteeConsentNote = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	if consent {
		if err := s.payouts.ReleasePayout(ctx, b.ID); err != nil {
			s.loggerf("level=error msg=payout release failed after consent booking_id=%d err=%v", b.ID, err)
			if _, rerr := s.bookings.Mutate(ctx, b.ID, func(b *domain.Booking) error {
				b.MenteeConsent = nil
				b.MenteeConsentAt = nil
				b.MenteeConsentNote = ""
				return nil
			}); rerr != nil {
				s.loggerf("level=error msg=failed to reopen consent after release failure booking_id=%d err=%v", b.ID, rerr)
			}
			return nil, fmt.Errorf("payout release failed, consent not recorded: %w", err)
		}
	}
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.MentorID != actor.UserID && b.MenteeID != actor.UserID {
		return nil, ErrForbidden
	}
	return b, nil
}

// MyBookings returns the caller's bookings split into upcoming and past
// by the session end instant.
func (s *Service) MyBookings(ctx context.Context, actor domain.Actor, status string) (*MyBookings, error) {
	rows, err := s.bookings.ListForUser(ctx, actor.UserID, actor.Role, status)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := &MyBookings{Upcoming: []domain.Booking{}, Past: []domain.Booking{}}
	for _, b := range rows {
		if b.EndAt().After(now) && !b.Status.IsTerminal() {
			out.Upcoming = append(out.Upcoming, b)
		} else {
			out.Past = append(out.Past, b)
		}
	}
	return out, nil
}

// ===== availability management (mentor only) =====

func (s *Service) CreateSlot(ctx context.Context, actor domain.Actor, req CreateSlotRequest) (*domain.AvailabilitySlot, error) {
	if !actor.IsMentor() {
		return nil, ErrForbidden
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, ErrValidation
	}
	end, err := parseClock(req.EndTime)
	if err != nil || end <= start {
		return nil, ErrValidation
	}

	existing, err := s.availability.ListActiveSlotsByMentor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for _, slot := range existing {
		if slot.DayOfWeek != *req.DayOfWeek {
			continue
		}
		es, _ := parseClock(slot.StartTime)
		ee, _ := parseClock(slot.EndTime)
		if start < ee && end > es {
			return nil, ErrSlotOverlap
		}
	}

	slot := &domain.AvailabilitySlot{
		MentorID:  actor.UserID,
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  true,
	}
	if err := s.availability.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Service) MySlots(ctx context.Context, actor domain.Actor) ([]domain.AvailabilitySlot, error) {
	if !actor.IsMentor() {
		return nil, ErrForbidden
	}
	return s.availability.ListSlotsByMentor(ctx, actor.UserID)
}

func (s *Service) SetSlotActive(ctx context.Context, actor domain.Actor, slotID int64, active bool) (*domain.AvailabilitySlot, error) {
	slot, err := s.availability.GetSlotByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if slot.MentorID != actor.UserID {
		return nil, ErrForbidden
	}
	return s.availability.SetSlotActive(ctx, slotID, active)
}

func (s *Service) DeleteSlot(ctx context.Context, actor domain.Actor, slotID int64) error {
	slot, err := s.availability.GetSlotByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if slot.MentorID != actor.UserID {
		return ErrForbidden
	}
	return s.availability.DeleteSlot(ctx, slotID)
}

func (s *Service) BlockDate(ctx context.Context, actor domain.Actor, req BlockDateRequest) (*domain.BlockedDate, error) {
	if !actor.IsMentor() {
		return nil, ErrForbidden
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrValidation
	}

	if _, err := s.availability.GetBlockedDate(ctx, actor.UserID, date); err == nil {
		return nil, ErrDateAlreadyBlocked
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	d := &domain.BlockedDate{MentorID: actor.UserID, Date: date, Reason: req.Reason}
	if err := s.availability.CreateBlockedDate(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) MyBlockedDates(ctx context.Context, actor domain.Actor) ([]domain.BlockedDate, error) {
	if !actor.IsMentor() {
		return nil, ErrForbidden
	}
	return s.availability.ListBlockedDates(ctx, actor.UserID)
}

func (s *Service) UnblockDate(ctx context.Context, actor domain.Actor, id int64) error {
	d, err := s.availability.GetBlockedDateByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if d.MentorID != actor.UserID {
		return ErrForbidden
	}
	return s.availability.DeleteBlockedDate(ctx, id)
}

// MentorOpenSlots resolves a mentor's weekly availability against blocked
// dates and active bookings over a date range.
func (s *Service) MentorOpenSlots(ctx context.Context, mentorID int64, fromStr, toStr string) (*OpenSlotsResponse, error) {
	from, err := parseDate(fromStr)
	if err != nil {
		return nil, ErrValidation
	}
	to, err := parseDate(toStr)
	if err != nil || to.Before(from) {
		return nil, ErrValidation
	}

	if _, err := s.mentors.GetMentorByID(ctx, mentorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	slots, err := s.availability.ListActiveSlotsByMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	resp := &OpenSlotsResponse{MentorID: mentorID, OpenSlots: []OpenSlot{}}
	if len(slots) == 0 {
		return resp, nil
	}

	blocked, err := s.availability.ListBlockedDatesInRange(ctx, mentorID, from, to)
	if err != nil {
		return nil, err
	}
	blockedSet := make(map[string]bool, len(blocked))
	for _, d := range blocked {
		blockedSet[d.Date.Format("2006-01-02")] = true
	}

	bookings, err := s.bookings.ListActiveForMentorInRange(ctx, mentorID, from, to)
	if err != nil {
		return nil, err
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		dayKey := day.Format("2006-01-02")
		if blockedSet[dayKey] {
			continue
		}
		weekday := domain.WeekdayIndex(day.Weekday())

		for _, slot := range slots {
			if slot.DayOfWeek != weekday {
				continue
			}
			ss, _ := parseClock(slot.StartTime)
			se, _ := parseClock(slot.EndTime)

			taken := false
			for _, b := range bookings {
				if b.SessionDate.Format("2006-01-02") != dayKey {
					continue
				}
				bs, _ := parseClock(b.StartTime)
				be, _ := parseClock(b.EndTime)
				if bs < se && be > ss {
					taken = true
					break
				}
			}
			if taken {
				continue
			}

			resp.OpenSlots = append(resp.OpenSlots, OpenSlot{
				Date:            dayKey,
				StartTime:       slot.StartTime,
				EndTime:         slot.EndTime,
				DurationMinutes: se - ss,
			})
		}
	}
	return resp, nil
}

func (s *Service) mutate(ctx context.Context, bookingID int64, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	b, err := s.bookings.Mutate(ctx, bookingID, fn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func coveredByWeeklySlot(slots []domain.AvailabilitySlot, weekday, start, end int) bool {
	for _, slot := range slots {
		if slot.DayOfWeek != weekday {
			continue
		}
		ss, err := parseClock(slot.StartTime)
		if err != nil {
			continue
		}
		se, err := parseClock(slot.EndTime)
		if err != nil {
			continue
		}
		if ss <= start && end <= se {
			return true
		}
	}
	return false
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseClock converts "HH:MM" to minutes from midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func clockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
