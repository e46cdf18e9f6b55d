package settlement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mentorhub/internal/domain"
	"mentorhub/internal/lock"
)

// refundNoticeWindow is the cutoff between a full and a half refund for
// mentee-initiated cancellations, per the published cancellation policy.
const refundNoticeWindow = 24 * time.Hour

type Service struct {
	payments      paymentRepo
	bookings      bookingReader
	bookingWriter bookingPaymentWriter
	wallets       walletCreditor
	locker        lock.Locker
	loggerf       func(format string, args ...interface{})

	commissionRate float64
}

func NewService(
	payments paymentRepo,
	bookings bookingReader,
	bookingWriter bookingPaymentWriter,
	wallets walletCreditor,
	locker lock.Locker,
	commissionRate float64,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments:       payments,
		bookings:       bookings,
		bookingWriter:  bookingWriter,
		wallets:        wallets,
		locker:         locker,
		loggerf:        loggerf,
		commissionRate: commissionRate,
	}
}

// ComputeSplit divides an amount into the platform fee and the mentor
// payout. Half-penny values round up, and the two parts always sum back
// to the rounded amount.
func (s *Service) ComputeSplit(amount float64) (platformFee, mentorPayout float64) {
	platformFee = round2(amount * s.commissionRate)
	mentorPayout = round2(round2(amount) - platformFee)
	return platformFee, mentorPayout
}

// CreateIntent opens a pending payment record for the booking. Only the
// booking's mentee may pay, and a booking that already has a succeeded
// record cannot be paid again.
func (s *Service) CreateIntent(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.PaymentRecord, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.MenteeID != actor.UserID {
		return nil, ErrForbidden
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrInvalidStatusTransition
	}

	cnt, err := s.payments.CountSucceededByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if cnt > 1 {
		s.loggerf("level=error msg=multiple succeeded payment records booking_id=%d count=%d", bookingID, cnt)
		return nil, ErrDataIntegrity
	}
	if cnt == 1 {
		return nil, ErrAlreadyPaid
	}

	fee, payout := s.ComputeSplit(b.Amount)
	p := &domain.PaymentRecord{
		BookingID:        b.ID,
		Amount:           round2(b.Amount),
		Currency:         "GBP",
		PlatformFee:      fee,
		MentorPayout:     payout,
		ExternalIntentID: newIntentID(),
		Status:           domain.PaymentRecordPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=payment intent created booking_id=%d intent_id=%s amount=%.2f", b.ID, p.ExternalIntentID, p.Amount)
	return p, nil
}

// ApplyWebhook processes one provider event. Replays are no-ops at two
// layers: the event-id ledger and the status compare-and-set. Unknown
// event types are logged and acknowledged, never rejected.
func (s *Service) ApplyWebhook(ctx context.Context, event WebhookEvent) error {
	if event.ID == "" || event.Type == "" {
		return ErrValidation
	}

	intentID := event.Data.Object.ID
	key := fmt.Sprintf("settlement:intent:%s", intentID)
	if intentID == "" {
		key = fmt.Sprintf("settlement:event:%s", event.ID)
	}

	return s.locker.WithLock(ctx, key, func(ctx context.Context) error {
		firstSeen, err := s.payments.RecordWebhookEvent(ctx, event.ID, event.Type)
		if err != nil {
			return err
		}
		if !firstSeen {
			s.loggerf("level=info msg=webhook replayed, skipping event_id=%s type=%s", event.ID, event.Type)
			return nil
		}

		switch event.Type {
		case "payment_intent.succeeded":
			return s.applySucceeded(ctx, event)
		case "charge.refunded":
			return s.applyRefunded(ctx, event)
		default:
			s.loggerf("level=info msg=ignoring unknown webhook event event_id=%s type=%s", event.ID, event.Type)
			return nil
		}
	})
}

func (s *Service) applySucceeded(ctx context.Context, event WebhookEvent) error {
	intentID := event.Data.Object.ID
	p, err := s.payments.GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not ours (or arrived before the intent was stored):
			// acknowledge so the provider stops retrying.
			s.loggerf("level=warn msg=webhook for unknown intent event_id=%s intent_id=%s", event.ID, intentID)
			return nil
		}
		return err
	}

	if meta := event.Data.Object.Metadata.BookingID; meta != "" && meta != fmt.Sprintf("%d", p.BookingID) {
		s.loggerf("level=error msg=webhook metadata booking mismatch intent_id=%s record_booking_id=%d metadata_booking_id=%s", intentID, p.BookingID, meta)
		return ErrDataIntegrity
	}

	changed, err := s.payments.MarkSucceededIdempotent(ctx, intentID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !changed {
		// The record already flipped. A failure between that flip and
		// the booking update can leave the booking behind, so resync
		// instead of treating this as a plain no-op.
		b, err := s.bookings.GetByID(ctx, p.BookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus == domain.PaymentPending {
			if _, err := s.bookingWriter.UpdatePaymentStatus(ctx, p.BookingID, domain.PaymentPaid); err != nil {
				return err
			}
			s.loggerf("level=warn msg=resynced booking paid status after earlier partial webhook booking_id=%d intent_id=%s", p.BookingID, intentID)
			return nil
		}
		s.loggerf("level=info msg=payment already succeeded, webhook no-op intent_id=%s", intentID)
		return nil
	}

	if _, err := s.bookingWriter.UpdatePaymentStatus(ctx, p.BookingID, domain.PaymentPaid); err != nil {
		s.loggerf("level=error msg=failed to mark booking paid booking_id=%d err=%v", p.BookingID, err)
		return err
	}

	cnt, err := s.payments.CountSucceededByBooking(ctx, p.BookingID)
	if err == nil && cnt > 1 {
		s.loggerf("level=error msg=multiple succeeded payment records booking_id=%d count=%d", p.BookingID, cnt)
		return ErrDataIntegrity
	}

	s.loggerf("level=info msg=payment succeeded booking_id=%d intent_id=%s", p.BookingID, intentID)
	return nil
}

func (s *Service) applyRefunded(ctx context.Context, event WebhookEvent) error {
	intentID := event.Data.Object.ID
	p, err := s.payments.GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=warn msg=refund webhook for unknown intent event_id=%s intent_id=%s", event.ID, intentID)
			return nil
		}
		return err
	}

	changed, err := s.payments.MarkRefunded(ctx, intentID, p.Amount, time.Now().UTC())
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if _, err := s.bookingWriter.UpdatePaymentStatus(ctx, p.BookingID, domain.PaymentRefunded); err != nil {
		s.loggerf("level=error msg=failed to mark booking refunded booking_id=%d err=%v", p.BookingID, err)
		return err
	}
	s.loggerf("level=info msg=provider-initiated refund applied booking_id=%d intent_id=%s", p.BookingID, intentID)
	return nil
}

// Refund settles a refund for a paid booking. The mentor refunds in
// full; a mentee gets 100% with at least 24h notice before the session
// start, 50% inside the notice window, and nothing once the session has
// started.
func (s *Service) Refund(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.PaymentRecord, error) {
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
	if b.PaymentStatus != domain.PaymentPaid {
		return nil, ErrInvalidStatusTransition
	}

	percent := refundPercent(actor, b, time.Now().UTC())
	if percent == 0 {
		return nil, ErrRefundNotDue
	}

	p, err := s.payments.GetSucceededByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=error msg=paid booking has no succeeded payment record booking_id=%d", bookingID)
			return nil, ErrDataIntegrity
		}
		return nil, err
	}

	refundAmount := round2(p.Amount * float64(percent) / 100)
	if _, err := s.payments.MarkRefunded(ctx, p.ExternalIntentID, refundAmount, time.Now().UTC()); err != nil {
		return nil, err
	}
	if _, err := s.bookingWriter.UpdatePaymentStatus(ctx, bookingID, domain.PaymentRefunded); err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=refund settled booking_id=%d intent_id=%s percent=%d amount=%.2f actor_id=%d", bookingID, p.ExternalIntentID, percent, refundAmount, actor.UserID)
	return s.payments.GetByIntentID(ctx, p.ExternalIntentID)
}

// ReleasePayout credits the mentor's payout wallet after mentee consent.
// The wallet credit is idempotent per booking, so calling this twice
// cannot double-pay.
func (s *Service) ReleasePayout(ctx context.Context, bookingID int64) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if b.PaymentStatus != domain.PaymentPaid {
		return ErrInvalidStatusTransition
	}

	cnt, err := s.payments.CountSucceededByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if cnt > 1 {
		s.loggerf("level=error msg=multiple succeeded payment records booking_id=%d count=%d", bookingID, cnt)
		return ErrDataIntegrity
	}

	p, err := s.payments.GetSucceededByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=error msg=paid booking has no succeeded payment record booking_id=%d", bookingID)
			return ErrDataIntegrity
		}
		return err
	}

	ref := fmt.Sprintf("release:booking:%d", bookingID)
	if err := s.wallets.Credit(ctx, b.MentorID, pence(p.MentorPayout), ref); err != nil {
		return err
	}

	s.loggerf("level=info msg=payout released booking_id=%d mentor_id=%d payout=%.2f", bookingID, b.MentorID, p.MentorPayout)
	return nil
}

func (s *Service) GetPayment(ctx context.Context, actor domain.Actor, paymentID int64) (*domain.PaymentRecord, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if b.MentorID != actor.UserID && b.MenteeID != actor.UserID {
		return nil, ErrForbidden
	}
	return p, nil
}

func refundPercent(actor domain.Actor, b *domain.Booking, now time.Time) int {
	if actor.UserID == b.MentorID {
		return 100
	}
	start := b.StartAt()
	switch {
	case !now.After(start.Add(-refundNoticeWindow)):
		return 100
	case now.Before(start):
		return 50
	default:
		return 0
	}
}

func newIntentID() string {
	return "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func pence(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
