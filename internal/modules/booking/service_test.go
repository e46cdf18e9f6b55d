package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"mentorhub/internal/domain"
	"mentorhub/internal/lock"
	"mentorhub/internal/repository"
)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateIfFree(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil && b != nil {
		b.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Mutate(ctx context.Context, id int64, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	b := args.Get(0).(*domain.Booking)
	if err := fn(b); err != nil {
		return nil, err
	}
	return b, args.Error(1)
}

func (m *MockBookingRepository) ListForUser(ctx context.Context, userID int64, role domain.UserRole, status string) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, role, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListActiveForMentorInRange(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, mentorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) CreateSlot(ctx context.Context, s *domain.AvailabilitySlot) error {
	args := m.Called(ctx, s)
	if args.Error(0) == nil && s != nil {
		s.ID = 555
	}
	return args.Error(0)
}

func (m *MockAvailabilityRepository) GetSlotByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilitySlot), args.Error(1)
}

func (m *MockAvailabilityRepository) ListSlotsByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilitySlot, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilitySlot), args.Error(1)
}

func (m *MockAvailabilityRepository) ListActiveSlotsByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilitySlot, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilitySlot), args.Error(1)
}

func (m *MockAvailabilityRepository) SetSlotActive(ctx context.Context, id int64, active bool) (*domain.AvailabilitySlot, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilitySlot), args.Error(1)
}

func (m *MockAvailabilityRepository) DeleteSlot(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) CreateBlockedDate(ctx context.Context, d *domain.BlockedDate) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) GetBlockedDate(ctx context.Context, mentorID int64, date time.Time) (*domain.BlockedDate, error) {
	args := m.Called(ctx, mentorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockedDate), args.Error(1)
}

func (m *MockAvailabilityRepository) GetBlockedDateByID(ctx context.Context, id int64) (*domain.BlockedDate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockedDate), args.Error(1)
}

func (m *MockAvailabilityRepository) ListBlockedDates(ctx context.Context, mentorID int64) ([]domain.BlockedDate, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlockedDate), args.Error(1)
}

func (m *MockAvailabilityRepository) ListBlockedDatesInRange(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.BlockedDate, error) {
	args := m.Called(ctx, mentorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlockedDate), args.Error(1)
}

func (m *MockAvailabilityRepository) DeleteBlockedDate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMentorReader struct {
	mock.Mock
}

func (m *MockMentorReader) GetMentorByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockPayoutReleaser struct {
	mock.Mock
}

func (m *MockPayoutReleaser) ReleasePayout(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func newTestService() (*Service, *MockBookingRepository, *MockAvailabilityRepository, *MockMentorReader, *MockPayoutReleaser) {
	mockBookings := new(MockBookingRepository)
	mockAvail := new(MockAvailabilityRepository)
	mockMentors := new(MockMentorReader)
	mockPayouts := new(MockPayoutReleaser)
	svc := NewService(mockBookings, mockAvail, mockMentors, mockPayouts, lock.NewMemoryLocker(), nil)
	return svc, mockBookings, mockAvail, mockMentors, mockPayouts
}

// futureMonday returns the next Monday at least a week out, so bookings
// created against it always pass the future-start check.
func futureMonday() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func TestService_Create_Success(t *testing.T) {
	svc, mockBookings, mockAvail, mockMentors, _ := newTestService()

	day := futureMonday()
	mentor := &domain.User{ID: 1, Role: domain.RoleMentor, HourlyRate: 60}
	mockMentors.On("GetMentorByID", mock.Anything, int64(1)).Return(mentor, nil)
	mockAvail.On("GetBlockedDate", mock.Anything, int64(1), day).Return(nil, gorm.ErrRecordNotFound)
	mockAvail.On("ListActiveSlotsByMentor", mock.Anything, int64(1)).Return([]domain.AvailabilitySlot{
		{ID: 5, MentorID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsActive: true},
	}, nil)
	mockBookings.On("CreateIfFree", mock.Anything, mock.Anything).Return(nil)

	actor := domain.Actor{UserID: 2, Role: domain.RoleMentee}
	b, err := svc.Create(context.Background(), actor, CreateBookingRequest{
		MentorID:        1,
		SessionDate:     day.Format("2006-01-02"),
		StartTime:       "10:00",
		DurationMinutes: 60,
	})

	assert.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, domain.BookingRequested, b.Status)
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
	assert.Equal(t, 60.0, b.Amount)
	assert.Equal(t, "11:00", b.EndTime)
	mockBookings.AssertExpectations(t)
}

func TestService_Create_SlotTaken(t *testing.T) {
	svc, mockBookings, mockAvail, mockMentors, _ := newTestService()

	day := futureMonday()
	mentor := &domain.User{ID: 1, Role: domain.RoleMentor, HourlyRate: 60}
	mockMentors.On("GetMentorByID", mock.Anything, int64(1)).Return(mentor, nil)
	mockAvail.On("GetBlockedDate", mock.Anything, int64(1), day).Return(nil, gorm.ErrRecordNotFound)
	mockAvail.On("ListActiveSlotsByMentor", mock.Anything, int64(1)).Return([]domain.AvailabilitySlot{
		{MentorID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsActive: true},
	}, nil)
	mockBookings.On("CreateIfFree", mock.Anything, mock.Anything).Return(repository.ErrSlotTaken)

	actor := domain.Actor{UserID: 2, Role: domain.RoleMentee}
	_, err := svc.Create(context.Background(), actor, CreateBookingRequest{
		MentorID:        1,
		SessionDate:     day.Format("2006-01-02"),
		StartTime:       "10:00",
		DurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestService_Create_OutsideWeeklyAvailability(t *testing.T) {
	svc, mockBookings, mockAvail, mockMentors, _ := newTestService()

	day := futureMonday()
	mentor := &domain.User{ID: 1, Role: domain.RoleMentor, HourlyRate: 60}
	mockMentors.On("GetMentorByID", mock.Anything, int64(1)).Return(mentor, nil)
	mockAvail.On("GetBlockedDate", mock.Anything, int64(1), day).Return(nil, gorm.ErrRecordNotFound)
	mockAvail.On("ListActiveSlotsByMentor", mock.Anything, int64(1)).Return([]domain.AvailabilitySlot{
		{MentorID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "10:30", IsActive: true},
	}, nil)

	actor := domain.Actor{UserID: 2, Role: domain.RoleMentee}
	_, err := svc.Create(context.Background(), actor, CreateBookingRequest{
		MentorID:        1,
		SessionDate:     day.Format("2006-01-02"),
		StartTime:       "10:00",
		DurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	mockBookings.AssertNotCalled(t, "CreateIfFree", mock.Anything, mock.Anything)
}

func TestService_Create_BlockedDate(t *testing.T) {
	svc, mockBookings, mockAvail, mockMentors, _ := newTestService()

	day := futureMonday()
	mentor := &domain.User{ID: 1, Role: domain.RoleMentor, HourlyRate: 60}
	mockMentors.On("GetMentorByID", mock.Anything, int64(1)).Return(mentor, nil)
	mockAvail.On("GetBlockedDate", mock.Anything, int64(1), day).Return(&domain.BlockedDate{ID: 7, MentorID: 1, Date: day}, nil)

	actor := domain.Actor{UserID: 2, Role: domain.RoleMentee}
	_, err := svc.Create(context.Background(), actor, CreateBookingRequest{
		MentorID:        1,
		SessionDate:     day.Format("2006-01-02"),
		StartTime:       "10:00",
		DurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	mockBookings.AssertNotCalled(t, "CreateIfFree", mock.Anything, mock.Anything)
}

func TestService_Create_MentorCannotBook(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	actor := domain.Actor{UserID: 1, Role: domain.RoleMentor}
	_, err := svc.Create(context.Background(), actor, CreateBookingRequest{
		MentorID:        1,
		SessionDate:     futureMonday().Format("2006-01-02"),
		StartTime:       "10:00",
		DurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Create_PastStartRejected(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	actor := domain.Actor{UserID: 2, Role: domain.RoleMentee}
	_, err := svc.Create(context.Background(), actor, CreateBookingRequest{
		MentorID:        1,
		SessionDate:     "2020-01-06",
		StartTime:       "10:00",
		DurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Create_CrossesMidnightRejected(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	actor := domain.Actor{UserID: 2, Role: domain.RoleMentee}
	_, err := svc.Create(context.Background(), actor, CreateBookingRequest{
		MentorID:        1,
		SessionDate:     futureMonday().Format("2006-01-02"),
		StartTime:       "23:30",
		DurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Confirm_Success(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	b := &domain.Booking{ID: 10, MentorID: 1, MenteeID: 2, Status: domain.BookingRequested}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	out, err := svc.Confirm(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleMentor}, 10)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, out.Status)
	assert.NotNil(t, out.ConfirmedAt)
}

func TestService_Confirm_WrongMentor(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	b := &domain.Booking{ID: 10, MentorID: 1, MenteeID: 2, Status: domain.BookingRequested}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.Confirm(context.Background(), domain.Actor{UserID: 99, Role: domain.RoleMentor}, 10)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, domain.BookingRequested, b.Status)
}

func TestService_Confirm_FromCancelled(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	b := &domain.Booking{ID: 10, MentorID: 1, MenteeID: 2, Status: domain.BookingCancelled}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.Confirm(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleMentor}, 10)

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestService_Cancel_ByMentee(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	b := &domain.Booking{ID: 10, MentorID: 1, MenteeID: 2, Status: domain.BookingConfirmed}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	out, err := svc.Cancel(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, "schedule clash")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, out.Status)
	assert.Equal(t, "schedule clash", out.CancellationReason)
	assert.NotNil(t, out.CancelledAt)
}

func TestService_Cancel_FromCompleted(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	b := &domain.Booking{ID: 10, MentorID: 1, MenteeID: 2, Status: domain.BookingCompleted}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.Cancel(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, "")

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestService_Complete_BeforeSessionStart(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:          domain.BookingConfirmed,
		SessionDate:     futureMonday(),
		StartTime:       "10:00",
		DurationMinutes: 60,
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.Complete(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleMentor}, 10)

	assert.ErrorIs(t, err, ErrSessionNotStarted)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
}

func TestService_Complete_AfterSessionStart(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:          domain.BookingConfirmed,
		SessionDate:     time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 60,
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	out, err := svc.Complete(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleMentor}, 10)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, out.Status)
	assert.NotNil(t, out.CompletedAt)
}

func TestService_SubmitSummary_ResetsConsent(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	declined := false
	when := time.Now().UTC()
	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:            domain.BookingCompleted,
		SessionSummary:    "first draft",
		MenteeConsent:     &declined,
		MenteeConsentAt:   &when,
		MenteeConsentNote: "too thin",
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	out, err := svc.SubmitSummary(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleMentor}, 10, "second draft with action items")

	assert.NoError(t, err)
	assert.Equal(t, "second draft with action items", out.SessionSummary)
	assert.Nil(t, out.MenteeConsent)
	assert.Nil(t, out.MenteeConsentAt)
	assert.Empty(t, out.MenteeConsentNote)
}

func TestService_MenteeConsent_ApproveReleasesPayout(t *testing.T) {
	svc, mockBookings, _, _, mockPayouts := newTestService()

	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:         domain.BookingCompleted,
		PaymentStatus:  domain.PaymentPaid,
		SessionSummary: "covered system design basics",
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)
	mockPayouts.On("ReleasePayout", mock.Anything, int64(10)).Return(nil)

	out, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, true, "")

	assert.NoError(t, err)
	assert.NotNil(t, out.MenteeConsent)
	assert.True(t, *out.MenteeConsent)
	mockPayouts.AssertExpectations(t)
}

func TestService_MenteeConsent_DeclineKeepsPayout(t *testing.T) {
	svc, mockBookings, _, _, mockPayouts := newTestService()

	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:         domain.BookingCompleted,
		PaymentStatus:  domain.PaymentPaid,
		SessionSummary: "covered system design basics",
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	out, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, false, "we never discussed my CV")

	assert.NoError(t, err)
	assert.NotNil(t, out.MenteeConsent)
	assert.False(t, *out.MenteeConsent)
	assert.Equal(t, "we never discussed my CV", out.MenteeConsentNote)
	mockPayouts.AssertNotCalled(t, "ReleasePayout", mock.Anything, mock.Anything)
}

func TestService_MenteeConsent_WithoutSummary(t *testing.T) {
	svc, mockBookings, _, _, mockPayouts := newTestService()

	b := &domain.Booking{ID: 10, MentorID: 1, MenteeID: 2, Status: domain.BookingCompleted}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, true, "")

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	mockPayouts.AssertNotCalled(t, "ReleasePayout", mock.Anything, mock.Anything)
}

func TestService_MenteeConsent_AlreadyGiven(t *testing.T) {
	svc, mockBookings, _, _, mockPayouts := newTestService()

	approved := true
	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:         domain.BookingCompleted,
		SessionSummary: "done",
		MenteeConsent:  &approved,
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, true, "")

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	mockPayouts.AssertNotCalled(t, "ReleasePayout", mock.Anything, mock.Anything)
}

func TestService_MenteeConsent_BeforePaymentRejected(t *testing.T) {
	svc, mockBookings, _, _, mockPayouts := newTestService()

	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:         domain.BookingCompleted,
		PaymentStatus:  domain.PaymentPending,
		SessionSummary: "covered system design basics",
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, true, "")

	assert.ErrorIs(t, err, ErrPaymentRequired)
	assert.Nil(t, b.MenteeConsent)
	mockPayouts.AssertNotCalled(t, "ReleasePayout", mock.Anything, mock.Anything)

	// once the payment lands the same approval goes through
	b.PaymentStatus = domain.PaymentPaid
	mockPayouts.On("ReleasePayout", mock.Anything, int64(10)).Return(nil)

	out, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, true, "")

	assert.NoError(t, err)
	assert.NotNil(t, out.MenteeConsent)
	assert.True(t, *out.MenteeConsent)
	mockPayouts.AssertExpectations(t)
}

func TestService_MenteeConsent_ReleaseFailureReopensConsent(t *testing.T) {
	svc, mockBookings, _, _, mockPayouts := newTestService()

	b := &domain.Booking{
		ID: 10, MentorID: 1, MenteeID: 2,
		Status:         domain.BookingCompleted,
		PaymentStatus:  domain.PaymentPaid,
		SessionSummary: "covered system design basics",
	}
	mockBookings.On("Mutate", mock.Anything, int64(10)).Return(b, nil)
	mockPayouts.On("ReleasePayout", mock.Anything, int64(10)).Return(errors.New("wallet unavailable")).Once()

	_, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, true, "")

	assert.Error(t, err)
	assert.Nil(t, b.MenteeConsent)
	assert.Nil(t, b.MenteeConsentAt)

	// retrying after the wallet recovers records consent and pays out
	mockPayouts.On("ReleasePayout", mock.Anything, int64(10)).Return(nil).Once()

	out, err := svc.MenteeConsent(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, 10, true, "")

	assert.NoError(t, err)
	assert.NotNil(t, out.MenteeConsent)
	assert.True(t, *out.MenteeConsent)
	mockPayouts.AssertExpectations(t)
}

func TestService_CreateSlot_Overlap(t *testing.T) {
	svc, _, mockAvail, _, _ := newTestService()

	mockAvail.On("ListActiveSlotsByMentor", mock.Anything, int64(1)).Return([]domain.AvailabilitySlot{
		{MentorID: 1, DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}, nil)

	day := 2
	_, err := svc.CreateSlot(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleMentor}, CreateSlotRequest{
		DayOfWeek: &day,
		StartTime: "11:00",
		EndTime:   "14:00",
	})

	assert.ErrorIs(t, err, ErrSlotOverlap)
	mockAvail.AssertNotCalled(t, "CreateSlot", mock.Anything, mock.Anything)
}

func TestService_CreateSlot_AdjacentAllowed(t *testing.T) {
	svc, _, mockAvail, _, _ := newTestService()

	mockAvail.On("ListActiveSlotsByMentor", mock.Anything, int64(1)).Return([]domain.AvailabilitySlot{
		{MentorID: 1, DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}, nil)
	mockAvail.On("CreateSlot", mock.Anything, mock.Anything).Return(nil)

	day := 2
	slot, err := svc.CreateSlot(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleMentor}, CreateSlotRequest{
		DayOfWeek: &day,
		StartTime: "12:00",
		EndTime:   "14:00",
	})

	assert.NoError(t, err)
	assert.True(t, slot.IsActive)
}

func TestService_MentorOpenSlots_SkipsBlockedAndBooked(t *testing.T) {
	svc, mockBookings, mockAvail, mockMentors, _ := newTestService()

	monday := futureMonday()
	nextMonday := monday.AddDate(0, 0, 7)

	mockMentors.On("GetMentorByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Role: domain.RoleMentor}, nil)
	mockAvail.On("ListActiveSlotsByMentor", mock.Anything, int64(1)).Return([]domain.AvailabilitySlot{
		{MentorID: 1, DayOfWeek: 0, StartTime: "10:00", EndTime: "11:00", IsActive: true},
	}, nil)
	// second Monday is blocked
	mockAvail.On("ListBlockedDatesInRange", mock.Anything, int64(1), monday, nextMonday).Return([]domain.BlockedDate{
		{MentorID: 1, Date: nextMonday},
	}, nil)
	// first Monday already has an overlapping confirmed booking
	mockBookings.On("ListActiveForMentorInRange", mock.Anything, int64(1), monday, nextMonday).Return([]domain.Booking{
		{MentorID: 1, SessionDate: monday, StartTime: "10:30", EndTime: "11:30", Status: domain.BookingConfirmed},
	}, nil)

	resp, err := svc.MentorOpenSlots(context.Background(), 1, monday.Format("2006-01-02"), nextMonday.Format("2006-01-02"))

	assert.NoError(t, err)
	assert.Empty(t, resp.OpenSlots)
}

func TestService_MentorOpenSlots_ReturnsFreeWindows(t *testing.T) {
	svc, mockBookings, mockAvail, mockMentors, _ := newTestService()

	monday := futureMonday()

	mockMentors.On("GetMentorByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Role: domain.RoleMentor}, nil)
	mockAvail.On("ListActiveSlotsByMentor", mock.Anything, int64(1)).Return([]domain.AvailabilitySlot{
		{MentorID: 1, DayOfWeek: 0, StartTime: "10:00", EndTime: "11:00", IsActive: true},
	}, nil)
	mockAvail.On("ListBlockedDatesInRange", mock.Anything, int64(1), monday, monday).Return([]domain.BlockedDate{}, nil)
	mockBookings.On("ListActiveForMentorInRange", mock.Anything, int64(1), monday, monday).Return([]domain.Booking{}, nil)

	resp, err := svc.MentorOpenSlots(context.Background(), 1, monday.Format("2006-01-02"), monday.Format("2006-01-02"))

	assert.NoError(t, err)
	assert.Len(t, resp.OpenSlots, 1)
	assert.Equal(t, monday.Format("2006-01-02"), resp.OpenSlots[0].Date)
	assert.Equal(t, "10:00", resp.OpenSlots[0].StartTime)
	assert.Equal(t, 60, resp.OpenSlots[0].DurationMinutes)
}

func TestService_MyBookings_SplitsUpcomingAndPast(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	lastWeek := time.Now().UTC().AddDate(0, 0, -7)
	rows := []domain.Booking{
		{ID: 1, MenteeID: 2, Status: domain.BookingConfirmed, SessionDate: day(tomorrow), StartTime: "10:00", DurationMinutes: 60},
		{ID: 2, MenteeID: 2, Status: domain.BookingCompleted, SessionDate: day(lastWeek), StartTime: "10:00", DurationMinutes: 60},
		{ID: 3, MenteeID: 2, Status: domain.BookingCancelled, SessionDate: day(tomorrow), StartTime: "12:00", DurationMinutes: 60},
	}
	mockBookings.On("ListForUser", mock.Anything, int64(2), domain.RoleMentee, "").Return(rows, nil)

	out, err := svc.MyBookings(context.Background(), domain.Actor{UserID: 2, Role: domain.RoleMentee}, "")

	assert.NoError(t, err)
	assert.Len(t, out.Upcoming, 1)
	assert.Equal(t, int64(1), out.Upcoming[0].ID)
	assert.Len(t, out.Past, 2)
}

func TestService_GetBooking_StrangerForbidden(t *testing.T) {
	svc, mockBookings, _, _, _ := newTestService()

	b := &domain.Booking{ID: 10, MentorID: 1, MenteeID: 2}
	mockBookings.On("GetByID", mock.Anything, int64(10)).Return(b, nil)

	_, err := svc.GetBooking(context.Background(), domain.Actor{UserID: 77, Role: domain.RoleMentee}, 10)

	assert.ErrorIs(t, err, ErrForbidden)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
