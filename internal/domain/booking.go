package domain

import "time"

type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking is a mentoring session between a mentee and a mentor.
// Rows are never deleted; completed and cancelled are kept for history.
type Booking struct {
	ID              int64         `json:"id"`
	MentorID        int64         `json:"mentor_id" validate:"required"`
	MenteeID        int64         `json:"mentee_id" validate:"required"`
	SessionDate     time.Time     `json:"session_date" gorm:"type:date"`
	StartTime       string        `json:"start_time" gorm:"type:varchar(5)"`
	EndTime         string        `json:"end_time" gorm:"type:varchar(5)"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          BookingStatus `json:"status" gorm:"type:varchar(16);default:'requested';index"`
	Amount          float64       `json:"amount"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(16);default:'pending'"`

	MenteeMessage      string `json:"mentee_message,omitempty" gorm:"type:text"`
	CancellationReason string `json:"cancellation_reason,omitempty" gorm:"type:text"`

	// Closeout: filled by the mentor after the session, gated by the
	// mentee's consent before the payout is released.
	MeetingLink               string     `json:"meeting_link,omitempty"`
	SessionSummary            string     `json:"session_summary,omitempty" gorm:"type:text"`
	SessionSummarySubmittedAt *time.Time `json:"session_summary_submitted_at,omitempty"`
	MenteeConsent             *bool      `json:"mentee_consent,omitempty"`
	MenteeConsentAt           *time.Time `json:"mentee_consent_at,omitempty"`
	MenteeConsentNote         string     `json:"mentee_consent_note,omitempty" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Mentor *User `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
	Mentee *User `json:"mentee,omitempty" gorm:"foreignKey:MenteeID"`
}

func (Booking) TableName() string { return "bookings" }

// StartAt combines session_date and start_time into a concrete instant (UTC).
func (b *Booking) StartAt() time.Time {
	return CombineDateClock(b.SessionDate, b.StartTime)
}

// EndAt is StartAt plus the session duration.
func (b *Booking) EndAt() time.Time {
	return b.StartAt().Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// CombineDateClock merges a calendar date with an "HH:MM" clock value.
// An unparseable clock yields midnight, matching how the zero value of
// start_time behaves everywhere else.
func CombineDateClock(date time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		t = time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
