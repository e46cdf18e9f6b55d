package booking

import "mentorhub/internal/domain"

type CreateBookingRequest struct {
	MentorID        int64  `json:"mentor_id" binding:"required"`
	SessionDate     string `json:"session_date" binding:"required" validate:"datetime=2006-01-02"`
	StartTime       string `json:"start_time" binding:"required" validate:"datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,oneof=30 60 90 120"`
	MenteeMessage   string `json:"mentee_message"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type MeetingLinkRequest struct {
	MeetingLink string `json:"meeting_link" binding:"required,url"`
}

type SummaryRequest struct {
	SessionSummary string `json:"session_summary" binding:"required"`
}

type ConsentRequest struct {
	Consent *bool  `json:"consent" binding:"required"`
	Note    string `json:"note"`
}

type CreateSlotRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,gte=0,lte=6"`
	StartTime string `json:"start_time" binding:"required" validate:"datetime=15:04"`
	EndTime   string `json:"end_time" binding:"required" validate:"datetime=15:04"`
}

type SlotActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type BlockDateRequest struct {
	Date   string `json:"date" binding:"required" validate:"datetime=2006-01-02"`
	Reason string `json:"reason"`
}

// MyBookings splits the caller's bookings server-side so clients never
// re-derive "upcoming vs past" from local clocks.
type MyBookings struct {
	Upcoming []domain.Booking `json:"upcoming"`
	Past     []domain.Booking `json:"past"`
}

// OpenSlot is a concrete bookable window: weekly availability resolved
// against blocked dates and active bookings.
type OpenSlot struct {
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type OpenSlotsResponse struct {
	MentorID  int64      `json:"mentor_id"`
	OpenSlots []OpenSlot `json:"open_slots"`
}
