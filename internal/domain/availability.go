package domain

import "time"

// AvailabilitySlot is a recurring weekly window in which a mentor accepts
// bookings. Day 0 is Monday, 6 is Sunday. The slot itself is not bookable:
// concrete open slots are resolved against blocked dates and existing
// bookings.
type AvailabilitySlot struct {
	ID        int64     `json:"id"`
	MentorID  int64     `json:"mentor_id" gorm:"index;not null"`
	DayOfWeek int       `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string    `json:"start_time" gorm:"type:varchar(5)"`
	EndTime   string    `json:"end_time" gorm:"type:varchar(5)"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AvailabilitySlot) TableName() string { return "availability_slots" }

// BlockedDate removes all of a mentor's slots for one calendar date.
type BlockedDate struct {
	ID        int64     `json:"id"`
	MentorID  int64     `json:"mentor_id" gorm:"index;not null"`
	Date      time.Time `json:"date" gorm:"type:date"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (BlockedDate) TableName() string { return "blocked_dates" }

// WeekdayIndex maps time.Weekday (Sunday=0) to the Monday-based index
// used by availability rows.
func WeekdayIndex(w time.Weekday) int {
	if w == time.Sunday {
		return 6
	}
	return int(w) - 1
}
