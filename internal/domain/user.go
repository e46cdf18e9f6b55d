package domain

import "time"

type UserRole string

const (
	RoleMentor UserRole = "mentor"
	RoleMentee UserRole = "mentee"
)

// User carries the identity and pricing data this service needs.
// Registration, login and profile editing live in the external
// profile/auth service; rows here are synced or seeded.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Name         string    `json:"name"`
	HourlyRate   float64   `json:"hourly_rate,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of an operation, extracted from JWT
// claims by the middleware and passed explicitly into services.
type Actor struct {
	UserID int64
	Role   UserRole
}

func (a Actor) IsMentor() bool { return a.Role == RoleMentor }
func (a Actor) IsMentee() bool { return a.Role == RoleMentee }
