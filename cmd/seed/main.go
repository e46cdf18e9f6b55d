package main

import (
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"

	"mentorhub/internal/database"
	"mentorhub/internal/domain"
	"mentorhub/internal/modules/wallet"
)

func main() {
	db, err := database.Connect("mentorhub.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}
	if err := wallet.Migrate(db); err != nil {
		log.Fatal("AutoMigrate (wallet) failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payout_transactions")
	db.Exec("DELETE FROM payout_wallets")
	db.Exec("DELETE FROM webhook_events")
	db.Exec("DELETE FROM payment_records")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM blocked_dates")
	db.Exec("DELETE FROM availability_slots")
	db.Exec("DELETE FROM users")

	// ================== MENTORS ==================
	log.Println("Creating mentors...")

	rates := []float64{45, 60, 80, 120}
	mentors := []domain.User{}
	for i := 0; i < 4; i++ {
		hash, _ := bcrypt.GenerateFromPassword([]byte("mentor123"), bcrypt.DefaultCost)
		m := domain.User{
			Email:        fmt.Sprintf("mentor%d@mentorhub.dev", i+1),
			PasswordHash: string(hash),
			Role:         domain.RoleMentor,
			Name:         gofakeit.Name(),
			HourlyRate:   rates[i],
		}
		db.Create(&m)
		mentors = append(mentors, m)
		log.Printf("Mentor created: %s (£%.0f/h)", m.Email, m.HourlyRate)
	}

	// Weekday evening slots for every mentor, plus Saturday mornings for
	// the first two.
	for _, m := range mentors {
		for day := 0; day < 5; day++ {
			db.Create(&domain.AvailabilitySlot{
				MentorID:  m.ID,
				DayOfWeek: day,
				StartTime: "18:00",
				EndTime:   "21:00",
				IsActive:  true,
			})
		}
	}
	for _, m := range mentors[:2] {
		db.Create(&domain.AvailabilitySlot{
			MentorID:  m.ID,
			DayOfWeek: 5,
			StartTime: "09:00",
			EndTime:   "12:00",
			IsActive:  true,
		})
	}

	// ================== MENTEES ==================
	log.Println("Creating mentees...")

	mentees := []domain.User{}
	for i := 0; i < 6; i++ {
		hash, _ := bcrypt.GenerateFromPassword([]byte("mentee123"), bcrypt.DefaultCost)
		u := domain.User{
			Email:        fmt.Sprintf("mentee%d@mentorhub.dev", i+1),
			PasswordHash: string(hash),
			Role:         domain.RoleMentee,
			Name:         gofakeit.Name(),
		}
		db.Create(&u)
		mentees = append(mentees, u)
	}
	log.Printf("Mentees created: %d (password mentee123)", len(mentees))

	// ================== BOOKINGS ==================
	log.Println("Creating demo bookings...")

	nextMonday := nextWeekday(time.Monday)
	now := time.Now().UTC()

	requested := domain.Booking{
		MentorID:        mentors[0].ID,
		MenteeID:        mentees[0].ID,
		SessionDate:     nextMonday,
		StartTime:       "18:00",
		EndTime:         "19:00",
		DurationMinutes: 60,
		Status:          domain.BookingRequested,
		Amount:          mentors[0].HourlyRate,
		PaymentStatus:   domain.PaymentPending,
		MenteeMessage:   "Looking for help preparing for backend interviews.",
	}
	db.Create(&requested)

	confirmed := domain.Booking{
		MentorID:        mentors[1].ID,
		MenteeID:        mentees[1].ID,
		SessionDate:     nextMonday,
		StartTime:       "19:00",
		EndTime:         "20:30",
		DurationMinutes: 90,
		Status:          domain.BookingConfirmed,
		Amount:          mentors[1].HourlyRate * 1.5,
		PaymentStatus:   domain.PaymentPending,
		ConfirmedAt:     &now,
	}
	db.Create(&confirmed)

	lastMonday := nextMonday.AddDate(0, 0, -14)
	completed := domain.Booking{
		MentorID:        mentors[1].ID,
		MenteeID:        mentees[2].ID,
		SessionDate:     lastMonday,
		StartTime:       "18:00",
		EndTime:         "19:00",
		DurationMinutes: 60,
		Status:          domain.BookingCompleted,
		Amount:          mentors[1].HourlyRate,
		PaymentStatus:   domain.PaymentPaid,
		SessionSummary:  "Reviewed CV, walked through two system design questions.",
		ConfirmedAt:     &now,
		CompletedAt:     &now,
	}
	db.Create(&completed)

	log.Println("Seed complete.")
	log.Println("Logins: mentor1@mentorhub.dev / mentor123, mentee1@mentorhub.dev / mentee123")
}

func nextWeekday(w time.Weekday) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 1)
	for d.Weekday() != w {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
