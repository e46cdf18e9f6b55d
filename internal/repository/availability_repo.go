package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mentorhub/internal/domain"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) CreateSlot(ctx context.Context, s *domain.AvailabilitySlot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *AvailabilityRepository) GetSlotByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error) {
	var s domain.AvailabilitySlot
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AvailabilityRepository) ListSlotsByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilitySlot, error) {
	var out []domain.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("day_of_week, start_time").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AvailabilityRepository) ListActiveSlotsByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilitySlot, error) {
	var out []domain.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("mentor_id = ? AND is_active = ?", mentorID, true).
		Order("day_of_week, start_time").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AvailabilityRepository) SetSlotActive(ctx context.Context, id int64, active bool) (*domain.AvailabilitySlot, error) {
	if err := r.db.WithContext(ctx).Model(&domain.AvailabilitySlot{}).Where("id = ?", id).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	return r.GetSlotByID(ctx, id)
}

func (r *AvailabilityRepository) DeleteSlot(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.AvailabilitySlot{}, id).Error
}

func (r *AvailabilityRepository) CreateBlockedDate(ctx context.Context, d *domain.BlockedDate) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *AvailabilityRepository) GetBlockedDate(ctx context.Context, mentorID int64, date time.Time) (*domain.BlockedDate, error) {
	var d domain.BlockedDate
	err := r.db.WithContext(ctx).
		Where("mentor_id = ? AND date = ?", mentorID, date).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *AvailabilityRepository) GetBlockedDateByID(ctx context.Context, id int64) (*domain.BlockedDate, error) {
	var d domain.BlockedDate
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *AvailabilityRepository) ListBlockedDates(ctx context.Context, mentorID int64) ([]domain.BlockedDate, error) {
	var out []domain.BlockedDate
	err := r.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("date").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AvailabilityRepository) ListBlockedDatesInRange(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.BlockedDate, error) {
	var out []domain.BlockedDate
	err := r.db.WithContext(ctx).
		Where("mentor_id = ? AND date BETWEEN ? AND ?", mentorID, from, to).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AvailabilityRepository) DeleteBlockedDate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.BlockedDate{}, id).Error
}
