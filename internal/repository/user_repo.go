package repository

import (
	"context"

	"gorm.io/gorm"

	"mentorhub/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetMentorByID returns the user only when it actually is a mentor, so
// callers get a single not-found path for "no such user" and "not a mentor".
func (r *UserRepository) GetMentorByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, domain.RoleMentor).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
