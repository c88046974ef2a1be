package store

import (
	"bitwise74/movie-api/internal/model"
	"context"

	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (s *Users) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User

	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

// Create inserts u. A second user with the same email fails with ErrDuplicate.
func (s *Users) Create(ctx context.Context, u *model.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Users) UpdatePassword(ctx context.Context, email, hash string) error {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Update("password_hash", hash)
	if r.Error != nil {
		return translate(r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
