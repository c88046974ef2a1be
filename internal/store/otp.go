package store

import (
	"bitwise74/movie-api/internal/model"
	"context"

	"gorm.io/gorm"
)

type OTPs struct {
	db *gorm.DB
}

func NewOTPs(db *gorm.DB) *OTPs {
	return &OTPs{db: db}
}

func (s *OTPs) Create(ctx context.Context, o *model.OTP) error {
	return translate(s.db.WithContext(ctx).Create(o).Error)
}

// FindByCodeAndUser returns the newest OTP matching code for userID
func (s *OTPs) FindByCodeAndUser(ctx context.Context, code int, userID uint) (*model.OTP, error) {
	var o model.OTP

	err := s.db.WithContext(ctx).
		Where("code = ? AND user_id = ?", code, userID).
		Order("id desc").
		First(&o).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &o, nil
}

func (s *OTPs) DeleteByID(ctx context.Context, id uint) error {
	return translate(s.db.WithContext(ctx).Delete(&model.OTP{}, id).Error)
}
