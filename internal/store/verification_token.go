package store

import (
	"bitwise74/movie-api/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type VerificationTokens struct {
	db *gorm.DB
}

func NewVerificationTokens(db *gorm.DB) *VerificationTokens {
	return &VerificationTokens{db: db}
}

func (s *VerificationTokens) Create(ctx context.Context, t *model.VerificationToken) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *VerificationTokens) Find(ctx context.Context, userID uint, token, purpose string) (*model.VerificationToken, error) {
	var t model.VerificationToken

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token = ? AND purpose = ?", userID, token, purpose).
		First(&t).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &t, nil
}

// ConsumeAndSetPassword marks the token used and overwrites the owner's
// password hash. Losing a race against another consumer yields ErrNotFound.
func (s *VerificationTokens) ConsumeAndSetPassword(ctx context.Context, t *model.VerificationToken, hash string, now time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := tx.Model(&model.VerificationToken{}).
			Where("id = ? AND used = ?", t.ID, false).
			Updates(map[string]any{
				"used":    true,
				"used_at": now,
			})
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		r = tx.Model(&model.User{}).
			Where("id = ?", t.UserID).
			Update("password_hash", hash)
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})

	return translate(err)
}

// DeleteStale removes tokens that expired or were already used before now
func (s *VerificationTokens) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	r := s.db.WithContext(ctx).
		Where("expires_at < ? OR used = ?", now, true).
		Delete(&model.VerificationToken{})

	return r.RowsAffected, translate(r.Error)
}
