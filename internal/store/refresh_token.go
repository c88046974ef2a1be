package store

import (
	"bitwise74/movie-api/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RefreshTokens struct {
	db *gorm.DB
}

func NewRefreshTokens(db *gorm.DB) *RefreshTokens {
	return &RefreshTokens{db: db}
}

func (s *RefreshTokens) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var t model.RefreshToken

	err := s.db.WithContext(ctx).
		Where("token = ?", token).
		First(&t).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &t, nil
}

func (s *RefreshTokens) FindByUserID(ctx context.Context, userID uint) (*model.RefreshToken, error) {
	return findByUserID(s.db.WithContext(ctx), userID)
}

// CreateIfAbsent inserts t unless the user already owns a token, and returns
// whichever row ends up stored. Two concurrent callers get the same row back.
func (s *RefreshTokens) CreateIfAbsent(ctx context.Context, t *model.RefreshToken) (*model.RefreshToken, error) {
	return createIfAbsent(s.db.WithContext(ctx), t)
}

// Replace swaps the stored token old for t in one transaction
func (s *RefreshTokens) Replace(ctx context.Context, old, t *model.RefreshToken) (*model.RefreshToken, error) {
	var stored *model.RefreshToken

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.RefreshToken{}, old.ID).Error; err != nil {
			return err
		}

		var err error
		stored, err = createIfAbsent(tx, t)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	return stored, nil
}

func (s *RefreshTokens) Delete(ctx context.Context, t *model.RefreshToken) error {
	return translate(s.db.WithContext(ctx).Delete(&model.RefreshToken{}, t.ID).Error)
}

func createIfAbsent(db *gorm.DB, t *model.RefreshToken) (*model.RefreshToken, error) {
	err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(t).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return findByUserID(db, t.UserID)
}

func findByUserID(db *gorm.DB, userID uint) (*model.RefreshToken, error) {
	var t model.RefreshToken

	err := db.
		Where("user_id = ?", userID).
		First(&t).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &t, nil
}
