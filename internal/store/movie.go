package store

import (
	"bitwise74/movie-api/internal/model"
	"context"

	"gorm.io/gorm"
)

type Movies struct {
	db *gorm.DB
}

func NewMovies(db *gorm.DB) *Movies {
	return &Movies{db: db}
}

func (s *Movies) Find(ctx context.Context, id uint) (*model.Movie, error) {
	var m model.Movie

	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}

	return &m, nil
}

func (s *Movies) FindAll(ctx context.Context) ([]model.Movie, error) {
	var movies []model.Movie

	err := s.db.WithContext(ctx).
		Order("id asc").
		Find(&movies).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return movies, nil
}

// Page returns limit movies starting at offset ordered by order, plus the
// total row count. order must come from a whitelist, it is not escaped.
func (s *Movies) Page(ctx context.Context, offset, limit int, order string) ([]model.Movie, int64, error) {
	var total int64

	if err := s.db.WithContext(ctx).Model(&model.Movie{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	q := s.db.WithContext(ctx).Model(&model.Movie{})
	if order != "" {
		q = q.Order(order)
	}

	var movies []model.Movie

	err := q.
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&movies).
		Error
	if err != nil {
		return nil, 0, translate(err)
	}

	return movies, total, nil
}

func (s *Movies) Create(ctx context.Context, m *model.Movie) error {
	return translate(s.db.WithContext(ctx).Create(m).Error)
}

func (s *Movies) Save(ctx context.Context, m *model.Movie) error {
	return translate(s.db.WithContext(ctx).Save(m).Error)
}

func (s *Movies) Delete(ctx context.Context, id uint) error {
	r := s.db.WithContext(ctx).Delete(&model.Movie{}, id)
	if r.Error != nil {
		return translate(r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
