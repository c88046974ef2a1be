package service

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/internal/storage"
	"bitwise74/movie-api/internal/store"
	"bitwise74/movie-api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"go.uber.org/zap"
)

const maxPageSize = 100

// Sortable columns keyed by their JSON name
var sortColumns = map[string]string{
	"movieId":     "id",
	"title":       "title",
	"director":    "director",
	"studio":      "studio",
	"releaseYear": "release_year",
}

type MovieInput struct {
	Title       string   `json:"title"`
	Director    string   `json:"director"`
	Studio      string   `json:"studio"`
	MovieCast   []string `json:"movieCast"`
	ReleaseYear int      `json:"releaseYear"`
	Poster      string   `json:"poster"`
}

func (in *MovieInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return newError(ErrValidation, "Please provide movie's title!")
	case strings.TrimSpace(in.Director) == "":
		return newError(ErrValidation, "Please provide movie's director!")
	case strings.TrimSpace(in.Studio) == "":
		return newError(ErrValidation, "Please provide movie's studio!")
	case in.ReleaseYear <= 0:
		return newError(ErrValidation, "Please provide movie's release year!")
	}

	return nil
}

// Poster is an uploaded poster file ready to be stored under Name
type Poster struct {
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string
}

type Catalog struct {
	movies  MovieStore
	posters storage.PosterStore
	baseURL string
}

func NewCatalog(movies MovieStore, posters storage.PosterStore, baseURL string) *Catalog {
	return &Catalog{
		movies:  movies,
		posters: posters,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Catalog) toDTO(m *model.Movie) model.MovieDTO {
	cast := []string(m.MovieCast)
	if cast == nil {
		cast = []string{}
	}

	return model.MovieDTO{
		MovieID:     m.ID,
		Title:       m.Title,
		Director:    m.Director,
		Studio:      m.Studio,
		MovieCast:   cast,
		ReleaseYear: m.ReleaseYear,
		Poster:      m.Poster,
		PosterURL:   c.baseURL + "/file/" + m.Poster,
	}
}

func (c *Catalog) find(ctx context.Context, id uint) (*model.Movie, error) {
	m, err := c.movies.Find(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "Movie not found with id = %d", id)
		}

		return nil, fmt.Errorf("failed to look up movie, %w", err)
	}

	return m, nil
}

func (c *Catalog) storePoster(ctx context.Context, p *Poster) error {
	if err := validators.PosterNameValidator(p.Name); err != nil {
		return newError(ErrValidation, "%s", err.Error())
	}

	exists, err := c.posters.Exists(ctx, p.Name)
	if err != nil {
		return fmt.Errorf("failed to check poster, %w", err)
	}

	if exists {
		return newError(ErrConflict, "File already exists! Please enter another file name!")
	}

	if err := c.posters.Store(ctx, p.Name, p.Content, p.Size, p.ContentType); err != nil {
		return fmt.Errorf("failed to store poster, %w", err)
	}

	return nil
}

// Add stores the poster and then the movie row. The poster is removed again
// when the row can't be inserted.
func (c *Catalog) Add(ctx context.Context, in MovieInput, p *Poster) (*model.MovieDTO, error) {
	if p == nil {
		return nil, newError(ErrValidation, "File is empty! Please send another file!")
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	if err := c.storePoster(ctx, p); err != nil {
		return nil, err
	}

	m := &model.Movie{
		Title:       in.Title,
		Director:    in.Director,
		Studio:      in.Studio,
		MovieCast:   in.MovieCast,
		ReleaseYear: in.ReleaseYear,
		Poster:      p.Name,
	}

	if err := c.movies.Create(ctx, m); err != nil {
		if derr := c.posters.Delete(ctx, p.Name); derr != nil {
			zap.L().Error("Failed to remove poster after failed insert", zap.String("poster", p.Name), zap.Error(derr))
		}

		return nil, fmt.Errorf("failed to create movie, %w", err)
	}

	dto := c.toDTO(m)
	return &dto, nil
}

func (c *Catalog) Get(ctx context.Context, id uint) (*model.MovieDTO, error) {
	m, err := c.find(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := c.toDTO(m)
	return &dto, nil
}

func (c *Catalog) List(ctx context.Context) ([]model.MovieDTO, error) {
	movies, err := c.movies.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies, %w", err)
	}

	out := make([]model.MovieDTO, 0, len(movies))
	for i := range movies {
		out = append(out, c.toDTO(&movies[i]))
	}

	return out, nil
}

// Update overwrites every field of movie id. With a nil poster the current
// poster file is kept, otherwise it is swapped for p. A new poster name is
// stored before the row is saved and the old file is removed afterwards.
func (c *Catalog) Update(ctx context.Context, id uint, in MovieInput, p *Poster) (*model.MovieDTO, error) {
	m, err := c.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	old := m.Poster
	if p != nil {
		if p.Name == old {
			// Same name, the file has to go before it can be written again
			if err := c.posters.Delete(ctx, old); err != nil {
				return nil, err
			}
		}

		if err := c.storePoster(ctx, p); err != nil {
			return nil, err
		}

		m.Poster = p.Name
	}

	m.Title = in.Title
	m.Director = in.Director
	m.Studio = in.Studio
	m.MovieCast = in.MovieCast
	m.ReleaseYear = in.ReleaseYear

	if err := c.movies.Save(ctx, m); err != nil {
		if p != nil && p.Name != old {
			if derr := c.posters.Delete(ctx, p.Name); derr != nil {
				zap.L().Error("Failed to remove poster after failed update", zap.String("poster", p.Name), zap.Error(derr))
			}
		}

		return nil, fmt.Errorf("failed to update movie, %w", err)
	}

	if p != nil && p.Name != old {
		if err := c.posters.Delete(ctx, old); err != nil {
			zap.L().Warn("Failed to remove replaced poster", zap.String("poster", old), zap.Error(err))
		}
	}

	dto := c.toDTO(m)
	return &dto, nil
}

func (c *Catalog) Delete(ctx context.Context, id uint) (string, error) {
	m, err := c.find(ctx, id)
	if err != nil {
		return "", err
	}

	if err := c.posters.Delete(ctx, m.Poster); err != nil {
		return "", err
	}

	if err := c.movies.Delete(ctx, m.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", newError(ErrNotFound, "Movie not found with id = %d", id)
		}

		return "", fmt.Errorf("failed to delete movie, %w", err)
	}

	return fmt.Sprintf("Movie deleted with id = %d", id), nil
}

// ListPaged returns page (0 based) of size movies in insertion order
func (c *Catalog) ListPaged(ctx context.Context, page, size int) (*model.MoviePage, error) {
	return c.page(ctx, page, size, "")
}

// ListPagedSorted is ListPaged ordered by sortBy. Only dir "asc" (any case)
// sorts ascending.
func (c *Catalog) ListPagedSorted(ctx context.Context, page, size int, sortBy, dir string) (*model.MoviePage, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		return nil, newError(ErrValidation, "Cannot sort movies by %q", sortBy)
	}

	order := col + " desc"
	if strings.EqualFold(dir, "asc") {
		order = col + " asc"
	}

	return c.page(ctx, page, size, order)
}

func (c *Catalog) page(ctx context.Context, page, size int, order string) (*model.MoviePage, error) {
	if page < 0 {
		return nil, newError(ErrValidation, "Page number can't be negative")
	}

	if size < 1 {
		return nil, newError(ErrValidation, "Page size must be at least 1")
	}

	size = min(size, maxPageSize)

	if page > math.MaxInt/size {
		return nil, newError(ErrValidation, "Page number is too large")
	}

	movies, total, err := c.movies.Page(ctx, page*size, size, order)
	if err != nil {
		return nil, fmt.Errorf("failed to page movies, %w", err)
	}

	content := make([]model.MovieDTO, 0, len(movies))
	for i := range movies {
		content = append(content, c.toDTO(&movies[i]))
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	return &model.MoviePage{
		Content:       content,
		PageNumber:    page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		IsLast:        page+1 >= totalPages,
	}, nil
}
