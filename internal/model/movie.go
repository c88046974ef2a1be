package model

type Movie struct {
	ID          uint        `gorm:"primaryKey;autoIncrement"`
	Title       string      `gorm:"not null"`
	Director    string      `gorm:"not null"`
	Studio      string      `gorm:"not null"`
	MovieCast   StringSlice `gorm:"type:text"`
	ReleaseYear int         `gorm:"not null"`
	Poster      string      `gorm:"not null"`
}

// MovieDTO is the API representation of a movie. PosterURL is never stored,
// it is derived from the configured base URL when the movie is read.
type MovieDTO struct {
	MovieID     uint     `json:"movieId"`
	Title       string   `json:"title"`
	Director    string   `json:"director"`
	Studio      string   `json:"studio"`
	MovieCast   []string `json:"movieCast"`
	ReleaseYear int      `json:"releaseYear"`
	Poster      string   `json:"poster"`
	PosterURL   string   `json:"posterUrl"`
}

type MoviePage struct {
	Content       []MovieDTO `json:"movieDtos"`
	PageNumber    int        `json:"pageNumber"`
	PageSize      int        `json:"pageSize"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
	IsLast        bool       `json:"isLast"`
}
