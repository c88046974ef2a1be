package security

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/pkg/util"
	"errors"
	"time"
)

const tokenSize = 32

type VerificationTokenOpts struct {
	UserID    uint
	Purpose   string
	ExpiresAt time.Time
}

// MakeVerificationToken builds an unsaved single use token for o.UserID
func MakeVerificationToken(o *VerificationTokenOpts) (*model.VerificationToken, error) {
	if o == nil {
		return nil, errors.New("no token options provided")
	}

	if o.UserID == 0 {
		return nil, errors.New("no user ID provided")
	}

	if o.Purpose == "" {
		return nil, errors.New("no token purpose provided")
	}

	if o.ExpiresAt.IsZero() {
		return nil, errors.New("no expiry provided")
	}

	token, err := util.GenerateToken(tokenSize)
	if err != nil {
		return nil, err
	}

	return &model.VerificationToken{
		UserID:    o.UserID,
		Token:     token,
		Purpose:   o.Purpose,
		ExpiresAt: o.ExpiresAt,
		CreatedAt: time.Now(),
	}, nil
}
