package service

import (
	"bitwise74/movie-api/internal/model"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

type Claims struct {
	Role model.Role `json:"role"`
	Type string     `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 access tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    utcNow,
	}
}

// Issue returns a signed token for u with sub set to the user's email
func (i *TokenIssuer) Issue(u *model.User) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: u.Role,
		Type: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, exp, nil
}

// Parse accepts a token only if it's an HS256 access token with a valid
// signature that hasn't expired yet
func (i *TokenIssuer) Parse(token string) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, newError(ErrUnauthorized, "Authorization token expired. Please log in again")
		}

		return nil, newError(ErrUnauthorized, "Authorization token invalid")
	}

	if claims.Type != accessTokenType || claims.Subject == "" {
		return nil, newError(ErrUnauthorized, "Authorization token invalid")
	}

	return &claims, nil
}
