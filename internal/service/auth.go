package service

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/internal/store"
	"bitwise74/movie-api/pkg/validators"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService struct {
	users   UserStore
	hasher  PasswordHasher
	issuer  *TokenIssuer
	refresh *RefreshManager
}

func NewAuthService(users UserStore, h PasswordHasher, i *TokenIssuer, r *RefreshManager) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  h,
		issuer:  i,
		refresh: r,
	}
}

func (a *AuthService) respond(ctx context.Context, u *model.User) (*AuthResponse, error) {
	access, _, err := a.issuer.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token, %w", err)
	}

	rt, err := a.refresh.GetOrCreate(ctx, u.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: rt.Token,
	}, nil
}

func (a *AuthService) createUser(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error) {
	if err := validators.EmailValidator(in.Email); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	hash, err := a.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	u := &model.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "User with email %s already exists", in.Email)
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return u, nil
}

// Register creates a regular user and logs them in right away
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	u, err := a.createUser(ctx, in, model.RoleUser)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("User registered", zap.Uint("userID", u.ID))
	return a.respond(ctx, u)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found with email %s", email)
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := a.hasher.VerifyPasswd(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}

	return a.respond(ctx, u)
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself is returned unchanged.
func (a *AuthService) Refresh(ctx context.Context, token string) (*AuthResponse, error) {
	rt, err := a.refresh.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := a.users.FindByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found for refresh token")
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	access, _, err := a.issuer.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token, %w", err)
	}

	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: rt.Token,
	}, nil
}

// SeedAdmin makes sure an admin account with the given credentials exists.
// An existing user with that email is left alone.
func (a *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := a.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}

	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up admin, %w", err)
	}

	u, err := a.createUser(ctx, RegisterInput{
		Name:     "Administrator",
		Username: "admin",
		Email:    email,
		Password: password,
	}, model.RoleAdmin)
	if err != nil && !errors.Is(err, ErrConflict) {
		return err
	}

	if u != nil {
		zap.L().Info("Admin account created", zap.String("email", email))
	}

	return nil
}
