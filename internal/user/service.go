package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fkhayef/settleup/internal/auth"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
)

// Store is the persistence the user service needs
type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*User, error)
	Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error)
}

// Service handles accounts and login
type Service struct {
	repo Store
	jwt  *auth.JWTManager
}

// NewService creates a new user service with its dependencies injected
func NewService(repo Store, jwt *auth.JWTManager) *Service {
	return &Service{repo: repo, jwt: jwt}
}

// Signup creates an account and returns an access token for it
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Mobile:       req.Mobile,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user signed up", "user_id", user.ID)
	return s.issue(user)
}

// Login verifies credentials and returns a fresh access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) issue(user *User) (*AuthResponse, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z"),
		User:      user.ToResponse(),
	}, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update modifies the caller's profile
func (s *Service) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	user, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetNamesByIDs returns the display name of every known user in ids
func (s *Service) GetNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
