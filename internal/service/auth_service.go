package service

import (
	"context"
	"errors"
	"strings"

	"eventify-backend/internal/model"
	"eventify-backend/internal/repository"
	apperrors "eventify-backend/pkg/app_errors"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, error)
	// Login returns ErrUserNotFound for an unknown email and ErrInvalidCredentials for a bad password.
	Login(ctx context.Context, req model.LoginRequest) (*model.User, error)
	GetUser(ctx context.Context, id int) (*model.User, error)
}

type AuthServiceImpl struct {
	users      repository.UserRepository
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, bcryptCost int) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{users: users, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthServiceImpl) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)

	return s.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hashed,
		AuthProvider: model.AuthProviderManual,
	})
}

func (s *AuthServiceImpl) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	err = bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) GetUser(ctx context.Context, id int) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}
