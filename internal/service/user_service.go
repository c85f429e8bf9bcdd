package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"todo-tracker/internal/auth"
	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserUpdate carries the optional fields of an account update.
type UserUpdate struct {
	Email    string
	Password string
}

// UserService handles registration, login and account changes.
type UserService struct {
	repo            *repository.UserRepository
	hasher          *auth.PasswordHasher
	tokens          *auth.JWTManager
	defaultCategory string
}

func NewUserService(repo *repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.JWTManager, defaultCategory string) *UserService {
	if strings.TrimSpace(defaultCategory) == "" {
		defaultCategory = "General"
	}
	return &UserService{repo: repo, hasher: hasher, tokens: tokens, defaultCategory: defaultCategory}
}

// Register creates an account together with its first category.
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{Email: email, PasswordHash: hash}
	if err := s.repo.CreateWithCategory(ctx, &user, s.defaultCategory); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

func (s *UserService) Get(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, userID uint, update UserUpdate) (*model.User, error) {
	if update.Email == "" && update.Password == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	columns := map[string]any{}
	if update.Email != "" {
		email := normalizeEmail(update.Email)
		if !emailPattern.MatchString(email) {
			return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
		columns["email"] = email
	}
	if update.Password != "" {
		if err := validatePassword(update.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(update.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		columns["password_hash"] = hash
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, user, columns); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}

// validatePassword bounds the password length in bytes.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
