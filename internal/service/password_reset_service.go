package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"todo-tracker/internal/auth"
	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
)

const resetTokenTTL = 30 * time.Minute

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// LogMailer writes reset links to the log instead of sending mail.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.logger.InfoContext(ctx, "password reset requested", "to", to, "link", link)
	return nil
}

// PasswordResetService issues and redeems emailed password reset tokens.
type PasswordResetService struct {
	users       *repository.UserRepository
	tokens      *repository.PasswordResetRepository
	hasher      *auth.PasswordHasher
	mailer      Mailer
	frontendURL string
	now         func() time.Time
}

func NewPasswordResetService(users *repository.UserRepository, tokens *repository.PasswordResetRepository, hasher *auth.PasswordHasher, mailer Mailer, frontendURL string) *PasswordResetService {
	return &PasswordResetService{
		users:       users,
		tokens:      tokens,
		hasher:      hasher,
		mailer:      mailer,
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
		now:         time.Now,
	}
}

// RequestReset mails a reset link if email belongs to an account. Unknown
// addresses succeed silently and send nothing.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.tokens.Create(ctx, &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().Add(resetTokenTTL),
	}); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.resetLink(token)); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// Verify reports whether token can still be redeemed.
func (s *PasswordResetService) Verify(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	if _, err := s.tokens.FindValid(ctx, hashResetToken(token), s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return nil
}

// Reset sets a new password for the token's owner and spends the token.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.tokens.Consume(ctx, hashResetToken(token), s.now(), hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return nil
}

// PurgeExpired drops tokens nobody can redeem anymore.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

func (s *PasswordResetService) resetLink(token string) string {
	return s.frontendURL + "/auth/reset-password?token=" + url.QueryEscape(token)
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}
