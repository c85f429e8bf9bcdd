package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"todo-tracker/internal/model"
)

// PasswordResetRepository stores password reset tokens by hash.
type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	token.ExpiresAt = token.ExpiresAt.UTC()
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

// FindValid returns the token with the given hash unless it expired at now.
func (r *PasswordResetRepository) FindValid(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error) {
	return findValidToken(r.db.WithContext(ctx), tokenHash, now)
}

// Consume sets the owner's password hash and drops all of the owner's
// tokens in one transaction, so a token works at most once.
func (r *PasswordResetRepository) Consume(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (uint, error) {
	var userID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := findValidToken(tx, tokenHash, now)
		if err != nil {
			return err
		}

		updated := tx.Model(&model.User{}).Where("id = ?", token.UserID).Update("password_hash", passwordHash)
		if err := updated.Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if updated.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Where("user_id = ?", token.UserID).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("delete reset tokens: %w", err)
		}
		userID = token.UserID
		return nil
	})
	return userID, err
}

// DeleteExpired removes tokens that expired before now.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&model.PasswordResetToken{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return result.RowsAffected, nil
}

func findValidToken(db *gorm.DB, tokenHash string, now time.Time) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	err := db.Where("token_hash = ? AND expires_at > ?", tokenHash, now.UTC()).First(&token).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}
