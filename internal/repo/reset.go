package repo

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/models"
)

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newResetSecret() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CreateResetToken rotates the user's reset token: all unused prior tokens
// are deleted and a fresh one inserted in the same transaction, so at most
// one unused token is alive per user. Only the sha256 digest is stored; the
// returned raw value exists nowhere else.
func (r *Repo) CreateResetToken(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	raw, err := newResetSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := models.PasswordResetToken{
		UserID:    userID,
		TokenHash: hashResetToken(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND used_at IS NULL", userID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// ConsumeResetToken marks the token used and updates the owner's password
// hash atomically. Missing, already used and expired all collapse to
// ErrResetTokenInvalid so the response never reveals which one happened.
func (r *Repo) ConsumeResetToken(ctx context.Context, raw, newPasswordHash string) error {
	tokenHash := hashResetToken(raw)
	now := time.Now()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token models.PasswordResetToken
		if err := tx.Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrResetTokenInvalid
			}
			return err
		}
		if token.IsUsed() || token.IsExpired(now) {
			return apperr.ErrResetTokenInvalid
		}

		res := tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL", token.ID).
			Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race against a concurrent confirm.
			return apperr.ErrResetTokenInvalid
		}

		return tx.Model(&models.User{}).
			Where("id = ?", token.UserID).
			Update("password_hash", newPasswordHash).Error
	})
}
