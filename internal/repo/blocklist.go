package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/stores_api/internal/models"
	"github.com/Skotchmaster/stores_api/internal/tokens"
)

// Revoke inserts a blocklist row for the token's jti. A jti that is already
// present is not an error: the insert is skipped and inserted=false reports
// the lost race, so double-logout stays benign while refresh rotation can
// reject the second writer.
func (r *Repo) Revoke(ctx context.Context, claims *tokens.Claims) (inserted bool, err error) {
	userID, err := claims.UserID()
	if err != nil {
		return false, err
	}
	entry := models.TokenBlocklistEntry{
		JTI:       claims.ID,
		TokenType: claims.Type,
		UserID:    userID,
		RevokedAt: time.Now(),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsRevoked is the hot path: an indexed point lookup on every Verify.
// Expiry is irrelevant here, the check is row existence only.
func (r *Repo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.TokenBlocklistEntry{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
