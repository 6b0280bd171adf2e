package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false"   json:"is_admin"`
}

// TokenBlocklistEntry records a revoked jti. Existence of the row is the
// whole revocation check; ExpiresAt is kept only so stale rows can be
// swept out of band.
type TokenBlocklistEntry struct {
	ID        uint      `gorm:"primaryKey"            json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	TokenType string    `gorm:"not null"              json:"token_type"`
	UserID    uint      `gorm:"index;not null"        json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RevokedAt time.Time `gorm:"not null"              json:"revoked_at"`
	ExpiresAt time.Time `gorm:"not null"              json:"expires_at"`
}

// PasswordResetToken holds the sha256 hex digest of a reset secret, never
// the secret itself.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey"           json:"id"`
	UserID    uint       `gorm:"index;not null"       json:"user_id"`
	User      User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TokenHash string     `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time  `gorm:"not null"             json:"created_at"`
	ExpiresAt time.Time  `gorm:"not null"             json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}

type Store struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"uniqueIndex;not null"     json:"name"`
	Items []Item `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Tags  []Tag  `gorm:"constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

type Item struct {
	ID      uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string  `gorm:"not null"                 json:"name"`
	Price   float64 `gorm:"not null"                 json:"price"`
	StoreID uint    `gorm:"index;not null"           json:"store_id"`
	Tags    []Tag   `gorm:"many2many:item_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

type Tag struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null"                 json:"name"`
	StoreID uint   `gorm:"index;not null"           json:"store_id"`
	Items   []Item `gorm:"many2many:item_tags;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}
