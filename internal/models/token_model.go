package models

import (
	"time"

	"gorm.io/gorm"
)

type RefreshToken struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	TokenHash string         `gorm:"uniqueIndex" json:"-"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	Revoked   bool           `gorm:"default:false" json:"revoked"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
