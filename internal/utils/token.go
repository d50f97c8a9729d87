package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/Kyz7/hub/internal/models"
	"gorm.io/gorm"
)

const refreshTokenTTL = 7 * 24 * time.Hour

func GenerateRefreshToken(db *gorm.DB, userID uint) (string, error) {
	rawToken := RandomString(64)

	rt := models.RefreshToken{
		UserID:    userID,
		TokenHash: HashToken(rawToken),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}

	return rawToken, nil
}

// ConsumeRefreshToken revokes the token and reports whether it was live.
func ConsumeRefreshToken(db *gorm.DB, userID uint, token string) bool {
	result := db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND token_hash = ? AND revoked = ? AND expires_at > ?",
			userID, HashToken(token), false, time.Now()).
		Update("revoked", true)

	return result.RowsAffected == 1
}

func RefreshTokenPair(db *gorm.DB, userID uint, oldToken string) (string, string, error) {
	if !ConsumeRefreshToken(db, userID, oldToken) {
		return "", "", fmt.Errorf("invalid or expired refresh token")
	}

	var user models.User
	if err := db.Preload("Role").First(&user, userID).Error; err != nil {
		return "", "", fmt.Errorf("user not found")
	}
	if !user.IsActive() {
		return "", "", fmt.Errorf("user account is not active")
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	accessToken, err := GenerateJWT(user.ID, roleName)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %v", err)
	}

	newRefreshToken, err := GenerateRefreshToken(db, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %v", err)
	}

	return accessToken, newRefreshToken, nil
}

func RandomString(length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		result[i] = chars[num.Int64()]
	}
	return string(result)
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
