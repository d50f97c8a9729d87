package auth

import (
	"errors"

	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user account is not active")
)

func issueTokens(db *gorm.DB, user *models.User) (string, string, error) {
	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	accessToken, err := utils.GenerateJWT(user.ID, roleName)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := utils.GenerateRefreshToken(db, user.ID)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func LoginUser(db *gorm.DB, email, password string) (string, string, error) {
	var user models.User
	if err := db.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return "", "", ErrInvalidCredentials
	}

	if user.Password == "" || !utils.CheckPasswordHash(password, user.Password) {
		return "", "", ErrInvalidCredentials
	}
	if !user.IsActive() {
		return "", "", ErrInactiveUser
	}

	return issueTokens(db, &user)
}

// RevokeRefreshTokens invalidates every live refresh token of the user.
func RevokeRefreshTokens(db *gorm.DB, userID uint) (int64, error) {
	result := db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	return result.RowsAffected, result.Error
}

// googleUser finds the account for a Google identity, creating a viewer on
// first sign-in.
func googleUser(db *gorm.DB, email, name string) (*models.User, error) {
	var u models.User
	err := db.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var viewer models.Role
		if err := db.Where("name = ?", "viewer").First(&viewer).Error; err != nil {
			return nil, errors.New("default role not found")
		}

		u = models.User{
			Name:     name,
			Email:    email,
			Provider: "google",
			Status:   "active",
			RoleID:   viewer.ID,
		}
		err = db.Create(&u).Error
	}
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Role").First(&u, u.ID).Error; err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, ErrInactiveUser
	}
	return &u, nil
}
