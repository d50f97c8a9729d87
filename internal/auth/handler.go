package auth

import (
	"errors"

	"github.com/Kyz7/hub/internal/database"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/response"
	"github.com/Kyz7/hub/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

func LoginHandler(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Email == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"email":    "email is required",
			"password": "password is required",
		})
	}

	accessToken, refreshToken, err := LoginUser(database.DB, body.Email, body.Password)
	if errors.Is(err, ErrInactiveUser) {
		return response.Forbidden(c, "User account is not active")
	}
	if err != nil {
		return response.Unauthorized(c, "Invalid email or password")
	}

	return response.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    900,
	}, "Login successful")
}

func RefreshHandler(c *fiber.Ctx) error {
	var body struct {
		UserID       uint   `json:"user_id"`
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.UserID == 0 || body.RefreshToken == "" {
		return response.ValidationError(c, map[string]string{
			"user_id":       "user_id is required",
			"refresh_token": "refresh_token is required",
		})
	}

	accessToken, newRefreshToken, err := utils.RefreshTokenPair(database.DB, body.UserID, body.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, err.Error())
	}

	var user models.User
	database.DB.Preload("Role").First(&user, body.UserID)

	return response.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
		"user":          user,
		"expires_in":    900,
	}, "Token refreshed successfully")
}

func LogoutHandler(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	revoked, err := RevokeRefreshTokens(database.DB, userID)
	if err != nil {
		return response.InternalError(c, "Failed to revoke refresh tokens")
	}
	log.Infof("User %d logged out, %d refresh tokens revoked", userID, revoked)

	return response.Success(c, fiber.Map{"user_id": userID}, "Logout successful")
}
