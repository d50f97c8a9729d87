package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "test_secret_key_minimum_32_characters_long_for_testing_only"

var jwtKey = []byte(testJWTSecret)

// SetJWTSecret installs the signing key loaded from config.
func SetJWTSecret(secret string) {
	if secret != "" {
		jwtKey = []byte(secret)
	}
}

func ValidateJWTSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}

	if secret == testJWTSecret {
		return fmt.Errorf("cannot use default test secret in production")
	}

	return nil
}

func GenerateJWT(userID uint, roleName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.Itoa(int(userID)),
		"role": roleName,
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func ParseJWT(tokenStr string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}
