// Package tokens issues the HMAC-signed access tokens used in development.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/resumefire/backend/go-services/internal/config"
	"github.com/resumefire/backend/go-services/internal/models"
)

var ErrNoSecret = errors.New("JWT_SECRET is not configured")

// GenerateAccessToken creates a signed JWT access token for the user. The
// preferred_username claim carries the profile username.
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":                u.Sub,
		"name":               u.Name,
		"email":              u.Email,
		"preferred_username": u.Username,
		"iat":                now.Unix(),
		"exp":                now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}
