// Package users maps verified token claims to accounts and derives the
// username slug a résumé profile is created under.
package users

import (
	"context"
	"strings"

	"github.com/resumefire/backend/go-services/internal/models"
	"github.com/resumefire/backend/go-services/internal/resume"
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UsernameFromClaims picks the profile username for a token: the
// preferred_username claim, else the local part of the email, slugified.
func UsernameFromClaims(claims map[string]interface{}) string {
	if u, _ := claims["preferred_username"].(string); u != "" {
		return resume.NormalizeUsername(u)
	}
	if email, _ := claims["email"].(string); email != "" {
		local, _, _ := strings.Cut(email, "@")
		return resume.NormalizeUsername(local)
	}
	return ""
}

// UpsertFromClaims creates or updates a user from a verified claims map. It
// returns nil, nil when the claims carry no subject.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	u := &models.User{
		Sub:      sub,
		Email:    email,
		Name:     name,
		Username: UsernameFromClaims(claims),
	}
	return s.repo.UpsertBySub(ctx, u)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}
