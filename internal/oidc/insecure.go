package oidc

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/resumefire/backend/go-services/pkg/middleware"
)

// InsecureVerifier reads claims from a JWT without checking its signature.
// It is enabled only by ALLOW_INSECURE_TOKEN=true for integration setups
// where the issuer is unreachable from the service.
type InsecureVerifier struct {
	parser *jwt.Parser
}

func NewInsecureVerifier() *InsecureVerifier {
	return &InsecureVerifier{parser: jwt.NewParser()}
}

func (v *InsecureVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if strings.Count(raw, ".") != 2 {
		return nil, errors.New("invalid token format")
	}
	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}
