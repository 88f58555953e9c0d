package oidc

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestHMACVerifier(t *testing.T) {
	secret := "dev-secret-long-enough-for-hs256"
	v, err := NewHMACVerifier(secret)
	require.NoError(t, err)
	ctx := context.Background()

	good := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "user-1", "preferred_username": "ada", "exp": time.Now().Add(time.Minute).Unix(),
	})
	tok, err := v.Verify(ctx, good)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "ada", claims["preferred_username"])

	cases := map[string]string{
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Minute).Unix()}),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no exp":       sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "u"}),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Minute).Unix()}),
		"garbage":      "not-a-token",
	}
	for name, raw := range cases {
		_, err := v.Verify(ctx, raw)
		require.Error(t, err, name)
	}

	_, err = NewHMACVerifier("")
	require.Error(t, err)
}

func TestInsecureVerifier_ReadsUnsignedClaims(t *testing.T) {
	raw := sign(t, jwt.SigningMethodHS256, []byte("whatever"), jwt.MapClaims{"sub": "user-9"})
	tok, err := NewInsecureVerifier().Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user-9", claims["sub"])

	_, err = NewInsecureVerifier().Verify(context.Background(), "one.two")
	require.Error(t, err)
}
