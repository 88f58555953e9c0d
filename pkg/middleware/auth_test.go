package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/resumefire/backend/go-services/internal/sessions"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken", "black-token":
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "test@example.com"}}, nil
	case "nosub":
		return &fakeToken{data: map[string]interface{}{"email": "test@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

type brokenRevocations struct{}

func (brokenRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func serve(mw gin.HandlerFunc, header string) *httptest.ResponseRecorder {
	g := gin.New()
	g.GET("/", mw, func(c *gin.Context) {
		user, err := resume.UserFrom(c.Request.Context())
		if err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, user+" "+RawToken(c))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	for name, header := range map[string]string{
		"no header":      "",
		"invalid header": "BadHeader",
		"bad token":      "Bearer nope",
		"no subject":     "Bearer nosub",
	} {
		t.Run(name, func(t *testing.T) {
			rw := serve(AuthMiddleware(&fakeVerifier{}, nil), header)
			require.Equal(t, http.StatusUnauthorized, rw.Code)
		})
	}
}

func TestAuthMiddleware_BindsIdentity(t *testing.T) {
	rw := serve(AuthMiddleware(&fakeVerifier{}, nil), "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "user1 goodtoken", rw.Body.String())
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	require.NoError(t, bl.Revoke(context.Background(), "black-token", 5*time.Second))

	rw := serve(AuthMiddleware(&fakeVerifier{}, bl), "Bearer black-token")
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	rw = serve(AuthMiddleware(&fakeVerifier{}, bl), "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestAuthMiddleware_RevocationCheckFailure(t *testing.T) {
	rw := serve(AuthMiddleware(&fakeVerifier{}, brokenRevocations{}), "Bearer goodtoken")
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
}
