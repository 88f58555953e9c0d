package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/resumefire/backend/go-services/internal/config"
	"github.com/resumefire/backend/go-services/internal/models"
	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/resumefire/backend/go-services/internal/sessions"
	"github.com/resumefire/backend/go-services/internal/tokens"
	"github.com/resumefire/backend/go-services/internal/users"
	"github.com/resumefire/backend/go-services/pkg/logger"
	"github.com/resumefire/backend/go-services/pkg/middleware"
)

// TokenRequest asks for a development access token.
type TokenRequest struct {
	Sub      string `json:"sub" binding:"required"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	blacklist *sessions.Blacklist
}

func NewAuthHandler(cfg *config.Config, u *users.Service, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, blacklist: bl}
}

// Register mounts /auth/logout behind auth and, in development only,
// /auth/token.
func (h *AuthHandler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	a := r.Group("/auth")
	if h.cfg.IsDevelopment() {
		a.POST("/token", h.Token)
	}
	a.POST("/logout", auth, h.Logout)
}

// Token issues an HMAC-signed access token for any subject. It exists so the
// API can be exercised without an identity provider.
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u := &models.User{
		Sub:      req.Sub,
		Email:    req.Email,
		Name:     req.Name,
		Username: resume.NormalizeUsername(req.Username),
	}
	if h.usersSvc != nil {
		claims := map[string]interface{}{"sub": req.Sub, "email": req.Email, "name": req.Name, "preferred_username": req.Username}
		saved, err := h.usersSvc.UpsertFromClaims(c.Request.Context(), claims)
		if err != nil {
			logger.Errorw("record account failed", "sub", req.Sub, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record user"})
			return
		}
		u = saved
	}

	ttl := h.cfg.JWT.AccessTokenTTL
	tok, err := tokens.GenerateAccessToken(h.cfg, u, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": tok,
		"token_type":   "Bearer",
		"expires_in":   int(ttl.Seconds()),
		"username":     u.Username,
	})
}

// Logout revokes the presented bearer token for the access token lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := middleware.RawToken(c)
	if err := h.blacklist.Revoke(c.Request.Context(), raw, h.cfg.JWT.AccessTokenTTL); err != nil {
		logger.Errorw("revoke token failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
