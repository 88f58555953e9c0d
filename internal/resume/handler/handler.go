// Package handler exposes the version store and the tailor pipeline over
// HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/resumefire/backend/go-services/internal/generator"
	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/resumefire/backend/go-services/internal/resume/repository"
	"github.com/resumefire/backend/go-services/internal/resume/service"
	"github.com/resumefire/backend/go-services/internal/users"
	"github.com/resumefire/backend/go-services/pkg/logger"
	"github.com/resumefire/backend/go-services/pkg/middleware"
)

type Handler struct {
	store  *service.Store
	tailor *service.Tailor
	users  *users.Service
}

// New builds the handler. userSvc may be nil; profile creation then skips
// recording the account.
func New(store *service.Store, tailor *service.Tailor, userSvc *users.Service) *Handler {
	return &Handler{store: store, tailor: tailor, users: userSvc}
}

// RegisterResumeRoutes mounts the authenticated /api/resume routes behind
// mws (auth first) and the public lookup route.
func RegisterResumeRoutes(r gin.IRouter, h *Handler, mws ...gin.HandlerFunc) {
	g := r.Group("/api/resume", mws...)
	g.POST("/profile", h.createProfile)
	g.GET("", h.getActive)
	g.PUT("", h.save)
	g.GET("/history", h.listHistory)
	g.POST("/history/:versionId/restore", h.restore)
	g.DELETE("/history/:versionId", h.deleteHistory)
	g.POST("/sections/move", h.moveSection)
	g.POST("/tailor", h.propose)
	g.POST("/tailor/commit", h.commit)
	g.POST("/summary", h.summarize)

	r.GET("/api/public/resumes/:username", h.published)
}

func (h *Handler) createProfile(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	claims := middleware.Claims(c)
	username := req.Username
	if username == "" {
		username = users.UsernameFromClaims(claims)
	}

	p, err := h.store.CreateProfile(c.Request.Context(), username)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.users != nil {
		if _, err := h.users.UpsertFromClaims(c.Request.Context(), claims); err != nil {
			logger.Warnw("record account failed", "user", p.UserID, "error", err)
		}
	}
	c.JSON(http.StatusCreated, p.Active)
}

func (h *Handler) getActive(c *gin.Context) {
	d, err := h.store.GetActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) save(c *gin.Context) {
	var doc resume.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.store.Save(c.Request.Context(), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) listHistory(c *gin.Context) {
	list, err := h.store.ListHistory(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) restore(c *gin.Context) {
	d, err := h.store.Restore(c.Request.Context(), c.Param("versionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) deleteHistory(c *gin.Context) {
	if err := h.store.DeleteHistoryEntry(c.Request.Context(), c.Param("versionId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) moveSection(c *gin.Context) {
	var req struct {
		Index     *int             `json:"index" binding:"required"`
		Direction resume.Direction `json:"direction" binding:"required,oneof=up down"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.store.MoveSection(c.Request.Context(), *req.Index, req.Direction)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) propose(c *gin.Context) {
	var in generator.Instructions
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.tailor.Propose(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) commit(c *gin.Context) {
	var doc resume.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.tailor.Commit(c.Request.Context(), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) summarize(c *gin.Context) {
	s, err := h.tailor.Summarize(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": s})
}

func (h *Handler) published(c *gin.Context) {
	d, err := h.store.Published(c.Request.Context(), c.Param("username"))
	if errors.Is(err, resume.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func writeError(c *gin.Context, err error) {
	var gerr *resume.GenerationError
	switch {
	case errors.Is(err, resume.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, resume.ErrVersionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "version not found, refresh history"})
	case errors.Is(err, resume.ErrMalformedCandidate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "the generator returned an unusable document, please try again"})
	case errors.As(err, &gerr):
		c.JSON(http.StatusBadGateway, gin.H{"error": gerr.Reason})
	case errors.Is(err, resume.ErrProfileExists), errors.Is(err, resume.ErrUsernameTaken), errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, resume.ErrInvalidDocument), errors.Is(err, resume.ErrInvalidUsername), errors.Is(err, generator.ErrInvalidInstructions):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorw("resume request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
