package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"evolvers-admin/internal/models"
	"evolvers-admin/internal/session"
	"evolvers-admin/pkg/logger"
)

// LoginAPI authenticates against the remote backend.
type LoginAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

type AuthHandler struct {
	api      LoginAPI
	sessions *session.Manager
}

func NewAuthHandler(api LoginAPI, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{api: api, sessions: sessions}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.api.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	h.sessions.Start(resp.Token, resp.Name, resp.Email)
	logger.Info("Admin signed in", map[string]interface{}{
		"email": resp.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"name":  resp.Name,
		"email": resp.Email,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.End()
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (h *AuthHandler) Status(c *gin.Context) {
	name, email, ok := h.sessions.Identity()
	if !ok || !h.sessions.Active() {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"name":          name,
		"email":         email,
	})
}
