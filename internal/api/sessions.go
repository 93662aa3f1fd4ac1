package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/types"
)

// SessionHandler issues anonymous session tokens
type SessionHandler struct {
	sessions service.SessionServiceInterface
	log      *zap.Logger
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(sessions service.SessionServiceInterface, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

// RegisterRoutes registers the session routes
func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sessions", h.Create)
}

// Create starts a new session
func (h *SessionHandler) Create(c *gin.Context) {
	token, sessionID, expiresAt, err := h.sessions.IssueToken()
	if err != nil {
		h.log.Error("Failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, types.SessionResponse{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiresAt.Unix(),
	})
}
