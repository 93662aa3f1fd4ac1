// Package api implements the HTTP handlers of the Pantry Chef service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantry-chef/backend/internal/middleware"
	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/store"
)

// Version is reported by the health endpoints
const Version = "v1.0.0"

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker func(ctx context.Context) error

// Dependencies are the collaborators the routes are built from
type Dependencies struct {
	Chef     service.ChefServiceInterface
	Sessions service.SessionServiceInterface
	Saved    *store.Registry
	Logger   *zap.Logger

	// Limiter guards the generation endpoints; nil disables rate limiting
	Limiter   middleware.Limiter
	OnLimited func()

	// Checks run by the health endpoints, keyed by dependency name
	Checks map[string]HealthChecker
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	health := NewHealthHandler(deps.Checks)
	router.GET("/health", health.Check)
	router.GET("/api/health", health.Check)

	v1 := router.Group("/api/v1")
	{
		NewSessionHandler(deps.Sessions, log).RegisterRoutes(v1)
		NewTipsHandler().RegisterRoutes(v1)

		authed := v1.Group("", middleware.SessionMiddleware(deps.Sessions))

		generation := []gin.HandlerFunc{}
		if deps.Limiter != nil {
			generation = append(generation, middleware.RateLimit(deps.Limiter, log, deps.OnLimited))
		}
		NewChefHandler(deps.Chef, log).RegisterRoutes(authed, generation...)
		NewSavedHandler(deps.Saved, log).RegisterRoutes(authed)
	}
}

// HealthHandler reports service liveness and dependency health
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a health handler running checks on every call
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check returns the health status of the API
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{
		"status":  "healthy",
		"message": "Pantry Chef API is running",
		"version": Version,
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(status, body)
}

// sessionStore returns the saved-recipes store of the caller's session
func sessionStore(c *gin.Context, registry *store.Registry) (*store.SavedRecipes, bool) {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return nil, false
	}
	return registry.Get(c.Request.Context(), sessionID), true
}

// storeError writes the response for a failed store mutation
func storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotReady) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "saved recipes are still loading"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update saved recipes"})
}
