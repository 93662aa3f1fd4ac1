package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/types"
)

// ChefHandler serves recipe and substitution suggestions
type ChefHandler struct {
	chef service.ChefServiceInterface
	log  *zap.Logger
}

// NewChefHandler creates a new ChefHandler instance
func NewChefHandler(chef service.ChefServiceInterface, log *zap.Logger) *ChefHandler {
	return &ChefHandler{chef: chef, log: log}
}

// RegisterRoutes registers the generation routes behind the given middleware
func (h *ChefHandler) RegisterRoutes(router *gin.RouterGroup, mw ...gin.HandlerFunc) {
	generation := router.Group("", mw...)
	{
		generation.POST("/recipes/suggest", h.SuggestRecipe)
		generation.POST("/substitutions/suggest", h.SuggestSubstitution)
	}
}

// SuggestRecipe generates a recipe from the caller's pantry ingredients.
// Generated ids are fresh, so the response always reports saved as false.
func (h *ChefHandler) SuggestRecipe(c *gin.Context) {
	var req types.SuggestRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.chef.SuggestRecipe(c.Request.Context(), req.UserIngredients)
	if err != nil {
		h.generationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeResponse(*recipe, false))
}

// SuggestSubstitution suggests a replacement for a missing ingredient
func (h *ChefHandler) SuggestSubstitution(c *gin.Context) {
	var req types.SuggestSubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	available := []string(req.AvailableIngredients)
	if available == nil {
		available = []string{}
	}

	sub, err := h.chef.SuggestSubstitution(c.Request.Context(), req.MissingIngredient, available)
	if err != nil {
		h.generationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *ChefHandler) generationFailed(c *gin.Context, err error) {
	if c.Request.Context().Err() != nil {
		// The client went away; nobody reads the response
		c.Abort()
		return
	}

	kind := service.KindTransport
	var genErr *service.GenerationError
	if errors.As(err, &genErr) {
		kind = genErr.Kind
	}
	h.log.Warn("Generation request failed",
		zap.String("path", c.FullPath()),
		zap.Stringer("kind", kind),
		zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{
		"error":   kind.String(),
		"message": err.Error(),
	})
}
