package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantry-chef/backend/internal/store"
	"github.com/pageza/pantry-chef/backend/internal/types"
)

// SavedHandler manages the caller's saved recipes
type SavedHandler struct {
	registry *store.Registry
	log      *zap.Logger
}

// NewSavedHandler creates a new SavedHandler instance
func NewSavedHandler(registry *store.Registry, log *zap.Logger) *SavedHandler {
	return &SavedHandler{registry: registry, log: log}
}

// RegisterRoutes registers the saved-recipe routes
func (h *SavedHandler) RegisterRoutes(router *gin.RouterGroup) {
	saved := router.Group("/saved")
	{
		saved.GET("", h.List)
		saved.POST("", h.Save)
		saved.POST("/toggle", h.Toggle)
		saved.GET("/:id", h.Status)
		saved.DELETE("/:id", h.Remove)
	}
}

// List returns the saved recipes, optionally filtered by ?q=
func (h *SavedHandler) List(c *gin.Context) {
	s, ok := sessionStore(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, types.NewSavedRecipesResponse(s.Search(c.Query("q"))))
}

// Save adds a recipe to the collection. Saving an already saved recipe is a
// no-op.
func (h *SavedHandler) Save(c *gin.Context) {
	var recipe types.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := sessionStore(c, h.registry)
	if !ok {
		return
	}
	recipes, err := s.Add(c.Request.Context(), recipe)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSavedRecipesResponse(recipes).WithSaved(true))
}

// Remove deletes a recipe from the collection
func (h *SavedHandler) Remove(c *gin.Context) {
	id := c.Param("id")

	s, ok := sessionStore(c, h.registry)
	if !ok {
		return
	}
	recipes, err := s.Remove(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSavedRecipesResponse(recipes).WithSaved(false))
}

// Toggle removes the recipe when it is saved and saves it otherwise
func (h *SavedHandler) Toggle(c *gin.Context) {
	var recipe types.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := sessionStore(c, h.registry)
	if !ok {
		return
	}
	recipes, saved, err := s.Toggle(c.Request.Context(), recipe)
	if err != nil {
		storeError(c, err)
		return
	}
	h.log.Debug("Saved recipe toggled", zap.String("recipe_id", recipe.ID), zap.Bool("saved", saved))
	c.JSON(http.StatusOK, types.NewSavedRecipesResponse(recipes).WithSaved(saved))
}

// Status reports whether a recipe is saved, including it when it is
func (h *SavedHandler) Status(c *gin.Context) {
	id := c.Param("id")

	s, ok := sessionStore(c, h.registry)
	if !ok {
		return
	}
	body := gin.H{"id": id, "saved": false}
	if recipe, found := s.Get(id); found {
		body["saved"] = true
		body["recipe"] = recipe
	}
	c.JSON(http.StatusOK, body)
}
