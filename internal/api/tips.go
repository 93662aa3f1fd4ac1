package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/pantry-chef/backend/internal/types"
)

// DefaultTipIcon is shown for categories without their own icon
const DefaultTipIcon = "lightbulb"

var tipIcons = map[types.TipCategory]string{
	types.TipPreparation:     "utensils-crossed",
	types.TipSeasoning:       "vegan",
	types.TipTechnique:       "flame",
	types.TipMeatPreparation: "clock",
	types.TipPasta:           "scale",
}

// TipIcon returns the icon name used to render tips of category
func TipIcon(category types.TipCategory) string {
	if icon, ok := tipIcons[category]; ok {
		return icon
	}
	return DefaultTipIcon
}

// TipResponse is a cooking tip as rendered to clients
type TipResponse struct {
	types.CookingTip
	Icon string `json:"icon"`
}

// TipsHandler serves the static cooking tips
type TipsHandler struct{}

// NewTipsHandler creates a new TipsHandler instance
func NewTipsHandler() *TipsHandler {
	return &TipsHandler{}
}

// RegisterRoutes registers the tips routes
func (h *TipsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tips", h.List)
}

// List returns the cooking tips, optionally filtered by ?category=
func (h *TipsHandler) List(c *gin.Context) {
	category := types.TipCategory(c.Query("category"))
	if category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tip category"})
		return
	}

	tips := types.TipsByCategory(category)
	out := make([]TipResponse, 0, len(tips))
	for _, tip := range tips {
		out = append(out, TipResponse{CookingTip: tip, Icon: TipIcon(tip.Category)})
	}
	c.JSON(http.StatusOK, gin.H{"tips": out})
}
