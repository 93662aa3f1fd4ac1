package types

// TipCategory groups cooking tips
type TipCategory string

const (
	TipPreparation     TipCategory = "Preparation"
	TipSeasoning       TipCategory = "Seasoning"
	TipTechnique       TipCategory = "Technique"
	TipMeatPreparation TipCategory = "Meat Preparation"
	TipTools           TipCategory = "Tools"
	TipPasta           TipCategory = "Pasta"
)

// CookingTip is a static piece of kitchen advice
type CookingTip struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    TipCategory `json:"category"`
}

// TipCategories lists every category in display order
var TipCategories = []TipCategory{
	TipPreparation, TipSeasoning, TipTechnique, TipMeatPreparation, TipTools, TipPasta,
}

// Valid reports whether c is one of the known categories
func (c TipCategory) Valid() bool {
	for _, known := range TipCategories {
		if c == known {
			return true
		}
	}
	return false
}

var cookingTips = []CookingTip{
	{
		ID:          "1",
		Title:       "Mise en Place",
		Description: `French for "everything in its place." Prepare and measure all your ingredients before you start cooking. This makes the cooking process smoother and more enjoyable.`,
		Category:    TipPreparation,
	},
	{
		ID:          "2",
		Title:       "Taste As You Go",
		Description: "Always taste your food during the cooking process (when safe to do so) and adjust seasonings as needed. This is key to well-flavored dishes.",
		Category:    TipSeasoning,
	},
	{
		ID:          "3",
		Title:       "Don't Overcrowd the Pan",
		Description: "When searing or frying, give your ingredients space in the pan. Overcrowding lowers the temperature and leads to steaming instead of browning.",
		Category:    TipTechnique,
	},
	{
		ID:          "4",
		Title:       "Rest Your Meat",
		Description: "Allow cooked meat, especially larger cuts, to rest for 5-15 minutes before slicing. This allows the juices to redistribute, resulting in more tender and flavorful meat.",
		Category:    TipMeatPreparation,
	},
	{
		ID:          "5",
		Title:       "Read the Whole Recipe First",
		Description: "Before you start cooking, read the entire recipe from start to finish. This helps you understand the flow and avoid surprises.",
		Category:    TipPreparation,
	},
	{
		ID:          "6",
		Title:       "Use Sharp Knives",
		Description: "A sharp knife is safer and more efficient than a dull one. It requires less pressure, reducing the risk of slips, and makes prep work much easier.",
		Category:    TipTools,
	},
	{
		ID:          "7",
		Title:       "Salt Your Pasta Water",
		Description: "Generously salt your pasta water, it should taste like the sea. This is your primary chance to season the pasta itself.",
		Category:    TipPasta,
	},
	{
		ID:          "8",
		Title:       "Properly Preheat Your Oven/Pan",
		Description: "Ensure your oven or pan is at the correct temperature before adding food. This is crucial for even cooking and achieving desired textures.",
		Category:    TipTechnique,
	},
}

// DefaultTips returns the built-in cooking tips in display order
func DefaultTips() []CookingTip {
	tips := make([]CookingTip, len(cookingTips))
	copy(tips, cookingTips)
	return tips
}

// TipsByCategory filters DefaultTips by category; an empty category matches all
func TipsByCategory(category TipCategory) []CookingTip {
	tips := []CookingTip{}
	for _, tip := range DefaultTips() {
		if category == "" || tip.Category == category {
			tips = append(tips, tip)
		}
	}
	return tips
}
