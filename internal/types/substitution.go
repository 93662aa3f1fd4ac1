package types

// Substitution is a suggested replacement for a missing ingredient
type Substitution struct {
	SuggestedSubstitution string `json:"suggestedSubstitution"`
	Reason                string `json:"reason"`
}
