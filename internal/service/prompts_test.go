package service

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFormatAvailable(t *testing.T) {
	assert.Equal(t, "None", formatAvailable(nil))
	assert.Equal(t, "olive oil, lime, ", formatAvailable([]string{"olive oil", "lime"}))
}

func TestSubstitutionPrompt(t *testing.T) {
	p := SubstitutionPrompt("butter", []string{"olive oil"})
	assert.Contains(t, p.User, `missing the ingredient "butter"`)
	assert.Contains(t, p.User, "available ingredients: olive oil, .")
	assert.Contains(t, p.System, "suggestedSubstitution")
}

func TestImagePrompt(t *testing.T) {
	p := ImagePrompt("Tomato Rice", "Rice.")
	assert.Equal(t, `Generate a vibrant and appetizing image of a dish called "Tomato Rice". The dish is described as: "Rice.". Focus on a clean, well-lit presentation suitable for a recipe card.`, p)
}

func TestImagePromptTruncatesOnRuneBoundary(t *testing.T) {
	for offset := 0; offset < 4; offset++ {
		description := strings.Repeat("a", offset) + strings.Repeat("crème brûlée 🍮 ", 80)
		p := ImagePrompt("Crème Brûlée", description)
		assert.LessOrEqual(t, len(p), maxImagePromptBytes)
		assert.GreaterOrEqual(t, len(p), maxImagePromptBytes-utf8.UTFMax)
		assert.True(t, utf8.ValidString(p), "offset %d", offset)
	}
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "short", truncateUTF8("short", 10))
	assert.Equal(t, "caf", truncateUTF8("café", 4))
	assert.Equal(t, "café", truncateUTF8("café", 5))
	assert.Equal(t, "", truncateUTF8("🍮", 3))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(" {\"a\":1} "))
}

func TestIDClockIsStrictlyIncreasing(t *testing.T) {
	fixed := time.Unix(0, 1000)
	c := &idClock{now: func() time.Time { return fixed }}
	assert.Equal(t, int64(1000), c.next())
	assert.Equal(t, int64(1001), c.next())
	assert.Equal(t, int64(1002), c.next())
}

func TestGenerationErrorMatching(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := transportError(cause)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "transport", err.Kind.String())

	// Already-normalized errors pass through unchanged
	inc := incompleteError(MsgIncompleteRecipe)
	assert.Same(t, inc, transportError(inc))
}

func TestGenerateEmbedding(t *testing.T) {
	v := GenerateEmbedding("  Rice ")
	assert.Equal(t, []float32{4, 2, 2}, v.Slice())
}
