package service

import (
	"strings"
	"unicode/utf8"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding maps text to a deterministic 3-dimensional vector of
// (character count, vowels, consonants). Matching is case-insensitive and
// surrounding whitespace is ignored. It is used to rank saved-recipe search
// results and needs no external model.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(strings.TrimSpace(text))

	var vowels, consonants float32
	for _, r := range text {
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case r >= 'a' && r <= 'z':
			consonants++
		}
	}
	return pgvector.NewVector([]float32{float32(utf8.RuneCountInString(text)), vowels, consonants})
}
