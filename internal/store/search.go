package store

import (
	"math"
	"sort"
	"strings"

	"github.com/pageza/pantry-chef/backend/internal/types"
	pgvector "github.com/pgvector/pgvector-go"
)

// Search returns saved recipes whose name, description or ingredients
// contain query, ignoring case. With an embedder configured the matches are
// ordered by ascending embedding distance to the query; otherwise they keep
// insertion order. An empty query returns the whole collection.
func (s *SavedRecipes) Search(query string) []types.Recipe {
	recipes := s.Recipes()
	query = strings.TrimSpace(query)
	if query == "" {
		return recipes
	}

	needle := strings.ToLower(query)
	matches := recipes[:0]
	for _, r := range recipes {
		if matchesQuery(r, needle) {
			matches = append(matches, r)
		}
	}

	if s.embed == nil || len(matches) < 2 {
		return matches
	}

	target := s.embed(query)
	distances := make(map[string]float64, len(matches))
	for _, r := range matches {
		distances[r.ID] = distance(target, s.embed(r.DishName+" "+r.Description))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return distances[matches[i].ID] < distances[matches[j].ID]
	})
	return matches
}

func matchesQuery(r types.Recipe, needle string) bool {
	for _, field := range []string{r.DishName, r.Description, r.IngredientsNeeded} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// distance is the euclidean (L2) distance between two vectors
func distance(a, b pgvector.Vector) float64 {
	av, bv := a.Slice(), b.Slice()
	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(av) {
			x = float64(av[i])
		}
		if i < len(bv) {
			y = float64(bv[i])
		}
		sum += (x - y) * (x - y)
	}
	return math.Sqrt(sum)
}
