package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"cv-rag/internal/models"
)

var namePatterns = compileNamePatterns()

func compileNamePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(models.NamePatterns))
	for i, p := range models.NamePatterns {
		patterns[i] = regexp.MustCompile(p)
	}
	return patterns
}

// ExtractCandidateName finds a proper-name-shaped substring in the query.
// Patterns are tried in priority order; the first match wins. Returns ""
// when no pattern matches.
func ExtractCandidateName(query string) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(query); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// Expander retries retrieval with derived search terms when the primary
// search comes back empty.
type Expander struct {
	searcher *Searcher
}

func NewExpander(searcher *Searcher) *Expander {
	return &Expander{searcher: searcher}
}

// Expand derives a candidate name from the query and retries, in order:
// the full name, each name part (results unioned, first occurrence wins),
// and finally a literal substring match against stored content with a
// fixed high-confidence similarity. Returns nil without error when the
// query contains no name-shaped substring.
func (e *Expander) Expand(ctx context.Context, query string, threshold float64, count int) ([]models.ChunkMatch, error) {
	name := ExtractCandidateName(query)
	if name == "" {
		log.Debug().Str("query", query).Msg("No candidate name in query, skipping expansion")
		return nil, nil
	}
	log.Debug().Str("name", name).Msg("Expanding query with candidate name")

	matches, err := e.searcher.Search(ctx, name, threshold, count)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return matches, nil
	}

	parts := strings.Fields(name)
	if len(parts) == 2 {
		first, err := e.searcher.Search(ctx, parts[0], threshold, count)
		if err != nil {
			return nil, err
		}
		last, err := e.searcher.Search(ctx, parts[1], threshold, count)
		if err != nil {
			return nil, err
		}
		if merged := mergeMatches(first, last); len(merged) > 0 {
			return merged, nil
		}
	}

	// last resort: literal match against stored content, no vector score
	found, err := e.searcher.store.MatchContent(ctx, name, count)
	if err != nil {
		return nil, fmt.Errorf("%w: content match: %w", models.ErrStoreUnavailable, err)
	}
	for i := range found {
		found[i].Similarity = models.SubstringMatchSimilarity
	}
	if len(found) > 0 {
		log.Debug().Int("matches", len(found)).Str("name", name).Msg("Literal content match results")
	}
	return found, nil
}

// mergeMatches unions two result sets, de-duplicating by chunk identity
// with the first occurrence winning.
func mergeMatches(sets ...[]models.ChunkMatch) []models.ChunkMatch {
	seen := make(map[string]bool)
	var merged []models.ChunkMatch
	for _, set := range sets {
		for _, m := range set {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			merged = append(merged, m)
		}
	}
	return merged
}
