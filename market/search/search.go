// Package search resolves free-text queries and feed requests to listings.
package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"log/slog"

	"github.com/shomybay/marketbot/core/logger"
	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/store"
)

// DefaultPageSize caps how many matches are surfaced at once.
const DefaultPageSize = 5

// fuzzyMaxRunes bounds when the typo-tolerant token match kicks in.
const fuzzyMaxRunes = 15

// Result carries one page of matches together with the full match count,
// so the caller can report how many more listings exist beyond the page.
type Result struct {
	Items []market.Listing
	Total int
}

// Remaining reports how many matches were cut off by the page size.
func (r Result) Remaining() int {
	if rem := r.Total - len(r.Items); rem > 0 {
		return rem
	}
	return 0
}

// Matcher answers search queries and feed draws over the shared store.
type Matcher struct {
	store    store.Store
	pageSize int
	intn     func(n int) int
}

// NewMatcher builds a Matcher. pageSize <= 0 selects DefaultPageSize.
func NewMatcher(st store.Store, pageSize int) *Matcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Matcher{
		store:    st,
		pageSize: pageSize,
		intn:     rand.IntN,
	}
}

// Search returns listings whose title or description matches the query,
// case-insensitively and in store insertion order. Long queries match by
// substring only; short ones additionally tolerate typos via IsSimilar.
// The page is truncated to the page size while Total counts every match.
func (m *Matcher) Search(ctx context.Context, query string) (Result, error) {
	start := time.Now()
	q := normalize(query)
	if q == "" {
		return Result{}, nil
	}

	all, err := m.store.AllListings(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	fuzzy := len([]rune(q)) <= fuzzyMaxRunes
	var res Result
	for _, l := range all {
		if !matches(l, q, fuzzy) {
			continue
		}
		res.Total++
		if len(res.Items) < m.pageSize {
			res.Items = append(res.Items, l)
		}
	}

	logger.Debug(ctx, "service.search", "search.query",
		slog.String("status", "ok"),
		slog.String("query", logger.SanitizeLimit(query, 64)),
		slog.Int("matches", res.Total),
		slog.Duration("duration", logger.Took(start)),
	)
	return res, nil
}

func matches(l market.Listing, q string, fuzzy bool) bool {
	title := normalize(l.Title)
	desc := normalize(l.Description)
	if strings.Contains(title, q) || strings.Contains(desc, q) {
		return true
	}
	if !fuzzy {
		return false
	}
	for _, token := range strings.Fields(title) {
		if IsSimilar(token, q) {
			return true
		}
	}
	for _, token := range strings.Fields(desc) {
		if IsSimilar(token, q) {
			return true
		}
	}
	return false
}

// Feed draws one listing uniformly at random from the approved set.
// An empty eligible set yields (nil, nil) rather than an error.
func (m *Matcher) Feed(ctx context.Context) (*market.Listing, error) {
	all, err := m.store.AllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}

	eligible := all[:0:0]
	for _, l := range all {
		if l.Approved {
			eligible = append(eligible, l)
		}
	}
	if len(eligible) == 0 {
		logger.Debug(ctx, "service.search", "feed.empty",
			slog.String("status", "skip"),
		)
		return nil, nil
	}

	pick := eligible[m.intn(len(eligible))]
	return &pick, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsSimilar reports whether two strings are the same up to case or
// containment. Short strings also tolerate a small edit distance, which
// forgives typos in tokens such as category names.
func IsSimilar(a, b string) bool {
	a = normalize(a)
	b = normalize(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	// Containment of a single rune is noise ("a" sits inside almost any
	// phrase), so the rule needs at least two runes on both sides.
	if len(ra) > 1 && len(rb) > 1 &&
		(strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}
	if len(ra) > fuzzyMaxRunes || len(rb) > fuzzyMaxRunes {
		return false
	}
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	dist := levenshtein(ra, rb)
	similarity := 1 - float64(dist)/float64(maxLen)
	return similarity > 0.7
}

// levenshtein computes the classic unit-cost edit distance over a full
// dynamic-programming matrix.
func levenshtein(a, b []rune) int {
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			min := matrix[i-1][j-1] // substitution
			if v := matrix[i][j-1]; v < min {
				min = v // insertion
			}
			if v := matrix[i-1][j]; v < min {
				min = v // deletion
			}
			matrix[i][j] = min + 1
		}
	}
	return matrix[len(a)][len(b)]
}
