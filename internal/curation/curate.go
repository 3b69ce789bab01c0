// Package curation filters, deduplicates, and ranks feed entries into
// story candidates.
package curation

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rmarques/newsstory/internal/feed"
)

// Candidate is a feed entry that survived curation, carrying its relevance
// score. Never mutated after Curate returns.
type Candidate struct {
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Source       string     `json:"source"`
	Published    *time.Time `json:"published"`
	KeywordScore int        `json:"-"`
}

// Options holds the curation parameters.
type Options struct {
	Keywords []string      // matched case-insensitively on word boundaries
	Window   time.Duration // recency window; entries older than now-Window are dropped
	Limit    int           // maximum candidates emitted; <= 0 yields none
}

// Fetcher retrieves entries for a single feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]feed.Entry, error)
}

// Engine curates entries from multiple feeds into a ranked candidate list.
type Engine struct {
	source  Fetcher
	now     func() time.Time
	verbose bool
}

// NewEngine creates a curation engine backed by the given fetcher.
func NewEngine(source Fetcher) *Engine {
	return &Engine{source: source, now: time.Now}
}

// SetVerbose toggles per-feed diagnostic logging.
func (e *Engine) SetVerbose(v bool) { e.verbose = v }

// candidate tracks arrival order during curation so ranking ties stay stable.
type candidate struct {
	Candidate
	order int
}

// Curate fetches every feed, applies the recency and keyword filters,
// deduplicates by normalized URL, ranks, and truncates to the limit.
//
// A failing feed contributes zero entries and never fails the batch, so no
// error is returned: zero matches is an empty slice.
func (e *Engine) Curate(ctx context.Context, feedURLs []string, opts Options) []Candidate {
	if opts.Limit <= 0 {
		return []Candidate{}
	}

	keywords := normalizeKeywords(opts.Keywords)
	now := e.now().UTC()
	cutoff := now.Add(-opts.Window)

	var cands []candidate
	for _, feedURL := range feedURLs {
		entries, err := e.source.Fetch(ctx, feedURL)
		if err != nil {
			log.Printf("warning: skipping feed %s: %v", feedURL, err)
			continue
		}
		if e.verbose {
			log.Printf("[VERBOSE] feed %s: %d entries", feedURL, len(entries))
		}
		for _, entry := range entries {
			// Entries without a timestamp are never considered fresh.
			if entry.PublishedAt == nil {
				continue
			}
			if entry.PublishedAt.Before(cutoff) {
				continue
			}
			score := keywordScore(entry.Title+" "+entry.Summary, keywords)
			if score == 0 {
				continue
			}
			cands = append(cands, candidate{
				Candidate: Candidate{
					Title:        entry.Title,
					URL:          entry.Link,
					Source:       entry.Source,
					Published:    entry.PublishedAt,
					KeywordScore: score,
				},
				order: len(cands),
			})
		}
	}

	deduped := dedupe(cands)

	// Score descending, then most recent first; SliceStable keeps arrival
	// order for full ties.
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].KeywordScore != deduped[j].KeywordScore {
			return deduped[i].KeywordScore > deduped[j].KeywordScore
		}
		return deduped[i].Published.After(*deduped[j].Published)
	})

	if len(deduped) > opts.Limit {
		deduped = deduped[:opts.Limit]
	}

	out := make([]Candidate, len(deduped))
	for i, c := range deduped {
		out[i] = c.Candidate
	}
	return out
}

// dedupe collapses entries sharing a normalized URL. The earliest-seen entry
// survives but takes the group's highest keyword score, so a later duplicate
// with a richer title cannot outrank its canonical copy.
func dedupe(cands []candidate) []candidate {
	seen := make(map[string]int, len(cands))
	var out []candidate
	for _, c := range cands {
		key := NormalizeURL(c.URL)
		if idx, ok := seen[key]; ok {
			if c.KeywordScore > out[idx].KeywordScore {
				out[idx].KeywordScore = c.KeywordScore
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, c)
	}
	return out
}

// normalizeKeywords lowercases and drops empty patterns and duplicates.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// keywordScore counts how many distinct keywords match the text on word
// boundaries, case-insensitively.
func keywordScore(text string, keywords []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, kw := range keywords {
		if containsWord(lower, kw) {
			score++
		}
	}
	return score
}

// containsWord reports whether needle occurs in haystack bounded by
// non-alphanumeric runes, so "ai" does not match "maintain". Both arguments
// must already be lowercased.
func containsWord(haystack, needle string) bool {
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)
		if boundaryBefore(haystack, idx) && boundaryAfter(haystack, end) {
			return true
		}
		start = idx + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
