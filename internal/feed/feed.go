// Package feed fetches and parses RSS/Atom feeds into normalized entries.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

var (
	// ErrFeedUnavailable is returned when a feed cannot be retrieved or parsed.
	ErrFeedUnavailable = errors.New("feed unavailable")
	// ErrFeedMalformed is returned when a feed parses but contains no entry
	// with a resolvable link.
	ErrFeedMalformed = errors.New("feed malformed")
)

// DefaultTimeout is the default HTTP timeout for feed requests.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for feed requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; newsstory/1.0)"

// Entry is one item parsed from a feed. Immutable once parsed.
type Entry struct {
	Title       string
	Link        string
	Source      string
	Summary     string
	PublishedAt *time.Time // nil when the feed carries no usable timestamp
}

// Source fetches and parses a single feed URL into entries.
type Source struct {
	parser *gofeed.Parser
}

// NewSource creates a feed source with the given HTTP timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewSource(timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = DefaultUserAgent
	return &Source{parser: p}
}

// Fetch retrieves and parses one feed. Entries without a resolvable link are
// skipped; if the feed parses but every entry lacks a link, ErrFeedMalformed
// is returned so callers can tell an empty feed from a broken one.
func (s *Source) Fetch(ctx context.Context, feedURL string) ([]Entry, error) {
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFeedUnavailable, feedURL, err)
	}

	sourceName := strings.TrimSpace(parsed.Title)
	if sourceName == "" {
		sourceName = strings.TrimSpace(parsed.Link)
	}
	if sourceName == "" {
		sourceName = feedURL
	}

	entries := make([]Entry, 0, len(parsed.Items))
	dropped := 0
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			dropped++
			continue
		}
		entries = append(entries, Entry{
			Title:       strings.TrimSpace(item.Title),
			Link:        link,
			Source:      sourceName,
			Summary:     StripHTML(item.Description),
			PublishedAt: entryTimestamp(item),
		})
	}

	if len(entries) == 0 && dropped > 0 {
		return nil, fmt.Errorf("%w: %s: %d entries without links", ErrFeedMalformed, feedURL, dropped)
	}
	return entries, nil
}

// entryTimestamp prefers the published timestamp, falling back to updated,
// normalized to UTC. Returns nil when the feed carries neither.
func entryTimestamp(item *gofeed.Item) *time.Time {
	ts := item.PublishedParsed
	if ts == nil {
		ts = item.UpdatedParsed
	}
	if ts == nil {
		return nil
	}
	utc := ts.UTC()
	return &utc
}

// StripHTML reduces an HTML fragment to its text content with collapsed
// whitespace. Feed summaries frequently arrive as markup.
func StripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ReadFeedList reads a feeds file: one URL per line, blank lines and lines
// starting with # are ignored.
func ReadFeedList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file %s: %w", path, err)
	}

	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		urls = append(urls, s)
	}
	return urls, nil
}
