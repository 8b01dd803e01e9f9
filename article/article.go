package article

import (
	"net/url"
	"strings"
	"time"
)

// DefaultCategory is used when a URL has no leading path segment.
const DefaultCategory = "indeks"

// Record is implemented by both listing summaries and extracted articles so
// they can share one output stream.
type Record interface {
	RecordURL() string
	RecordCategory() string
}

// Summary is one entry of an index listing.
type Summary struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	IsFree      bool       `json:"is_free"`
	PublishedAt *time.Time `json:"published_at"`
}

func (s Summary) RecordURL() string      { return s.URL }
func (s Summary) RecordCategory() string { return s.Category }

// Content is a fully extracted article page.
type Content struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Authors     []string   `json:"authors"`
	PublishedAt *time.Time `json:"published_at"`
	Body        []string   `json:"body"`
	Tags        []string   `json:"tags"`
	Images      []string   `json:"images"`
	IsFree      bool       `json:"is_free"`
}

func (c Content) RecordURL() string      { return c.URL }
func (c Content) RecordCategory() string { return c.Category }

// CategoryFromURL returns the first path segment of an article URL, which
// tempo.co uses as the rubric. Relative URLs are accepted.
func CategoryFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultCategory
	}

	first, _, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if first == "" {
		return DefaultCategory
	}
	return first
}
