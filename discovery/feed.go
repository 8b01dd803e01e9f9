package discovery

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/tempo/article"
)

// ParseFeed parses an RSS or Atom document into summaries. Feeds carry no
// paywall marker, so every entry is reported as free; the article extractor
// still reports the page's own status. Items without a link are skipped.
func ParseFeed(data string) ([]article.Summary, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	summaries := []article.Summary{}
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		summary := article.Summary{
			URL:      link,
			Title:    normalizeSpace(item.Title),
			Category: article.CategoryFromURL(link),
			IsFree:   true,
		}
		if item.PublishedParsed != nil {
			published := *item.PublishedParsed
			summary.PublishedAt = &published
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}
