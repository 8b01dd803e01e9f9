package discovery

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/tempo/article"
	"github.com/pevans/tempo/scraper"
)

// ErrMalformedIndexPage means the listing container is missing, which
// usually indicates the site layout changed.
var ErrMalformedIndexPage = errors.New("malformed index page")

// ParseIndexPage parses an index page into summaries, in document order.
// Entries without a usable link are skipped.
func ParseIndexPage(html string, config scraper.IndexConfig) ([]article.Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	container := doc.Find(config.ContainerSelector).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: listing container %q not found", ErrMalformedIndexPage, config.ContainerSelector)
	}

	site, err := url.Parse(config.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}

	summaries := []article.Summary{}
	container.ChildrenFiltered(config.ItemSelector).Each(func(i int, item *goquery.Selection) {
		link := item.Find(config.LinkSelector).First()
		if link.Length() == 0 {
			return
		}

		href, ok := resolveLink(site, link.AttrOr("href", ""))
		if !ok {
			return
		}

		summaries = append(summaries, article.Summary{
			URL:      href,
			Title:    textWithout(link, config.PremiumSelector),
			Category: article.CategoryFromURL(href),
			IsFree:   link.Find(config.PremiumSelector).Length() == 0,
		})
	})

	return summaries, nil
}

// resolveLink turns an href into an absolute http(s) URL relative to the
// site root.
func resolveLink(site *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := site.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

// textWithout returns the normalized text of sel, ignoring any descendants
// matching exclude.
func textWithout(sel *goquery.Selection, exclude string) string {
	if exclude == "" {
		return normalizeSpace(sel.Text())
	}
	clone := sel.Clone()
	clone.Find(exclude).Remove()
	return normalizeSpace(clone.Text())
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
