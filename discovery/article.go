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

// ErrMalformedArticlePage means the page lacks a title or body container,
// e.g. a photo or video page rather than a text article.
var ErrMalformedArticlePage = errors.New("malformed article page")

// ExtractArticle extracts a full article from an article page. Missing
// authors, timestamp, tags or images are not errors.
func ExtractArticle(html, sourceURL string, config scraper.ArticleConfig) (*article.Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	container := doc.Find(config.ContainerSelector).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: article container %q not found", ErrMalformedArticlePage, config.ContainerSelector)
	}

	title := normalizeSpace(doc.Find(config.TitleSelector).First().Text())
	if title == "" && config.HeadlineSelector != "" {
		title = normalizeSpace(container.Find(config.HeadlineSelector).First().Text())
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title not found", ErrMalformedArticlePage)
	}

	wrappers := container.Find(config.BodySelector)
	if wrappers.Length() == 0 {
		return nil, fmt.Errorf("%w: body container %q not found", ErrMalformedArticlePage, config.BodySelector)
	}

	// Each wrapper is one contiguous block, so an editor's-picks block only
	// truncates the wrapper it appears in
	body := []string{}
	wrappers.Each(func(i int, wrapper *goquery.Selection) {
		var paragraphs []string
		wrapper.Find(config.ParagraphSelector).Each(func(j int, p *goquery.Selection) {
			paragraphs = append(paragraphs, p.Text())
		})
		body = append(body, FilterBody(paragraphs, config.EditorPickMarker)...)
	})

	content := &article.Content{
		URL:         sourceURL,
		Title:       title,
		Category:    article.CategoryFromURL(sourceURL),
		Authors:     extractAuthors(doc, config),
		PublishedAt: ParsePublishedAt(extractPublishedRaw(doc, config)),
		Body:        body,
		Tags:        extractTags(container, config),
		Images:      extractImages(container, config),
		IsFree:      container.Find(config.PremiumSelector).Length() == 0,
	}

	return content, nil
}

// FilterBody normalizes paragraph whitespace, drops empty paragraphs and
// cuts the block at the first paragraph starting with marker. The marker
// paragraph and everything after it are removed.
func FilterBody(paragraphs []string, marker string) []string {
	body := []string{}
	for _, p := range paragraphs {
		text := normalizeSpace(p)
		if text == "" {
			continue
		}
		if marker != "" && strings.HasPrefix(text, marker) {
			break
		}
		body = append(body, text)
	}
	return body
}

// IsAdImage reports whether src points at the ad logo. Only the URL path is
// compared, so host and query string do not matter.
func IsAdImage(src, adPath string) bool {
	if adPath == "" {
		return false
	}

	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return false
	}
	return u.Path == adPath
}

func extractAuthors(doc *goquery.Document, config scraper.ArticleConfig) []string {
	authors := []string{}
	if config.AuthorSelector == "" {
		return authors
	}

	doc.Find(config.AuthorSelector).Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.AttrOr("content", s.Text()))
		if text != "" {
			authors = append(authors, ParseAuthors(text)...)
		}
	})
	return authors
}

func extractPublishedRaw(doc *goquery.Document, config scraper.ArticleConfig) string {
	for _, selector := range []string{config.PublishedTimeSelector, config.PublishDateSelector} {
		if selector == "" {
			continue
		}
		if raw := strings.TrimSpace(doc.Find(selector).First().AttrOr("content", "")); raw != "" {
			return raw
		}
	}
	return ""
}

func extractTags(container *goquery.Selection, config scraper.ArticleConfig) []string {
	tags := []string{}
	seen := map[string]bool{}

	container.Find(config.TagSelector).Each(func(i int, s *goquery.Selection) {
		tag := normalizeSpace(s.Text())
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	})
	return tags
}

func extractImages(container *goquery.Selection, config scraper.ArticleConfig) []string {
	images := []string{}

	container.Find(config.ImageSelector).Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || IsAdImage(src, config.AdImagePath) {
			return
		}
		images = append(images, src)
	})
	return images
}
