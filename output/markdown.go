package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pevans/tempo/article"
	"gopkg.in/yaml.v3"
)

const (
	titleSuffix   = " | tempo.co"
	maxSlugLength = 100
	untitledSlug  = "untitled-article"
)

var (
	slugUnsafe     = regexp.MustCompile(`[^a-zA-Z0-9\s\-_.]`)
	slugSeparators = regexp.MustCompile(`[\s\-_.]+`)
	tagUnsafe      = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// frontMatter is the YAML header of a converted note.
type frontMatter struct {
	Title       string   `yaml:"title"`
	URL         string   `yaml:"url"`
	Category    string   `yaml:"category"`
	PublishedAt string   `yaml:"published_at,omitempty"`
	Authors     []string `yaml:"authors,omitempty"`
	Tags        []string `yaml:"tags"`
}

// ConvertResult summarizes a Markdown conversion.
type ConvertResult struct {
	Written []string
	Errors  []ReadError
}

// ConvertPath reads every record under input (a JSON file or an output
// directory) and writes one Markdown note per record into
// outDir/<category>/. Relative record URLs are resolved against siteURL.
func ConvertPath(input, outDir, siteURL string) (*ConvertResult, error) {
	read, err := ReadRecords(input)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create markdown directory: %w", err)
	}

	result := &ConvertResult{Errors: read.Errors}
	for _, record := range read.Records {
		if record.URL == "" {
			continue
		}
		if !strings.HasPrefix(record.URL, "http://") && !strings.HasPrefix(record.URL, "https://") {
			record.URL = strings.TrimSuffix(siteURL, "/") + "/" + strings.TrimPrefix(record.URL, "/")
		}

		data, err := RenderMarkdown(record)
		if err != nil {
			return result, err
		}

		category := record.Category
		if category == "" {
			category = article.CategoryFromURL(record.URL)
		}
		dir := filepath.Join(outDir, Slugify(category))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, fmt.Errorf("failed to create category directory: %w", err)
		}

		path := uniquePath(dir, Slugify(record.Title))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
		result.Written = append(result.Written, path)
	}

	return result, nil
}

// RenderMarkdown renders a record as a note with YAML front matter.
// Summaries without a body render as a link to the original article.
func RenderMarkdown(c article.Content) ([]byte, error) {
	title := CleanTitle(c.Title)

	fm := frontMatter{
		Title:    title,
		URL:      c.URL,
		Category: c.Category,
		Authors:  c.Authors,
		Tags:     noteTags(c),
	}
	if c.PublishedAt != nil {
		fm.PublishedAt = c.PublishedAt.Format("2006/01/02 15:04:05")
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if len(c.Body) == 0 {
		fmt.Fprintf(&buf, "[Read on tempo.co](%s)\n", c.URL)
		return buf.Bytes(), nil
	}

	for _, paragraph := range c.Body {
		buf.WriteString(paragraph)
		buf.WriteString("\n\n")
	}
	for _, image := range c.Images {
		fmt.Fprintf(&buf, "![](%s)\n", image)
	}

	return buf.Bytes(), nil
}

// CleanTitle removes the site suffix tempo.co appends to page titles.
func CleanTitle(title string) string {
	title, _, _ = strings.Cut(title, titleSuffix)
	return strings.TrimSpace(title)
}

// Slugify turns a title into a lowercase file-safe name of at most 100
// characters.
func Slugify(title string) string {
	slug := slugUnsafe.ReplaceAllString(CleanTitle(title), " ")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	slug = strings.ToLower(strings.Trim(slug, "-"))

	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return untitledSlug
	}
	return slug
}

// noteTags leads with #free or #premium followed by the article's own tags.
func noteTags(c article.Content) []string {
	tags := []string{"#premium"}
	if c.IsFree {
		tags[0] = "#free"
	}

	for _, tag := range c.Tags {
		cleaned := strings.ToLower(strings.Trim(tagUnsafe.ReplaceAllString(tag, "-"), "-"))
		if cleaned != "" {
			tags = append(tags, "#"+cleaned)
		}
	}
	return tags
}

// uniquePath appends -1, -2, ... to slug until the file does not exist.
func uniquePath(dir, slug string) string {
	path := filepath.Join(dir, slug+".md")
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d.md", slug, i))
	}
}
