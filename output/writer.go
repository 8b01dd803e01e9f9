package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/tempo/article"
)

// MetadataFile is the name of the run description inside a categorized
// output directory.
const MetadataFile = "metadata.json"

// Options records the parameters a run was started with.
type Options struct {
	StartPage       int    `json:"start_page,omitempty"`
	EndPage         int    `json:"end_page,omitempty"`
	Delay           string `json:"delay,omitempty"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Rubric          string `json:"rubric"`
	ArticlesPerPage int    `json:"article_per_page,omitempty"`
	ExtractContent  bool   `json:"extract_content"`
	Categorize      bool   `json:"categorize"`
	Source          string `json:"source,omitempty"`
}

// Failure is a page or article that could not be fetched or parsed.
type Failure struct {
	Stage string `json:"stage"`
	Page  int    `json:"page,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// Metadata describes one index run.
type Metadata struct {
	Type              string         `json:"type"`
	GeneratedAt       time.Time      `json:"generated_at"`
	Options           Options        `json:"scraping_options"`
	TotalArticles     int            `json:"total_articles"`
	PagesScanned      int            `json:"pages_scanned"`
	PagesFailed       int            `json:"pages_failed"`
	ArticlesExtracted int            `json:"articles_extracted"`
	ArticlesSkipped   int            `json:"articles_skipped"`
	Categories        map[string]int `json:"categories,omitempty"`
	Failures          []Failure      `json:"failures,omitempty"`
}

// IndexFile is the layout of a flat index output file.
type IndexFile struct {
	Metadata Metadata         `json:"metadata"`
	Articles []article.Record `json:"articles"`
}

// Writer persists scrape results as JSON files under one directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Writer{
		dir: dir,
		now: time.Now,
	}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteIndex writes the records of an index run. Flat output is a single
// <name>.json file; categorized output is a <name>/ directory with one file
// per category plus metadata.json. Returns the path written.
func (w *Writer) WriteIndex(meta Metadata, records []article.Record, categorize bool, name string) (string, error) {
	if name = cleanName(name); name == "" {
		name = "indeks_" + w.now().Format("20060102_150405")
	}
	if meta.Type == "" {
		meta.Type = "index"
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = w.now()
	}
	meta.TotalArticles = len(records)
	if records == nil {
		records = []article.Record{}
	}

	if !categorize {
		path := filepath.Join(w.dir, name+".json")
		if err := writeJSON(path, IndexFile{Metadata: meta, Articles: records}); err != nil {
			return "", err
		}
		return path, nil
	}

	dir := filepath.Join(w.dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}

	order, groups := Categorize(records)
	meta.Categories = make(map[string]int, len(order))
	used := map[string]bool{MetadataFile: true}
	for _, category := range order {
		meta.Categories[category] = len(groups[category])

		path := filepath.Join(dir, categoryFilename(category, used))
		if err := writeJSON(path, groups[category]); err != nil {
			return "", err
		}
	}

	if err := writeJSON(filepath.Join(dir, MetadataFile), meta); err != nil {
		return "", err
	}

	return dir, nil
}

// WriteArticle writes a single extracted article as one JSON object.
func (w *Writer) WriteArticle(content article.Content, name string) (string, error) {
	if name = cleanName(name); name == "" {
		name = "article_" + w.now().Format("20060102_150405")
	}

	path := filepath.Join(w.dir, name+".json")
	if err := writeJSON(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// Categorize groups records by category. Categories are returned in order
// of first appearance; records keep their relative order.
func Categorize(records []article.Record) ([]string, map[string][]article.Record) {
	var order []string
	groups := map[string][]article.Record{}

	for _, record := range records {
		category := record.RecordCategory()
		if category == "" {
			category = article.DefaultCategory
		}
		if _, ok := groups[category]; !ok {
			order = append(order, category)
		}
		groups[category] = append(groups[category], record)
	}

	return order, groups
}

// categoryFilename maps a category to a file name that cannot escape the
// directory or collide with a name in used. Categories that slugify alike
// get -1, -2, ... appended. The chosen name is added to used.
func categoryFilename(category string, used map[string]bool) string {
	slug := Slugify(category)
	if slug == "metadata" {
		slug = "metadata-articles"
	}

	name := slug + ".json"
	for i := 1; used[name]; i++ {
		name = fmt.Sprintf("%s-%d.json", slug, i)
	}
	used[name] = true
	return name
}

// cleanName strips directories and a trailing .json from a user-supplied
// output name.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSuffix(filepath.Base(name), ".json")
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// writeJSON writes v as indented JSON through a temporary file so readers
// never see a partial file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}

	return nil
}
