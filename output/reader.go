package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pevans/tempo/article"
)

// ReadError describes a failure to read a single output file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

// ReadResult contains the records read back from output files, including
// any per-file errors. Summaries decode into Content with empty body.
type ReadResult struct {
	Records []article.Content
	Errors  []ReadError
}

// ReadRecords reads records from a flat index file, a single article file,
// or a categorized output directory. Unreadable files are collected in the
// result's Errors rather than failing the whole read.
func ReadRecords(path string) (*ReadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}

	result := &ReadResult{}
	if !info.IsDir() {
		records, err := readFile(path)
		if err != nil {
			return nil, err
		}
		result.Records = records
		return result, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" || entry.Name() == MetadataFile {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		records, err := readFile(filepath.Join(path, name))
		if err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: name, Err: err})
			continue
		}
		result.Records = append(result.Records, records...)
	}

	return result, nil
}

func readFile(path string) ([]article.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	// Category files hold a bare array of records
	if data[0] == '[' {
		var records []article.Content
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal records: %w", err)
		}
		return records, nil
	}

	var doc struct {
		Articles []article.Content `json:"articles"`
		article.Content
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file: %w", err)
	}

	if doc.Articles != nil {
		return doc.Articles, nil
	}
	if doc.URL != "" {
		return []article.Content{doc.Content}, nil
	}
	return nil, fmt.Errorf("no articles found")
}
