package tempo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pevans/tempo/article"
	"github.com/pevans/tempo/output"
)

// MaxPages is how far past the start page a single run may go.
const MaxPages = 50

var (
	ErrPageRangeTooLarge = fmt.Errorf("end page is more than %d pages after start page", MaxPages)
	ErrInvalidPageRange  = errors.New("end page must not be before start page")
	ErrInvalidDelay      = errors.New("delay must not be negative")
	ErrInvalidURL        = errors.New("article URL must be an absolute http(s) URL")
)

// Stage is a step of a scrape run.
type Stage string

const (
	StageInit              Stage = "init"
	StageBuildingURLs      Stage = "building_urls"
	StageFetchingIndex     Stage = "fetching_index"
	StageParsingIndex      Stage = "parsing_index"
	StageExtractingContent Stage = "extracting_content"
	StageWriting           Stage = "writing"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// Failure records a page or article that was skipped without aborting the
// run.
type Failure struct {
	Stage Stage
	Page  int
	URL   string
	Err   error
}

func (f Failure) Error() string {
	switch {
	case f.URL != "" && f.Page > 0:
		return fmt.Sprintf("%s page %d (%s): %v", f.Stage, f.Page, f.URL, f.Err)
	case f.URL != "":
		return fmt.Sprintf("%s %s: %v", f.Stage, f.URL, f.Err)
	case f.Page > 0:
		return fmt.Sprintf("%s page %d: %v", f.Stage, f.Page, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// StageError is a fatal error, tagged with the stage it happened in.
type StageError struct {
	Stage Stage
	Page  int
	URL   string
	Err   error
}

func (e *StageError) Error() string {
	return Failure(*e).Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// PartialRunFailure reports a run that completed and wrote its output but
// skipped some pages or articles.
type PartialRunFailure struct {
	Failures []Failure
}

func (e *PartialRunFailure) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%d failure(s): %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *PartialRunFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// ScrapeRun accumulates the state of one run.
type ScrapeRun struct {
	Kind         string
	Options      Options
	Stage        Stage
	StartedAt    time.Time
	FinishedAt   time.Time
	PagesScanned int
	PagesFailed  int
	Skipped      int
	Summaries    []article.Summary
	Contents     []article.Content
	Failures     []Failure
	OutputPath   string

	contentByURL map[string]int
}

func newRun(kind string, opts Options) *ScrapeRun {
	return &ScrapeRun{
		Kind:         kind,
		Options:      opts,
		Stage:        StageInit,
		StartedAt:    time.Now(),
		Summaries:    []article.Summary{},
		Contents:     []article.Content{},
		contentByURL: map[string]int{},
	}
}

func (r *ScrapeRun) enter(stage Stage) {
	r.Stage = stage
}

// fail moves the run to the failed stage and returns the fatal error.
func (r *ScrapeRun) fail(stage Stage, page int, url string, err error) error {
	r.Stage = StageFailed
	r.FinishedAt = time.Now()
	return &StageError{Stage: stage, Page: page, URL: url, Err: err}
}

func (r *ScrapeRun) record(stage Stage, page int, url string, err error) {
	r.Failures = append(r.Failures, Failure{Stage: stage, Page: page, URL: url, Err: err})
}

func (r *ScrapeRun) addContent(c article.Content) {
	if i, ok := r.contentByURL[c.URL]; ok {
		r.Contents[i] = c
		return
	}
	r.contentByURL[c.URL] = len(r.Contents)
	r.Contents = append(r.Contents, c)
}

// Content returns the extracted content for url, if any.
func (r *ScrapeRun) Content(url string) (article.Content, bool) {
	i, ok := r.contentByURL[url]
	if !ok {
		return article.Content{}, false
	}
	return r.Contents[i], true
}

// Records returns the output records in listing order. A summary whose
// content was extracted is replaced by that content.
func (r *ScrapeRun) Records() []article.Record {
	records := make([]article.Record, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		if c, ok := r.Content(s.URL); ok {
			records = append(records, c)
			continue
		}
		records = append(records, s)
	}
	return records
}

// Err returns a *PartialRunFailure when any page or article failed.
func (r *ScrapeRun) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialRunFailure{Failures: r.Failures}
}

// Metadata describes the run for the writer.
func (r *ScrapeRun) Metadata() output.Metadata {
	opts := r.Options
	meta := output.Metadata{
		Type:        r.Kind,
		GeneratedAt: time.Now(),
		Options: output.Options{
			StartPage:       opts.StartPage,
			EndPage:         opts.EndPage,
			Delay:           opts.Delay.String(),
			Rubric:          opts.Rubric,
			ArticlesPerPage: opts.ArticlesPerPage,
			ExtractContent:  opts.ExtractContent,
			Categorize:      opts.Categorize,
			Source:          opts.Source,
		},
		PagesScanned:      r.PagesScanned,
		PagesFailed:       r.PagesFailed,
		ArticlesExtracted: len(r.Contents),
		ArticlesSkipped:   r.Skipped,
	}
	if opts.DateRange != nil {
		meta.Options.StartDate = opts.DateRange.StartDate()
		meta.Options.EndDate = opts.DateRange.EndDate()
	}

	for _, f := range r.Failures {
		meta.Failures = append(meta.Failures, output.Failure{
			Stage: string(f.Stage),
			Page:  f.Page,
			URL:   f.URL,
			Error: f.Err.Error(),
		})
	}

	return meta
}
