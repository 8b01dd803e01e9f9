package tempo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"net/url"
	"slices"
	"time"

	"github.com/pevans/tempo/article"
	"github.com/pevans/tempo/daterange"
	"github.com/pevans/tempo/discovery"
	"github.com/pevans/tempo/output"
	"github.com/pevans/tempo/scraper"
)

// Writer persists the results of a run.
type Writer interface {
	WriteIndex(meta output.Metadata, records []article.Record, categorize bool, name string) (string, error)
	WriteArticle(content article.Content, name string) (string, error)
}

// PipelineConfig holds the pipeline's site configuration and logger.
type PipelineConfig struct {
	Site   scraper.Config
	Logger *log.Logger
}

// DefaultPipelineConfig returns a config for the live site with logging
// disabled.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Site: scraper.DefaultConfig(),
	}
}

// Options are the parameters of a single run.
type Options struct {
	StartPage       int
	EndPage         int
	Delay           time.Duration
	DateRange       *daterange.DateRange
	Rubric          string
	ArticlesPerPage int
	ExtractContent  bool
	Categorize      bool
	OutputName      string
	Credential      string

	// Source is the listing URL of a feed run.
	Source string
}

// DefaultOptions returns options for a one-page run with a one second delay.
func DefaultOptions() Options {
	return Options{
		StartPage: 1,
		EndPage:   1,
		Delay:     time.Second,
	}
}

// Validate checks the page range, date range and delay. EndPage may be at
// most MaxPages past StartPage.
func (o Options) Validate() error {
	if o.StartPage < 1 {
		return fmt.Errorf("start page %d: %w", o.StartPage, scraper.ErrInvalidPage)
	}
	if o.EndPage < o.StartPage {
		return fmt.Errorf("pages %d..%d: %w", o.StartPage, o.EndPage, ErrInvalidPageRange)
	}
	if o.EndPage-o.StartPage > MaxPages {
		return fmt.Errorf("pages %d..%d: %w", o.StartPage, o.EndPage, ErrPageRangeTooLarge)
	}
	if o.DateRange != nil && o.DateRange.Start.After(o.DateRange.End) {
		return fmt.Errorf("%w: %s", daterange.ErrInvalidRange, o.DateRange)
	}
	if o.Delay < 0 {
		return ErrInvalidDelay
	}
	return nil
}

// PageResult is one index page, parsed or failed.
type PageResult struct {
	Page      int
	URL       string
	Summaries []article.Summary
	Stage     Stage
	Err       error
}

// ContentResult is the outcome for one summary. Skipped is set for
// paywalled summaries, which are never fetched.
type ContentResult struct {
	Summary article.Summary
	Content *article.Content
	Skipped bool
	Err     error
}

// Pipeline scrapes index pages and articles sequentially.
type Pipeline struct {
	fetcher discovery.Fetcher
	writer  Writer
	config  *PipelineConfig
	logger  *log.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewPipeline creates a pipeline. A nil config uses DefaultPipelineConfig.
func NewPipeline(fetcher discovery.Fetcher, writer Writer, config *PipelineConfig) *Pipeline {
	if config == nil {
		config = DefaultPipelineConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Pipeline{
		fetcher: fetcher,
		writer:  writer,
		config:  config,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// pacer enforces a fixed delay before every fetch except the first.
type pacer struct {
	delay   time.Duration
	started bool
	sleep   func(ctx context.Context, d time.Duration) error
}

func (p *Pipeline) newPacer(delay time.Duration) *pacer {
	return &pacer{delay: delay, sleep: p.sleep}
}

func (pc *pacer) wait(ctx context.Context) error {
	if !pc.started {
		pc.started = true
		return ctx.Err()
	}
	return pc.sleep(ctx, pc.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pages lazily fetches and parses each index page in the range. Pages are
// fetched only as the sequence is consumed.
func (p *Pipeline) Pages(ctx context.Context, opts Options) iter.Seq[PageResult] {
	return p.pages(ctx, opts, p.newPacer(opts.Delay), nil)
}

// Contents lazily extracts the article behind each free summary.
func (p *Pipeline) Contents(ctx context.Context, opts Options, summaries iter.Seq[article.Summary]) iter.Seq[ContentResult] {
	return p.contents(ctx, opts, summaries, p.newPacer(opts.Delay), nil)
}

func (p *Pipeline) pages(ctx context.Context, opts Options, pace *pacer, enter func(Stage)) iter.Seq[PageResult] {
	if enter == nil {
		enter = func(Stage) {}
	}
	site := p.config.Site.Index

	return func(yield func(PageResult) bool) {
		for page := opts.StartPage; page <= opts.EndPage; page++ {
			enter(StageBuildingURLs)
			pageURL, err := scraper.BuildIndexURL(site.BaseURL, page, opts.Rubric, opts.DateRange, opts.ArticlesPerPage)
			if err != nil {
				if !yield(PageResult{Page: page, Stage: StageBuildingURLs, Err: err}) {
					return
				}
				continue
			}

			if err := pace.wait(ctx); err != nil {
				yield(PageResult{Page: page, URL: pageURL, Stage: StageFetchingIndex, Err: err})
				return
			}

			enter(StageFetchingIndex)
			p.logger.Printf("INFO: Fetching index page %d: %s", page, pageURL)
			html, err := p.fetcher.Fetch(ctx, pageURL, opts.Credential)
			if err != nil {
				if !yield(PageResult{Page: page, URL: pageURL, Stage: StageFetchingIndex, Err: err}) {
					return
				}
				continue
			}

			enter(StageParsingIndex)
			summaries, err := discovery.ParseIndexPage(html, site)
			if err != nil {
				if !yield(PageResult{Page: page, URL: pageURL, Stage: StageParsingIndex, Err: err}) {
					return
				}
				continue
			}

			if opts.ArticlesPerPage > 0 && len(summaries) > opts.ArticlesPerPage {
				summaries = summaries[:opts.ArticlesPerPage]
			}

			if !yield(PageResult{Page: page, URL: pageURL, Summaries: summaries, Stage: StageParsingIndex}) {
				return
			}
		}
	}
}

func (p *Pipeline) contents(ctx context.Context, opts Options, summaries iter.Seq[article.Summary], pace *pacer, enter func(Stage)) iter.Seq[ContentResult] {
	if enter == nil {
		enter = func(Stage) {}
	}

	return func(yield func(ContentResult) bool) {
		for summary := range summaries {
			if !summary.IsFree {
				if !yield(ContentResult{Summary: summary, Skipped: true}) {
					return
				}
				continue
			}

			if err := pace.wait(ctx); err != nil {
				yield(ContentResult{Summary: summary, Err: err})
				return
			}

			enter(StageExtractingContent)
			content, err := p.extract(ctx, summary.URL, opts.Credential)
			if !yield(ContentResult{Summary: summary, Content: content, Err: err}) {
				return
			}
		}
	}
}

func (p *Pipeline) extract(ctx context.Context, articleURL, credential string) (*article.Content, error) {
	p.logger.Printf("INFO: Extracting %s", articleURL)

	html, err := p.fetcher.Fetch(ctx, articleURL, credential)
	if err != nil {
		return nil, err
	}
	return discovery.ExtractArticle(html, articleURL, p.config.Site.Article)
}

// Run scrapes the index pages in opts, optionally extracts each free
// article, and writes the result once. Page and article failures are
// recorded on the run; the returned error is set only when the run could
// not complete.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*ScrapeRun, error) {
	run := newRun("index", opts)
	if err := opts.Validate(); err != nil {
		return run, run.fail(StageInit, 0, "", err)
	}

	seen := map[string]bool{}
	pace := p.newPacer(opts.Delay)
	for page := range p.pages(ctx, opts, pace, run.enter) {
		if page.Err != nil {
			if isCancelled(page.Err) {
				return run, run.fail(page.Stage, page.Page, page.URL, page.Err)
			}
			p.logger.Printf("WARN: Index page %d failed: %v", page.Page, page.Err)
			run.PagesFailed++
			run.record(page.Stage, page.Page, page.URL, page.Err)
			continue
		}

		// Listings shift while paging, so a link may show up on two pages.
		fresh := make([]article.Summary, 0, len(page.Summaries))
		for _, summary := range page.Summaries {
			if seen[summary.URL] {
				continue
			}
			seen[summary.URL] = true
			fresh = append(fresh, summary)
		}

		run.PagesScanned++
		run.Summaries = append(run.Summaries, fresh...)
		p.logger.Printf("INFO: Page %d: %d articles", page.Page, len(fresh))

		if !opts.ExtractContent {
			continue
		}
		if err := p.collectContents(ctx, run, slices.Values(fresh), pace, page.Page); err != nil {
			return run, err
		}
	}

	return run, p.writeIndex(run)
}

// RunFeed lists articles from the RSS feed at feedURL instead of the index
// pages, then continues like Run. Only ArticlesPerPage, ExtractContent,
// Categorize, OutputName and Credential apply.
func (p *Pipeline) RunFeed(ctx context.Context, feedURL string, opts Options) (*ScrapeRun, error) {
	opts.Source = feedURL
	run := newRun("feed", opts)
	if opts.Delay < 0 {
		return run, run.fail(StageInit, 0, "", ErrInvalidDelay)
	}

	pace := p.newPacer(opts.Delay)
	if err := pace.wait(ctx); err != nil {
		return run, run.fail(StageFetchingIndex, 0, feedURL, err)
	}

	run.enter(StageFetchingIndex)
	p.logger.Printf("INFO: Fetching feed %s", feedURL)
	data, err := p.fetcher.Fetch(ctx, feedURL, opts.Credential)
	if err != nil {
		return run, run.fail(StageFetchingIndex, 0, feedURL, err)
	}

	run.enter(StageParsingIndex)
	summaries, err := discovery.ParseFeed(data)
	if err != nil {
		return run, run.fail(StageParsingIndex, 0, feedURL, err)
	}
	if opts.ArticlesPerPage > 0 && len(summaries) > opts.ArticlesPerPage {
		summaries = summaries[:opts.ArticlesPerPage]
	}
	run.PagesScanned = 1
	run.Summaries = summaries

	if opts.ExtractContent {
		if err := p.collectContents(ctx, run, slices.Values(summaries), pace, 0); err != nil {
			return run, err
		}
	}

	return run, p.writeIndex(run)
}

func (p *Pipeline) collectContents(ctx context.Context, run *ScrapeRun, summaries iter.Seq[article.Summary], pace *pacer, page int) error {
	for result := range p.contents(ctx, run.Options, summaries, pace, run.enter) {
		switch {
		case result.Skipped:
			run.Skipped++
		case result.Err != nil:
			if isCancelled(result.Err) {
				return run.fail(StageExtractingContent, page, result.Summary.URL, result.Err)
			}
			p.logger.Printf("WARN: Article %s failed: %v", result.Summary.URL, result.Err)
			run.record(StageExtractingContent, page, result.Summary.URL, result.Err)
		default:
			run.addContent(*result.Content)
		}
	}
	return nil
}

func (p *Pipeline) writeIndex(run *ScrapeRun) error {
	run.enter(StageWriting)
	path, err := p.writer.WriteIndex(run.Metadata(), run.Records(), run.Options.Categorize, run.Options.OutputName)
	if err != nil {
		return run.fail(StageWriting, 0, "", err)
	}

	run.OutputPath = path
	run.enter(StageDone)
	run.FinishedAt = time.Now()
	p.logger.Printf("INFO: Wrote %d records to %s", len(run.Summaries), path)
	return nil
}

// ExtractSingle fetches and extracts one article and writes it with
// WriteArticle. Any failure is fatal and returned as a *StageError.
func (p *Pipeline) ExtractSingle(ctx context.Context, articleURL, outputName, credential string) (*ScrapeRun, error) {
	run := newRun("article", Options{OutputName: outputName, Credential: credential, Source: articleURL})

	u, err := url.Parse(articleURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return run, run.fail(StageInit, 0, articleURL, ErrInvalidURL)
	}
	if err := ctx.Err(); err != nil {
		return run, run.fail(StageInit, 0, articleURL, err)
	}

	run.enter(StageExtractingContent)
	content, err := p.extract(ctx, articleURL, credential)
	if err != nil {
		return run, run.fail(StageExtractingContent, 0, articleURL, err)
	}
	run.Summaries = append(run.Summaries, article.Summary{
		URL:         content.URL,
		Title:       content.Title,
		Category:    content.Category,
		IsFree:      content.IsFree,
		PublishedAt: content.PublishedAt,
	})
	run.addContent(*content)

	run.enter(StageWriting)
	path, err := p.writer.WriteArticle(*content, outputName)
	if err != nil {
		return run, run.fail(StageWriting, 0, articleURL, err)
	}

	run.OutputPath = path
	run.enter(StageDone)
	run.FinishedAt = time.Now()
	p.logger.Printf("INFO: Wrote article to %s", path)
	return run, nil
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
