package tempo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pevans/tempo/article"
	"github.com/pevans/tempo/daterange"
	"github.com/pevans/tempo/discovery"
	"github.com/pevans/tempo/output"
	"github.com/pevans/tempo/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url, credential string) (string, error) {
	args := m.Called(ctx, url, credential)
	return args.String(0), args.Error(1)
}

type fakeWriter struct {
	indexCalls   int
	articleCalls int
	meta         output.Metadata
	records      []article.Record
	categorize   bool
	content      article.Content
	err          error
}

func (w *fakeWriter) WriteIndex(meta output.Metadata, records []article.Record, categorize bool, name string) (string, error) {
	w.indexCalls++
	w.meta = meta
	w.records = records
	w.categorize = categorize
	if w.err != nil {
		return "", w.err
	}
	return "/out/" + name + ".json", nil
}

func (w *fakeWriter) WriteArticle(content article.Content, name string) (string, error) {
	w.articleCalls++
	w.content = content
	if w.err != nil {
		return "", w.err
	}
	return "/out/" + name + ".json", nil
}

type entry struct {
	path    string
	title   string
	premium bool
}

func indexHTML(entries ...entry) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="flex flex-col divide-y divide-neutral-500">`)
	for _, e := range entries {
		marker := ""
		if e.premium {
			marker = `<span class="inline-flex bg-primary-main"></span>`
		}
		fmt.Fprintf(&b, `<div><figure><figcaption><p><a href="%s">%s%s</a></p></figcaption></figure></div>`, e.path, marker, e.title)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func articleHTML(title string) string {
	return `<html><head><title>` + title + ` | tempo.co</title></head><body>
		<article class="grow space-y-6 overflow-x-clip z-10">
			<div id="content-wrapper"><p>Isi ` + title + `.</p></div>
		</article></body></html>`
}

func pageURL(page int) string {
	return fmt.Sprintf("https://www.tempo.co/indeks?page=%d", page)
}

func siteURL(path string) string {
	return "https://www.tempo.co" + path
}

type sleepRecorder struct {
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return s.err
}

func newTestPipeline(fetcher *mockFetcher, writer *fakeWriter) (*Pipeline, *sleepRecorder) {
	p := NewPipeline(fetcher, writer, nil)
	rec := &sleepRecorder{}
	p.sleep = rec.sleep
	return p, rec
}

// TestRun_SkipsPremiumArticles verifies only free articles are fetched
func TestRun_SkipsPremiumArticles(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	fetcher.On("Fetch", mock.Anything, pageURL(1), "").Return(indexHTML(
		entry{path: "/politik/a-1", title: "A"},
		entry{path: "/ekonomi/b-2", title: "B", premium: true},
		entry{path: "/hukum/c-3", title: "C"},
	), nil).Once()
	fetcher.On("Fetch", mock.Anything, siteURL("/politik/a-1"), "").Return(articleHTML("A"), nil).Once()
	fetcher.On("Fetch", mock.Anything, siteURL("/hukum/c-3"), "").Return(articleHTML("C"), nil).Once()

	opts := DefaultOptions()
	opts.ExtractContent = true

	run, err := p.Run(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, run.Err())

	fetcher.AssertExpectations(t)
	fetcher.AssertNumberOfCalls(t, "Fetch", 3)

	assert.Equal(t, StageDone, run.Stage)
	assert.Len(t, run.Contents, 2)
	assert.Equal(t, 1, run.Skipped)

	require.Len(t, writer.records, 3)
	assert.IsType(t, article.Content{}, writer.records[0])
	assert.IsType(t, article.Summary{}, writer.records[1])
	assert.IsType(t, article.Content{}, writer.records[2])
	assert.Equal(t, 2, writer.meta.ArticlesExtracted)
}

// TestRun_WritesOnceAndNeverWritesArticles verifies an index run uses
// WriteIndex exactly once
func TestRun_WritesOnceAndNeverWritesArticles(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	fetcher.On("Fetch", mock.Anything, pageURL(1), "").Return(indexHTML(entry{path: "/politik/a-1", title: "A"}), nil)
	fetcher.On("Fetch", mock.Anything, siteURL("/politik/a-1"), "").Return(articleHTML("A"), nil)

	opts := DefaultOptions()
	opts.ExtractContent = true
	opts.Categorize = true
	opts.OutputName = "run"

	run, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, writer.indexCalls)
	assert.Zero(t, writer.articleCalls)
	assert.True(t, writer.categorize)
	assert.Equal(t, "/out/run.json", run.OutputPath)
}

// TestRun_PageFailureIsRecorded verifies a failed page does not abort the
// run
func TestRun_PageFailureIsRecorded(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	fetchErr := &discovery.FetchError{URL: pageURL(5), StatusCode: 500}
	for page := 1; page <= 10; page++ {
		if page == 5 {
			fetcher.On("Fetch", mock.Anything, pageURL(page), "").Return("", fetchErr).Once()
			continue
		}
		fetcher.On("Fetch", mock.Anything, pageURL(page), "").
			Return(indexHTML(entry{path: fmt.Sprintf("/politik/a-%d", page), title: "A"}), nil).Once()
	}

	opts := DefaultOptions()
	opts.EndPage = 10

	run, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	fetcher.AssertExpectations(t)
	assert.Equal(t, StageDone, run.Stage)
	assert.Equal(t, 9, run.PagesScanned)
	assert.Equal(t, 1, run.PagesFailed)
	assert.Len(t, run.Summaries, 9)

	var partial *PartialRunFailure
	require.True(t, errors.As(run.Err(), &partial))
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, 5, partial.Failures[0].Page)
	assert.Equal(t, StageFetchingIndex, partial.Failures[0].Stage)

	var gotFetchErr *discovery.FetchError
	assert.True(t, errors.As(run.Err(), &gotFetchErr))

	assert.Equal(t, 1, writer.indexCalls)
	require.Len(t, writer.meta.Failures, 1)
	assert.Equal(t, 5, writer.meta.Failures[0].Page)
}

// TestRun_ArticleFailureIsRecorded verifies a malformed article keeps its
// summary in the output
func TestRun_ArticleFailureIsRecorded(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	fetcher.On("Fetch", mock.Anything, pageURL(1), "").Return(indexHTML(
		entry{path: "/foto/galeri-1", title: "Galeri"},
		entry{path: "/politik/a-2", title: "A"},
	), nil)
	fetcher.On("Fetch", mock.Anything, siteURL("/foto/galeri-1"), "").Return("<html><title>Foto</title></html>", nil)
	fetcher.On("Fetch", mock.Anything, siteURL("/politik/a-2"), "").Return(articleHTML("A"), nil)

	opts := DefaultOptions()
	opts.ExtractContent = true

	run, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.ErrorIs(t, run.Err(), discovery.ErrMalformedArticlePage)
	require.Len(t, writer.records, 2)
	assert.IsType(t, article.Summary{}, writer.records[0])
	assert.IsType(t, article.Content{}, writer.records[1])
}

// TestRun_Pacing verifies the delay precedes every fetch except the first
func TestRun_Pacing(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, rec := newTestPipeline(fetcher, writer)

	for page := 1; page <= 2; page++ {
		fetcher.On("Fetch", mock.Anything, pageURL(page), "").
			Return(indexHTML(entry{path: fmt.Sprintf("/politik/a-%d", page), title: "A"}), nil)
		fetcher.On("Fetch", mock.Anything, siteURL(fmt.Sprintf("/politik/a-%d", page)), "").
			Return(articleHTML("A"), nil)
	}

	opts := DefaultOptions()
	opts.EndPage = 2
	opts.Delay = 250 * time.Millisecond
	opts.ExtractContent = true

	_, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	fetcher.AssertNumberOfCalls(t, "Fetch", 4)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond}, rec.delays)
}

// TestRun_CancelledDuringDelay verifies cancellation is fatal
func TestRun_CancelledDuringDelay(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, rec := newTestPipeline(fetcher, writer)
	rec.err = context.Canceled

	fetcher.On("Fetch", mock.Anything, pageURL(1), "").Return(indexHTML(entry{path: "/politik/a-1", title: "A"}), nil)

	opts := DefaultOptions()
	opts.EndPage = 3

	run, err := p.Run(context.Background(), opts)

	assert.ErrorIs(t, err, context.Canceled)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, 2, stageErr.Page)
	assert.Equal(t, StageFailed, run.Stage)
	assert.Zero(t, writer.indexCalls)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

// TestRun_InvalidOptions verifies input errors are returned before any
// fetch
func TestRun_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr error
	}{
		{"start page zero", func(o *Options) { o.StartPage = 0 }, scraper.ErrInvalidPage},
		{"end before start", func(o *Options) { o.StartPage = 3; o.EndPage = 2 }, ErrInvalidPageRange},
		{"too many pages", func(o *Options) { o.EndPage = MaxPages + 2 }, ErrPageRangeTooLarge},
		{"negative delay", func(o *Options) { o.Delay = -time.Second }, ErrInvalidDelay},
		{"dates reversed", func(o *Options) {
			o.DateRange = &daterange.DateRange{
				Start: time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			}
		}, daterange.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockFetcher{}
			writer := &fakeWriter{}
			p, _ := newTestPipeline(fetcher, writer)

			opts := DefaultOptions()
			tt.modify(&opts)

			run, err := p.Run(context.Background(), opts)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StageFailed, run.Stage)
			fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
			assert.Zero(t, writer.indexCalls)
		})
	}
}

// TestRun_MaxPagesAllowed verifies an end page MaxPages past the start is
// accepted
func TestRun_MaxPagesAllowed(t *testing.T) {
	opts := DefaultOptions()
	opts.EndPage = opts.StartPage + MaxPages

	assert.NoError(t, opts.Validate())
}

// TestRun_DuplicateLinksAcrossPages verifies a link listed on two pages is
// recorded and extracted once
func TestRun_DuplicateLinksAcrossPages(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	fetcher.On("Fetch", mock.Anything, pageURL(1), "").Return(indexHTML(
		entry{path: "/politik/a-1", title: "A"},
		entry{path: "/politik/b-2", title: "B"},
	), nil)
	fetcher.On("Fetch", mock.Anything, pageURL(2), "").Return(indexHTML(
		entry{path: "/politik/b-2", title: "B"},
		entry{path: "/politik/c-3", title: "C"},
	), nil)
	for _, path := range []string{"/politik/a-1", "/politik/b-2", "/politik/c-3"} {
		fetcher.On("Fetch", mock.Anything, siteURL(path), "").Return(articleHTML("X"), nil).Once()
	}

	opts := DefaultOptions()
	opts.EndPage = 2
	opts.ExtractContent = true

	run, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	fetcher.AssertExpectations(t)
	fetcher.AssertNumberOfCalls(t, "Fetch", 5)
	assert.Len(t, run.Summaries, 3)
	assert.Len(t, writer.records, 3)
}

// TestRun_WriterFailure verifies a writer error fails the run
func TestRun_WriterFailure(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{err: errors.New("disk full")}
	p, _ := newTestPipeline(fetcher, writer)

	fetcher.On("Fetch", mock.Anything, pageURL(1), "").Return(indexHTML(), nil)

	run, err := p.Run(context.Background(), DefaultOptions())

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageWriting, stageErr.Stage)
	assert.Equal(t, StageFailed, run.Stage)
}

// TestRun_ArticlesPerPage verifies the per-page limit truncates summaries
func TestRun_ArticlesPerPage(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	fetcher.On("Fetch", mock.Anything, "https://www.tempo.co/indeks?page=1&per_page=2", "").Return(indexHTML(
		entry{path: "/politik/a-1", title: "A"},
		entry{path: "/politik/a-2", title: "B"},
		entry{path: "/politik/a-3", title: "C"},
	), nil)

	opts := DefaultOptions()
	opts.ArticlesPerPage = 2

	run, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Len(t, run.Summaries, 2)
	assert.Equal(t, 2, writer.meta.Options.ArticlesPerPage)
}

// TestRun_CredentialForwarded verifies the credential reaches every fetch
func TestRun_CredentialForwarded(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	fetcher.On("Fetch", mock.Anything, pageURL(1), "session=abc").Return(indexHTML(entry{path: "/politik/a-1", title: "A"}), nil).Once()
	fetcher.On("Fetch", mock.Anything, siteURL("/politik/a-1"), "session=abc").Return(articleHTML("A"), nil).Once()

	opts := DefaultOptions()
	opts.ExtractContent = true
	opts.Credential = "session=abc"

	_, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	fetcher.AssertExpectations(t)
}

// TestPages_Lazy verifies pages are fetched only as they are consumed
func TestPages_Lazy(t *testing.T) {
	fetcher := &mockFetcher{}
	p, _ := newTestPipeline(fetcher, &fakeWriter{})

	fetcher.On("Fetch", mock.Anything, pageURL(1), "").Return(indexHTML(entry{path: "/politik/a-1", title: "A"}), nil)

	opts := DefaultOptions()
	opts.EndPage = 5

	for page := range p.Pages(context.Background(), opts) {
		require.NoError(t, page.Err)
		assert.Len(t, page.Summaries, 1)
		break
	}

	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

// TestContents_SkipsPremium verifies paywalled summaries are reported as
// skipped without a fetch
func TestContents_SkipsPremium(t *testing.T) {
	fetcher := &mockFetcher{}
	p, _ := newTestPipeline(fetcher, &fakeWriter{})

	fetcher.On("Fetch", mock.Anything, siteURL("/politik/a-1"), "").Return(articleHTML("A"), nil)

	summaries := func(yield func(article.Summary) bool) {
		_ = yield(article.Summary{URL: siteURL("/politik/a-1"), IsFree: true}) &&
			yield(article.Summary{URL: siteURL("/politik/a-2"), IsFree: false})
	}

	var results []ContentResult
	for result := range p.Contents(context.Background(), DefaultOptions(), summaries) {
		results = append(results, result)
	}

	require.Len(t, results, 2)
	require.NotNil(t, results[0].Content)
	assert.Equal(t, "A | tempo.co", results[0].Content.Title)
	assert.True(t, results[1].Skipped)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

// TestRunFeed verifies feed listings are written like index runs
func TestRunFeed(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
		<item><title>A</title><link>https://www.tempo.co/politik/a-1</link></item>
		<item><title>B</title><link>https://www.tempo.co/ekonomi/b-2</link></item>
	</channel></rss>`
	fetcher.On("Fetch", mock.Anything, "https://rss.tempo.co/politik", "").Return(feed, nil)

	run, err := p.RunFeed(context.Background(), "https://rss.tempo.co/politik", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, StageDone, run.Stage)
	assert.Len(t, run.Summaries, 2)
	assert.Equal(t, "feed", writer.meta.Type)
	assert.Equal(t, "https://rss.tempo.co/politik", writer.meta.Options.Source)
	assert.Equal(t, 1, writer.indexCalls)
}

// TestExtractSingle_WritesOnce verifies the standalone path writes one
// article
func TestExtractSingle_WritesOnce(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	url := siteURL("/politik/a-1")
	fetcher.On("Fetch", mock.Anything, url, "session=abc").Return(articleHTML("A"), nil).Once()

	run, err := p.ExtractSingle(context.Background(), url, "single", "session=abc")
	require.NoError(t, err)

	fetcher.AssertExpectations(t)
	assert.Equal(t, 1, writer.articleCalls)
	assert.Zero(t, writer.indexCalls)
	assert.Equal(t, url, writer.content.URL)
	assert.Equal(t, []string{"Isi A."}, writer.content.Body)
	assert.Equal(t, StageDone, run.Stage)
	assert.Equal(t, "/out/single.json", run.OutputPath)
}

// TestExtractSingle_FetchFailure verifies fetch errors are fatal and tagged
func TestExtractSingle_FetchFailure(t *testing.T) {
	fetcher := &mockFetcher{}
	writer := &fakeWriter{}
	p, _ := newTestPipeline(fetcher, writer)

	url := siteURL("/politik/a-1")
	fetcher.On("Fetch", mock.Anything, url, "").Return("", &discovery.FetchError{URL: url, StatusCode: 404})

	run, err := p.ExtractSingle(context.Background(), url, "", "")

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageExtractingContent, stageErr.Stage)
	assert.Equal(t, url, stageErr.URL)
	assert.Equal(t, StageFailed, run.Stage)
	assert.Zero(t, writer.articleCalls)
}

// TestExtractSingle_InvalidURL verifies non-http URLs are rejected without
// fetching
func TestExtractSingle_InvalidURL(t *testing.T) {
	fetcher := &mockFetcher{}
	p, _ := newTestPipeline(fetcher, &fakeWriter{})

	for _, url := range []string{"", "/politik/a-1", "ftp://www.tempo.co/x"} {
		_, err := p.ExtractSingle(context.Background(), url, "", "")
		assert.ErrorIs(t, err, ErrInvalidURL, url)
	}

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}
