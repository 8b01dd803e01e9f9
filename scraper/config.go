package scraper

// Config holds every site-specific selector and marker used to scrape
// tempo.co, so a layout change only needs a config update.
type Config struct {
	Index   IndexConfig   `json:"index" yaml:"index"`
	Article ArticleConfig `json:"article" yaml:"article"`
}

// IndexConfig defines how to find article entries on an index page.
type IndexConfig struct {
	BaseURL           string `json:"base_url" yaml:"base_url"`
	SiteURL           string `json:"site_url" yaml:"site_url"`
	FeedBaseURL       string `json:"feed_base_url" yaml:"feed_base_url"`
	ContainerSelector string `json:"container_selector" yaml:"container_selector"`
	ItemSelector      string `json:"item_selector" yaml:"item_selector"`
	LinkSelector      string `json:"link_selector" yaml:"link_selector"`
	PremiumSelector   string `json:"premium_selector" yaml:"premium_selector"`
}

// ArticleConfig defines how to extract content from an article page.
type ArticleConfig struct {
	ContainerSelector     string `json:"container_selector" yaml:"container_selector"`
	TitleSelector         string `json:"title_selector" yaml:"title_selector"`
	HeadlineSelector      string `json:"headline_selector" yaml:"headline_selector"`
	BodySelector          string `json:"body_selector" yaml:"body_selector"`
	ParagraphSelector     string `json:"paragraph_selector" yaml:"paragraph_selector"`
	EditorPickMarker      string `json:"editor_pick_marker" yaml:"editor_pick_marker"`
	TagSelector           string `json:"tag_selector" yaml:"tag_selector"`
	ImageSelector         string `json:"image_selector" yaml:"image_selector"`
	AdImagePath           string `json:"ad_image_path" yaml:"ad_image_path"`
	PremiumSelector       string `json:"premium_selector" yaml:"premium_selector"`
	AuthorSelector        string `json:"author_selector" yaml:"author_selector"`
	PublishedTimeSelector string `json:"published_time_selector" yaml:"published_time_selector"`
	PublishDateSelector   string `json:"publish_date_selector" yaml:"publish_date_selector"`
}

// DefaultConfig returns the selectors matching the current tempo.co layout.
func DefaultConfig() Config {
	return Config{
		Index:   DefaultIndexConfig(),
		Article: DefaultArticleConfig(),
	}
}

// DefaultIndexConfig returns the index page selectors.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		BaseURL:           "https://www.tempo.co/indeks",
		SiteURL:           "https://www.tempo.co",
		FeedBaseURL:       "https://rss.tempo.co",
		ContainerSelector: "div.flex.flex-col.divide-y.divide-neutral-500",
		ItemSelector:      "div",
		LinkSelector:      "figure figcaption p a[href]",
		PremiumSelector:   "span.inline-flex.bg-primary-main",
	}
}

// DefaultArticleConfig returns the article page selectors.
func DefaultArticleConfig() ArticleConfig {
	return ArticleConfig{
		ContainerSelector:     "article.grow.space-y-6.overflow-x-clip.z-10",
		TitleSelector:         "title",
		HeadlineSelector:      "h1",
		BodySelector:          "div#content-wrapper",
		ParagraphSelector:     "p",
		EditorPickMarker:      "Pilihan Editor:",
		TagSelector:           "#article-tags a",
		ImageSelector:         "img[src]",
		AdImagePath:           "/img/logo-tempo-ads.svg",
		PremiumSelector:       "span.inline-flex.bg-primary-main",
		AuthorSelector:        `meta[name="author"]`,
		PublishedTimeSelector: `meta[property="article:published_time"]`,
		PublishDateSelector:   `meta[name="publish-date"]`,
	}
}

// Merge returns c with every non-empty field of override applied on top.
func (c Config) Merge(override Config) Config {
	mergeString(&c.Index.BaseURL, override.Index.BaseURL)
	mergeString(&c.Index.SiteURL, override.Index.SiteURL)
	mergeString(&c.Index.FeedBaseURL, override.Index.FeedBaseURL)
	mergeString(&c.Index.ContainerSelector, override.Index.ContainerSelector)
	mergeString(&c.Index.ItemSelector, override.Index.ItemSelector)
	mergeString(&c.Index.LinkSelector, override.Index.LinkSelector)
	mergeString(&c.Index.PremiumSelector, override.Index.PremiumSelector)

	a, o := &c.Article, override.Article
	mergeString(&a.ContainerSelector, o.ContainerSelector)
	mergeString(&a.TitleSelector, o.TitleSelector)
	mergeString(&a.HeadlineSelector, o.HeadlineSelector)
	mergeString(&a.BodySelector, o.BodySelector)
	mergeString(&a.ParagraphSelector, o.ParagraphSelector)
	mergeString(&a.EditorPickMarker, o.EditorPickMarker)
	mergeString(&a.TagSelector, o.TagSelector)
	mergeString(&a.ImageSelector, o.ImageSelector)
	mergeString(&a.AdImagePath, o.AdImagePath)
	mergeString(&a.PremiumSelector, o.PremiumSelector)
	mergeString(&a.AuthorSelector, o.AuthorSelector)
	mergeString(&a.PublishedTimeSelector, o.PublishedTimeSelector)
	mergeString(&a.PublishDateSelector, o.PublishDateSelector)

	return c
}

func mergeString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
