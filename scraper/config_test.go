package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultConfig verifies the built-in tempo.co selectors
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "https://www.tempo.co/indeks", config.Index.BaseURL)
	assert.Equal(t, "https://www.tempo.co", config.Index.SiteURL)
	assert.Equal(t, "https://rss.tempo.co", config.Index.FeedBaseURL)
	assert.Equal(t, "Pilihan Editor:", config.Article.EditorPickMarker)
	assert.Equal(t, "/img/logo-tempo-ads.svg", config.Article.AdImagePath)
	assert.NotEmpty(t, config.Article.ContainerSelector)
	assert.NotEmpty(t, config.Index.ContainerSelector)
}

// TestMerge_OverridesNonEmpty verifies override fields replace defaults
func TestMerge_OverridesNonEmpty(t *testing.T) {
	override := Config{
		Index:   IndexConfig{ContainerSelector: "ul.listing", FeedBaseURL: "http://localhost/rss"},
		Article: ArticleConfig{EditorPickMarker: "Baca juga:"},
	}

	merged := DefaultConfig().Merge(override)

	assert.Equal(t, "ul.listing", merged.Index.ContainerSelector)
	assert.Equal(t, "http://localhost/rss", merged.Index.FeedBaseURL)
	assert.Equal(t, "Baca juga:", merged.Article.EditorPickMarker)
}

// TestMerge_KeepsDefaultsForEmpty verifies empty overrides leave defaults
func TestMerge_KeepsDefaultsForEmpty(t *testing.T) {
	merged := DefaultConfig().Merge(Config{})

	assert.Equal(t, DefaultConfig(), merged)
}
