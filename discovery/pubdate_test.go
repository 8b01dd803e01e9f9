package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParsePublishedAt_RFC3339 verifies ISO timestamps from meta tags
func TestParsePublishedAt_RFC3339(t *testing.T) {
	published := ParsePublishedAt("2025-09-12T15:22:00+07:00")

	require.NotNil(t, published)
	assert.True(t, published.Equal(time.Date(2025, 9, 12, 8, 22, 0, 0, time.UTC)))
}

// TestParsePublishedAt_DisplayFormat verifies tempo's display format
func TestParsePublishedAt_DisplayFormat(t *testing.T) {
	published := ParsePublishedAt("12 September 2025 | 15.22 WIB")

	require.NotNil(t, published)
	assert.Equal(t, 2025, published.Year())
	assert.Equal(t, time.September, published.Month())
	assert.Equal(t, 12, published.Day())
	assert.Equal(t, 15, published.Hour())
	assert.Equal(t, 22, published.Minute())

	_, offset := published.Zone()
	assert.Equal(t, 7*3600, offset)
}

// TestParsePublishedAt_IndonesianMonth verifies Indonesian month names
func TestParsePublishedAt_IndonesianMonth(t *testing.T) {
	published := ParsePublishedAt("5 Agustus 2025 | 08.05 WITA")

	require.NotNil(t, published)
	assert.Equal(t, time.August, published.Month())
	assert.Equal(t, 5, published.Day())

	_, offset := published.Zone()
	assert.Equal(t, 8*3600, offset)
}

// TestParsePublishedAt_DateOnly verifies plain dates
func TestParsePublishedAt_DateOnly(t *testing.T) {
	published := ParsePublishedAt("2025-09-12")

	require.NotNil(t, published)
	assert.Equal(t, time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC), *published)
}

// TestParsePublishedAt_Invalid verifies unparseable input yields nil
func TestParsePublishedAt_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"invalid format",
		"12 Smarch 2025 | 15.22 WIB",
		"31 September 2025 | 15.22 WIB",
		"12 September 2025 | 25.22 WIB",
		"12 September | 15.22 WIB",
		"12 September 2025 |",
	}

	for _, input := range inputs {
		assert.Nil(t, ParsePublishedAt(input), "input %q", input)
	}
}
