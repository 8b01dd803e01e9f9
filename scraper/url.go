package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pevans/tempo/daterange"
)

var ErrInvalidPage = errors.New("page number must be at least 1")

// BuildIndexURL builds the URL of one index page. Rubric and date range
// filters are mutually exclusive on tempo.co: when both are given the rubric
// wins and the range is dropped. A perPage of zero or less omits the
// per_page parameter. The result depends only on the arguments.
func BuildIndexURL(baseURL string, page int, rubric string, rng *daterange.DateRange, perPage int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidPage, page)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid index base URL: %w", err)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}

	switch {
	case rubric != "":
		q.Set("category", "rubrik")
		q.Set("rubric_slug", rubric)
	case rng != nil:
		q.Set("category", "date")
		q.Set("start_date", rng.StartDate())
		q.Set("end_date", rng.EndDate())
	}

	// Encode sorts by key, which keeps the URL stable across calls
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// BuildFeedURL returns the RSS feed of a rubric, or the site-wide feed when
// rubric is empty.
func BuildFeedURL(feedBaseURL, rubric string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(feedBaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid feed base URL: %w", err)
	}

	if rubric = strings.Trim(rubric, "/ "); rubric != "" {
		u = u.JoinPath(rubric)
	}
	return u.String(), nil
}
