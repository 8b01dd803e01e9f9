package daterange

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the only accepted input format for dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidRange      = errors.New("start date cannot be later than end date")
)

// DateRange is an inclusive range of calendar dates used to filter index
// pages. Start is never after End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Resolve turns optional start and end dates into a DateRange. An empty
// string means the date was not supplied. When neither is supplied, Resolve
// returns nil with no error, meaning no date filter applies. When only one
// is supplied, the other is derived as exactly one day away.
func Resolve(start, end string) (*DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	var startDate, endDate time.Time
	var err error

	if start != "" {
		if startDate, err = ParseDate(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if endDate, err = ParseDate(end); err != nil {
			return nil, err
		}
	}

	switch {
	case end == "":
		endDate = startDate.AddDate(0, 0, 1)
	case start == "":
		startDate = endDate.AddDate(0, 0, -1)
	case startDate.After(endDate):
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	return &DateRange{Start: startDate, End: endDate}, nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// StartDate returns the start of the range formatted as YYYY-MM-DD.
func (r DateRange) StartDate() string {
	return r.Start.Format(DateLayout)
}

// EndDate returns the end of the range formatted as YYYY-MM-DD.
func (r DateRange) EndDate() string {
	return r.End.Format(DateLayout)
}

func (r DateRange) String() string {
	return r.StartDate() + ".." + r.EndDate()
}
