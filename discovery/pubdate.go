package discovery

import (
	"strconv"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// months maps English and Indonesian month names to months.
var months = map[string]time.Month{
	"january":   time.January,
	"januari":   time.January,
	"february":  time.February,
	"februari":  time.February,
	"march":     time.March,
	"maret":     time.March,
	"april":     time.April,
	"may":       time.May,
	"mei":       time.May,
	"june":      time.June,
	"juni":      time.June,
	"july":      time.July,
	"juli":      time.July,
	"august":    time.August,
	"agustus":   time.August,
	"september": time.September,
	"october":   time.October,
	"oktober":   time.October,
	"november":  time.November,
	"nopember":  time.November,
	"december":  time.December,
	"desember":  time.December,
}

// zoneOffsets holds the Indonesian time zones in seconds east of UTC.
var zoneOffsets = map[string]int{
	"WIB":  7 * 3600,
	"WITA": 8 * 3600,
	"WIT":  9 * 3600,
}

// ParsePublishedAt parses a publish timestamp from article metadata. It
// accepts ISO 8601 forms and tempo's display form "12 September 2025 |
// 15.22 WIB". Returns nil if raw cannot be parsed.
func ParsePublishedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	return parseDisplayDate(raw)
}

func parseDisplayDate(raw string) *time.Time {
	datePart, timePart, ok := strings.Cut(raw, "|")
	if !ok {
		return nil
	}

	dateFields := strings.Fields(datePart)
	if len(dateFields) != 3 {
		return nil
	}

	day, err := strconv.Atoi(dateFields[0])
	if err != nil {
		return nil
	}
	month, ok := months[strings.ToLower(dateFields[1])]
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(dateFields[2])
	if err != nil {
		return nil
	}

	timeFields := strings.Fields(timePart)
	if len(timeFields) == 0 {
		return nil
	}

	hourStr, minuteStr, ok := strings.Cut(strings.ReplaceAll(timeFields[0], ":", "."), ".")
	if !ok {
		return nil
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return nil
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return nil
	}

	loc := time.FixedZone("WIB", zoneOffsets["WIB"])
	if len(timeFields) > 1 {
		zone := strings.ToUpper(timeFields[1])
		if offset, ok := zoneOffsets[zone]; ok {
			loc = time.FixedZone(zone, offset)
		}
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if t.Day() != day {
		// time.Date normalizes overflow like 31 September
		return nil
	}
	return &t
}
