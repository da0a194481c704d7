package core

import (
	"strings"
	"time"
)

// DateLayouts are the accepted calendar date formats, tried in order.
// Day/month/year comes first: it is what the inference entry point sends.
// The other two are the historical dataset's date and timestamp columns.
// None carries a zone, so every value is read as UTC.
var DateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }

// ParseDay parses value with the first matching layout and truncates it to
// midnight UTC of that calendar day.
func ParseDay(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		y, m, d := parsed.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// DaysBetween returns the whole number of calendar days from start to end.
// Both arguments are expected to come from ParseDay.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}
