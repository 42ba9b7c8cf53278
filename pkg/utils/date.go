package utils

import (
	"fmt"
	"time"

	"trading-journal/pkg/common"
)

var clockLayouts = []string{common.TimeLayout, "15:04"}

// ParseClock parses a local time of day in HH:MM or HH:MM:SS form and
// returns it as an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", value)
}

// NormalizeClock rewrites a valid time of day as zero padded HH:MM:SS so
// stored values order correctly as strings.
func NormalizeClock(value string) (string, error) {
	offset, err := ParseClock(value)
	if err != nil {
		return "", err
	}
	return time.Time{}.Add(offset).Format(common.TimeLayout), nil
}

// IsValidClock reports whether value is HH:MM or HH:MM:SS.
func IsValidClock(value string) bool {
	_, err := ParseClock(value)
	return err == nil
}

// CombineDateClock returns the instant of clock on date. An unparsable clock
// counts as midnight.
func CombineDateClock(date time.Time, clock string) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset, err := ParseClock(clock)
	if err != nil {
		return day
	}
	return day.Add(offset)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TimeNowUTC() time.Time {
	return time.Now().UTC()
}
