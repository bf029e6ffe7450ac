// SPDX-License-Identifier: MIT
// Package timeparse converts VCS timestamps and human "N units ago"
// strings into absolute UTC instants.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ParseError reports a relative time string that could not be interpreted.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse relative time %q: %s", e.Input, e.Reason)
}

var relativePattern = regexp.MustCompile(`^(?P<amount>\d+) (?P<unit>\w+) ago$`)

// ParseUnix converts decimal epoch seconds into a UTC time.
func ParseUnix(value string) (time.Time, error) {
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse unix timestamp: %w", err)
	}
	return time.Unix(seconds, 0).UTC(), nil
}

// ParseRelative resolves strings like "3 days ago", "1 week ago" or
// "2 months ago" against base.
//
// Days and weeks subtract fixed durations. Months move the calendar month
// back, clamping the day to the end of the target month when it does not
// exist there (March 31 minus one month is the last day of February).
func ParseRelative(value string, base time.Time) (time.Time, error) {
	match := relativePattern.FindStringSubmatch(value)
	if match == nil {
		return time.Time{}, &ParseError{Input: value, Reason: "expected \"N <unit> ago\""}
	}
	amount, err := strconv.ParseInt(match[relativePattern.SubexpIndex("amount")], 10, 64)
	if err != nil {
		return time.Time{}, &ParseError{Input: value, Reason: "amount out of range"}
	}

	switch unit := match[relativePattern.SubexpIndex("unit")]; unit {
	case "day", "days":
		return subtract(value, base, amount, 24*time.Hour)
	case "week", "weeks":
		return subtract(value, base, amount, 7*24*time.Hour)
	case "month", "months":
		return monthsBefore(base, amount), nil
	default:
		return time.Time{}, &ParseError{Input: value, Reason: fmt.Sprintf("unknown unit %q", unit)}
	}
}

func subtract(value string, base time.Time, amount int64, unit time.Duration) (time.Time, error) {
	if amount > int64(1<<63-1)/int64(unit) {
		return time.Time{}, &ParseError{Input: value, Reason: "duration out of range"}
	}
	return base.Add(-time.Duration(amount) * unit), nil
}

func monthsBefore(base time.Time, amount int64) time.Time {
	total := int64(base.Year())*12 + int64(base.Month()-1) - amount
	year := floorDiv(total, 12)
	month := time.Month(total-year*12) + 1

	day := base.Day()
	if last := daysIn(int(year), month); day > last {
		day = last
	}
	return time.Date(int(year), month, day, base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
