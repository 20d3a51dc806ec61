package utils

import "time"

// DayBucket truncates t to midnight of its calendar day, preserving the
// location. Grouping by day across mixed timezones is undefined, so
// callers normalize timestamps (see NormalizeUTC) before bucketing.
func DayBucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NormalizeUTC converts t to UTC. The analysis pipeline normalizes every
// article timestamp with this before any day-level aggregation.
func NormalizeUTC(t time.Time) time.Time {
	return t.UTC()
}

// SameDay reports whether a and b fall on the same calendar day in their
// respective locations.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextDay returns the day bucket immediately following bucket.
func NextDay(bucket time.Time) time.Time {
	return bucket.AddDate(0, 0, 1)
}

// WithinDateRange reports whether t's calendar day falls inside the
// inclusive [from, to] date range. Zero bounds are open.
func WithinDateRange(t, from, to time.Time) bool {
	day := DayBucket(t)
	if !from.IsZero() && day.Before(DayBucket(from)) {
		return false
	}
	if !to.IsZero() && day.After(DayBucket(to)) {
		return false
	}
	return true
}
