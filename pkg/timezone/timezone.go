// Package timezone resolves the clinic's wall-clock location. Calendar dates
// are stored as 00:00 UTC; these helpers move between that form and local
// wall-clock instants.
package timezone

import "time"

const DefaultTimezone = "UTC"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location falls back to DefaultTimezone for empty or unknown names.
func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.UTC
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// At returns hour:minute in loc on the calendar date carried by day.
func At(day time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

// Today is the calendar date of now as seen in loc, as 00:00 UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
