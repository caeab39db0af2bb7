package utils

import (
	"time"
)

// ET is the US Eastern time zone used for NYSE/Nasdaq market hours.
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: fixed EST offset if the tz database is not available
		ET = time.FixedZone("EST", -5*60*60)
	}
}

// MarketOpenTime returns the regular session opening time (9:30 AM ET)
// for a given date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, ET)
}

// MarketCloseTime returns the regular session closing time (4:00 PM ET)
// for a given date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, ET)
}

// IsMarketOpenAt checks if the US equity market would be in its
// regular session at the given time. Exchange holidays are not
// tracked.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(ET)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	open := MarketOpenTime(t)
	close := MarketCloseTime(t)
	return !t.Before(open) && !t.After(close)
}

// ReportDate formats a time for report file names (YYYYMMDD).
func ReportDate(t time.Time) string {
	return t.In(ET).Format("20060102")
}

// SameDay reports whether two times fall on the same calendar day in ET.
func SameDay(a, b time.Time) bool {
	a, b = a.In(ET), b.In(ET)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
