package service

import "time"

// CalendarDate builds a UTC midnight date from its parts, rejecting values
// such as 31-02 that time.Date would silently normalise.
func CalendarDate(year, month, day int) (time.Time, error) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Today returns now's calendar date as UTC midnight.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckShowDate accepts dates from today up to maxAdvance days ahead.
func CheckShowDate(date, now time.Time, maxAdvance int) error {
	today := Today(now)
	day := Today(date)
	switch {
	case day.Before(today):
		return ErrDateInPast
	case day.Sub(today) > time.Duration(maxAdvance)*24*time.Hour:
		return ErrDateTooFar
	}
	return nil
}

// ParseDOB parses a DD-MM-YYYY date of birth.
func ParseDOB(s string) (time.Time, error) {
	d, err := time.Parse("02-01-2006", s)
	if err != nil {
		return time.Time{}, ErrInvalidDOB
	}
	return d, nil
}
