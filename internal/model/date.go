package model

import (
	"fmt"
	"time"
)

// StoreEpoch is the reference instant of stored timestamps (2001-01-01 UTC).
var StoreEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// StoreEpochOffset shifts stored dates to midday UTC so they render as the
// same calendar day in every zone from UTC-11 to UTC+11.
const StoreEpochOffset = 12 * 60 * 60

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Valid reports whether the date exists in the proleptic Gregorian calendar.
func (d Date) Valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	t := d.utc()
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// StoreTime returns the stored timestamp for the date: seconds since
// StoreEpoch of the date's UTC midnight, plus StoreEpochOffset.
func (d Date) StoreTime() int64 {
	return d.utc().Unix() - StoreEpoch.Unix() + StoreEpochOffset
}

// DateFromStoreTime reverses StoreTime.
func DateFromStoreTime(ts int64) Date {
	t := time.Unix(StoreEpoch.Unix()+ts-StoreEpochOffset, 0).UTC()
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
